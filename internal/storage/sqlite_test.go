package storage

import (
	"context"
	"testing"
	"time"

	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:", logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetComparisonResult(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	items := []models.ComparisonItem{
		{
			ID:            1,
			Section:       "4.2 Cleaning",
			Status:        models.StatusDiscrepancy,
			Regulation:    "Surfaces must be sanitized daily",
			Documentation: "SOP specifies weekly sanitization",
			PageNumber:    models.PageNumberOf(12),
			SopPageNumber: models.PageUnknown,
			Severity:      "major",
			Comment:       "Frequency mismatch",
		},
	}

	id, err := store.SaveComparisonResult(ctx, "user-1", []string{"/content/sop/a.pdf"}, []string{"/content/guidelines/b.pdf"}, items)
	if err != nil {
		t.Fatalf("SaveComparisonResult failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty result ID")
	}

	record, err := store.GetComparisonResult(ctx, id)
	if err != nil {
		t.Fatalf("GetComparisonResult failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record, got nil")
	}
	if record.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", record.UserID, "user-1")
	}
	if len(record.Results) != 1 || record.Results[0].Section != "4.2 Cleaning" {
		t.Errorf("unexpected results round-trip: %+v", record.Results)
	}
	if record.Results[0].SopPageNumber != models.PageUnknown {
		t.Errorf("SopPageNumber = %q, want %q", record.Results[0].SopPageNumber, models.PageUnknown)
	}
}

func TestGetComparisonResultMissing(t *testing.T) {
	store := newTestStore(t)

	record, err := store.GetComparisonResult(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("GetComparisonResult failed: %v", err)
	}
	if record != nil {
		t.Errorf("expected nil for missing result, got %+v", record)
	}
}

func TestGetUserComparisonResultsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Insert with explicit timestamps so ordering doesn't depend on clock
	// resolution within the test.
	for i, created := range []time.Time{
		time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	} {
		_, err := store.db.ExecContext(ctx, `
			INSERT INTO comparison_results (id, user_id, sop_paths, guideline_paths, results, created_at)
			VALUES (?, 'user-1', '["a"]', '["b"]', '[]', ?)
		`, string(rune('a'+i)), created)
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	records, err := store.GetUserComparisonResults(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUserComparisonResults failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "b" {
		t.Errorf("newest-first ordering violated: first ID = %q, want %q", records[0].ID, "b")
	}

	other, err := store.GetUserComparisonResults(ctx, "user-2")
	if err != nil {
		t.Fatalf("GetUserComparisonResults failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no records for other user, got %d", len(other))
	}
}

func TestSaveFileMetadataDedupe(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meta := models.FileMetadata{
		OriginalName: "protocol.pdf",
		Path:         "/content/sop/protocol.pdf",
		DocType:      "sop",
		Size:         2048,
		UploadDate:   time.Now(),
		ContentHash:  "abc123",
	}

	first, err := store.SaveFileMetadata(ctx, meta)
	if err != nil {
		t.Fatalf("SaveFileMetadata failed: %v", err)
	}
	if first.Path != meta.Path {
		t.Errorf("Path = %q, want %q", first.Path, meta.Path)
	}

	// Same content under a different name returns the existing record.
	dup := meta
	dup.OriginalName = "protocol_copy.pdf"
	dup.Path = "/content/sop/protocol_copy.pdf"

	second, err := store.SaveFileMetadata(ctx, dup)
	if err != nil {
		t.Fatalf("SaveFileMetadata (duplicate) failed: %v", err)
	}
	if second.Path != meta.Path {
		t.Errorf("duplicate returned path %q, want original %q", second.Path, meta.Path)
	}

	files, err := store.ListFiles(ctx)
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("got %d stored files, want 1", len(files))
	}
}

func TestTouchFileUsage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meta := models.FileMetadata{
		OriginalName: "guide.pdf",
		Path:         "/content/guidelines/guide.pdf",
		DocType:      "guidelines",
		Size:         1024,
		UploadDate:   time.Now(),
		ContentHash:  "def456",
	}
	if _, err := store.SaveFileMetadata(ctx, meta); err != nil {
		t.Fatalf("SaveFileMetadata failed: %v", err)
	}

	if err := store.TouchFileUsage(ctx, meta.Path); err != nil {
		t.Fatalf("TouchFileUsage failed: %v", err)
	}

	files, err := store.ListFiles(ctx)
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 1 || files[0].LastUsed == nil {
		t.Fatalf("expected last-used timestamp to be set, got %+v", files)
	}
}

func TestRemoteFileLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := models.RemoteFileRecord{
		FilePath:    "/content/sop/protocol.pdf",
		RemoteName:  "files/remote-1",
		DisplayName: "protocol.pdf",
		Status:      "processing",
	}
	id, err := store.SaveRemoteFile(ctx, record)
	if err != nil {
		t.Fatalf("SaveRemoteFile failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty record ID")
	}

	// Not active yet.
	active, err := store.GetActiveRemoteFile(ctx, record.FilePath)
	if err != nil {
		t.Fatalf("GetActiveRemoteFile failed: %v", err)
	}
	if active != nil {
		t.Errorf("expected no active record while processing, got %+v", active)
	}

	if err := store.UpdateRemoteFileStatus(ctx, record.RemoteName, "active"); err != nil {
		t.Fatalf("UpdateRemoteFileStatus failed: %v", err)
	}

	active, err = store.GetActiveRemoteFile(ctx, record.FilePath)
	if err != nil {
		t.Fatalf("GetActiveRemoteFile failed: %v", err)
	}
	if active == nil {
		t.Fatal("expected an active record after status update")
	}
	if active.RemoteName != record.RemoteName {
		t.Errorf("RemoteName = %q, want %q", active.RemoteName, record.RemoteName)
	}

	if err := store.UpdateRemoteFileStatus(ctx, record.RemoteName, "failed"); err != nil {
		t.Fatalf("UpdateRemoteFileStatus failed: %v", err)
	}
	active, err = store.GetActiveRemoteFile(ctx, record.FilePath)
	if err != nil {
		t.Fatalf("GetActiveRemoteFile failed: %v", err)
	}
	if active != nil {
		t.Errorf("expected no active record after failure, got %+v", active)
	}
}
