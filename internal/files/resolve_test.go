package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	dir := t.TempDir()
	return &Resolver{Root: filepath.Join(dir, "public"), WorkDir: dir}
}

func TestResolveLogicalPath(t *testing.T) {
	r := newTestResolver(t)
	want := filepath.Join(r.Root, "content", "sop", "cleaning.pdf")
	writeTestFile(t, want)

	got, err := r.Resolve("/content/sop/cleaning.pdf")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveRelativePath(t *testing.T) {
	r := newTestResolver(t)
	want := filepath.Join(r.Root, "content", "guidelines", "annex.pdf")
	writeTestFile(t, want)

	got, err := r.Resolve("content/guidelines/annex.pdf")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveAbsolutePath(t *testing.T) {
	r := newTestResolver(t)
	want := filepath.Join(r.WorkDir, "elsewhere", "doc.pdf")
	writeTestFile(t, want)

	got, err := r.Resolve(want)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveUnderWorkDir(t *testing.T) {
	r := newTestResolver(t)
	want := filepath.Join(r.WorkDir, "content", "sop", "batch.pdf")
	writeTestFile(t, want)

	got, err := r.Resolve("/content/sop/batch.pdf")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveNormalizesWhitespace(t *testing.T) {
	r := newTestResolver(t)
	want := filepath.Join(r.Root, "content", "sop", "batch record.pdf")
	writeTestFile(t, want)

	got, err := r.Resolve("/content/sop/batch   record.pdf")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolvePercentDecodes(t *testing.T) {
	r := newTestResolver(t)
	want := filepath.Join(r.Root, "content", "sop", "batch record.pdf")
	writeTestFile(t, want)

	got, err := r.Resolve("/content/sop/batch%20record.pdf")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolvePartialNameMatch(t *testing.T) {
	r := newTestResolver(t)
	// A stale metadata entry refers to a collision-suffixed copy that no
	// longer exists; the part before the underscore still identifies the
	// document on disk.
	want := filepath.Join(r.Root, "content", "sop", "cleaning.pdf")
	writeTestFile(t, want)

	got, err := r.Resolve("/content/sop/cleaning_1712000000000.pdf")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := newTestResolver(t)

	_, err := r.Resolve("/content/sop/missing.pdf")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if nf.LogicalPath != "/content/sop/missing.pdf" {
		t.Errorf("LogicalPath = %q", nf.LogicalPath)
	}
	if len(nf.Tried) != 5 {
		t.Errorf("Tried %d candidates, want 5: %v", len(nf.Tried), nf.Tried)
	}
}

func TestResolveDoesNotMatchDirectories(t *testing.T) {
	r := newTestResolver(t)
	if err := os.MkdirAll(filepath.Join(r.Root, "content", "sop", "report.pdf"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := r.Resolve("/content/sop/report.pdf")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError for directory", err)
	}
}
