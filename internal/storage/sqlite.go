package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/models"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db  *sql.DB
	log logger.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, log logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, log: log}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database tables if they don't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS comparison_results (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		sop_paths TEXT,
		guideline_paths TEXT,
		results TEXT,
		created_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS files (
		content_hash TEXT PRIMARY KEY,
		original_name TEXT,
		path TEXT,
		doc_type TEXT,
		size INTEGER,
		upload_date DATETIME,
		last_used_date DATETIME
	);

	CREATE TABLE IF NOT EXISTS remote_files (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		file_path TEXT,
		remote_name TEXT,
		display_name TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_comparison_results_user ON comparison_results(user_id);
	CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);
	CREATE INDEX IF NOT EXISTS idx_remote_files_path ON remote_files(file_path);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveComparisonResult(ctx context.Context, userID string, sopPaths, guidelinePaths []string, results []models.ComparisonItem) (string, error) {
	id := uuid.NewString()

	sopJSON, err := json.Marshal(sopPaths)
	if err != nil {
		return "", fmt.Errorf("failed to marshal SOP paths: %w", err)
	}
	guidelineJSON, err := json.Marshal(guidelinePaths)
	if err != nil {
		return "", fmt.Errorf("failed to marshal guideline paths: %w", err)
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO comparison_results (id, user_id, sop_paths, guideline_paths, results, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, userID, string(sopJSON), string(guidelineJSON), string(resultsJSON), time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert comparison result: %w", err)
	}

	s.log.Info("Saved comparison result %s for user %s", id, userID)
	return id, nil
}

func (s *SQLiteStore) GetComparisonResult(ctx context.Context, resultID string) (*models.ComparisonRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, sop_paths, guideline_paths, results, created_at
		FROM comparison_results WHERE id = ?
	`, resultID)

	record, err := scanComparisonRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

func (s *SQLiteStore) GetUserComparisonResults(ctx context.Context, userID string) ([]models.ComparisonRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, sop_paths, guideline_paths, results, created_at
		FROM comparison_results WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison results: %w", err)
	}
	defer rows.Close()

	var records []models.ComparisonRecord
	for rows.Next() {
		record, err := scanComparisonRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComparisonRecord(row rowScanner) (*models.ComparisonRecord, error) {
	var record models.ComparisonRecord
	var sopJSON, guidelineJSON, resultsJSON string

	err := row.Scan(&record.ID, &record.UserID, &sopJSON, &guidelineJSON, &resultsJSON, &record.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(sopJSON), &record.SopPaths); err != nil {
		return nil, fmt.Errorf("failed to unmarshal SOP paths: %w", err)
	}
	if err := json.Unmarshal([]byte(guidelineJSON), &record.GuidelinePaths); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guideline paths: %w", err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &record.Results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	return &record, nil
}

func (s *SQLiteStore) SaveFileMetadata(ctx context.Context, meta models.FileMetadata) (*models.FileMetadata, error) {
	existing, err := s.fileByHash(ctx, meta.ContentHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Info("File with hash %s already recorded, reusing %s", meta.ContentHash, existing.Path)
		return existing, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO files (content_hash, original_name, path, doc_type, size, upload_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, meta.ContentHash, meta.OriginalName, meta.Path, meta.DocType, meta.Size, meta.UploadDate)
	if err != nil {
		return nil, fmt.Errorf("failed to insert file metadata: %w", err)
	}
	return &meta, nil
}

func (s *SQLiteStore) fileByHash(ctx context.Context, hash string) (*models.FileMetadata, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT content_hash, original_name, path, doc_type, size, upload_date, last_used_date
		FROM files WHERE content_hash = ?
	`, hash)

	meta, err := scanFileMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return meta, err
}

func scanFileMetadata(row rowScanner) (*models.FileMetadata, error) {
	var meta models.FileMetadata
	var lastUsed sql.NullTime

	err := row.Scan(&meta.ContentHash, &meta.OriginalName, &meta.Path, &meta.DocType, &meta.Size, &meta.UploadDate, &lastUsed)
	if err != nil {
		return nil, err
	}
	if lastUsed.Valid {
		meta.LastUsed = &lastUsed.Time
	}
	return &meta, nil
}

func (s *SQLiteStore) ListFiles(ctx context.Context) ([]models.FileMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_hash, original_name, path, doc_type, size, upload_date, last_used_date
		FROM files ORDER BY upload_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []models.FileMetadata
	for rows.Next() {
		meta, err := scanFileMetadata(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *meta)
	}
	return files, rows.Err()
}

func (s *SQLiteStore) TouchFileUsage(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE files SET last_used_date = ? WHERE path = ?
	`, time.Now(), path)
	if err != nil {
		return fmt.Errorf("failed to update file usage: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveRemoteFile(ctx context.Context, record models.RemoteFileRecord) (string, error) {
	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO remote_files (id, user_id, file_path, remote_name, display_name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, record.UserID, record.FilePath, record.RemoteName, record.DisplayName, record.Status, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert remote file record: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) UpdateRemoteFileStatus(ctx context.Context, remoteName, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE remote_files SET status = ?, updated_at = ? WHERE remote_name = ?
	`, status, time.Now(), remoteName)
	if err != nil {
		return fmt.Errorf("failed to update remote file status: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetActiveRemoteFile(ctx context.Context, filePath string) (*models.RemoteFileRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, file_path, remote_name, display_name, status, created_at, updated_at
		FROM remote_files WHERE file_path = ? AND status = 'active'
		ORDER BY created_at DESC LIMIT 1
	`, filePath)

	var record models.RemoteFileRecord
	err := row.Scan(&record.ID, &record.UserID, &record.FilePath, &record.RemoteName,
		&record.DisplayName, &record.Status, &record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
