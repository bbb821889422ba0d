package storage

import (
	"context"

	"github.com/veridoc/compliance-mcp/models"
)

// Store is the persistence boundary of the pipeline: comparison results
// keyed by the requesting user, file metadata, and remote upload records.
// The comparison orchestrator works when a Store is unavailable; the
// in-memory result cache is the guaranteed fallback read path.
type Store interface {
	// SaveComparisonResult persists one comparison run and returns its ID.
	SaveComparisonResult(ctx context.Context, userID string, sopPaths, guidelinePaths []string, results []models.ComparisonItem) (string, error)

	// GetComparisonResult retrieves a comparison run by ID; nil when absent.
	GetComparisonResult(ctx context.Context, resultID string) (*models.ComparisonRecord, error)

	// GetUserComparisonResults returns a user's runs, newest first.
	GetUserComparisonResults(ctx context.Context, userID string) ([]models.ComparisonRecord, error)

	// SaveFileMetadata records a stored document. Documents with an
	// already-known content hash return the existing record unchanged.
	SaveFileMetadata(ctx context.Context, meta models.FileMetadata) (*models.FileMetadata, error)

	// ListFiles returns all stored documents, newest upload first.
	ListFiles(ctx context.Context) ([]models.FileMetadata, error)

	// TouchFileUsage stamps the document at the given logical path as used.
	TouchFileUsage(ctx context.Context, path string) error

	// SaveRemoteFile records a document shipped to the file-storage API.
	SaveRemoteFile(ctx context.Context, record models.RemoteFileRecord) (string, error)

	// UpdateRemoteFileStatus updates a remote record's lifecycle status.
	UpdateRemoteFileStatus(ctx context.Context, remoteName, status string) error

	// GetActiveRemoteFile returns the newest active remote record for a
	// logical path; nil when there is none.
	GetActiveRemoteFile(ctx context.Context, filePath string) (*models.RemoteFileRecord, error)

	// Close closes the underlying database connection.
	Close() error
}
