package files

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/veridoc/compliance-mcp/internal/llm"
	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/internal/pdf"
	"github.com/veridoc/compliance-mcp/internal/storage"
	"github.com/veridoc/compliance-mcp/models"
)

// UploadedDocument ties a logical document path to its resolved location
// on disk and the remote handle returned by the file-storage API. It
// lives only for the polling + single-request window of one comparison;
// the provider garbage-collects the remote file on its own schedule.
type UploadedDocument struct {
	LogicalPath  string
	ResolvedPath string
	PageCount    int
	Remote       *llm.FileHandle
}

// Uploader resolves logical document paths and ships them to the LLM
// file-storage API.
type Uploader struct {
	resolver *Resolver
	client   llm.Client
	limiter  *llm.Limiter
	store    storage.Store // optional; records remote uploads
	log      logger.Logger

	pageCount func(path string) (int, error)
}

func NewUploader(resolver *Resolver, client llm.Client, limiter *llm.Limiter, store storage.Store, log logger.Logger) *Uploader {
	return &Uploader{
		resolver:  resolver,
		client:    client,
		limiter:   limiter,
		store:     store,
		log:       log,
		pageCount: pdf.PageCount,
	}
}

// Upload resolves logicalPath, validates the file is a readable PDF, and
// uploads it under a display name equal to the resolved basename. Each
// upload consumes a rate-limiter slot. A still-active remote copy of the
// same logical path is reused instead of re-uploading.
func (u *Uploader) Upload(ctx context.Context, logicalPath string) (*UploadedDocument, error) {
	if err := u.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	resolved, err := u.resolver.Resolve(logicalPath)
	if err != nil {
		return nil, err
	}

	if doc := u.reuseRemote(ctx, logicalPath, resolved); doc != nil {
		return doc, nil
	}

	pages, err := u.pageCount(resolved)
	if err != nil {
		return nil, fmt.Errorf("refusing to upload %s: %w", resolved, err)
	}

	displayName := filepath.Base(resolved)
	handle, err := u.client.UploadFile(ctx, resolved, displayName)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", resolved, err)
	}
	u.log.Info("Uploaded %s (%d pages) as %s", displayName, pages, handle.Name)

	u.recordRemote(ctx, logicalPath, handle)

	return &UploadedDocument{
		LogicalPath:  logicalPath,
		ResolvedPath: resolved,
		PageCount:    pages,
		Remote:       handle,
	}, nil
}

// reuseRemote returns a document backed by a previously uploaded, still
// active remote file, or nil when a fresh upload is needed. Stale records
// are marked failed so they are not consulted again.
func (u *Uploader) reuseRemote(ctx context.Context, logicalPath, resolved string) *UploadedDocument {
	if u.store == nil {
		return nil
	}
	record, err := u.store.GetActiveRemoteFile(ctx, logicalPath)
	if err != nil || record == nil {
		return nil
	}
	handle, err := u.client.GetFile(ctx, record.RemoteName)
	if err != nil || handle.State != llm.StateActive {
		if err := u.store.UpdateRemoteFileStatus(ctx, record.RemoteName, string(llm.StateFailed)); err != nil {
			u.log.Warn("Failed to mark stale remote file %s: %v", record.RemoteName, err)
		}
		return nil
	}
	u.log.Info("Reusing remote file %s for %s", record.RemoteName, logicalPath)
	handle.DisplayName = record.DisplayName
	return &UploadedDocument{
		LogicalPath:  logicalPath,
		ResolvedPath: resolved,
		Remote:       handle,
	}
}

func (u *Uploader) recordRemote(ctx context.Context, logicalPath string, handle *llm.FileHandle) {
	if u.store == nil {
		return
	}
	now := time.Now()
	_, err := u.store.SaveRemoteFile(ctx, models.RemoteFileRecord{
		FilePath:    logicalPath,
		RemoteName:  handle.Name,
		DisplayName: handle.DisplayName,
		Status:      string(handle.State),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		u.log.Warn("Failed to record remote file %s: %v", handle.Name, err)
	}
}
