package files

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/internal/pdf"
	"github.com/veridoc/compliance-mcp/internal/storage"
	"github.com/veridoc/compliance-mcp/models"
)

// Intake stores uploaded documents under the public content root and
// records their metadata.
type Intake struct {
	root  string
	store storage.Store
	log   logger.Logger

	validate func(data []byte) (int, error)
}

func NewIntake(root string, store storage.Store, log logger.Logger) *Intake {
	if root == "" {
		root = "public"
	}
	return &Intake{
		root:     root,
		store:    store,
		log:      log,
		validate: pdf.ValidateBytes,
	}
}

// Save writes data under <root>/content/<docType>/, appending a timestamp
// suffix to the basename when the name is already taken, and records
// metadata keyed by an MD5 content hash so re-uploads of identical
// documents deduplicate. The returned metadata carries the logical path
// comparisons use.
func (i *Intake) Save(ctx context.Context, fileName, docType string, data []byte) (*models.FileMetadata, error) {
	if docType != "sop" && docType != "guidelines" {
		return nil, fmt.Errorf("invalid document type %q (expected 'sop' or 'guidelines')", docType)
	}

	pages, err := i.validate(data)
	if err != nil {
		return nil, err
	}

	destDir := filepath.Join(i.root, "content", docType)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}

	finalName := fileName
	if fileExists(filepath.Join(destDir, finalName)) {
		ext := filepath.Ext(fileName)
		finalName = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(fileName, ext), time.Now().UnixMilli(), ext)
	}
	fullPath := filepath.Join(destDir, finalName)

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	i.log.Info("Stored %s (%d pages) at %s", fileName, pages, fullPath)

	sum := md5.Sum(data)
	meta := models.FileMetadata{
		OriginalName: fileName,
		Path:         "/content/" + docType + "/" + finalName,
		DocType:      docType,
		Size:         int64(len(data)),
		UploadDate:   time.Now(),
		ContentHash:  hex.EncodeToString(sum[:]),
	}

	if i.store == nil {
		return &meta, nil
	}
	saved, err := i.store.SaveFileMetadata(ctx, meta)
	if err != nil {
		// The document is on disk; metadata persistence is best-effort.
		i.log.Warn("Failed to save file metadata for %s: %v", fullPath, err)
		return &meta, nil
	}
	return saved, nil
}
