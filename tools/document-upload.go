package tools

import (
	"context"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veridoc/compliance-mcp/internal/files"
	"github.com/veridoc/compliance-mcp/internal/logger"
)

type DocumentUploadQuery struct {
	FileName string `json:"file_name"`
	DocType  string `json:"doc_type"` // sop or guidelines
	Data     []byte `json:"data"`
}

type DocumentUploadResponse struct {
	Path         string    `json:"path"`
	OriginalName string    `json:"original_name"`
	DocType      string    `json:"doc_type"`
	Size         int64     `json:"size"`
	UploadDate   time.Time `json:"upload_date"`
	ContentHash  string    `json:"content_hash,omitempty"`
}

func DocumentUploadTool() *mcp.Tool {
	inputschema, err := jsonschema.For[DocumentUploadQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "document-upload",
		Description: "Store a PDF document (base64-encoded data) under the content root as either an SOP or a guideline. The returned path is what compare-documents and ask-assistant accept. Re-uploading identical content returns the existing document.",
		InputSchema: inputschema,
	}
}

func DocumentUploadToolHandler(ctx context.Context, req *mcp.CallToolRequest, query DocumentUploadQuery, intake *files.Intake, log logger.Logger) (*mcp.CallToolResult, *DocumentUploadResponse, error) {
	log.Info("document-upload tool called for %s (%s)", query.FileName, query.DocType)

	meta, err := intake.Save(ctx, query.FileName, query.DocType, query.Data)
	if err != nil {
		log.Error("document-upload tool failed: %v", err)
		return nil, nil, err
	}

	return nil, &DocumentUploadResponse{
		Path:         meta.Path,
		OriginalName: meta.OriginalName,
		DocType:      meta.DocType,
		Size:         meta.Size,
		UploadDate:   meta.UploadDate,
		ContentHash:  meta.ContentHash,
	}, nil
}
