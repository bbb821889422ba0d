package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/internal/storage"
	"github.com/veridoc/compliance-mcp/models"
)

type ListDocumentsQuery struct {
	DocType string `json:"doc_type,omitempty"` // sop or guidelines; empty for all
}

type ListDocumentsResponse struct {
	Documents []models.FileMetadata `json:"documents"`
}

func ListDocumentsTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ListDocumentsQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "list-documents",
		Description: "List stored documents, newest upload first, optionally filtered to SOPs or guidelines. Paths in the response are accepted by compare-documents and ask-assistant.",
		InputSchema: inputschema,
	}
}

func ListDocumentsToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ListDocumentsQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *ListDocumentsResponse, error) {
	log.Info("list-documents tool called")

	if store == nil {
		return nil, &ListDocumentsResponse{Documents: []models.FileMetadata{}}, nil
	}
	docs, err := store.ListFiles(ctx)
	if err != nil {
		log.Error("list-documents tool failed: %v", err)
		return nil, nil, err
	}

	filtered := make([]models.FileMetadata, 0, len(docs))
	for _, doc := range docs {
		if query.DocType != "" && doc.DocType != query.DocType {
			continue
		}
		filtered = append(filtered, doc)
	}
	return nil, &ListDocumentsResponse{Documents: filtered}, nil
}
