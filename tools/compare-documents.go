package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veridoc/compliance-mcp/internal/compare"
	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/internal/storage"
	"github.com/veridoc/compliance-mcp/models"
)

type CompareDocumentsQuery struct {
	SopPaths       []string `json:"sop_paths"`
	GuidelinePaths []string `json:"guideline_paths"`
	UserID         string   `json:"user_id,omitempty"`
}

type CompareDocumentsResponse struct {
	Results  []models.ComparisonItem   `json:"results,omitempty"`
	Failure  *models.ComparisonFailure `json:"failure,omitempty"`
	ResultID string                    `json:"result_id,omitempty"`
}

func CompareDocumentsTool() *mcp.Tool {
	inputschema, err := jsonschema.For[CompareDocumentsQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "compare-documents",
		Description: "Compare one or more SOP documents against regulatory guideline documents and report every discrepancy found, with section references, page numbers, and severity. Paths refer to documents previously stored with document-upload (e.g. /content/sop/cleaning.pdf). When user_id is given, the result set is persisted and its result_id returned.",
		InputSchema: inputschema,
	}
}

func CompareDocumentsToolHandler(ctx context.Context, req *mcp.CallToolRequest, query CompareDocumentsQuery, svc *compare.Service, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *CompareDocumentsResponse, error) {
	log.Info("compare-documents tool called with %d SOP(s), %d guideline(s)", len(query.SopPaths), len(query.GuidelinePaths))

	items, failure := svc.Compare(ctx, query.SopPaths, query.GuidelinePaths)
	if failure != nil {
		// A failed comparison is still a tool result; the failure object
		// carries what went wrong.
		return nil, &CompareDocumentsResponse{Failure: failure}, nil
	}

	response := &CompareDocumentsResponse{Results: items}
	if query.UserID != "" && store != nil {
		id, err := store.SaveComparisonResult(ctx, query.UserID, query.SopPaths, query.GuidelinePaths, items)
		if err != nil {
			log.Warn("Failed to persist comparison result: %v", err)
		} else {
			response.ResultID = id
		}
	}
	return nil, response, nil
}
