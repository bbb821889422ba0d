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

type ComparisonResultsQuery struct {
	ResultID string `json:"result_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

type ComparisonResultsResponse struct {
	Results  []models.ComparisonItem   `json:"results,omitempty"`
	Failure  *models.ComparisonFailure `json:"failure,omitempty"`
	ResultID string                    `json:"result_id,omitempty"`
	Found    bool                      `json:"found"`
}

func ComparisonResultsTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ComparisonResultsQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "comparison-results",
		Description: "Retrieve comparison results: a specific persisted run by result_id, the newest persisted run for a user_id, or (with neither) the outcome of the most recent comparison this server performed, which may be a failure.",
		InputSchema: inputschema,
	}
}

func ComparisonResultsToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ComparisonResultsQuery, cache *compare.Cache, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *ComparisonResultsResponse, error) {
	log.Info("comparison-results tool called")

	if query.ResultID != "" && store != nil {
		record, err := store.GetComparisonResult(ctx, query.ResultID)
		if err != nil {
			log.Error("Failed to load comparison result %s: %v", query.ResultID, err)
			return nil, nil, err
		}
		if record == nil {
			return nil, &ComparisonResultsResponse{}, nil
		}
		return nil, &ComparisonResultsResponse{
			Results:  record.Results,
			ResultID: record.ID,
			Found:    true,
		}, nil
	}

	if query.UserID != "" && store != nil {
		records, err := store.GetUserComparisonResults(ctx, query.UserID)
		if err != nil {
			log.Error("Failed to load comparison results for %s: %v", query.UserID, err)
			return nil, nil, err
		}
		if len(records) == 0 {
			return nil, &ComparisonResultsResponse{}, nil
		}
		newest := records[0]
		return nil, &ComparisonResultsResponse{
			Results:  newest.Results,
			ResultID: newest.ID,
			Found:    true,
		}, nil
	}

	items, failure, ok := cache.Get()
	if !ok {
		return nil, &ComparisonResultsResponse{}, nil
	}
	return nil, &ComparisonResultsResponse{
		Results: items,
		Failure: failure,
		Found:   true,
	}, nil
}
