package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veridoc/compliance-mcp/internal/chat"
	"github.com/veridoc/compliance-mcp/internal/compare"
	"github.com/veridoc/compliance-mcp/internal/files"
	"github.com/veridoc/compliance-mcp/internal/llm"
	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/internal/storage"
	"github.com/veridoc/compliance-mcp/tools"
)

func CreateServer(log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "compliance-mcp", Version: "v0.0.1"}, nil)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is not set")
	}

	store, err := initializeStorage(log)
	if err != nil {
		// Comparison still works from the in-memory cache; persistence,
		// dedupe, and remote-file reuse are disabled.
		log.Warn("Storage unavailable, running without persistence: %v", err)
	}

	contentRoot := os.Getenv("COMPLIANCE_CONTENT_ROOT")
	if contentRoot == "" {
		contentRoot = "public"
	}

	client := llm.NewOpenAIClient(apiKey)
	limiter := llm.NewLimiter(0, 0)
	resolver := files.NewResolver(contentRoot)
	uploader := files.NewUploader(resolver, client, limiter, store, log)
	poller := files.NewPoller(client, store, log)
	cache := compare.NewCache()
	compareSvc := compare.NewService(uploader, poller, client, limiter, store, cache, log)
	chatSvc := chat.NewService(uploader, poller, client, limiter, log)
	intake := files.NewIntake(contentRoot, store, log)

	mcp.AddTool(server, tools.CompareDocumentsTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.CompareDocumentsQuery) (*mcp.CallToolResult, *tools.CompareDocumentsResponse, error) {
		return tools.CompareDocumentsToolHandler(ctx, req, query, compareSvc, store, log)
	})

	mcp.AddTool(server, tools.ComparisonResultsTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ComparisonResultsQuery) (*mcp.CallToolResult, *tools.ComparisonResultsResponse, error) {
		return tools.ComparisonResultsToolHandler(ctx, req, query, cache, store, log)
	})

	mcp.AddTool(server, tools.AskAssistantTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.AskAssistantQuery) (*mcp.CallToolResult, *tools.AskAssistantResponse, error) {
		return tools.AskAssistantToolHandler(ctx, req, query, chatSvc, log)
	})

	mcp.AddTool(server, tools.DocumentUploadTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.DocumentUploadQuery) (*mcp.CallToolResult, *tools.DocumentUploadResponse, error) {
		return tools.DocumentUploadToolHandler(ctx, req, query, intake, log)
	})

	mcp.AddTool(server, tools.ListDocumentsTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ListDocumentsQuery) (*mcp.CallToolResult, *tools.ListDocumentsResponse, error) {
		return tools.ListDocumentsToolHandler(ctx, req, query, store, log)
	})

	return server
}

// initializeStorage creates and initializes the storage backend
func initializeStorage(log logger.Logger) (storage.Store, error) {
	dbPath := os.Getenv("COMPLIANCE_MCP_DB_PATH")
	if dbPath == "" {
		// Default to ~/.compliance-mcp/compliance.db
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dbDir := filepath.Join(homeDir, ".compliance-mcp")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "compliance.db")
	}

	log.Info("Initializing SQLite database at: %s", dbPath)

	store, err := storage.NewSQLiteStore(dbPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}

	return store, nil
}
