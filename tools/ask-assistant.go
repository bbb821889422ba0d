package tools

import (
	"context"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veridoc/compliance-mcp/internal/chat"
	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/models"
)

type DocumentMention struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type,omitempty"` // sop or guidelines
}

type AskAssistantQuery struct {
	Message  string            `json:"message"`
	Mentions []DocumentMention `json:"mentions,omitempty"`
	Reset    bool              `json:"reset,omitempty"`
}

type AskAssistantResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func AskAssistantTool() *mcp.Tool {
	inputschema, err := jsonschema.For[AskAssistantQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "ask-assistant",
		Description: "Ask the compliance assistant a question. Mentioned documents (by stored path, e.g. /content/sop/cleaning.pdf) are attached so answers are grounded in their content; without mentions the assistant answers from conversation context only. Set reset to true to clear the conversation history first.",
		InputSchema: inputschema,
	}
}

func AskAssistantToolHandler(ctx context.Context, req *mcp.CallToolRequest, query AskAssistantQuery, svc *chat.Service, log logger.Logger) (*mcp.CallToolResult, *AskAssistantResponse, error) {
	log.Info("ask-assistant tool called with %d mention(s)", len(query.Mentions))

	if query.Reset {
		svc.Reset()
	}

	mentions := make([]models.StoredFile, 0, len(query.Mentions))
	for _, m := range query.Mentions {
		mentions = append(mentions, models.StoredFile{Name: m.Name, Path: m.Path, DocType: m.Type})
	}

	resp := svc.Process(ctx, models.ConversationRequest{
		Message:  query.Message,
		Mentions: mentions,
	})
	return nil, &AskAssistantResponse{
		ID:        resp.ID,
		Content:   resp.Content,
		Timestamp: resp.Timestamp,
	}, nil
}
