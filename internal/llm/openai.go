package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIClient implements Client against the OpenAI file and responses
// APIs.
type OpenAIClient struct {
	client openai.Client
	model  shared.ChatModel
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  shared.ChatModelGPT5Mini,
	}
}

func (c *OpenAIClient) UploadFile(ctx context.Context, path, displayName string) (*FileHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file, err := c.client.Files.New(ctx, openai.FileNewParams{
		File:    f,
		Purpose: openai.FilePurposeUserData,
	})
	if err != nil {
		return nil, fmt.Errorf("file upload failed: %w", err)
	}
	return handleFromFile(file, displayName), nil
}

func (c *OpenAIClient) GetFile(ctx context.Context, name string) (*FileHandle, error) {
	file, err := c.client.Files.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return handleFromFile(file, file.Filename), nil
}

func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	content := make(responses.ResponseInputMessageContentListParam, 0, len(req.Parts))
	for _, part := range req.Parts {
		if part.FileName != "" {
			content = append(content, responses.ResponseInputContentUnionParam{
				OfInputFile: &responses.ResponseInputFileParam{
					FileID: openai.String(part.FileName),
				},
			})
			continue
		}
		content = append(content, responses.ResponseInputContentParamOfInputText(part.Text))
	}

	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(content, "user"),
			},
		},
	}
	if req.SystemInstruction != "" {
		params.Instructions = openai.String(req.SystemInstruction)
	}
	if supportsSampling(c.model) {
		if req.Temperature > 0 {
			params.Temperature = openai.Float(req.Temperature)
		}
		if req.TopP > 0 {
			params.TopP = openai.Float(req.TopP)
		}
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	if req.ResponseSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(req.SchemaName, req.ResponseSchema),
		}
	}

	response, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return response.OutputText(), nil
}

// supportsSampling reports whether a model accepts the temperature and
// top_p knobs. Reasoning models (the gpt-5 and o-series families)
// reject requests that carry them.
func supportsSampling(model shared.ChatModel) bool {
	name := string(model)
	for _, prefix := range []string{"gpt-5", "o1", "o3", "o4"} {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	return true
}

// handleFromFile maps the provider's file status onto the tagged lifecycle
// used by the pipeline: processed means ready, error means failed, and
// everything else is still processing.
func handleFromFile(file *openai.FileObject, displayName string) *FileHandle {
	state := StateProcessing
	switch file.Status {
	case openai.FileObjectStatusProcessed:
		state = StateActive
	case openai.FileObjectStatusError:
		state = StateFailed
	}
	return &FileHandle{
		Name:        file.ID,
		DisplayName: displayName,
		URI:         file.ID,
		State:       state,
	}
}
