package llm

import "context"

// FileState is the lifecycle state of a file held by the external
// file-storage API.
type FileState string

const (
	StateProcessing FileState = "processing"
	StateActive     FileState = "active"
	StateFailed     FileState = "failed"
)

// FileHandle is the opaque remote reference returned by the file-storage
// API. Name is the provider identifier used for polling; DisplayName is
// the human-readable label the file was tagged with at upload time.
type FileHandle struct {
	Name        string
	DisplayName string
	URI         string
	State       FileState
}

// Part is one ordered element of a generation request: either a reference
// to an uploaded file or a block of text.
type Part struct {
	FileName string // remote handle name; empty for text parts
	Text     string
}

func FilePart(h *FileHandle) Part { return Part{FileName: h.Name} }
func TextPart(text string) Part   { return Part{Text: text} }

// GenerateRequest describes one generation call. When ResponseSchema is
// set, the provider is asked to constrain its output to JSON matching the
// schema (named SchemaName).
type GenerateRequest struct {
	SystemInstruction string
	Parts             []Part
	Temperature       float64
	TopP              float64
	MaxOutputTokens   int
	SchemaName        string
	ResponseSchema    map[string]any
}

// Client is the surface of the external multimodal LLM API this system
// consumes: file upload, file state retrieval, and text generation.
type Client interface {
	// UploadFile ships the file at path to the provider's file storage,
	// tagged with displayName. The returned handle may still be in the
	// processing state.
	UploadFile(ctx context.Context, path, displayName string) (*FileHandle, error)

	// GetFile re-fetches the current state of an uploaded file.
	GetFile(ctx context.Context, name string) (*FileHandle, error)

	// Generate issues one generation request and returns the raw response
	// text. Failed calls are reported, never retried: a silent retry would
	// duplicate billable requests.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
