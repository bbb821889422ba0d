package files

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veridoc/compliance-mcp/internal/llm"
	"github.com/veridoc/compliance-mcp/internal/logger"
)

// scriptedClient serves a fixed sequence of states per file name,
// repeating the last state once the script runs out.
type scriptedClient struct {
	states map[string][]llm.FileState
	calls  map[string]int
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{
		states: make(map[string][]llm.FileState),
		calls:  make(map[string]int),
	}
}

func (c *scriptedClient) UploadFile(ctx context.Context, path, displayName string) (*llm.FileHandle, error) {
	return nil, errors.New("not used")
}

func (c *scriptedClient) GetFile(ctx context.Context, name string) (*llm.FileHandle, error) {
	script, ok := c.states[name]
	if !ok {
		return nil, errors.New("unknown file " + name)
	}
	i := c.calls[name]
	c.calls[name]++
	if i >= len(script) {
		i = len(script) - 1
	}
	return &llm.FileHandle{Name: name, State: script[i]}, nil
}

func (c *scriptedClient) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	return "", errors.New("not used")
}

func newTestPoller(client llm.Client) *Poller {
	return &Poller{
		client:      client,
		log:         logger.NewNoOpLogger(),
		interval:    time.Millisecond,
		maxAttempts: defaultMaxPollAttempts,
	}
}

func docFor(name string) *UploadedDocument {
	return &UploadedDocument{
		LogicalPath: "/content/sop/" + name + ".pdf",
		Remote:      &llm.FileHandle{Name: name, DisplayName: name + ".pdf", State: llm.StateProcessing},
	}
}

func TestAwaitActiveEventuallyReady(t *testing.T) {
	client := newScriptedClient()
	client.states["files/a"] = []llm.FileState{llm.StateProcessing, llm.StateProcessing, llm.StateActive}
	client.states["files/b"] = []llm.FileState{llm.StateActive}
	poller := newTestPoller(client)

	docs := []*UploadedDocument{docFor("files/a"), docFor("files/b")}
	if err := poller.AwaitActive(context.Background(), docs); err != nil {
		t.Fatalf("AwaitActive failed: %v", err)
	}

	for _, doc := range docs {
		if doc.Remote.State != llm.StateActive {
			t.Errorf("%s state = %q, want active", doc.Remote.Name, doc.Remote.State)
		}
	}
	// The refreshed handle keeps the upload-time display name.
	if docs[0].Remote.DisplayName != "files/a.pdf" {
		t.Errorf("DisplayName = %q", docs[0].Remote.DisplayName)
	}
	if client.calls["files/a"] != 3 {
		t.Errorf("polled files/a %d times, want 3", client.calls["files/a"])
	}
}

func TestAwaitActiveFailedFile(t *testing.T) {
	client := newScriptedClient()
	client.states["files/a"] = []llm.FileState{llm.StateProcessing, llm.StateFailed}
	poller := newTestPoller(client)

	err := poller.AwaitActive(context.Background(), []*UploadedDocument{docFor("files/a")})
	var pe *ProcessingError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ProcessingError", err)
	}
	if pe.Name != "files/a" || pe.State != llm.StateFailed {
		t.Errorf("ProcessingError = %+v", pe)
	}
}

func TestAwaitActiveExhaustsBudget(t *testing.T) {
	client := newScriptedClient()
	client.states["files/a"] = []llm.FileState{llm.StateProcessing}
	poller := newTestPoller(client)
	poller.maxAttempts = 3

	err := poller.AwaitActive(context.Background(), []*UploadedDocument{docFor("files/a")})
	var pe *ProcessingError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ProcessingError", err)
	}
	if pe.State != llm.StateProcessing {
		t.Errorf("State = %q, want processing", pe.State)
	}
	// Initial check plus maxAttempts refetches.
	if client.calls["files/a"] != 4 {
		t.Errorf("polled %d times, want 4", client.calls["files/a"])
	}
}

func TestAwaitActiveContextCancelled(t *testing.T) {
	client := newScriptedClient()
	client.states["files/a"] = []llm.FileState{llm.StateProcessing}
	poller := newTestPoller(client)
	poller.interval = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := poller.AwaitActive(ctx, []*UploadedDocument{docFor("files/a")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
