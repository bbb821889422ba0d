package files

import (
	"context"
	"fmt"
	"time"

	"github.com/veridoc/compliance-mcp/internal/llm"
	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/internal/storage"
)

const (
	defaultPollInterval = 5 * time.Second
	// Per-file budget before a stuck "processing" file fails the batch;
	// at the default interval this is about five minutes.
	defaultMaxPollAttempts = 60
)

// ProcessingError reports a remote file that settled in a non-ready state,
// or never settled within the poll budget. One bad file fails the whole
// batch; there is no partial success.
type ProcessingError struct {
	Name  string
	State llm.FileState
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("file %s failed to process (state %s)", e.Name, e.State)
}

// Poller blocks until uploaded files leave the transient processing state.
type Poller struct {
	client      llm.Client
	store       storage.Store // optional; mirrors settled states
	log         logger.Logger
	interval    time.Duration
	maxAttempts int
}

func NewPoller(client llm.Client, store storage.Store, log logger.Logger) *Poller {
	return &Poller{
		client:      client,
		store:       store,
		log:         log,
		interval:    defaultPollInterval,
		maxAttempts: defaultMaxPollAttempts,
	}
}

// AwaitActive blocks until every document's remote file reaches the active
// state. Files are checked one after another; any file that settles in a
// non-active state, or is still processing after the attempt budget, fails
// the whole batch immediately.
func (p *Poller) AwaitActive(ctx context.Context, docs []*UploadedDocument) error {
	p.log.Info("Waiting for %d file(s) to finish processing", len(docs))
	for _, doc := range docs {
		handle, err := p.client.GetFile(ctx, doc.Remote.Name)
		if err != nil {
			return fmt.Errorf("polling file %s: %w", doc.Remote.Name, err)
		}

		attempts := 0
		for handle.State == llm.StateProcessing {
			attempts++
			if attempts > p.maxAttempts {
				p.recordState(ctx, handle.Name, llm.StateFailed)
				return &ProcessingError{Name: handle.Name, State: llm.StateProcessing}
			}
			select {
			case <-time.After(p.interval):
			case <-ctx.Done():
				return ctx.Err()
			}
			handle, err = p.client.GetFile(ctx, handle.Name)
			if err != nil {
				return fmt.Errorf("polling file %s: %w", doc.Remote.Name, err)
			}
		}

		p.recordState(ctx, handle.Name, handle.State)
		if handle.State != llm.StateActive {
			return &ProcessingError{Name: handle.Name, State: handle.State}
		}
		handle.DisplayName = doc.Remote.DisplayName
		doc.Remote = handle
	}
	p.log.Info("All files ready")
	return nil
}

func (p *Poller) recordState(ctx context.Context, remoteName string, state llm.FileState) {
	if p.store == nil {
		return
	}
	if err := p.store.UpdateRemoteFileStatus(ctx, remoteName, string(state)); err != nil {
		p.log.Warn("Failed to update remote file status for %s: %v", remoteName, err)
	}
}
