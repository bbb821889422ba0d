package compare

import (
	"context"
	"fmt"

	"github.com/veridoc/compliance-mcp/internal/files"
	"github.com/veridoc/compliance-mcp/internal/llm"
	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/internal/storage"
	"github.com/veridoc/compliance-mcp/models"
)

type documentUploader interface {
	Upload(ctx context.Context, logicalPath string) (*files.UploadedDocument, error)
}

type readinessPoller interface {
	AwaitActive(ctx context.Context, docs []*files.UploadedDocument) error
}

// Service orchestrates a full comparison run: document upload, readiness
// polling, the rate-limited generation call, and normalization of the
// response.
type Service struct {
	uploader documentUploader
	poller   readinessPoller
	client   llm.Client
	limiter  *llm.Limiter
	store    storage.Store // optional; usage stamps only
	cache    *Cache
	log      logger.Logger
}

func NewService(uploader *files.Uploader, poller *files.Poller, client llm.Client, limiter *llm.Limiter, store storage.Store, cache *Cache, log logger.Logger) *Service {
	return &Service{
		uploader: uploader,
		poller:   poller,
		client:   client,
		limiter:  limiter,
		store:    store,
		cache:    cache,
		log:      log,
	}
}

// Compare runs one comparison of SOP documents against guideline
// documents. It returns either normalized items or a structured failure,
// never both; the outcome is cached either way so the latest run is
// always retrievable.
func (s *Service) Compare(ctx context.Context, sopPaths, guidelinePaths []string) ([]models.ComparisonItem, *models.ComparisonFailure) {
	items, err := s.run(ctx, sopPaths, guidelinePaths)
	if err != nil {
		s.log.Error("Comparison failed: %v", err)
		failure := failureFor(err)
		s.cache.SetFailure(failure)
		return nil, failure
	}
	s.cache.Set(items)
	return items, nil
}

func (s *Service) run(ctx context.Context, sopPaths, guidelinePaths []string) ([]models.ComparisonItem, error) {
	if len(sopPaths) == 0 || len(guidelinePaths) == 0 {
		return nil, fmt.Errorf("comparison requires at least one SOP and one guideline document")
	}
	s.log.Info("Comparing %d SOP(s) with %d guideline(s)", len(sopPaths), len(guidelinePaths))

	// Upload order is SOPs first, then guidelines; the prompt describes
	// the documents in that order.
	docs := make([]*files.UploadedDocument, 0, len(sopPaths)+len(guidelinePaths))
	for _, p := range sopPaths {
		doc, err := s.uploader.Upload(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("uploading SOP %s: %w", p, err)
		}
		docs = append(docs, doc)
	}
	for _, p := range guidelinePaths {
		doc, err := s.uploader.Upload(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("uploading guideline %s: %w", p, err)
		}
		docs = append(docs, doc)
	}

	if err := s.poller.AwaitActive(ctx, docs); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	parts := make([]llm.Part, 0, len(docs)+1)
	for _, doc := range docs {
		parts = append(parts, llm.FilePart(doc.Remote))
	}
	parts = append(parts, llm.TextPart(comparisonPrompt))

	s.log.Info("Sending comparison request")
	raw, err := s.client.Generate(ctx, llm.GenerateRequest{
		SystemInstruction: systemInstruction,
		Parts:             parts,
		Temperature:       0.1,
		TopP:              0.8,
		MaxOutputTokens:   8192,
		SchemaName:        schemaName,
		ResponseSchema:    responseSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("generating comparison: %w", err)
	}

	items, err := Normalize(raw, sopPaths, guidelinePaths)
	if err != nil {
		return nil, err
	}
	s.log.Info("Comparison produced %d item(s)", len(items))

	s.touchUsage(ctx, sopPaths)
	s.touchUsage(ctx, guidelinePaths)
	return items, nil
}

func (s *Service) touchUsage(ctx context.Context, paths []string) {
	if s.store == nil {
		return
	}
	for _, p := range paths {
		if err := s.store.TouchFileUsage(ctx, p); err != nil {
			s.log.Warn("Failed to stamp usage for %s: %v", p, err)
		}
	}
}
