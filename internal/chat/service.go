package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veridoc/compliance-mcp/internal/files"
	"github.com/veridoc/compliance-mcp/internal/llm"
	"github.com/veridoc/compliance-mcp/internal/logger"
	"github.com/veridoc/compliance-mcp/models"
)

const systemPrompt = `You are an AI assistant specialized in regulatory compliance and document analysis.
Your primary role is to help users understand the relationship between Standard Operating Procedures (SOPs)
and regulatory guidelines/requirements.

CAPABILITIES:
- Analyze regulatory documents and SOPs to identify compliance gaps
- Explain regulatory requirements in clear, simple language
- Compare different documents to identify contradictions or alignments
- Answer questions about specific sections of documents that users reference
- Provide factual information based only on the documents mentioned

LIMITATIONS:
- Only reference information from the documents explicitly mentioned by the user with @(document_name)
- If the answer cannot be found in the mentioned documents, acknowledge this limitation
- Do not provide legal advice or claim regulatory authority
- Do not hallucinate content that is not present in the referenced documents

RESPONSE GUIDELINES:
- Be concise and focused on answering the specific question
- When analyzing a document, clearly indicate which document and section you are referencing
- When comparing documents, organize your response with clear headings
- Use bullet points for clarity when listing multiple items
- If the user doesn't reference any document, ask which specific document they'd like you to analyze

Always be professional, precise, and helpful while maintaining the factual boundaries of the referenced documents.`

// memoryLimit caps conversation memory at the last five exchanges.
const memoryLimit = 10

type documentUploader interface {
	Upload(ctx context.Context, logicalPath string) (*files.UploadedDocument, error)
}

type readinessPoller interface {
	AwaitActive(ctx context.Context, docs []*files.UploadedDocument) error
}

// Service answers compliance questions, optionally grounded in documents
// the user mentions. Errors never escape as errors: the user always gets
// a reply, apologetic when something went wrong.
type Service struct {
	uploader documentUploader
	poller   readinessPoller
	client   llm.Client
	limiter  *llm.Limiter
	log      logger.Logger

	mu     sync.Mutex
	memory []models.ChatMessage
}

func NewService(uploader *files.Uploader, poller *files.Poller, client llm.Client, limiter *llm.Limiter, log logger.Logger) *Service {
	return &Service{
		uploader: uploader,
		poller:   poller,
		client:   client,
		limiter:  limiter,
		log:      log,
	}
}

// Process answers one user message. Mentioned documents are uploaded and
// attached to the request; without mentions the model sees only the
// conversation history.
func (s *Service) Process(ctx context.Context, req models.ConversationRequest) models.ConversationResponse {
	var content string
	var err error
	if len(req.Mentions) == 0 {
		content, err = s.converse(ctx, req.Message)
		if err != nil {
			s.log.Error("Conversation failed: %v", err)
			content = fmt.Sprintf("I'm sorry, I encountered an error processing your request: %v. Please try again.", err)
		}
	} else {
		content, err = s.converseWithDocuments(ctx, req.Message, req.Mentions)
		if err != nil {
			s.log.Error("Document conversation failed: %v", err)
			content = fmt.Sprintf("I encountered an error analyzing the documents: %v. Please try again later.", err)
		}
	}

	if err == nil {
		s.remember(req.Message, content)
	}

	return models.ConversationResponse{
		ID:        uuid.NewString(),
		Content:   content,
		Timestamp: time.Now(),
	}
}

func (s *Service) converse(ctx context.Context, message string) (string, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	parts := append(s.historyParts(), llm.TextPart(message))
	return s.client.Generate(ctx, llm.GenerateRequest{
		SystemInstruction: systemPrompt,
		Parts:             parts,
	})
}

func (s *Service) converseWithDocuments(ctx context.Context, message string, mentions []models.StoredFile) (string, error) {
	s.log.Info("Processing %d document(s) for query", len(mentions))
	start := time.Now()

	docs, err := s.uploadMentions(ctx, mentions)
	if err != nil {
		return "", err
	}
	if err := s.poller.AwaitActive(ctx, docs); err != nil {
		return "", err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	parts := make([]llm.Part, 0, len(docs)+1)
	for _, doc := range docs {
		parts = append(parts, llm.FilePart(doc.Remote))
	}
	parts = append(parts, llm.TextPart(message))

	response, err := s.client.Generate(ctx, llm.GenerateRequest{
		SystemInstruction: systemPrompt,
		Parts:             parts,
	})
	if err != nil {
		return "", err
	}

	s.log.Info("Document analysis completed in %s", time.Since(start).Round(time.Millisecond))
	return response, nil
}

// uploadMentions uploads all mentioned documents concurrently. Any single
// failure fails the whole request.
func (s *Service) uploadMentions(ctx context.Context, mentions []models.StoredFile) ([]*files.UploadedDocument, error) {
	docs := make([]*files.UploadedDocument, len(mentions))
	errs := make([]error, len(mentions))

	var wg sync.WaitGroup
	for i, mention := range mentions {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			docs[i], errs[i] = s.uploader.Upload(ctx, path)
		}(i, mention.Path)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// historyParts renders the conversation memory as labeled transcript
// turns preceding the new message.
func (s *Service) historyParts() []llm.Part {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := make([]llm.Part, 0, len(s.memory))
	for _, msg := range s.memory {
		label := "User"
		if msg.Role == "assistant" {
			label = "Assistant"
		}
		parts = append(parts, llm.TextPart(fmt.Sprintf("%s: %s", label, msg.Content)))
	}
	return parts
}

func (s *Service) remember(message, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory = append(s.memory,
		models.ChatMessage{Role: "user", Content: message},
		models.ChatMessage{Role: "assistant", Content: response},
	)
	if len(s.memory) > memoryLimit {
		s.memory = s.memory[len(s.memory)-memoryLimit:]
	}
}

// History returns a copy of the conversation memory, oldest first.
func (s *Service) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.memory))
	copy(out, s.memory)
	return out
}

// Reset clears the conversation memory.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = nil
}
