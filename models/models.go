package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Status values carried by a ComparisonItem. The schema-constrained
// comparison path only ever produces StatusDiscrepancy; the other two can
// appear when results are salvaged from a malformed model response.
const (
	StatusDiscrepancy = "discrepancy"
	StatusCompliant   = "compliant"
	StatusUnknown     = "unknown"
)

// PageNumber is a page reference reported by the model. It marshals as a
// JSON number when the page is known and as the sentinel "N/A" otherwise.
type PageNumber string

const PageUnknown PageNumber = "N/A"

// PageNumberOf converts a model-reported page number. Non-positive values
// mean the model could not locate the content.
func PageNumberOf(n int) PageNumber {
	if n > 0 {
		return PageNumber(strconv.Itoa(n))
	}
	return PageUnknown
}

func (p PageNumber) Known() bool {
	n, err := strconv.Atoi(string(p))
	return err == nil && n > 0
}

func (p PageNumber) MarshalJSON() ([]byte, error) {
	if p.Known() {
		return []byte(p), nil
	}
	if p == "" {
		p = PageUnknown
	}
	return json.Marshal(string(p))
}

func (p *PageNumber) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PageNumber(s)
		return nil
	}
	*p = PageNumber(data)
	return nil
}

// SourceFiles is the best-effort attribution of a comparison item when
// multiple documents of a category were compared at once.
type SourceFiles struct {
	SOP       string `json:"sop"`
	Guideline string `json:"guideline"`
}

// ComparisonItem is one normalized discrepancy record. Items are produced
// once per comparison run and never mutated afterwards, only superseded.
type ComparisonItem struct {
	ID               int          `json:"id"`
	Section          string       `json:"section"`
	Status           string       `json:"status"`
	Regulation       string       `json:"regulation"`
	Documentation    string       `json:"documentation"`
	PdfURL           string       `json:"pdfUrl"`
	GuidelinesPdfURL string       `json:"guidelinesPdfUrl"`
	SopPdfURL        string       `json:"sopPdfUrl"`
	PageNumber       PageNumber   `json:"pageNumber"`
	SopPageNumber    PageNumber   `json:"sopPageNumber"`
	Severity         string       `json:"severity"`
	Comment          string       `json:"comment"`
	DiscrepancyType  string       `json:"discrepancy_type,omitempty"`
	ContentLocation  string       `json:"content_location,omitempty"`
	SourceFiles      *SourceFiles `json:"sourceFiles,omitempty"`
}

// ComparisonFailure is the structured error object returned (and cached)
// when a comparison cannot produce results. Callers receive either a
// ComparisonItem slice or one of these, never a raw error.
type ComparisonFailure struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// ComparisonRecord is a persisted comparison run.
type ComparisonRecord struct {
	ID             string           `json:"id"`
	UserID         string           `json:"userId"`
	SopPaths       []string         `json:"sopPaths"`
	GuidelinePaths []string         `json:"guidelinePaths"`
	Results        []ComparisonItem `json:"results"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// FileMetadata describes a document stored under the content root.
type FileMetadata struct {
	OriginalName string     `json:"originalName"`
	Path         string     `json:"path"` // logical path, e.g. /content/sop/x.pdf
	DocType      string     `json:"type"` // "sop" or "guidelines"
	Size         int64      `json:"size"`
	UploadDate   time.Time  `json:"uploadDate"`
	ContentHash  string     `json:"contentHash,omitempty"`
	LastUsed     *time.Time `json:"lastUsedDate,omitempty"`
}

// RemoteFileRecord tracks a document shipped to the external file-storage
// API, including the lifecycle status reported by the provider.
type RemoteFileRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	FilePath    string    `json:"filePath"`
	RemoteName  string    `json:"remoteName"`
	DisplayName string    `json:"displayName"`
	Status      string    `json:"status"` // processing, active, failed
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StoredFile identifies a document a chat message refers to.
type StoredFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	DocType string `json:"type,omitempty"`
}

// ChatMessage is one turn of assistant conversation memory.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ConversationRequest is a user message for the assistant, optionally
// mentioning stored documents to ground the answer in.
type ConversationRequest struct {
	Message  string       `json:"message"`
	Mentions []StoredFile `json:"mentions,omitempty"`
	UserID   string       `json:"userId,omitempty"`
}

// ConversationResponse is the assistant's reply.
type ConversationResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
