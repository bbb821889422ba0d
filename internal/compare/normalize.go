package compare

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/veridoc/compliance-mcp/models"
)

// ErrUnparseableResponse means the model's response yielded no comparison
// items through either the strict JSON path or the salvage parser.
var ErrUnparseableResponse = errors.New("failed to extract comparison items from response")

// responseItem mirrors the schema-constrained shape produced by a
// well-behaved generation.
type responseItem struct {
	ID                   int    `json:"id"`
	DiscrepancyType      string `json:"discrepancy_type"`
	Section              string `json:"section"`
	ContentLocation      string `json:"content_location"`
	Guidelines           string `json:"Guidelines"`
	GuidelinesPageNumber int    `json:"Guidelines_pageNumber"`
	UserPdf              string `json:"User_pdf"`
	UserPdfPageNumber    int    `json:"User_pdf_pageNumber"`
	Severity             string `json:"severity"`
	Explanation          string `json:"explanation"`
	UserPdfDocument      string `json:"User_pdf_document"`
	GuidelinesDocument   string `json:"Guidelines_document"`
}

// Normalize converts a raw model response into comparison items. Strict
// JSON decoding is tried first; when the response is malformed, a salvage
// parser extracts what it can. A response neither path can use returns
// ErrUnparseableResponse.
func Normalize(raw string, sopPaths, guidelinePaths []string) ([]models.ComparisonItem, error) {
	if parsed, ok := decodeItems(raw); ok {
		items := make([]models.ComparisonItem, 0, len(parsed))
		for _, ri := range parsed {
			items = append(items, transformItem(ri, sopPaths, guidelinePaths))
		}
		return items, nil
	}

	extracted := extractItems(raw)
	if len(extracted) == 0 {
		return nil, ErrUnparseableResponse
	}
	items := make([]models.ComparisonItem, 0, len(extracted))
	for _, ei := range extracted {
		items = append(items, transformExtracted(ei, sopPaths, guidelinePaths))
	}
	return items, nil
}

// decodeItems parses a well-formed response. The structured-output
// schema wraps the list in a "discrepancies" envelope, but models that
// ignore the wrapper and emit a bare array are accepted too.
func decodeItems(raw string) ([]responseItem, bool) {
	var parsed []responseItem
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed, true
	}
	var envelope struct {
		Discrepancies []responseItem `json:"discrepancies"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err == nil && envelope.Discrepancies != nil {
		return envelope.Discrepancies, true
	}
	return nil, false
}

// transformItem maps a schema-shaped item to the normalized form. The
// schema only describes discrepancies, so the status is always
// StatusDiscrepancy on this path.
func transformItem(ri responseItem, sopPaths, guidelinePaths []string) models.ComparisonItem {
	sopName, sopPath := resolveSource(ri.UserPdfDocument, sopPaths)
	guidelineName, guidelinePath := resolveSource(ri.GuidelinesDocument, guidelinePaths)

	return models.ComparisonItem{
		ID:               ri.ID,
		Section:          ri.Section,
		Status:           models.StatusDiscrepancy,
		Regulation:       formatTextContent(ri.Guidelines),
		Documentation:    formatTextContent(ri.UserPdf),
		PdfURL:           guidelinePath,
		GuidelinesPdfURL: guidelinePath,
		SopPdfURL:        sopPath,
		PageNumber:       models.PageNumberOf(ri.GuidelinesPageNumber),
		SopPageNumber:    models.PageNumberOf(ri.UserPdfPageNumber),
		Severity:         ri.Severity,
		Comment:          formatTextContent(ri.Explanation),
		DiscrepancyType:  ri.DiscrepancyType,
		ContentLocation:  ri.ContentLocation,
		SourceFiles: &models.SourceFiles{
			SOP:       sopName,
			Guideline: guidelineName,
		},
	}
}

// transformExtracted maps a salvaged item. Salvaged text is carried as-is
// and the status comes from the response (or the "unknown" default).
func transformExtracted(ei extractedItem, sopPaths, guidelinePaths []string) models.ComparisonItem {
	sopName, sopPath := resolveSource(ei.UserPdfDocument, sopPaths)
	guidelineName, guidelinePath := resolveSource(ei.GuidelinesDocument, guidelinePaths)

	return models.ComparisonItem{
		ID:               ei.ID,
		Section:          ei.Section,
		Status:           ei.Status,
		Regulation:       ei.Guidelines,
		Documentation:    ei.UserPdf,
		PdfURL:           guidelinePath,
		GuidelinesPdfURL: guidelinePath,
		SopPdfURL:        sopPath,
		PageNumber:       pageFromText(ei.GuidelinesPageNumber),
		SopPageNumber:    pageFromText(ei.UserPdfPageNumber),
		Severity:         ei.Severity,
		Comment:          ei.Comment,
		SourceFiles: &models.SourceFiles{
			SOP:       sopName,
			Guideline: guidelineName,
		},
	}
}

func pageFromText(text string) models.PageNumber {
	p := models.PageNumber(strings.TrimSpace(text))
	if p.Known() {
		return p
	}
	return models.PageUnknown
}

// resolveSource maps a document name reported by the model to one of the
// request paths. An unreported name falls back to the first document of
// the category; an unmatched name does the same.
func resolveSource(docName string, paths []string) (name, path string) {
	if len(paths) == 0 {
		return "", ""
	}
	if docName == "" {
		docName = filepath.Base(paths[0])
	}
	for _, p := range paths {
		if strings.Contains(p, docName) {
			return docName, p
		}
	}
	return docName, paths[0]
}

var (
	listMarker = regexp.MustCompile(`(?m)^(\s*[-*]|\s*\d+[.)])\s+(.*)`)
	blankRuns  = regexp.MustCompile(`\n\s*\n`)
)

// formatTextContent cleans up extracted document text for display:
// escaped newlines become real ones, list markers get a single trailing
// space, and paragraph breaks collapse to exactly one blank line.
func formatTextContent(text string) string {
	if text == "" {
		return ""
	}
	formatted := strings.ReplaceAll(text, `\n`, "\n")
	formatted = listMarker.ReplaceAllString(formatted, "$1 $2")
	formatted = blankRuns.ReplaceAllString(formatted, "\n\n")
	return formatted
}

// failureFor wraps an error into the structured failure object handed to
// callers in place of results.
func failureFor(err error) *models.ComparisonFailure {
	message := "Unexpected error during document comparison"
	if errors.Is(err, ErrUnparseableResponse) {
		message = "Failed to process comparison results"
	}
	return &models.ComparisonFailure{
		Error:   true,
		Message: message,
		Details: fmt.Sprintf("%v", err),
	}
}
