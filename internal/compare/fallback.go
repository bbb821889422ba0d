package compare

import (
	"regexp"
	"strconv"
)

// extractedItem is a comparison item salvaged from a malformed response.
// Page numbers stay textual here; the response may have quoted them or
// written "N/A".
type extractedItem struct {
	ID                   int
	Section              string
	Status               string
	Guidelines           string
	GuidelinesDocument   string
	GuidelinesPageNumber string
	UserPdf              string
	UserPdfDocument      string
	UserPdfPageNumber    string
	Severity             string
	Comment              string
}

// itemRegex matches one fully-keyed item in a single pass. It only fires
// when every field appears in order within one object, so partially
// emitted items fall through to the per-block pass below.
var itemRegex = regexp.MustCompile(
	`"id":\s*(\d+)[^{]*?` +
		`"section":\s*"([^"]*)"[^{]*?` +
		`"status":\s*"([^"]*)"[^{]*?` +
		`"Guidelines":\s*"([^"]*)"[^{]*?` +
		`"Guidelines_(?:document|filename)"?:\s*"?([^",}]*)"?[^{]*?` +
		`"Guidelines_pageNumber":\s*"?([^",}]*)"?[^{]*?` +
		`"User_pdf":\s*"([^"]*)"[^{]*?` +
		`"User_pdf_(?:document|filename)"?:\s*"?([^",}]*)"?[^{]*?` +
		`"User_pdf_pageNumber":\s*"?([^",}]*)"?[^{]*?` +
		`"severity":\s*"([^"]*)"[^{]*?` +
		`"comment":\s*"([^"]*)"`)

var (
	idBoundary      = regexp.MustCompile(`"id":\s*\d+`)
	sectionField    = regexp.MustCompile(`"section":\s*"([^"]*)"`)
	statusField     = regexp.MustCompile(`"status":\s*"([^"]*)"`)
	guidelinesField = regexp.MustCompile(`"Guidelines":\s*"([^"]*)"`)
	guidelinesDoc   = regexp.MustCompile(`"Guidelines_(?:document|filename)":\s*"([^"]*)"`)
	guidelinesPage  = regexp.MustCompile(`"Guidelines_pageNumber":\s*"?([^",}]*)"`)
	userPdfField    = regexp.MustCompile(`"User_pdf":\s*"([^"]*)"`)
	userPdfDoc      = regexp.MustCompile(`"User_pdf_(?:document|filename)":\s*"([^"]*)"`)
	userPdfPage     = regexp.MustCompile(`"User_pdf_pageNumber":\s*"?([^",}]*)"`)
	severityField   = regexp.MustCompile(`"severity":\s*"([^"]*)"`)
	commentField    = regexp.MustCompile(`"comment":\s*"([^"]*)"`)
)

// extractItems salvages comparison items from text that failed strict
// JSON decoding. Pass one matches complete items with a single regex;
// pass two splits the text at id boundaries and pulls whatever fields
// each block still has. Missing fields get displayable defaults.
func extractItems(text string) []extractedItem {
	var items []extractedItem

	for _, m := range itemRegex.FindAllStringSubmatch(text, -1) {
		id, _ := strconv.Atoi(m[1])
		items = append(items, extractedItem{
			ID:                   id,
			Section:              m[2],
			Status:               m[3],
			Guidelines:           m[4],
			GuidelinesDocument:   m[5],
			GuidelinesPageNumber: m[6],
			UserPdf:              m[7],
			UserPdfDocument:      m[8],
			UserPdfPageNumber:    m[9],
			Severity:             m[10],
			Comment:              m[11],
		})
	}

	if len(items) == 0 {
		items = extractByBlock(text)
	}

	for i := range items {
		applyDefaults(&items[i])
	}
	return items
}

// extractByBlock splits the text at "id": N markers and scans each block
// for individual fields. Anything before the first marker is discarded,
// and text with no marker at all yields nothing, so pure garbage becomes
// a structured error rather than a junk item. Items are renumbered
// sequentially; reported ids are not trusted at this point.
func extractByBlock(text string) []extractedItem {
	locs := idBoundary.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var items []extractedItem
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := text[loc[1]:end]
		item := extractedItem{ID: i + 1}
		if m := sectionField.FindStringSubmatch(block); m != nil {
			item.Section = m[1]
		}
		if m := statusField.FindStringSubmatch(block); m != nil {
			item.Status = m[1]
		}
		if m := guidelinesField.FindStringSubmatch(block); m != nil {
			item.Guidelines = m[1]
		}
		if m := guidelinesDoc.FindStringSubmatch(block); m != nil {
			item.GuidelinesDocument = m[1]
		}
		if m := guidelinesPage.FindStringSubmatch(block); m != nil {
			item.GuidelinesPageNumber = m[1]
		}
		if m := userPdfField.FindStringSubmatch(block); m != nil {
			item.UserPdf = m[1]
		}
		if m := userPdfDoc.FindStringSubmatch(block); m != nil {
			item.UserPdfDocument = m[1]
		}
		if m := userPdfPage.FindStringSubmatch(block); m != nil {
			item.UserPdfPageNumber = m[1]
		}
		if m := severityField.FindStringSubmatch(block); m != nil {
			item.Severity = m[1]
		}
		if m := commentField.FindStringSubmatch(block); m != nil {
			item.Comment = m[1]
		}
		items = append(items, item)
	}
	return items
}

func applyDefaults(item *extractedItem) {
	if item.Section == "" {
		item.Section = "Unknown section"
	}
	if item.Status == "" {
		item.Status = "unknown"
	}
	if item.Guidelines == "" {
		item.Guidelines = "No guideline text available"
	}
	if item.GuidelinesPageNumber == "" {
		item.GuidelinesPageNumber = "N/A"
	}
	if item.UserPdf == "" {
		item.UserPdf = "No SOP text available"
	}
	if item.UserPdfPageNumber == "" {
		item.UserPdfPageNumber = "N/A"
	}
	if item.Severity == "" {
		item.Severity = "none"
	}
	if item.Comment == "" {
		item.Comment = "No comment provided"
	}
}
