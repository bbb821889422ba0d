package pdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ValidateBytes checks that data is a readable PDF and returns its page
// count. Corrupt or non-PDF payloads are rejected before they reach the
// paid file-storage API.
func ValidateBytes(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	pdfContext, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("not a readable PDF: %w", err)
	}
	return pdfContext.PageCount, nil
}

// PageCount validates the file at path as a PDF and returns its page count.
func PageCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return ValidateBytes(data)
}
