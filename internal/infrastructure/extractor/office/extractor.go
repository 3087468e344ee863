package office

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// Extractor reads text straight out of office and plain-text formats.
// Unlike the OCR path, failures here propagate to the caller.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return extractWordXML(path)
	case ".odt":
		return extractOpenDocument(path)
	case ".xlsx", ".xlsm":
		return extractWorkbook(path)
	default:
		return extractPlaintext(path)
	}
}

func extractPlaintext(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExternalService, "read document", err)
	}
	if !utf8.Valid(raw) {
		return "", domain.WrapError(
			domain.ErrExternalService,
			"read document",
			fmt.Errorf("%s is not valid UTF-8 text", filepath.Base(path)),
		)
	}
	return strings.TrimSpace(string(raw)), nil
}
