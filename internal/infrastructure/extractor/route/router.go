// Package route picks the text extraction strategy for a stored file.
package route

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/g-g-pletnev/docan/internal/core/domain"
	"github.com/g-g-pletnev/docan/internal/core/ports"
)

// ocrExtensions are the scanned and image formats that go through OCR.
// Everything else is handed to direct extraction.
var ocrExtensions = map[string]struct{}{
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
}

// Router dispatches between the OCR pipeline and direct extraction by
// file extension and announces the chosen path to progress observers.
// Failures of the chosen path propagate unchanged; there is no fallback
// from OCR to direct extraction.
type Router struct {
	ocr      ports.TextExtractor
	direct   ports.TextExtractor
	progress ports.ProgressPublisher
}

func NewRouter(ocr, direct ports.TextExtractor, progress ports.ProgressPublisher) *Router {
	return &Router{ocr: ocr, direct: direct, progress: progress}
}

func (r *Router) Extract(ctx context.Context, path string) (string, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	if _, ok := ocrExtensions[ext]; ok {
		r.progress.Publish(domain.StepOCR, fmt.Sprintf("running ocr on %s", name))
		return r.ocr.Extract(ctx, path)
	}

	r.progress.Publish(domain.StepExtract, fmt.Sprintf("extracting text from %s", name))
	return r.direct.Extract(ctx, path)
}
