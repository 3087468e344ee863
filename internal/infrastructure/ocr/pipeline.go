// Package ocr recovers text from scanned documents by rasterizing PDF
// pages and recognizing each page image. A failure anywhere in the run
// is reported as a progress error event and the document continues with
// empty text instead of failing the request.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/g-g-pletnev/docan/internal/core/domain"
	"github.com/g-g-pletnev/docan/internal/core/ports"
)

// Extractor is the OCR-backed ports.TextExtractor used for PDFs and
// page images.
type Extractor struct {
	rasterizer ports.PageRasterizer
	recognizer ports.TextRecognizer
	store      ports.UploadStore
	progress   ports.ProgressPublisher
	logger     *slog.Logger
}

func NewExtractor(
	rasterizer ports.PageRasterizer,
	recognizer ports.TextRecognizer,
	store ports.UploadStore,
	progress ports.ProgressPublisher,
	logger *slog.Logger,
) *Extractor {
	return &Extractor{
		rasterizer: rasterizer,
		recognizer: recognizer,
		store:      store,
		progress:   progress,
		logger:     logger,
	}
}

// Extract OCRs the stored file. PDFs are rasterized page by page into a
// fresh scratch directory; a single image is staged there as the sole
// page. Scratch contents are reclaimed by the retention sweep, not here.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	dir, err := e.store.ScratchDir(ctx)
	if err != nil {
		return e.degrade("allocate scratch dir", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		e.reportPageCount(path)
		if err := e.rasterizer.Rasterize(ctx, path, dir); err != nil {
			return e.degrade("rasterize pages", err)
		}
	} else if err := stageImage(path, dir); err != nil {
		return e.degrade("stage image", err)
	}

	pages, err := listPageImages(dir)
	if err != nil {
		return e.degrade("list page images", err)
	}

	var text strings.Builder
	for i, page := range pages {
		e.progress.Publish(domain.StepOCR, fmt.Sprintf("recognizing page %d/%d", i+1, len(pages)))
		recognized, err := e.recognizer.Recognize(ctx, page)
		if err != nil {
			return e.degrade(fmt.Sprintf("recognize page %d", i+1), err)
		}
		text.WriteString(recognized)
		text.WriteString("\n")
	}

	return strings.TrimSpace(text.String()), nil
}

// degrade logs the failure, pushes an error event to observers and lets
// the document continue with no recovered text.
func (e *Extractor) degrade(operation string, err error) (string, error) {
	e.logger.Error("ocr failed, continuing without text", "operation", operation, "error", err)
	e.progress.Publish(domain.StepError, fmt.Sprintf("ocr failed: %v", err))
	return "", nil
}

// reportPageCount announces the page total before rasterization starts.
// The count is informational, so an unreadable PDF only gets a debug line.
func (e *Extractor) reportPageCount(path string) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		e.logger.Debug("page count unavailable", "path", path, "error", err)
		return
	}
	defer file.Close()
	e.progress.Publish(domain.StepOCR, fmt.Sprintf("rasterizing %d pages", reader.NumPage()))
}

// stageImage copies a single image into the scratch directory so the
// recognizer and its sidecar files work on scratch space only.
func stageImage(path, dir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	target := filepath.Join(dir, "page-1"+strings.ToLower(filepath.Ext(path)))
	return os.WriteFile(target, data, 0o644)
}

// listPageImages orders rasterized pages by file name, which follows the
// page number for every prefix the rasterizer produces.
func listPageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	pages := make([]string, len(names))
	for i, name := range names {
		pages[i] = filepath.Join(dir, name)
	}
	return pages, nil
}
