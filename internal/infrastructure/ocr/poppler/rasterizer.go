// Package poppler shells out to pdftoppm to render PDF pages as images.
package poppler

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

const (
	defaultBinary = "pdftoppm"
	defaultDPI    = 300
)

// Rasterizer renders one PNG per PDF page. pdftoppm zero-pads page
// numbers, so the produced names sort in page order.
type Rasterizer struct {
	binary string
	dpi    int
}

func NewRasterizer(binary string, dpi int) *Rasterizer {
	if binary == "" {
		binary = defaultBinary
	}
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return &Rasterizer{binary: binary, dpi: dpi}
}

func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath, dir string) error {
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, r.binary, "-png", "-r", strconv.Itoa(r.dpi), pdfPath, prefix)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return domain.WrapError(domain.ErrExternalTool, fmt.Sprintf("pdftoppm: %s", toolOutput(output)), err)
	}
	return nil
}

func toolOutput(output []byte) string {
	const limit = 512
	text := strings.TrimSpace(string(output))
	if text == "" {
		return "no output"
	}
	if len(text) > limit {
		text = text[:limit] + "..."
	}
	return text
}
