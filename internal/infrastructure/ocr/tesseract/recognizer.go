// Package tesseract shells out to the tesseract CLI to recognize text
// on a single page image.
package tesseract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

const (
	defaultBinary    = "tesseract"
	defaultLanguages = "rus+eng"
)

type Recognizer struct {
	binary    string
	languages string
}

// NewRecognizer configures the CLI wrapper. languages is passed to
// tesseract -l verbatim, e.g. "rus+eng".
func NewRecognizer(binary, languages string) *Recognizer {
	if binary == "" {
		binary = defaultBinary
	}
	if languages == "" {
		languages = defaultLanguages
	}
	return &Recognizer{binary: binary, languages: languages}
}

// Recognize runs tesseract over imagePath and reads back the .txt
// sidecar it writes next to the image.
func (r *Recognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	outBase := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	cmd := exec.CommandContext(ctx, r.binary, "-l", r.languages, imagePath, outBase)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", domain.WrapError(domain.ErrExternalTool, fmt.Sprintf("tesseract: %s", toolOutput(output)), err)
	}

	text, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return "", domain.WrapError(domain.ErrExternalTool, "read tesseract output", err)
	}
	return string(text), nil
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
