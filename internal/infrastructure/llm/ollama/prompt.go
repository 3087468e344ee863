package ollama

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// buildClassificationPrompt lists the known types and asks for a strict
// two-field JSON object. text arrives already truncated by the caller.
func buildClassificationPrompt(taxonomy []domain.TypeEntry, text string) string {
	lines := lo.Map(taxonomy, func(entry domain.TypeEntry, _ int) string {
		return fmt.Sprintf("- %s: %s", entry.Name, entry.Description)
	})

	return fmt.Sprintf(`You are a document classifier.
Known document types:
%s

Pick the single word naming the matching type from the list above, or propose a new single-word type if none matches.
Write a one-paragraph summary of the document.
Return a strict JSON object with keys "type" and "summary". No markdown, no extra keys.

Document:
%s`, strings.Join(lines, "\n"), text)
}
