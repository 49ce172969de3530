// Package formatter enforces the grounding contract on generated answers.
// The generation prompt asks for the refusal sentence and the attribution
// footer, but the model is not trusted to comply exactly.
package formatter

import (
	"strings"

	"compliance-rag/internal/models"
)

const refusalPrefix = "Unable to answer:"

// Format validates a grounded (DOMAIN-path) answer. A refusal is normalized
// to the canonical refusal sentence verbatim; any other answer gets the
// attribution footer appended when the model left it off.
func Format(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return models.RefusalSentence
	}
	if strings.HasPrefix(trimmed, refusalPrefix) {
		return models.RefusalSentence
	}
	if !strings.Contains(trimmed, models.AttributionFooter) {
		return trimmed + "\n\n" + models.AttributionFooter
	}
	return trimmed
}
