// Package orchestrator renders the specialist's structured result into the
// final user-facing reply. Rendering is a pure function of the result: the
// answer text is emitted verbatim and the recommendation, when present, is
// appended under a fixed label. No model call happens here.
package orchestrator

import (
	"strings"

	contractx "github.com/igestadev/assessor/agent/contract"
)

// RecomendacaoLabel prefixes the optional recommendation section.
const RecomendacaoLabel = "- *Recomendação*:"

// Present formats a specialist result for the end user. The first line is
// always the resposta, byte for byte. A recommendation section appears
// exactly once, and only when the specialist produced one.
func Present(result contractx.SpecialistResult) string {
	// Trimming decides presence only; the emitted text stays untouched.
	if strings.TrimSpace(result.Recomendacao) == "" {
		return result.Resposta
	}

	var b strings.Builder
	b.WriteString(result.Resposta)
	b.WriteString("\n\n")
	b.WriteString(RecomendacaoLabel)
	b.WriteString(" ")
	b.WriteString(result.Recomendacao)
	return b.String()
}
