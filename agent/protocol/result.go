package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/igestadev/assessor/agent/contract"
)

// ResultLabel prefixes the serialized specialist result when it is embedded
// into the next stage's input.
const ResultLabel = "ESPECIALISTA_JSON:"

// FormatResultEnvelope serializes a specialist result with its label.
func FormatResultEnvelope(res contractx.SpecialistResult) (string, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("marshal specialist result: %w", err)
	}
	return ResultLabel + "\n" + string(raw), nil
}

// ParseResult decodes specialist output into a typed result. It strips the
// optional label and markdown code fences before decoding, then enforces
// the required fields: dominio, a known intencao, a non-empty resposta and
// a present (possibly empty) recomendacao.
func ParseResult(text string) (contractx.SpecialistResult, error) {
	payload := extractJSONPayload(text)
	if payload == "" {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: specialist output carries no JSON object", contractx.ErrSchemaViolation)
	}

	// Decode twice: once loosely to check recomendacao presence, once into
	// the typed record.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &probe); err != nil {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: decode specialist result: %v", contractx.ErrSchemaViolation, err)
	}

	var res contractx.SpecialistResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: decode specialist result: %v", contractx.ErrSchemaViolation, err)
	}

	if strings.TrimSpace(res.Dominio) == "" {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: dominio is required", contractx.ErrSchemaViolation)
	}
	if !res.Intencao.Known() {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: unknown intencao %q", contractx.ErrSchemaViolation, res.Intencao)
	}
	if strings.TrimSpace(res.Resposta) == "" {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: resposta is required", contractx.ErrSchemaViolation)
	}
	if _, ok := probe["recomendacao"]; !ok {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: recomendacao must be present, use \"\" when empty", contractx.ErrSchemaViolation)
	}
	return res, nil
}

// extractJSONPayload locates the outermost JSON object in model output that
// may be wrapped in a label, prose or a ```json fence.
func extractJSONPayload(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, ResultLabel)
	cleaned = strings.TrimSpace(cleaned)

	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start < 0 || end <= start {
		return ""
	}
	return cleaned[start : end+1]
}
