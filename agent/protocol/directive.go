// Package protocol implements the text contracts between the pipeline
// stages: the four-line ROUTE= forwarding directive and the specialist's
// JSON result envelope. Both are validated into typed records at the
// application boundary instead of being re-parsed by the next model.
package protocol

import (
	"fmt"
	"strings"

	contractx "github.com/igestadev/assessor/agent/contract"
)

// RouteMarker is the literal the handler uses to tell a forwarding
// directive apart from a direct answer.
const RouteMarker = "ROUTE="

const (
	keyRoute    = "ROUTE"
	keyPergunta = "PERGUNTA_ORIGINAL"
	keyPersona  = "PERSONA"
	keyClarify  = "CLARIFY"
)

var directiveKeys = map[string]struct{}{
	keyRoute:    {},
	keyPergunta: {},
	keyPersona:  {},
	keyClarify:  {},
}

// HasRouteMarker reports whether the router output contains the forwarding
// marker. Any output without it is a final direct answer.
func HasRouteMarker(text string) bool {
	return strings.Contains(text, RouteMarker)
}

// FormatDirective renders a directive as the exact four-line protocol text,
// in fixed key order.
func FormatDirective(d contractx.Directive) string {
	var b strings.Builder
	b.WriteString(keyRoute)
	b.WriteByte('=')
	b.WriteString(string(d.Route))
	b.WriteByte('\n')
	b.WriteString(keyPergunta)
	b.WriteByte('=')
	b.WriteString(d.PerguntaOriginal)
	b.WriteByte('\n')
	b.WriteString(keyPersona)
	b.WriteByte('=')
	b.WriteString(d.Persona)
	b.WriteByte('\n')
	b.WriteString(keyClarify)
	b.WriteByte('=')
	b.WriteString(d.Clarify)
	return b.String()
}

// ParseDirective decodes the four-line protocol into a typed directive.
// Keys may arrive in any order; lines that do not start a known key are
// treated as continuations of the previous value, so multi-line personas
// and questions survive intact. The route must name a known domain.
func ParseDirective(text string) (contractx.Directive, error) {
	var d contractx.Directive
	seen := map[string]bool{}
	current := ""

	setValue := func(key, value string) {
		switch key {
		case keyRoute:
			d.Route = contractx.Route(strings.TrimSpace(value))
		case keyPergunta:
			d.PerguntaOriginal = value
		case keyPersona:
			d.Persona = value
		case keyClarify:
			d.Clarify = value
		}
	}

	appendValue := func(key, line string) {
		switch key {
		case keyPergunta:
			d.PerguntaOriginal += "\n" + line
		case keyPersona:
			d.Persona += "\n" + line
		case keyClarify:
			d.Clarify += "\n" + line
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		key, value, ok := splitDirectiveLine(line)
		if ok {
			current = key
			seen[key] = true
			setValue(key, value)
			continue
		}
		if current == "" {
			// Leading noise before the first key; models are told not to
			// produce it, but tolerate it rather than reject the directive.
			continue
		}
		appendValue(current, line)
	}

	if !seen[keyRoute] {
		return contractx.Directive{}, fmt.Errorf("%w: directive is missing %s", contractx.ErrSchemaViolation, keyRoute)
	}
	if !d.Route.Known() {
		return contractx.Directive{}, fmt.Errorf("%w: unknown route %q", contractx.ErrSchemaViolation, d.Route)
	}
	if !seen[keyPergunta] || d.PerguntaOriginal == "" {
		return contractx.Directive{}, fmt.Errorf("%w: directive is missing %s", contractx.ErrSchemaViolation, keyPergunta)
	}
	d.Clarify = strings.TrimSpace(d.Clarify)
	return d, nil
}

func splitDirectiveLine(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if _, known := directiveKeys[key]; !known {
		return "", "", false
	}
	return key, line[idx+1:], true
}
