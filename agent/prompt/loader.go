package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/roteador.txt
	roteadorRaw string

	//go:embed template/especialista.txt
	especialistaRaw string

	//go:embed template/financeiro.txt
	financeiroRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Roteador     string
	Especialista string
	Financeiro   string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// The embed is compile-time, so this is safe to call concurrently.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Roteador:     strings.TrimSpace(roteadorRaw),
		Especialista: strings.TrimSpace(especialistaRaw),
		Financeiro:   strings.TrimSpace(financeiroRaw),
	}
}

// WithToday substitutes the {today_local} placeholder. The date is resolved
// once per process start in the São Paulo zone and reused for every turn.
func WithToday(prompt, todayLocal string) string {
	return strings.ReplaceAll(prompt, "{today_local}", todayLocal)
}
