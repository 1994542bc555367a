package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/igestadev/assessor/agent/contract"
	openrouterx "github.com/igestadev/assessor/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	RoteadorModel           string  `envconfig:"ROTEADOR_MODEL" split_words:"true"`
	EspecialistaModel       string  `envconfig:"ESPECIALISTA_MODEL" split_words:"true"`
	FinanceiroModel         string  `envconfig:"FINANCEIRO_MODEL" split_words:"true"`
	RoteadorTemperature     float32 `envconfig:"ROTEADOR_TEMPERATURE" split_words:"true" default:"-1"`
	EspecialistaTemperature float32 `envconfig:"ESPECIALISTA_TEMPERATURE" split_words:"true" default:"-1"`
	FinanceiroTemperature   float32 `envconfig:"FINANCEIRO_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypeRoteador:
		if v := strings.TrimSpace(c.RoteadorModel); v != "" {
			modelName = v
		}
		if c.RoteadorTemperature >= 0 {
			temp = c.RoteadorTemperature
		}
	case contractx.AgentTypeEspecialista:
		if v := strings.TrimSpace(c.EspecialistaModel); v != "" {
			modelName = v
		}
		if c.EspecialistaTemperature >= 0 {
			temp = c.EspecialistaTemperature
		}
	case contractx.AgentTypeFinanceiro:
		if v := strings.TrimSpace(c.FinanceiroModel); v != "" {
			modelName = v
		}
		if c.FinanceiroTemperature >= 0 {
			temp = c.FinanceiroTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
