// Package factory instantiates the configured LLM provider.
package factory

import (
	"fmt"

	"github.com/ftorres/b3score/internal/config"
	"github.com/ftorres/b3score/internal/llm"
	"github.com/ftorres/b3score/internal/llm/claude"
	"github.com/ftorres/b3score/internal/llm/ollama"
	"github.com/ftorres/b3score/internal/llm/openai"
)

// New builds the provider named in the configuration.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
