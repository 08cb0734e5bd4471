// Package oracle adapts local LLM inference servers to port.Oracle.
package oracle

import (
	"fmt"
	"os"

	"monu/config"
	"monu/internal/port"
)

// New builds the oracle selected by cfg.Provider.
func New(cfg config.OracleConfig) (port.Oracle, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaOracle(cfg.BaseURL, cfg.Model, cfg.Timeout(), cfg.Temperature, cfg.JSONMode), nil
	case "openai":
		var apiKey string
		if cfg.APIKeyEnv != "" {
			apiKey = os.Getenv(cfg.APIKeyEnv)
		}
		return NewChatOracle(cfg.BaseURL, apiKey, cfg.Model, cfg.Timeout(), cfg.Temperature, cfg.JSONMode), nil
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", cfg.Provider)
	}
}
