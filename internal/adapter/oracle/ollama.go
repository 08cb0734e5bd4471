package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"monu/internal/domain"
)

// OllamaOracle talks to Ollama's native /api/generate endpoint.
type OllamaOracle struct {
	baseURL     string
	model       string
	temperature float64
	jsonMode    bool
	poster      *jsonPoster
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func NewOllamaOracle(baseURL, model string, timeout time.Duration, temperature float64, jsonMode bool) *OllamaOracle {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaOracle{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		jsonMode:    jsonMode,
		poster: &jsonPoster{
			client:   newHTTPClient(timeout),
			provider: "ollama",
			timeout:  timeout,
		},
	}
}

func (o *OllamaOracle) Correct(ctx context.Context, text string) (domain.Correction, error) {
	prompt, err := FullPrompt(text)
	if err != nil {
		return domain.Correction{}, err
	}

	req := generateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"temperature": o.temperature},
	}
	if o.jsonMode {
		req.Format = "json"
	}

	body, err := o.poster.post(ctx, o.baseURL+"/api/generate", nil, req)
	if err != nil {
		return domain.Correction{}, err
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return domain.Correction{}, fmt.Errorf("%w: failed to parse ollama response (body: %s): %v", domain.ErrOracleMalformedOutput, preview(string(body)), err)
	}
	if genResp.Error != "" {
		return domain.Correction{}, fmt.Errorf("%w: ollama error: %s", domain.ErrOracleUnavailable, genResp.Error)
	}

	return ParseCorrection(strings.TrimSpace(genResp.Response))
}

func (o *OllamaOracle) Provider() string {
	return "ollama"
}

func (o *OllamaOracle) ModelName() string {
	return o.model
}
