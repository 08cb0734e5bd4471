package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"monu/internal/domain"
)

// ChatOracle talks to any OpenAI-compatible /chat/completions endpoint
// (llama.cpp server, LM Studio, vLLM, Ollama's /v1).
type ChatOracle struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	jsonMode    bool
	poster      *jsonPoster
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewChatOracle(baseURL, apiKey, model string, timeout time.Duration, temperature float64, jsonMode bool) *ChatOracle {
	return &ChatOracle{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		jsonMode:    jsonMode,
		poster: &jsonPoster{
			client:   newHTTPClient(timeout),
			provider: "openai",
			timeout:  timeout,
		},
	}
}

func (o *ChatOracle) Correct(ctx context.Context, text string) (domain.Correction, error) {
	user, err := UserPrompt(text)
	if err != nil {
		return domain.Correction{}, err
	}

	req := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: user},
		},
		Temperature: o.temperature,
	}
	if o.jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var headers map[string]string
	if o.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + o.apiKey}
	}

	body, err := o.poster.post(ctx, o.baseURL+"/chat/completions", headers, req)
	if err != nil {
		return domain.Correction{}, err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return domain.Correction{}, fmt.Errorf("%w: failed to parse chat response (body: %s): %v", domain.ErrOracleMalformedOutput, preview(string(body)), err)
	}
	if chatResp.Error != nil {
		return domain.Correction{}, fmt.Errorf("%w: API error: %s", domain.ErrOracleUnavailable, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return domain.Correction{}, fmt.Errorf("%w: no choices in chat response", domain.ErrOracleMalformedOutput)
	}

	return ParseCorrection(chatResp.Choices[0].Message.Content)
}

func (o *ChatOracle) Provider() string {
	return "openai"
}

func (o *ChatOracle) ModelName() string {
	return o.model
}
