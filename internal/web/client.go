package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"monu/internal/domain"
)

// ErrConnection means the backend could not be reached at all.
var ErrConnection = errors.New("connection error")

// BackendClient calls the backend /check-grammar endpoint.
type BackendClient struct {
	baseURL string
	client  *http.Client
}

func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type backendError struct {
	Error struct {
		Kind    domain.ErrorKind `json:"kind"`
		Message string           `json:"message"`
	} `json:"error"`
}

// Check submits text and decodes the backend's result or error.
func (c *BackendClient) Check(ctx context.Context, text string) (*domain.CheckResult, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check-grammar", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrConnection, err)
	}

	if resp.StatusCode != http.StatusOK {
		var be backendError
		if err := json.Unmarshal(data, &be); err != nil || be.Error.Kind == "" {
			return nil, fmt.Errorf("%w: backend returned status %d", domain.ErrOracleUnavailable, resp.StatusCode)
		}
		if sentinel := be.Error.Kind.Sentinel(); sentinel != nil {
			return nil, fmt.Errorf("%w: %s", sentinel, be.Error.Message)
		}
		return nil, fmt.Errorf("backend error: %s", be.Error.Message)
	}

	var res domain.CheckResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleMalformedOutput, err)
	}
	return &res, nil
}
