package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"monu/internal/domain"
	"monu/internal/logging"
	"monu/internal/metrics"
)

const maxResponseBytes = 4 << 20

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 10
	transport.MaxIdleConnsPerHost = 5
	transport.IdleConnTimeout = 60 * time.Second
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// jsonPoster sends JSON requests to a model server and classifies failures.
type jsonPoster struct {
	client   *http.Client
	provider string
	timeout  time.Duration
}

func (p *jsonPoster) post(ctx context.Context, url string, headers map[string]string, reqBody any) ([]byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	timer := prometheus.NewTimer(metrics.OracleDuration.WithLabelValues(p.provider))
	defer timer.ObserveDuration()

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		logging.FromContext(ctx).Warn("oracle request failed", "provider", p.provider, "error", err)
		return nil, fmt.Errorf("%w: %s request failed: %v", domain.ErrOracleUnavailable, p.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s response: %v", domain.ErrOracleUnavailable, p.provider, err)
	}

	logging.FromContext(ctx).Debug("oracle response",
		"provider", p.provider,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d: %s", domain.ErrOracleUnavailable, p.provider, resp.StatusCode, preview(string(body)))
	}
	return body, nil
}
