// Package agent is the synchronous shim over the remote function-call
// service that performs all AI work. Transport failures and non-200
// responses come back as plain errors, so callers never distinguish
// network failure from remote rejection.
package agent

import (
	"bytes"
	"commerceq/internal/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrDisabled is returned on every call while the capability is
// administratively switched off. No network I/O is attempted.
var ErrDisabled = errors.New("agent capability is disabled")

type Client struct {
	baseURL string
	enabled bool
	http    *http.Client
}

func New(cfg config.Agent) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		enabled: cfg.Enabled,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Invoke calls POST {base}/function/{name} with the parameters as JSON
// body and returns the decoded 200 response. There is no retry at this
// layer; retry, if wanted, belongs to the caller.
func (c *Client) Invoke(ctx context.Context, functionName string, parameters map[string]any) (map[string]any, error) {
	if !c.enabled {
		log.Ctx(ctx).Warn().Str("function", functionName).Msg("agent call skipped, capability disabled")
		return nil, ErrDisabled
	}

	body, err := json.Marshal(parameters)
	if err != nil {
		return nil, fmt.Errorf("encode parameters for %s: %w", functionName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/function/"+functionName, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent call %s: %w", functionName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Ctx(ctx).Error().Str("function", functionName).Int("status", resp.StatusCode).Bytes("body", b).Msg("agent call rejected")
		return nil, fmt.Errorf("agent call %s: unexpected status %d", functionName, resp.StatusCode)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode agent response for %s: %w", functionName, err)
	}
	return result, nil
}

// Functions lists the function descriptors the remote service exposes
// (GET {base}/functions).
func (c *Client) Functions(ctx context.Context) ([]map[string]any, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/functions", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list agent functions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list agent functions: unexpected status %d", resp.StatusCode)
	}

	var out []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode agent functions: %w", err)
	}
	return out, nil
}
