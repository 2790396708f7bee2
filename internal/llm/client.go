// Package llm talks to an OpenAI-compatible chat completions endpoint.
// Any gateway that speaks this dialect works, including Gemini's
// compatibility endpoint and local inference servers.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client generates one completion for a system/user prompt pair.
type Client interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// TransportError covers failures reaching the endpoint or provider-side
// errors, as opposed to a well-formed response with unusable content.
type TransportError struct {
	Status int // zero when the request never completed
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("analysis endpoint returned status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("analysis endpoint unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Config holds connection settings for the completion endpoint.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
	// Retries is the number of additional attempts after a transient
	// transport failure (network error, 429, 5xx).
	Retries int
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// HTTPClient calls a chat completions endpoint over HTTP with bounded
// retries and exponential backoff on transient transport failures.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
	backoff    time.Duration
}

// New creates a client from cfg.
func New(cfg Config) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		backoff:    500 * time.Millisecond,
	}
}

// Generate requests a single JSON completion. The returned string is the
// raw message content; interpreting it is the caller's concern.
func (c *HTTPClient) Generate(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.2,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	delay := c.backoff
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &TransportError{Err: ctx.Err()}
			case <-time.After(delay):
			}
			delay *= 2
		}

		content, retryable, err := c.do(ctx, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}

	return "", lastErr
}

func (c *HTTPClient) do(ctx context.Context, payload []byte) (content string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", false, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures are transient unless the caller gave up.
		return "", ctx.Err() == nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, &TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500

		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			return "", retryable, &TransportError{Status: resp.StatusCode, Err: errors.New(ae.Error.Message)}
		}
		return "", retryable, &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("body: %s", body)}
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", false, &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("decode response envelope: %w", err)}
	}
	if len(cr.Choices) == 0 {
		return "", false, &TransportError{Status: resp.StatusCode, Err: errors.New("no choices in response")}
	}

	return cr.Choices[0].Message.Content, false, nil
}
