// Package transport issues chat completion calls against an
// OpenRouter-compatible API and classifies every outcome. One logical call
// covers the whole retry budget; callers only ever see a tagged Outcome.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"council/internal/logging"
)

const maxResponseBytes = 10 * 1024 * 1024

// Caller performs chat completion calls with retry and backoff.
type Caller struct {
	apiKey      string
	baseURL     string
	referer     string
	title       string
	maxRetries  int
	maxTokens   int
	temperature float64
	httpClient  *http.Client

	// backoffUnit scales the per-second backoff schedule; tests shrink it.
	backoffUnit time.Duration
	sleep       func(time.Duration)
}

// CallerConfig holds configuration for the transport caller.
type CallerConfig struct {
	APIKey      string
	BaseURL     string
	Referer     string
	Title       string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

// DefaultCallerConfig returns sensible defaults.
func DefaultCallerConfig(apiKey string) CallerConfig {
	return CallerConfig{
		APIKey:      apiKey,
		BaseURL:     "https://openrouter.ai/api/v1",
		Referer:     "https://openclaw.ai",
		Title:       "LLM Council",
		Timeout:     120 * time.Second,
		MaxRetries:  2,
		MaxTokens:   1500,
		Temperature: 0.7,
	}
}

// NewCaller creates a caller with default config.
func NewCaller(apiKey string) *Caller {
	return NewCallerWithConfig(DefaultCallerConfig(apiKey))
}

// NewCallerWithConfig creates a caller with custom config.
func NewCallerWithConfig(config CallerConfig) *Caller {
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Caller{
		apiKey:      config.APIKey,
		baseURL:     config.BaseURL,
		referer:     config.Referer,
		title:       config.Title,
		maxRetries:  config.MaxRetries,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		backoffUnit: time.Second,
		sleep:       time.Sleep,
	}
}

// Call performs one logical chat completion call: up to maxRetries+1
// attempts. Rate limits and server errors are retried with backoff; a
// numeric Retry-After header overrides the default schedule. A 200 response
// counts as success only when it carries at least one choice with non-null
// message content; a structurally invalid 200 fails the call without
// consuming further retries.
func (c *Caller) Call(ctx context.Context, model string, messages []Message, label string) Outcome {
	tag := label
	if tag == "" {
		tag = model
	}

	if c.apiKey == "" {
		return Failure(fmt.Sprintf("%s: API key not configured", tag), 0)
	}

	// Bound the whole call when the caller did not set a deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	jsonData, err := json.Marshal(ChatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return Failure(fmt.Sprintf("%s: failed to marshal request: %v", tag, err), 0)
	}

	start := time.Now()
	logging.TransportDebug("%s: calling model=%s messages=%d", tag, model, len(messages))

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var errMsg string

		req, rerr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
		if rerr != nil {
			return Failure(fmt.Sprintf("%s: failed to create request: %v", tag, rerr), attempt+1)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("HTTP-Referer", c.referer)
		req.Header.Set("X-Title", c.title)

		resp, derr := c.httpClient.Do(req)
		if derr != nil {
			errMsg = fmt.Sprintf("request failed: %v", derr)
		} else {
			body, berr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			retryAfter := resp.Header.Get("Retry-After")
			status := resp.StatusCode
			resp.Body.Close()

			switch {
			case berr != nil:
				errMsg = fmt.Sprintf("failed to read response: %v", berr)

			case status == http.StatusTooManyRequests || status >= 500:
				errMsg = fmt.Sprintf("HTTP %d", status)
				if attempt < c.maxRetries {
					wait := c.backoff(attempt, retryAfter)
					logging.TransportWarn("%s: %s, retrying in %v", tag, errMsg, wait)
					c.sleep(wait)
					continue
				}
				logging.TransportError("%s: %s after %d attempts", tag, errMsg, c.maxRetries+1)
				return Failure(fmt.Sprintf("%s: %s after %d attempts", tag, errMsg, c.maxRetries+1), attempt+1)

			case status != http.StatusOK:
				// Client errors are not transient; fail immediately.
				logging.TransportError("%s: HTTP %d: %s", tag, status, snippet(body))
				return Failure(fmt.Sprintf("%s: HTTP %d: %s", tag, status, snippet(body)), attempt+1)

			default:
				var cr ChatResponse
				if uerr := json.Unmarshal(body, &cr); uerr != nil {
					errMsg = fmt.Sprintf("failed to parse response: %v", uerr)
					break
				}
				// Structurally invalid success responses are terminal:
				// retrying a well-formed-but-empty 200 rarely changes the
				// result and burns the attempt budget.
				if cr.Error != nil {
					return Failure(fmt.Sprintf("%s: API error: %s", tag, cr.Error.Message), attempt+1)
				}
				if len(cr.Choices) == 0 {
					return Failure(fmt.Sprintf("%s: invalid API response: missing or empty choices", tag), attempt+1)
				}
				if cr.Choices[0].Message.Content == nil {
					return Failure(fmt.Sprintf("%s: invalid API response: missing message content", tag), attempt+1)
				}
				text := strings.TrimSpace(*cr.Choices[0].Message.Content)
				logging.Transport("%s: completed in %v response_len=%d attempts=%d", tag, time.Since(start), len(text), attempt+1)
				return Success(text, attempt+1)
			}
		}

		// Shared retry-or-fail for all transport-level error paths.
		if attempt < c.maxRetries {
			wait := c.backoff(attempt, "")
			logging.TransportWarn("%s: %s, retrying in %v", tag, errMsg, wait)
			c.sleep(wait)
			continue
		}
		logging.TransportError("%s: %s", tag, errMsg)
		return Failure(fmt.Sprintf("%s: %s", tag, errMsg), attempt+1)
	}

	return Failure(fmt.Sprintf("%s: unknown error", tag), c.maxRetries+1)
}

// backoff computes the retry delay for the given attempt. A numeric
// Retry-After value (seconds) overrides the default 2*(attempt+1) schedule.
func (c *Caller) backoff(attempt int, retryAfter string) time.Duration {
	secs := float64(2 * (attempt + 1))
	if retryAfter != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(retryAfter), 64); err == nil && v >= 0 {
			secs = v
		}
	}
	return time.Duration(secs * float64(c.backoffUnit))
}

// snippet truncates a response body for error messages.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
