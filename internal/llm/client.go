package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DefaultBaseURL points at OpenAI; any compatible endpoint works.
const DefaultBaseURL = "https://api.openai.com/v1"

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	log        *slog.Logger

	// Stats collects per-label latency samples for the stats endpoint.
	Stats *Stats

	backoff func(attempt int) time.Duration
}

func NewClient(apiKey, baseURL string, timeout time.Duration, maxRetries int, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		log:        log,
		Stats:      NewStats(time.Hour),
		backoff:    Backoff,
	}
}

// Request is one completion call.
type Request struct {
	Model       string
	Label       string // stats bucket; falls back to the model name
	System      string
	User        string
	Schema      *Schema // when set, the provider must return strict JSON
	Temperature float64
}

func (r Request) statsLabel() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Model
}

// Schema names the JSON shape the model must produce.
type Schema struct {
	Name string
	Spec map[string]any
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat completion request and returns the message text
// with any code fences stripped. Rate limits and provider outages surface
// as *RetryableError.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.User})

	payload := chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.Schema != nil {
		payload.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   req.Schema.Name,
				Strict: true,
				Schema: req.Schema.Spec,
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(respBody)), 200))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("provider error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from provider")
	}

	c.Stats.Record(req.statsLabel(), time.Since(start).Milliseconds())

	return stripCodeBlock(apiResp.Choices[0].Message.Content), nil
}

// Validator lets a decode target reject semantically empty output, forcing
// a re-ask even when the JSON matched the schema.
type Validator interface {
	Validate() error
}

// Generate runs the request until it yields JSON that decodes into out.
// Transient provider failures are retried with backoff; a reply that does
// not decode triggers one re-ask with the failure spelled out, after which
// a *GenerationError is returned.
func (c *Client) Generate(ctx context.Context, req Request, out any) error {
	schemaName := "response"
	if req.Schema != nil {
		schemaName = req.Schema.Name
	}

	const schemaAttempts = 2
	var lastErr error
	ask := req

	for attempt := 1; attempt <= schemaAttempts; attempt++ {
		text, err := c.completeWithRetry(ctx, ask)
		if err != nil {
			return err
		}

		decodeErr := json.Unmarshal([]byte(text), out)
		if decodeErr == nil {
			if v, ok := out.(Validator); ok {
				decodeErr = v.Validate()
			}
		}
		if decodeErr == nil {
			return nil
		}

		lastErr = fmt.Errorf("%w (raw: %s)", decodeErr, truncate(text, 200))
		c.log.Warn("model reply did not match schema",
			"schema", schemaName, "attempt", attempt, "error", decodeErr)

		ask = req
		ask.User = fmt.Sprintf(
			"%s\n\nYour previous reply could not be used: %v. Respond again with only a valid %s JSON object.",
			req.User, decodeErr, schemaName)
	}

	return &GenerationError{Schema: schemaName, Attempts: schemaAttempts, Err: lastErr}
}

// completeWithRetry retries transient provider failures, honoring context
// cancellation between attempts.
func (c *Client) completeWithRetry(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt - 1)
			c.log.Warn("provider retry", "label", req.statsLabel(), "attempt", attempt, "wait", wait)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		text, err := c.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		if !IsRetryable(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
