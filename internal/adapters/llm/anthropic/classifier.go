// Package anthropic classifies pages for E-E-A-T signals through the
// Anthropic messages API.
package anthropic

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

	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/ingest"
	"github.com/okian/eeat/pkg/metrics"
)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 2000
	DefaultTimeout   = 120 * time.Second

	anthropicVersion = "2023-06-01"
	maxErrorBody     = 4 << 10
)

// Config holds configuration for the classifier. The API key is passed in
// explicitly; nothing is read from the environment here.
type Config struct {
	// APIKey is the default key; callers may supply another per request.
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use.
	Model string

	// MaxTokens bounds the verdict length (default: 2000).
	MaxTokens int

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// Result is a classifier verdict: the JSON relayed to clients and its
// validated form.
type Result struct {
	Raw            json.RawMessage
	Classification ingest.Classification
}

// Classifier posts the E-E-A-T prompt for a URL and parses the answer.
type Classifier struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	catalog   *catalog.Catalog
}

type messagesRequest struct {
	Model     string            `json:"model"`
	Messages  []messagesMessage `json:"messages"`
	MaxTokens int               `json:"max_tokens"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates a classifier. An empty APIKey is allowed when every call
// supplies its own key.
func New(cfg Config, cat *catalog.Catalog) *Classifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Classifier{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		catalog:   cat,
	}
}

// HasKey reports whether a default API key is configured.
func (c *Classifier) HasKey() bool {
	return c.apiKey != ""
}

// Classify analyzes url with the configured key.
func (c *Classifier) Classify(ctx context.Context, url string) (Result, error) {
	return c.ClassifyWithKey(ctx, url, "")
}

// Analyze returns the validated verdict for url using the configured key.
func (c *Classifier) Analyze(ctx context.Context, url string) (ingest.Classification, error) {
	res, err := c.Classify(ctx, url)
	if err != nil {
		return ingest.Classification{}, err
	}
	return res.Classification, nil
}

// ClassifyWithKey analyzes url, using apiKey when it is not empty.
func (c *Classifier) ClassifyWithKey(ctx context.Context, url, apiKey string) (Result, error) {
	start := time.Now()
	res, err := c.classify(ctx, url, apiKey)
	metrics.RecordClassifyLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordClassifyError(errorKind(err))
	}
	return res, err
}

func (c *Classifier) classify(ctx context.Context, url, apiKey string) (Result, error) {
	if apiKey == "" {
		apiKey = c.apiKey
	}
	if apiKey == "" {
		return Result{}, ErrMissingAPIKey
	}

	text, err := c.send(ctx, apiKey, ingest.Prompt(c.catalog, url))
	if err != nil {
		return Result{}, err
	}

	body := ingest.StripFences(text)
	cls, err := ingest.Parse([]byte(body))
	if err != nil {
		return Result{}, fmt.Errorf("parse verdict: %w", err)
	}
	return Result{Raw: json.RawMessage(body), Classification: cls}, nil
}

func (c *Classifier) send(ctx context.Context, apiKey, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model:     c.model,
		Messages:  []messagesMessage{{Role: "user", Content: prompt}},
		MaxTokens: c.maxTokens,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var msgResp messagesResponse
	decodeErr := json.Unmarshal(body, &msgResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: "Claude API request failed"}
		if decodeErr == nil && msgResp.Error != nil {
			apiErr.Type = msgResp.Error.Type
			apiErr.Message = msgResp.Error.Message
		} else if len(body) > 0 {
			apiErr.Message = string(body[:min(len(body), maxErrorBody)])
		}
		return "", apiErr
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}

	for _, block := range msgResp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}

func errorKind(err error) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		return "missing_key"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("status_%d", apiErr.Status)
	case errors.Is(err, ingest.ErrSchema):
		return "schema"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "transport"
}
