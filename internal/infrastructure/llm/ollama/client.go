// Package ollama adapts a local Ollama server for document
// classification and model discovery.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/g-g-pletnev/docan/internal/core/domain"
	"github.com/g-g-pletnev/docan/internal/infrastructure/resilience"
)

// Client talks to one Ollama server. The zero Options value keeps model
// calls unbounded and unguarded, which is how a single-user deployment
// runs against a local server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Options struct {
	// Timeout bounds one HTTP exchange. Zero means no deadline.
	Timeout time.Duration
	// MaxRequestsPerSecond throttles model calls when positive.
	MaxRequestsPerSecond int
	// Executor, when set, wraps model calls in a circuit breaker.
	Executor *resilience.Executor
}

func New(baseURL string, opts Options) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		executor:   opts.Executor,
	}
	if opts.MaxRequestsPerSecond > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(opts.MaxRequestsPerSecond), 1)
	}
	return client
}

// Classify sends the prepared text with the current taxonomy to the
// chat endpoint and parses the schema-constrained verdict.
func (c *Client) Classify(ctx context.Context, model string, taxonomy []domain.TypeEntry, text string) (domain.ClassificationResult, error) {
	request := map[string]any{
		"model":  model,
		"stream": false,
		"format": classificationSchema,
		"messages": []map[string]string{
			{"role": "user", "content": buildClassificationPrompt(taxonomy, text)},
		},
	}

	var raw json.RawMessage
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/chat", request, &raw, "chat")
	}
	if err := c.invoke(ctx, "ollama.chat", call); err != nil {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrExternalService, "classify document", err)
	}

	return parseClassification(raw)
}

// ListModels returns the names known to the tag-listing endpoint.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var response struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	call := func(ctx context.Context) error {
		return c.getJSON(ctx, "/api/tags", &response, "tags")
	}
	if err := c.invoke(ctx, "ollama.tags", call); err != nil {
		return nil, domain.WrapError(domain.ErrExternalService, "list models", err)
	}

	names := make([]string, len(response.Models))
	for i, model := range response.Models {
		names[i] = model.Name
	}
	return names, nil
}

// invoke applies the optional limiter and circuit breaker around one call.
func (c *Client) invoke(ctx context.Context, operation string, call func(context.Context) error) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if c.executor == nil {
		return call(ctx)
	}
	return c.executor.Execute(ctx, operation, call, classifyOllamaError)
}

// parseClassification accepts either the chat envelope, whose message
// content carries the JSON object as a string, or the bare object.
func parseClassification(raw json.RawMessage) (domain.ClassificationResult, error) {
	var envelope struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}

	payload := []byte(raw)
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message.Content != "" {
		payload = []byte(extractJSONObject(envelope.Message.Content))
	}

	var result domain.ClassificationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrMalformedModelOutput, "parse classification", err)
	}

	result.Type = strings.ToLower(strings.TrimSpace(result.Type))
	if result.Type == "" {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrMalformedModelOutput, "validate classification", fmt.Errorf("empty type"))
	}
	if utf8.RuneCountInString(result.Summary) < 10 {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrMalformedModelOutput, "validate classification", fmt.Errorf("summary shorter than 10 characters"))
	}
	return result, nil
}

// extractJSONObject trims any prose the model wraps around the object.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
