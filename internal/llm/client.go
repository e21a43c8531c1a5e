// Package llm implements the client for the OpenAI-compatible completion API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"discordllm/internal/core"
	"discordllm/internal/util"

	"github.com/bytedance/sonic"
	"golang.org/x/time/rate"
)

// ErrBusy is returned when the outbound request budget is exhausted.
var ErrBusy = errors.New("llm: outbound request budget exhausted")

// Client issues requests against an OpenAI-compatible LLM API.
type Client struct {
	apiBase    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     core.Logger
}

// ClientConfig configures a Client.
type ClientConfig struct {
	APIBase    string
	APIKey     string
	HTTPClient *http.Client
	Logger     core.Logger
}

// NewClient creates an LLM API client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: core.HTTPRequestTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = &core.NopLogger{}
	}
	return &Client{
		apiBase:    strings.TrimRight(cfg.APIBase, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(core.LLMOutboundRate), core.LLMOutboundBurst),
		logger:     logger,
	}
}

// CreateChatCompletion issues a single chat completion request and returns
// the text of the first choice. Failures are surfaced to the caller; there
// is no retry.
func (c *Client) CreateChatCompletion(ctx context.Context, model string, messages []core.ChatMessage) (string, error) {
	if !c.limiter.Allow() {
		return "", ErrBusy
	}

	payload := core.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}

	req, err := util.CreateAPIRequest(http.MethodPost, c.apiBase+"/chat/completions", payload, c.apiKey)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
		return "", fmt.Errorf("chat completion failed with status %d: %s", resp.StatusCode, string(body))
	}

	var completion core.ChatCompletionResponse
	if err := sonic.ConfigDefault.NewDecoder(io.LimitReader(resp.Body, core.MaxResponseBodySize)).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode chat completion response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// ListModels fetches the available model identifiers. The response may be an
// object with a `data` array or a bare array; each entry's identifier comes
// from its `id` or `name` field, or the entry itself when it is a string.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := util.CreateAPIRequest(http.MethodGet, c.apiBase+"/models", nil, c.apiKey)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("models request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
		return nil, fmt.Errorf("models request failed with status %d: %s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
	if err != nil {
		return nil, err
	}

	return parseModelList(raw)
}

func parseModelList(raw []byte) ([]string, error) {
	var envelope struct {
		Data []any `json:"data"`
	}
	var entries []any

	if err := sonic.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		entries = envelope.Data
	} else if err := sonic.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse model list: %w", err)
	}

	models := make([]string, 0, len(entries))
	for _, entry := range entries {
		if id := extractModelID(entry); id != "" {
			models = append(models, id)
		}
	}
	return models, nil
}

func extractModelID(entry any) string {
	switch v := entry.(type) {
	case string:
		return v
	case map[string]any:
		if id, ok := v["id"].(string); ok && id != "" {
			return id
		}
		if name, ok := v["name"].(string); ok && name != "" {
			return name
		}
	}
	return ""
}
