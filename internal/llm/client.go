// Package llm wraps an OpenAI-compatible chat completions endpoint behind a
// single text-in, text-out contract.
package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/taskpilotco/taskpilot/internal/config"
)

// Generator turns a prompt into generated text. It may fail; callers decide
// how to degrade.
type Generator interface {
	Generate(prompt string) (string, error)
}

// Default base URLs per provider type. Anthropic exposes an OpenAI-compatible
// /v1/chat/completions endpoint.
const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	openaiBaseURL    = "https://api.openai.com/v1"
)

type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	c := &Client{
		apiKey:      cfg.Provider.APIKey,
		baseURL:     cfg.Provider.BaseURL,
		model:       cfg.Agent.Model,
		maxTokens:   cfg.Agent.MaxTokens,
		temperature: cfg.Agent.Temperature,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	if c.baseURL == "" {
		switch cfg.Provider.Type {
		case "openai":
			c.baseURL = openaiBaseURL
		default:
			c.baseURL = anthropicBaseURL
		}
	}
	return c
}

func (c *Client) Generate(prompt string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", fmt.Errorf("missing api key")
	}
	if c.model == "" {
		return "", fmt.Errorf("missing model")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.baseURL), "/")

	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{{
			"role":    "user",
			"content": prompt,
		}},
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("model http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty content in response")
	}
	return content, nil
}
