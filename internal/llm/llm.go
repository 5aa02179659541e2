// Package llm adapts an OpenAI-compatible chat completion endpoint into
// the exam pipeline's sentence generator.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/junhyuk/hanzam/internal/llm/prompts"
	"github.com/junhyuk/hanzam/internal/model"
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client against the given base URL.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping verifies the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM endpoint unreachable: %w", err)
	}
	return nil
}

// batchRequest is the user-message payload for one enrichment batch.
type batchRequest struct {
	Questions []model.EnrichmentRequest `json:"questions"`
}

// GenerateBatch sends one chat completion covering every question in the
// batch and returns the generated content keyed by question ID. A non-OK
// response, a malformed reply, or success=false fails the whole batch;
// the caller treats that as total enrichment failure.
func (c *Client) GenerateBatch(ctx context.Context, reqs []model.EnrichmentRequest) (map[string]string, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	system, err := prompts.BatchSystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}

	payload, err := json.Marshal(batchRequest{Questions: reqs})
	if err != nil {
		return nil, fmt.Errorf("marshal enrichment batch: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("enrichment response", "raw", raw)

	return parseBatchResponse(raw)
}

// parseBatchResponse decodes the generated-content reply into an
// id-to-content map.
func parseBatchResponse(raw string) (map[string]string, error) {
	var parsed model.EnrichmentResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse enrichment response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("enrichment service reported failure")
	}

	contents := make(map[string]string, len(parsed.Questions))
	for _, q := range parsed.Questions {
		if q.ID == "" || q.Content == "" {
			continue
		}
		contents[q.ID] = q.Content
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("enrichment response contained no usable questions")
	}
	return contents, nil
}
