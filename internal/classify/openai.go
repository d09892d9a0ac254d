package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/geopulse/coherence/internal/common"
	"github.com/geopulse/coherence/internal/service"
)

const systemPrompt = `You are a geopolitical news sentiment analyzer. ` +
	`Respond with ONLY a valid JSON object of the form ` +
	`{"score": <float between -1.0 and 1.0>, "confidence": <float between 0.0 and 1.0>}. ` +
	`Negative scores mean destabilizing or adverse developments, positive scores ` +
	`mean stabilizing or favorable ones. No commentary, no markdown.`

// openAIClient implements the Client interface over the OpenAI chat API.
type openAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI-backed client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key: %w", common.ErrMissingConfig)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		temperature = 0.2
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 100
	}

	return &openAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Analyze sends one article to the chat API and parses the sentiment reply.
func (c *openAIClient) Analyze(ctx context.Context, title, content string) (*service.ClassifierResult, error) {
	prompt := buildPrompt(title, content)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return parseResponse(resp.Choices[0].Message.Content, c.model)
}

// promptContentLimit bounds how much article body goes to the model.
const promptContentLimit = 2000

func buildPrompt(title, content string) string {
	if runes := []rune(content); len(runes) > promptContentLimit {
		content = string(runes[:promptContentLimit])
	}
	return fmt.Sprintf("Title: %s\n\n%s", title, content)
}

// parseResponse decodes the model's JSON reply, tolerating code fences some
// models wrap around it.
func parseResponse(raw, modelName string) (*service.ClassifierResult, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var payload struct {
		Score      float64 `json:"score"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response %q: %w", raw, err)
	}

	return &service.ClassifierResult{
		Score:      payload.Score,
		Confidence: payload.Confidence,
		Model:      modelName,
	}, nil
}
