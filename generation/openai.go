package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"cardgen-server/transport"

	"github.com/sirupsen/logrus"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o-mini"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// JSONSchemaFormat asks the model for output matching Schema.
type JSONSchemaFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type ResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *JSONSchemaFormat `json:"json_schema,omitempty"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
}

// notesSchema is the structured output shape: {"wrapper": [{title, content}]}.
var notesSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"wrapper": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":   map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
				"required":             []string{"title", "content"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"wrapper"},
	"additionalProperties": false,
}

// OpenAIGenerator asks an OpenAI-compatible chat completions API for notes.
type OpenAIGenerator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewOpenAI(baseURL, apiKey, model string) *OpenAIGenerator {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  transport.NewClient(),
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, topic string) (string, error) {
	topic, err := PrepareTopic(topic)
	if err != nil {
		return "", err
	}
	if g.apiKey == "" {
		return "", notConfigured("OpenAI API key")
	}

	body, err := json.Marshal(ChatCompletionRequest{
		Model: g.model,
		Messages: []ChatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: UserPrompt(topic)},
		},
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchemaFormat{
				Name:   "learning_notes",
				Strict: true,
				Schema: notesSchema,
			},
		},
	})
	if err != nil {
		return "", transport.SetupError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", transport.SetupError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log := logrus.WithFields(logrus.Fields{"model": g.model, "topic_length": len(topic)})
	log.Debug("Sending chat completion request")

	raw, err := transport.Do(g.client, req, g.apiKey)
	if err != nil {
		log.WithError(err).Error("Chat completion request failed")
		return "", err
	}

	var resp ChatCompletionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		// Not a chat completion envelope; let the normalizer make what it can of it.
		log.WithError(err).Warn("Unexpected chat completion response, passing body through")
		return string(raw), nil
	}
	if len(resp.Choices) == 0 {
		return "", transport.StatusError(http.StatusBadGateway, "chat completion returned no choices")
	}

	log.WithField("finish_reason", resp.Choices[0].FinishReason).Info("Chat completion request completed")
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) Ping(ctx context.Context) error {
	if g.apiKey == "" {
		return notConfigured("OpenAI API key")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/models", nil)
	if err != nil {
		return transport.SetupError(err)
	}
	_, err = transport.Do(g.client, req, g.apiKey)
	return err
}

