package generation

import (
	"context"
	"errors"

	"cardgen-server/transport"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiGenerator asks the Gemini API for notes in the wrapper shape.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	return newGemini(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: transport.NewClient(),
	}, model)
}

func newGemini(ctx context.Context, cfg *genai.ClientConfig, model string) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		logrus.Warn("GEMINI_API_KEY environment variable not set. Generation will not work.")
		return &GeminiGenerator{model: model}, nil
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, transport.SetupError(err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func geminiSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"wrapper": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":   {Type: genai.TypeString},
						"content": {Type: genai.TypeString},
					},
					Required:         []string{"title", "content"},
					PropertyOrdering: []string{"title", "content"},
				},
			},
		},
		Required: []string{"wrapper"},
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, topic string) (string, error) {
	topic, err := PrepareTopic(topic)
	if err != nil {
		return "", err
	}
	if g.client == nil {
		return "", notConfigured("Gemini API key")
	}

	log := logrus.WithFields(logrus.Fields{"model": g.model, "topic_length": len(topic)})
	log.Debug("Sending Gemini request")

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(UserPrompt(topic)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiSchema(),
	})
	if err != nil {
		log.WithError(err).Error("Gemini request failed")
		return "", geminiError(err)
	}

	text := resp.Text()
	log.WithField("response_length", len(text)).Info("Gemini request completed")
	return text, nil
}

func (g *GeminiGenerator) Ping(ctx context.Context) error {
	if g.client == nil {
		return notConfigured("Gemini API key")
	}
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return geminiError(err)
	}
	return nil
}

// geminiError maps SDK failures onto the transport taxonomy.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return transport.StatusError(apiErr.Code, apiErr.Message)
	}
	return transport.NoResponseError(err)
}
