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

// GenerateRequest is the body sent to an HTTP generation backend.
type GenerateRequest struct {
	Topic string `json:"topic"`
}

// HTTPGenerator posts the topic to a card generation backend and returns its
// answer untouched.
type HTTPGenerator struct {
	url       string
	statusURL string
	token     string
	client    *http.Client
}

// NewHTTP returns a generator for the backend at url. statusURL is probed by
// Ping; when empty, "/test" next to url is used.
func NewHTTP(url, statusURL, token string) *HTTPGenerator {
	if statusURL == "" && url != "" {
		statusURL = siblingURL(url, "test")
	}
	return &HTTPGenerator{
		url:       url,
		statusURL: statusURL,
		token:     token,
		client:    transport.NewClient(),
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, topic string) (string, error) {
	topic, err := PrepareTopic(topic)
	if err != nil {
		return "", err
	}
	if g.url == "" {
		return "", notConfigured("generation URL")
	}

	body, err := json.Marshal(GenerateRequest{Topic: topic})
	if err != nil {
		return "", transport.SetupError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", transport.SetupError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log := logrus.WithField("topic_length", len(topic))
	log.Debug("Sending generation request")

	resp, err := transport.Do(g.client, req, g.token)
	if err != nil {
		log.WithError(err).Error("Generation request failed")
		return "", err
	}

	log.WithField("response_length", len(resp)).Info("Generation request completed")
	return string(resp), nil
}

func (g *HTTPGenerator) Ping(ctx context.Context) error {
	return transport.Ping(ctx, g.client, g.statusURL, g.token)
}

// siblingURL replaces the last path element of url with name.
func siblingURL(url, name string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndex(trimmed, "/"); i > len("https://") {
		return trimmed[:i+1] + name
	}
	return trimmed + "/" + name
}
