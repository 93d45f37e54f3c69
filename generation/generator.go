// Package generation sends a topic to a text-generation backend and returns
// the raw response text. Shaping that text into cards is the normalizer's job.
package generation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cardgen-server/transport"

	"github.com/sirupsen/logrus"
)

// ErrEmptyTopic is returned when the topic is blank after trimming.
var ErrEmptyTopic = errors.New("topic is required")

// Generator produces raw study text for a topic.
type Generator interface {
	// Generate returns the backend's answer verbatim. Failures are *transport.Error
	// values, except ErrEmptyTopic.
	Generate(ctx context.Context, topic string) (string, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// FromEnv builds the generator selected by GENERATION_BACKEND.
//
//	http    (default) POST {"topic"} to GENERATION_URL with GENERATION_TOKEN
//	openai  chat completions at OPENAI_BASE_URL with OPENAI_API_KEY
//	gemini  Gemini API with GEMINI_API_KEY
func FromEnv(ctx context.Context) (Generator, error) {
	backend := os.Getenv("GENERATION_BACKEND")
	log := logrus.WithField("backend", backend)

	switch backend {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Warn("OPENAI_API_KEY environment variable not set. Generation will not work.")
		}
		log.Info("Using OpenAI-compatible generation backend")
		return NewOpenAI(os.Getenv("OPENAI_BASE_URL"), apiKey, os.Getenv("OPENAI_MODEL")), nil
	case "gemini":
		log.Info("Using Gemini generation backend")
		return NewGemini(ctx, os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	case "", "http":
		url := os.Getenv("GENERATION_URL")
		if url == "" {
			log.Warn("GENERATION_URL environment variable not set. Generation will not work.")
		}
		log.WithField("url", url).Info("Using HTTP generation backend")
		return NewHTTP(url, os.Getenv("GENERATION_STATUS_URL"), os.Getenv("GENERATION_TOKEN")), nil
	}
	return nil, fmt.Errorf("unknown GENERATION_BACKEND %q", backend)
}

func notConfigured(what string) error {
	return transport.SetupError(errors.New(what + " is not configured"))
}
