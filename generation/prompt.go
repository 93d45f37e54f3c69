package generation

import (
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// MaxTopicLength is the longest topic, in characters, sent to a backend.
const MaxTopicLength = 100

// SystemPrompt instructs model backends how to shape their answer.
const SystemPrompt = `You are an expert educational assistant. Your task is to help a user learn a specific topic by generating a list of up to 10 concise learning notes, each formatted as:
- Title: 1 short, specific line
- Content: A short paragraph or bullet points (ideally < 200 characters) explaining the most important idea. You may use simple Markdown formatting if helpful.

Each note should focus on one key idea. Vary the type of information across notes, for example: a high-level explanation, a core definition, why it matters, a real-world application, key components, examples or analogies, common mistakes, a comparison with a related concept, historical background, or a fun fact. These are examples only; pick what suits the topic.

Focus on clarity, usefulness and learning value. Try to build a cohesive story and give useful information, not just superficial facts.`

// PrepareTopic trims the topic and cuts it to MaxTopicLength characters.
func PrepareTopic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrEmptyTopic
	}
	if n := utf8.RuneCountInString(topic); n > MaxTopicLength {
		logrus.WithField("topic_length", n).Warn("Topic too long, truncating")
		topic = string([]rune(topic)[:MaxTopicLength])
	}
	return topic, nil
}

// UserPrompt is the user message model backends receive for a topic.
func UserPrompt(topic string) string {
	return "I want to learn about " + topic
}
