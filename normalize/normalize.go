// Package normalize turns a raw text-generation response into card drafts.
//
// The generation service has no fixed output contract: it may answer in prose,
// a JSON array, a JSON object or an object wrapping a "cards" list. Normalize
// prefers the most structured reading available and never fails.
package normalize

import (
	"regexp"
	"strings"

	"cardgen-server/core"

	"github.com/sirupsen/logrus"
)

// DefaultFallbackTitle is used when the caller passes an empty fallback title.
const DefaultFallbackTitle = "Untitled"

// bracketPattern matches from the leftmost opening bracket to the last closing
// bracket of the same kind.
var bracketPattern = regexp.MustCompile(`(?s)\[.*\]|\{.*\}`)

// Normalize converts raw into an ordered list of drafts.
//
// Strategies are tried in order: structured data found by a bracket scan, the
// whole text parsed as structured data, a split into blank-line separated
// notes, and finally a single draft holding raw verbatim. The verbatim draft is
// also used when the text is a single line. Input that is empty or only
// whitespace yields no drafts; any other input yields at least one.
func Normalize(raw, fallbackTitle string) (drafts []core.Draft) {
	if fallbackTitle == "" {
		fallbackTitle = DefaultFallbackTitle
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Warn("Response normalization failed, keeping raw text")
			drafts = fallback(raw, fallbackTitle)
		}
	}()

	if v, ok := extractStructured(raw); ok {
		if shaped, ok := shape(v); ok && len(shaped) > 0 {
			return shaped
		}
		logrus.WithField("shape", Classify(v).String()).Debug("Structured response produced no cards")
	}

	// A lone line has no content to go under a title of its own.
	notes, bodies := splitParagraphs(raw, fallbackTitle)
	if len(notes) == 0 || (len(notes) == 1 && bodies == 0) {
		return fallback(raw, fallbackTitle)
	}
	return notes
}

// extractStructured runs the bracket scan, then gives the whole text a second chance.
func extractStructured(raw string) (any, bool) {
	if candidate := bracketPattern.FindString(raw); candidate != "" {
		if v, err := parseJSON(candidate); err == nil {
			return v, true
		}
	}
	if v, err := parseJSON(raw); err == nil {
		return v, true
	}
	return nil, false
}

func fallback(raw, fallbackTitle string) []core.Draft {
	return []core.Draft{{Title: fallbackTitle, Content: raw}}
}
