package collection

import (
	"bytes"
	"encoding/json"
	"strings"

	"cardgen-server/core"
)

const (
	// ExportFilename is the name the export artifact is downloaded as.
	ExportFilename = "flashcards.json"

	// LegacyExportFilename is the name older clients expect.
	LegacyExportFilename = "cards.json"
)

// Export returns the cards as plain records, in order. Image and caption are
// not part of the artifact. The collection is not changed.
func (c *Collection) Export() ([]core.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.cards) == 0 {
		return nil, ErrEmpty
	}

	records := make([]core.Record, 0, len(c.cards))
	for _, card := range c.cards {
		records = append(records, card.Record())
	}
	return records, nil
}

// ExportJSON returns Export as a JSON array indented with two spaces.
func (c *Collection) ExportJSON() ([]byte, error) {
	records, err := c.Export()
	if err != nil {
		return nil, err
	}
	return MarshalRecords(records)
}

// MarshalRecords renders records the way the export artifact is written.
func MarshalRecords(records []core.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SplitText turns free-form edited text into a title and content: the first
// line is the title and the remaining lines are the content.
func SplitText(text string) (title, content string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	first, rest, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}
