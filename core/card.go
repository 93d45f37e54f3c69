package core

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrExportNotFound is returned by an ExportStore for an unknown ID, or by
// Latest when nothing has been exported yet.
var ErrExportNotFound = errors.New("export not found")

type (
	// Card is a single unit of study material in a collection.
	Card struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Content string `json:"content"`
		Image   string `json:"image,omitempty"`   // External URL or data: URI.
		Caption string `json:"caption,omitempty"` // Only meaningful when Image is set.
	}

	// Draft is a card that has not been given an ID yet.
	// The normalizer and the upload ingestion produce drafts; only a collection assigns IDs.
	Draft struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Image   string `json:"image,omitempty"`
		Caption string `json:"caption,omitempty"`
	}

	// Record is the exported form of a card. Image and caption are left out of the artifact.
	Record struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	// Export is one written export artifact.
	Export struct {
		ID        string    `json:"id"`
		Filename  string    `json:"filename"`
		Data      []byte    `json:"data,omitempty"` // The pretty-printed JSON array, omitted in list views.
		CreatedAt time.Time `json:"createdAt"`
	}

	// ExportStore is the sink export artifacts are written to.
	// The collection is never restored from it.
	ExportStore interface {
		// Save writes the artifact and returns its ID.
		Save(ctx context.Context, export *Export) (string, error)

		// FindID returns one artifact, including its data.
		FindID(ctx context.Context, id string) (*Export, error)

		// Latest returns the most recently saved artifact.
		Latest(ctx context.Context) (*Export, error)
	}
)

// IsEmbeddedImage reports whether image is an inline data: reference rather than a URL.
func IsEmbeddedImage(image string) bool {
	return strings.HasPrefix(strings.TrimSpace(image), "data:")
}

// IsEmpty reports whether the card carries neither a title nor content.
func (c Card) IsEmpty() bool {
	return c.Title == "" && c.Content == ""
}

// Record drops the fields that are not part of the export artifact.
func (c Card) Record() Record {
	return Record{ID: c.ID, Title: c.Title, Content: c.Content}
}
