package collection

import (
	"errors"
	"fmt"
	"sync"

	"cardgen-server/core"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is returned when an operation names an ID the collection does not hold.
	ErrNotFound = errors.New("card not found")

	// ErrEmpty is returned by Export on an empty collection.
	ErrEmpty = errors.New("collection is empty")
)

// Patch lists the fields an update replaces. Nil fields are left unchanged.
type Patch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Image   *string `json:"image,omitempty"`
	Caption *string `json:"caption,omitempty"`
}

// Collection is an ordered, ID-indexed set of cards. Order is the order cards
// are shown and exported in; it only changes through Append, Move, Delete,
// Update (when it removes a card) and Clear.
//
// A Collection is safe for concurrent use.
type Collection struct {
	mu      sync.RWMutex
	cards   []core.Card
	newID   func() string
	version uint64
}

// New returns an empty collection that assigns ULIDs.
func New() *Collection {
	return &Collection{newID: NewID}
}

// NewWithIDs returns an empty collection that draws IDs from newID.
// An ID the collection already holds is drawn again.
func NewWithIDs(newID func() string) *Collection {
	return &Collection{newID: newID}
}

// Append gives each draft a fresh ID and adds it to the end, keeping the input
// order. Existing cards keep their IDs and positions. Drafts with neither a
// title nor content are skipped.
func (c *Collection) Append(drafts ...core.Draft) []core.Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := make([]core.Card, 0, len(drafts))
	for _, d := range drafts {
		if d.Title == "" && d.Content == "" {
			continue
		}
		card := core.Card{
			ID:      c.freshID(),
			Title:   d.Title,
			Content: d.Content,
			Image:   d.Image,
			Caption: d.Caption,
		}
		if card.Image == "" {
			card.Caption = ""
		} else {
			logrus.WithFields(logrus.Fields{
				"card_id":    card.ID,
				"image_kind": imageKind(card.Image),
			}).Debug("Card appended with image")
		}
		c.cards = append(c.cards, card)
		added = append(added, card)
	}
	if len(added) > 0 {
		c.version++
	}

	log := logrus.WithFields(logrus.Fields{
		"added": len(added),
		"total": len(c.cards),
	})
	if skipped := len(drafts) - len(added); skipped > 0 {
		log = log.WithField("skipped", skipped)
	}
	log.Info("Cards appended")
	return added
}

// imageKind names how an image is referenced, for logging.
func imageKind(image string) string {
	if core.IsEmbeddedImage(image) {
		return "embedded"
	}
	return "url"
}

// freshID draws IDs until one is unused. Callers must hold mu.
func (c *Collection) freshID() string {
	for {
		id := c.newID()
		if id != "" && c.indexOf(id) < 0 {
			return id
		}
	}
}

// Update applies p to the card with the given ID in place. When the result has
// neither title nor content the card is removed and removed is true. Clearing
// the image also clears the caption.
func (c *Collection) Update(id string, p Patch) (card core.Card, removed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := logrus.WithField("card_id", id)

	i := c.indexOf(id)
	if i < 0 {
		log.Warn("Card to update not found")
		return core.Card{}, false, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}

	card = c.cards[i]
	if p.Title != nil {
		card.Title = *p.Title
	}
	if p.Content != nil {
		card.Content = *p.Content
	}
	if p.Image != nil {
		card.Image = *p.Image
		if card.Image != "" {
			log = log.WithField("image_kind", imageKind(card.Image))
		}
	}
	if p.Caption != nil {
		card.Caption = *p.Caption
	}
	if card.Image == "" {
		card.Caption = ""
	}

	c.version++
	if card.IsEmpty() {
		c.cards = append(c.cards[:i], c.cards[i+1:]...)
		log.Info("Card emptied by edit, removed")
		return card, true, nil
	}

	c.cards[i] = card
	log.Info("Card updated successfully")
	return card, false, nil
}

// Delete removes the card with the given ID.
func (c *Collection) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := logrus.WithField("card_id", id)

	i := c.indexOf(id)
	if i < 0 {
		log.Warn("Card to delete not found")
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}

	c.cards = append(c.cards[:i], c.cards[i+1:]...)
	c.version++
	log.Info("Card deleted successfully")
	return nil
}

// Move relocates the card to newIndex, shifting the cards in between.
// newIndex is clamped to the valid range.
func (c *Collection) Move(id string, newIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"card_id": id, "index": newIndex})

	from := c.indexOf(id)
	if from < 0 {
		log.Warn("Card to move not found")
		return fmt.Errorf("move %s: %w", id, ErrNotFound)
	}

	to := clamp(newIndex, 0, len(c.cards)-1)
	if to == from {
		return nil
	}

	card := c.cards[from]
	if from < to {
		copy(c.cards[from:to], c.cards[from+1:to+1])
	} else {
		copy(c.cards[to+1:from+1], c.cards[to:from])
	}
	c.cards[to] = card
	c.version++

	log.WithField("from", from).Info("Card moved successfully")
	return nil
}

// Clear removes every card.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.cards)
	c.cards = nil
	c.version++
	logrus.WithField("removed", removed).Info("Collection cleared")
}

// Get returns the card with the given ID.
func (c *Collection) Get(id string) (core.Card, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return core.Card{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return c.cards[i], nil
}

// Index returns the position of the card with the given ID, or -1.
func (c *Collection) Index(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.indexOf(id)
}

// List returns a copy of the cards in order.
func (c *Collection) List() []core.Card {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cards := make([]core.Card, len(c.cards))
	copy(cards, c.cards)
	return cards
}

// Snapshot returns a copy of the cards together with the collection version.
// The version grows with every change, so of two snapshots the one with the
// higher version is the newer.
func (c *Collection) Snapshot() ([]core.Card, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cards := make([]core.Card, len(c.cards))
	copy(cards, c.cards)
	return cards, c.version
}

// Len returns the number of cards.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.cards)
}

func (c *Collection) indexOf(id string) int {
	for i := range c.cards {
		if c.cards[i].ID == id {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
