// Package workspace ties the card collection to the generation and upload
// backends. It owns the single-flight latches and tells listeners when the
// collection changes.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cardgen-server/collection"
	"cardgen-server/core"
	"cardgen-server/generation"
	"cardgen-server/ingest"
	"cardgen-server/latch"
	"cardgen-server/normalize"

	"github.com/sirupsen/logrus"
)

type (
	// Uploader sends documents to the ingestion backend.
	Uploader interface {
		Upload(ctx context.Context, files []ingest.File) ([]core.Draft, error)
		Ping(ctx context.Context) error
	}

	// Notifier is told about every change to the collection.
	Notifier interface {
		CardsChanged(cards []core.Card)
	}

	Options struct {
		Generator generation.Generator
		Uploader  Uploader
		Exports   core.ExportStore
		Notifier  Notifier

		// ExportFilename names written artifacts. Defaults to collection.ExportFilename.
		ExportFilename string

		// Cards defaults to a new, empty collection.
		Cards *collection.Collection
	}
)

// Workspace is the card collection a user is editing plus the requests that
// feed it.
type Workspace struct {
	cards      *collection.Collection
	gen        generation.Generator
	up         Uploader
	exports    core.ExportStore
	notifier   Notifier
	exportName string

	notifyMu sync.Mutex
	notified uint64

	generating *latch.Latch
	uploading  *latch.Latch
}

func New(opts Options) *Workspace {
	w := &Workspace{
		cards:      opts.Cards,
		gen:        opts.Generator,
		up:         opts.Uploader,
		exports:    opts.Exports,
		notifier:   opts.Notifier,
		exportName: opts.ExportFilename,
		generating: latch.New("generate"),
		uploading:  latch.New("upload"),
	}
	if w.cards == nil {
		w.cards = collection.New()
	}
	if w.exportName == "" {
		w.exportName = collection.ExportFilename
	}
	return w
}

// SetNotifier replaces the change listener. It must be called before the
// workspace is shared.
func (w *Workspace) SetNotifier(n Notifier) {
	w.notifier = n
}

// changed sends the current cards to the notifier. Notifications go out one at
// a time and a snapshot older than the last one sent is dropped, so listeners
// never see the collection go back in time.
func (w *Workspace) changed() {
	if w.notifier == nil {
		return
	}

	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	cards, version := w.cards.Snapshot()
	if version <= w.notified {
		return
	}
	w.notified = version
	w.notifier.CardsChanged(cards)
}

// Generate asks the generation backend about topic and appends the cards made
// from its answer. A second call while one is running fails with latch.ErrBusy.
// On any error the collection is unchanged.
func (w *Workspace) Generate(ctx context.Context, topic string) ([]core.Card, error) {
	topic, err := generation.PrepareTopic(topic)
	if err != nil {
		return nil, err
	}
	if w.gen == nil {
		return nil, errors.New("no generation backend configured")
	}

	log := logrus.WithField("topic_length", len(topic))

	var added []core.Card
	err = w.generating.Do(func() error {
		raw, err := w.gen.Generate(ctx, topic)
		if err != nil {
			return err
		}
		drafts := normalize.Normalize(raw, topic)
		added = w.cards.Append(drafts...)
		return nil
	})
	if err != nil {
		if errors.Is(err, latch.ErrBusy) {
			log.Warn("Generation already in flight, request rejected")
		} else {
			log.WithError(err).Error("Generation failed")
		}
		return nil, err
	}

	log.WithField("card_count", len(added)).Info("Cards generated")
	w.changed()
	return added, nil
}

// Upload sends files to the ingestion backend and appends the cards it
// returns. It is single-flight independently of Generate.
func (w *Workspace) Upload(ctx context.Context, files []ingest.File) ([]core.Card, error) {
	if w.up == nil {
		return nil, errors.New("no upload backend configured")
	}

	var added []core.Card
	err := w.uploading.Do(func() error {
		drafts, err := w.up.Upload(ctx, files)
		if err != nil {
			return err
		}
		added = w.cards.Append(drafts...)
		return nil
	})
	if err != nil {
		if errors.Is(err, latch.ErrBusy) {
			logrus.Warn("Upload already in flight, request rejected")
		} else {
			logrus.WithError(err).Error("Upload failed")
		}
		return nil, err
	}

	logrus.WithField("card_count", len(added)).Info("Cards uploaded")
	w.changed()
	return added, nil
}

func (w *Workspace) List() []core.Card {
	return w.cards.List()
}

func (w *Workspace) Get(id string) (core.Card, error) {
	return w.cards.Get(id)
}

// Append adds cards built elsewhere, such as by a client holding drafts.
func (w *Workspace) Append(drafts ...core.Draft) []core.Card {
	added := w.cards.Append(drafts...)
	if len(added) > 0 {
		w.changed()
	}
	return added
}

func (w *Workspace) Update(id string, p collection.Patch) (core.Card, bool, error) {
	card, removed, err := w.cards.Update(id, p)
	if err != nil {
		return core.Card{}, false, err
	}
	w.changed()
	return card, removed, nil
}

// EditText replaces a card's title and content from free-form text whose first
// line is the title.
func (w *Workspace) EditText(id, text string) (core.Card, bool, error) {
	title, content := collection.SplitText(text)
	return w.Update(id, collection.Patch{Title: &title, Content: &content})
}

func (w *Workspace) Delete(id string) error {
	if err := w.cards.Delete(id); err != nil {
		return err
	}
	w.changed()
	return nil
}

// Move relocates a card. A nil destination is a cancelled drag and changes nothing.
func (w *Workspace) Move(id string, dest *int) error {
	if dest == nil {
		if _, err := w.cards.Get(id); err != nil {
			return err
		}
		logrus.WithField("card_id", id).Debug("Move without destination ignored")
		return nil
	}
	if err := w.cards.Move(id, *dest); err != nil {
		return err
	}
	w.changed()
	return nil
}

func (w *Workspace) Clear() {
	w.cards.Clear()
	w.changed()
}

// Export renders the collection as the export artifact and writes it to the
// export store when one is configured. collection.ErrEmpty is returned for an
// empty collection.
func (w *Workspace) Export(ctx context.Context) (*core.Export, error) {
	data, err := w.cards.ExportJSON()
	if err != nil {
		return nil, err
	}

	export := &core.Export{
		Filename:  w.exportName,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if w.exports == nil {
		return export, nil
	}

	id, err := w.exports.Save(ctx, export)
	if err != nil {
		logrus.WithError(err).Error("Failed to save export")
		return nil, fmt.Errorf("save export: %w", err)
	}
	export.ID = id
	logrus.WithFields(logrus.Fields{"export_id": id, "data_length": len(data)}).Info("Export saved")
	return export, nil
}

// Exports returns the export store, or nil.
func (w *Workspace) Exports() core.ExportStore {
	return w.exports
}
