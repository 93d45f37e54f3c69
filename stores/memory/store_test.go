package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"cardgen-server/core"
)

func TestSave_Success(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	id, err := store.Save(ctx, &core.Export{Filename: "flashcards.json", Data: []byte(`[]`), CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// Verify the ID is a valid ULID format (26 characters)
	if len(id) != 26 {
		t.Errorf("Save() returned invalid ID length: got %d, want 26", len(id))
	}

	got, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}
	if got.ID != id || got.Filename != "flashcards.json" || string(got.Data) != `[]` {
		t.Errorf("FindID() returned %+v", got)
	}
}

func TestSave_CopiesData(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	data := []byte(`[{"id":"a"}]`)
	id, _ := store.Save(ctx, &core.Export{Filename: "flashcards.json", Data: data})
	data[0] = 'X'

	got, _ := store.FindID(ctx, id)
	if string(got.Data) != `[{"id":"a"}]` {
		t.Errorf("stored data changed with caller's slice: %s", got.Data)
	}
}

func TestFindID_NotFound(t *testing.T) {
	_, err := NewStore().FindID(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if !errors.Is(err, core.ErrExportNotFound) {
		t.Errorf("Expected ErrExportNotFound, got %v", err)
	}
}

func TestLatest(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.Latest(ctx); !errors.Is(err, core.ErrExportNotFound) {
		t.Errorf("Expected ErrExportNotFound on empty store, got %v", err)
	}

	store.Save(ctx, &core.Export{Filename: "flashcards.json", Data: []byte("first")})
	second, _ := store.Save(ctx, &core.Export{Filename: "flashcards.json", Data: []byte("second")})

	got, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if got.ID != second || string(got.Data) != "second" {
		t.Errorf("Latest() returned %+v, want export %s", got, second)
	}
}
