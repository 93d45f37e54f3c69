package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cardgen-server/core"
)

func TestSaveAndFind(t *testing.T) {
	base := t.TempDir()
	store, err := NewStore(base)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	ctx := context.Background()

	id, err := store.Save(ctx, &core.Export{Filename: "flashcards.json", Data: []byte("[\n  {}\n]")})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if len(id) != 26 {
		t.Errorf("Save() returned invalid ID length: got %d, want 26", len(id))
	}

	// The artifact is written as a plain file under its ID.
	onDisk, err := os.ReadFile(filepath.Join(base, id, "flashcards.json"))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if string(onDisk) != "[\n  {}\n]" {
		t.Errorf("unexpected artifact contents %q", onDisk)
	}

	got, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}
	if got.Filename != "flashcards.json" || string(got.Data) != string(onDisk) {
		t.Errorf("FindID() returned %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt taken from the ID")
	}
}

func TestSave_StripsDirectories(t *testing.T) {
	base := t.TempDir()
	store, _ := NewStore(base)

	id, err := store.Save(context.Background(), &core.Export{Filename: "../../cards.json", Data: []byte("[]")})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, id, "cards.json")); err != nil {
		t.Errorf("Expected artifact inside the store: %v", err)
	}
}

func TestFindID_NotFound(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"01ARZ3NDEKTSV4RRFFQ69G5FAV", "../etc", ""} {
		if _, err := store.FindID(ctx, id); !errors.Is(err, core.ErrExportNotFound) {
			t.Errorf("FindID(%q): expected ErrExportNotFound, got %v", id, err)
		}
	}
}

func TestLatest(t *testing.T) {
	base := t.TempDir()
	store, _ := NewStore(base)
	ctx := context.Background()

	if _, err := store.Latest(ctx); !errors.Is(err, core.ErrExportNotFound) {
		t.Errorf("Expected ErrExportNotFound on empty store, got %v", err)
	}

	// Unrelated entries are ignored.
	os.Mkdir(filepath.Join(base, "not-an-export"), 0755)

	store.Save(ctx, &core.Export{Filename: "flashcards.json", Data: []byte("first")})
	second, _ := store.Save(ctx, &core.Export{Filename: "flashcards.json", Data: []byte("second")})

	got, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if got.ID != second {
		t.Errorf("Latest() returned %s, want %s", got.ID, second)
	}
}
