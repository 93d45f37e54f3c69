package exports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cardgen-server/core"

	"github.com/go-chi/chi/v5"
)

// Mock export store for testing
type mockExportStore struct {
	exports map[string]*core.Export
	latest  string
	err     error
}

func (m *mockExportStore) Save(ctx context.Context, e *core.Export) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockExportStore) FindID(ctx context.Context, id string) (*core.Export, error) {
	if m.err != nil {
		return nil, m.err
	}
	if e, ok := m.exports[id]; ok {
		return e, nil
	}
	return nil, core.ErrExportNotFound
}

func (m *mockExportStore) Latest(ctx context.Context) (*core.Export, error) {
	if m.latest == "" && m.err == nil {
		return nil, core.ErrExportNotFound
	}
	return m.FindID(ctx, m.latest)
}

func newRouter(store core.ExportStore) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/exports/latest", HandleLatest(store))
	r.Get("/api/exports/{id}", HandleGet(store))
	return r
}

func TestHandleLatest(t *testing.T) {
	store := &mockExportStore{
		exports: map[string]*core.Export{
			"E1": {ID: "E1", Filename: "flashcards.json", Data: []byte(`[]`), CreatedAt: time.Unix(0, 0)},
		},
		latest: "E1",
	}
	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/latest", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != `[]` {
		t.Errorf("Unexpected body %q", rec.Body.String())
	}
	if got := rec.Header().Get("X-Export-Id"); got != "E1" {
		t.Errorf("Unexpected export ID header %q", got)
	}
}

func TestHandleLatest_NothingExported(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&mockExportStore{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/latest", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleGet(t *testing.T) {
	store := &mockExportStore{exports: map[string]*core.Export{
		"E2": {ID: "E2", Filename: "cards.json", Data: []byte(`[{"id":"x"}]`)},
	}}
	router := newRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/E2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `inline; filename="cards.json"` {
		t.Errorf("Unexpected Content-Disposition %q", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusNotFound)
	}

	store.err = errors.New("disk error")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/E2", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
