package cards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cardgen-server/collection"
	"cardgen-server/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	// Workspace is the part of the workspace the card endpoints use.
	Workspace interface {
		List() []core.Card
		Get(id string) (core.Card, error)
		Append(drafts ...core.Draft) []core.Card
		Update(id string, p collection.Patch) (core.Card, bool, error)
		EditText(id, text string) (core.Card, bool, error)
		Delete(id string) error
		Move(id string, dest *int) error
		Clear()
		Export(ctx context.Context) (*core.Export, error)
	}

	UpdateResponse struct {
		Card    *core.Card `json:"card,omitempty"`
		Removed bool       `json:"removed"`
	}

	EditTextRequest struct {
		Text string `json:"text"`
	}

	// MoveRequest carries the destination index. A null index is a cancelled drag.
	MoveRequest struct {
		Index *int `json:"index"`
	}
)

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

// renderLookupError answers 404 for unknown IDs and 500 otherwise.
func renderLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, collection.ErrNotFound) {
		renderError(w, r, http.StatusNotFound, "Card not found")
		return
	}
	logrus.WithError(err).Error("Card operation failed")
	renderError(w, r, http.StatusInternalServerError, "Card operation failed")
}

func HandleList(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, ws.List())
	}
}

// HandleAppend adds a JSON array of drafts and answers with the new cards.
func HandleAppend(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var drafts []core.Draft
		if err := json.NewDecoder(r.Body).Decode(&drafts); err != nil {
			logrus.WithError(err).Warn("Failed to decode drafts")
			renderError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		added := ws.Append(drafts...)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, added)
	}
}

func HandleClear(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws.Clear()
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleGet(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := ws.Get(chi.URLParam(r, "id"))
		if err != nil {
			renderLookupError(w, r, err)
			return
		}
		render.JSON(w, r, card)
	}
}

// HandleUpdate applies a partial update. Omitted fields are left unchanged.
func HandleUpdate(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch collection.Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			logrus.WithError(err).Warn("Failed to decode patch")
			renderError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		card, removed, err := ws.Update(chi.URLParam(r, "id"), patch)
		if err != nil {
			renderLookupError(w, r, err)
			return
		}
		render.JSON(w, r, updateResponse(card, removed))
	}
}

// HandleEditText replaces title and content from free-form text.
func HandleEditText(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EditTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.WithError(err).Warn("Failed to decode text edit")
			renderError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		card, removed, err := ws.EditText(chi.URLParam(r, "id"), req.Text)
		if err != nil {
			renderLookupError(w, r, err)
			return
		}
		render.JSON(w, r, updateResponse(card, removed))
	}
}

func updateResponse(card core.Card, removed bool) UpdateResponse {
	if removed {
		return UpdateResponse{Removed: true}
	}
	return UpdateResponse{Card: &card}
}

func HandleDelete(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ws.Delete(chi.URLParam(r, "id")); err != nil {
			renderLookupError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleMove relocates a card and answers with the new order.
func HandleMove(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MoveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.WithError(err).Warn("Failed to decode move")
			renderError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := ws.Move(chi.URLParam(r, "id"), req.Index); err != nil {
			renderLookupError(w, r, err)
			return
		}
		render.JSON(w, r, ws.List())
	}
}

// HandleExport downloads the export artifact. An empty collection is a 409.
func HandleExport(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		export, err := ws.Export(r.Context())
		if err != nil {
			if errors.Is(err, collection.ErrEmpty) {
				renderError(w, r, http.StatusConflict, "There are no cards to export")
				return
			}
			logrus.WithError(err).Error("Failed to export cards")
			renderError(w, r, http.StatusInternalServerError, "Failed to export cards")
			return
		}

		if export.ID != "" {
			w.Header().Set("X-Export-Id", export.ID)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
		w.Write(export.Data)
	}
}
