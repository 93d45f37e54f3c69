package generate

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"cardgen-server/core"
	"cardgen-server/generation"
	"cardgen-server/ingest"
	"cardgen-server/latch"
	"cardgen-server/transport"
	"cardgen-server/workspace"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// maxUploadMemory is how much of a multipart upload is held in memory before
// spilling to temporary files.
const maxUploadMemory = 32 << 20

type (
	// Workspace is the part of the workspace the request endpoints use.
	Workspace interface {
		Generate(ctx context.Context, topic string) ([]core.Card, error)
		Upload(ctx context.Context, files []ingest.File) ([]core.Card, error)
		Status(ctx context.Context) workspace.Status
	}

	GenerateRequest struct {
		Topic string `json:"topic"`
	}

	// CardsResponse lists the cards a request appended.
	CardsResponse struct {
		Cards []core.Card `json:"cards"`
	}

	ErrorResponse struct {
		Error  string `json:"error"`
		Kind   string `json:"kind,omitempty"`
		Status int    `json:"status,omitempty"`
	}
)

// renderRequestError maps request failures onto HTTP statuses. Backend
// failures are a 502 that names the failure kind.
func renderRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var terr *transport.Error
	switch {
	case errors.Is(err, latch.ErrBusy):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
	case errors.Is(err, generation.ErrEmptyTopic), errors.Is(err, ingest.ErrNoFiles):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ingest.ErrUnsupportedKind):
		render.Status(r, http.StatusUnsupportedMediaType)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
	case errors.As(err, &terr):
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, ErrorResponse{Error: terr.Error(), Kind: string(terr.Kind), Status: terr.StatusCode})
	default:
		logrus.WithError(err).Error("Request failed")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
	}
}

// HandleGenerate turns a topic into cards.
func HandleGenerate(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.WithError(err).Warn("Failed to decode generate request")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
			return
		}

		cards, err := ws.Generate(r.Context(), req.Topic)
		if err != nil {
			renderRequestError(w, r, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, CardsResponse{Cards: cards})
	}
}

// HandleUpload forwards the files in the multipart "files" field to the
// ingestion backend.
func HandleUpload(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			logrus.WithError(err).Warn("Failed to parse upload")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "Invalid multipart body"})
			return
		}
		defer r.MultipartForm.RemoveAll()

		headers := r.MultipartForm.File[ingest.FormField]
		files := make([]ingest.File, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				logrus.WithError(err).WithField("filename", fh.Filename).Error("Failed to open uploaded file")
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, ErrorResponse{Error: "Failed to read uploaded file"})
				return
			}
			defer func(f multipart.File) { f.Close() }(f)
			files = append(files, ingest.File{Name: fh.Filename, Body: f})
		}

		cards, err := ws.Upload(r.Context(), files)
		if err != nil {
			renderRequestError(w, r, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, CardsResponse{Cards: cards})
	}
}

// HandleStatus reports whether the backends are reachable.
func HandleStatus(ws Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, ws.Status(r.Context()))
	}
}
