package exports

import (
	"errors"
	"fmt"
	"net/http"

	"cardgen-server/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// HandleLatest serves the most recently written export artifact.
func HandleLatest(store core.ExportStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		export, err := store.Latest(r.Context())
		writeExport(w, r, export, err)
	}
}

// HandleGet serves one export artifact by ID.
func HandleGet(store core.ExportStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		export, err := store.FindID(r.Context(), chi.URLParam(r, "id"))
		writeExport(w, r, export, err)
	}
}

func writeExport(w http.ResponseWriter, r *http.Request, export *core.Export, err error) {
	if err != nil {
		if errors.Is(err, core.ErrExportNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Export not found"})
			return
		}
		logrus.WithError(err).Error("Failed to read export")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to read export"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Export-Id", export.ID)
	w.Header().Set("Last-Modified", export.CreatedAt.UTC().Format(http.TimeFormat))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", export.Filename))
	w.Write(export.Data)
}
