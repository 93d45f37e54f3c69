package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cardgen-server/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// fsStore writes each export as <basePath>/<id>/<filename>, so the artifact
// on disk is the same file a download would produce.
type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store.
func NewStore(basePath string) (*fsStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

func (s *fsStore) Save(ctx context.Context, export *core.Export) (string, error) {
	name := filepath.Base(export.Filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid export filename %q", export.Filename)
	}

	id := ulid.Make().String()
	dir := filepath.Join(s.basePath, id)
	filePath := filepath.Join(dir, name)
	log := logrus.WithFields(logrus.Fields{
		"export_id": id,
		"file_path": filePath,
	})

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.WithError(err).Error("Failed to create export directory")
		return "", err
	}
	if err := os.WriteFile(filePath, export.Data, 0644); err != nil {
		log.WithError(err).Error("Failed to write export")
		return "", err
	}

	log.Info("Export saved successfully")
	return id, nil
}

func (s *fsStore) FindID(ctx context.Context, id string) (*core.Export, error) {
	log := logrus.WithField("export_id", id)

	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		log.Warn("Invalid export ID")
		return nil, fmt.Errorf("export %s: %w", id, core.ErrExportNotFound)
	}

	dir := filepath.Join(s.basePath, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Export with specified ID not found")
			return nil, fmt.Errorf("export %s: %w", id, core.ErrExportNotFound)
		}
		log.WithError(err).Error("Failed to read export directory")
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.WithError(err).Error("Failed to read export")
			return nil, err
		}
		log.Debug("Export retrieved successfully")
		return &core.Export{
			ID:        id,
			Filename:  entry.Name(),
			Data:      data,
			CreatedAt: ulid.Time(parsed.Time()).UTC(),
		}, nil
	}
	return nil, fmt.Errorf("export %s: %w", id, core.ErrExportNotFound)
}

// Latest returns the export with the greatest ID. ULIDs sort by creation time.
func (s *fsStore) Latest(ctx context.Context) (*core.Export, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := ulid.ParseStrict(entry.Name()); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	if len(ids) == 0 {
		return nil, core.ErrExportNotFound
	}
	sort.Strings(ids)
	return s.FindID(ctx, ids[len(ids)-1])
}

