package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cardgen-server/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore opens the database and creates the exports table when missing.
func NewStore(dataSourceName string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	exportTableStmt := `
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		data BLOB,
		created_at INTEGER NOT NULL
	);`
	if _, err = db.Exec(exportTableStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create exports table: %w", err)
	}

	return &sqliteStore{db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) Save(ctx context.Context, export *core.Export) (string, error) {
	id := ulid.Make().String()
	createdAt := export.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	log := logrus.WithFields(logrus.Fields{
		"export_id":   id,
		"data_length": len(export.Data),
	})

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO exports (id, filename, data, created_at) VALUES (?, ?, ?, ?)",
		id, export.Filename, export.Data, createdAt.UnixMilli())
	if err != nil {
		log.WithError(err).Error("Failed to save export")
		return "", err
	}
	log.Info("Export saved successfully")
	return id, nil
}

func (s *sqliteStore) FindID(ctx context.Context, id string) (*core.Export, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, filename, data, created_at FROM exports WHERE id = ?", id)
	return s.scan(row, id)
}

func (s *sqliteStore) Latest(ctx context.Context) (*core.Export, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, filename, data, created_at FROM exports ORDER BY id DESC LIMIT 1")
	return s.scan(row, "latest")
}

func (s *sqliteStore) scan(row *sql.Row, id string) (*core.Export, error) {
	log := logrus.WithField("export_id", id)

	var export core.Export
	var createdAt int64
	if err := row.Scan(&export.ID, &export.Filename, &export.Data, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Export with specified ID not found")
			return nil, fmt.Errorf("export %s: %w", id, core.ErrExportNotFound)
		}
		log.WithError(err).Error("Failed to retrieve export")
		return nil, err
	}
	export.CreatedAt = time.UnixMilli(createdAt).UTC()
	log.Debug("Export retrieved successfully")
	return &export, nil
}
