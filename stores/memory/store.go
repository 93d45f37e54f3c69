package memory

import (
	"context"
	"fmt"
	"sync"

	"cardgen-server/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// memStore keeps export artifacts for the life of the process.
type memStore struct {
	mu      sync.RWMutex
	exports map[string]core.Export
	latest  string
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{exports: make(map[string]core.Export)}
}

func (s *memStore) Save(ctx context.Context, export *core.Export) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	saved := *export
	saved.ID = id
	saved.Data = append([]byte(nil), export.Data...)
	s.exports[id] = saved
	s.latest = id

	logrus.WithFields(logrus.Fields{
		"export_id":   id,
		"data_length": len(saved.Data),
	}).Info("Export saved successfully")
	return id, nil
}

func (s *memStore) FindID(ctx context.Context, id string) (*core.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := logrus.WithField("export_id", id)
	if e, ok := s.exports[id]; ok {
		log.Debug("Export retrieved successfully")
		return &e, nil
	}
	log.Warn("Export with specified ID not found")
	return nil, fmt.Errorf("export %s: %w", id, core.ErrExportNotFound)
}

func (s *memStore) Latest(ctx context.Context) (*core.Export, error) {
	s.mu.RLock()
	id := s.latest
	s.mu.RUnlock()

	if id == "" {
		return nil, core.ErrExportNotFound
	}
	return s.FindID(ctx, id)
}
