// internal/repository/memory/document_store.go
package memory

import (
	"context"
	"sync"

	"bakery-popup/internal/domain/popup"
	xerrors "bakery-popup/internal/pkg/errors"
)

// DocumentStore keeps documents in process memory. List returns documents in
// creation order. Used for local development and tests.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	order []string
	docs  map[string]map[string]interface{}
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{collections: make(map[string]*collection)}
}

func (s *DocumentStore) List(ctx context.Context, name string) ([]popup.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return []popup.Document{}, nil
	}

	docs := make([]popup.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, popup.Document{ID: id, Fields: copyFields(c.docs[id])})
	}
	return docs, nil
}

func (s *DocumentStore) Get(ctx context.Context, name, id string) (*popup.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	fields, ok := c.docs[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &popup.Document{ID: id, Fields: copyFields(fields)}, nil
}

// Update merges fields into an existing document.
func (s *DocumentStore) Update(ctx context.Context, name, id string, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return xerrors.ErrNotFound
	}
	existing, ok := c.docs[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

func (s *DocumentStore) Create(ctx context.Context, name, id string, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]map[string]interface{})}
		s.collections[name] = c
	}
	if _, exists := c.docs[id]; exists {
		return xerrors.ErrConflict
	}
	c.docs[id] = copyFields(fields)
	c.order = append(c.order, id)
	return nil
}

func copyFields(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
