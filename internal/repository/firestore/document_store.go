// internal/repository/firestore/document_store.go
package firestore

import (
	"context"
	"fmt"
	"sort"

	"bakery-popup/internal/domain/popup"
	xerrors "bakery-popup/internal/pkg/errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const fieldUpdatedAt = "updatedAt"

// DocumentStore reads and writes offer documents in Cloud Firestore.
type DocumentStore struct {
	client *firestore.Client
}

func NewDocumentStore(client *firestore.Client) *DocumentStore {
	return &DocumentStore{client: client}
}

func (s *DocumentStore) List(ctx context.Context, collection string) ([]popup.Document, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	docs := make([]popup.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, popup.Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*popup.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, translateError(err, "failed to get %s/%s", collection, id)
	}

	return &popup.Document{ID: snap.Ref.ID, Fields: snap.Data()}, nil
}

// Update applies a field-level update; Firestore rejects it with NotFound
// when the document does not exist.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updatesFor(fields))
	if err != nil {
		return translateError(err, "failed to update %s/%s", collection, id)
	}
	return nil
}

func (s *DocumentStore) Create(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	_, err := s.client.Collection(collection).Doc(id).Create(ctx, withUpdatedAt(fields))
	if err != nil {
		return translateError(err, "failed to create %s/%s", collection, id)
	}
	return nil
}

// updatesFor turns fields into field-path updates in a stable order, stamped
// with the server time.
func updatesFor(fields map[string]interface{}) []firestore.Update {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make([]firestore.Update, 0, len(keys)+1)
	for _, k := range keys {
		updates = append(updates, firestore.Update{Path: k, Value: fields[k]})
	}
	return append(updates, firestore.Update{Path: fieldUpdatedAt, Value: firestore.ServerTimestamp})
}

func withUpdatedAt(fields map[string]interface{}) map[string]interface{} {
	data := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data[fieldUpdatedAt] = firestore.ServerTimestamp
	return data
}

func translateError(err error, format string, args ...interface{}) error {
	switch status.Code(err) {
	case codes.NotFound:
		return xerrors.ErrNotFound
	case codes.AlreadyExists:
		return xerrors.ErrConflict
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
