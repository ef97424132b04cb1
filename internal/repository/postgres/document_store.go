// internal/repository/postgres/document_store.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bakery-popup/internal/domain/popup"
	xerrors "bakery-popup/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// DocumentStore persists offer store documents as JSONB rows keyed by
// (collection, id).
type DocumentStore struct {
	db *pgxpool.Pool
}

func NewDocumentStore(db *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{db: db}
}

// EnsureSchema creates the documents table if it does not exist yet.
func (r *DocumentStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS popup_documents (
			collection  TEXT        NOT NULL,
			id          TEXT        NOT NULL,
			fields      JSONB       NOT NULL DEFAULT '{}'::jsonb,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create popup_documents: %w", err)
	}
	return nil
}

// List returns every document in a collection in creation order.
func (r *DocumentStore) List(ctx context.Context, collection string) ([]popup.Document, error) {
	query := `
		SELECT id, fields
		FROM popup_documents
		WHERE collection = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []popup.Document{}
	for rows.Next() {
		var id string
		var fieldsJSON []byte
		if err := rows.Scan(&id, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		fields, err := unmarshalFields(fieldsJSON)
		if err != nil {
			return nil, fmt.Errorf("document %s/%s: %w", collection, id, err)
		}
		docs = append(docs, popup.Document{ID: id, Fields: fields})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// Get retrieves one document
func (r *DocumentStore) Get(ctx context.Context, collection, id string) (*popup.Document, error) {
	query := `
		SELECT fields
		FROM popup_documents
		WHERE collection = $1 AND id = $2
	`

	var fieldsJSON []byte
	err := r.db.QueryRow(ctx, query, collection, id).Scan(&fieldsJSON)
	if err != nil {
		return nil, translateError(err, "failed to get document")
	}

	fields, err := unmarshalFields(fieldsJSON)
	if err != nil {
		return nil, fmt.Errorf("document %s/%s: %w", collection, id, err)
	}

	return &popup.Document{ID: id, Fields: fields}, nil
}

// Update merges fields into an existing document.
func (r *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	query := `
		UPDATE popup_documents
		SET fields = fields || $1::jsonb, updated_at = $2
		WHERE collection = $3 AND id = $4
	`

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	result, err := r.db.Exec(ctx, query, fieldsJSON, time.Now(), collection, id)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Create inserts a new document.
func (r *DocumentStore) Create(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	query := `
		INSERT INTO popup_documents (collection, id, fields)
		VALUES ($1, $2, $3::jsonb)
	`

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	_, err = r.db.Exec(ctx, query, collection, id, fieldsJSON)
	if err != nil {
		return translateError(err, "failed to create document")
	}

	return nil
}

// translateError maps driver errors onto the store's sentinel errors.
func translateError(err error, msg string) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return xerrors.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return xerrors.ErrConflict
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

func unmarshalFields(data []byte) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if len(data) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}
	return fields, nil
}
