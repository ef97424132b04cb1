// internal/domain/popup/repository.go
package popup

import "context"

// DocumentReader is the read side of the offer store. Get returns
// xerrors.ErrNotFound when the document does not exist.
type DocumentReader interface {
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
}

// DocumentWriter is the write side of the offer store. Update returns
// xerrors.ErrNotFound when the target is missing; Create returns
// xerrors.ErrConflict when it already exists.
type DocumentWriter interface {
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Create(ctx context.Context, collection, id string, fields map[string]interface{}) error
}

type DocumentStore interface {
	DocumentReader
	DocumentWriter
}

// UpsertResult reports which branch an upsert took.
type UpsertResult struct {
	Created bool
}

// Upserter writes a document whether or not it exists yet: update if it is
// there, create otherwise.
type Upserter interface {
	UpsertIfAbsent(ctx context.Context, collection, id string, fields map[string]interface{}) (UpsertResult, error)
}
