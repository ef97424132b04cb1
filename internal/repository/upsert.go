// internal/repository/upsert.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"bakery-popup/internal/domain/popup"
	xerrors "bakery-popup/internal/pkg/errors"
)

// ProbeUpserter implements popup.Upserter on top of any DocumentWriter by
// probing with an update and falling back to a create when the target does
// not exist yet.
type ProbeUpserter struct {
	store popup.DocumentWriter
}

func NewProbeUpserter(store popup.DocumentWriter) *ProbeUpserter {
	return &ProbeUpserter{store: store}
}

func (u *ProbeUpserter) UpsertIfAbsent(ctx context.Context, collection, id string, fields map[string]interface{}) (popup.UpsertResult, error) {
	err := u.store.Update(ctx, collection, id, fields)
	if err == nil {
		return popup.UpsertResult{Created: false}, nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return popup.UpsertResult{}, fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}

	err = u.store.Create(ctx, collection, id, fields)
	if err == nil {
		return popup.UpsertResult{Created: true}, nil
	}

	// Someone created it between our probe and the create.
	if errors.Is(err, xerrors.ErrConflict) {
		if err := u.store.Update(ctx, collection, id, fields); err != nil {
			return popup.UpsertResult{}, fmt.Errorf("failed to update %s/%s after conflict: %w", collection, id, err)
		}
		return popup.UpsertResult{Created: false}, nil
	}

	return popup.UpsertResult{}, fmt.Errorf("failed to create %s/%s: %w", collection, id, err)
}
