package firestore

import (
	"errors"
	"testing"

	xerrors "bakery-popup/internal/pkg/errors"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestTranslateError(t *testing.T) {
	require.ErrorIs(t, translateError(status.Error(codes.NotFound, "no doc"), "get %s", "x"), xerrors.ErrNotFound)
	require.ErrorIs(t, translateError(status.Error(codes.AlreadyExists, "exists"), "create %s", "x"), xerrors.ErrConflict)

	denied := status.Error(codes.PermissionDenied, "rules")
	err := translateError(denied, "failed to update %s/%s", "popupOffers", "mainOffer")
	require.ErrorContains(t, err, "failed to update popupOffers/mainOffer")
	require.Equal(t, codes.PermissionDenied, status.Code(errors.Unwrap(err)))
	require.NotErrorIs(t, err, xerrors.ErrNotFound)
}

func TestUpdatesForIsSortedAndStamped(t *testing.T) {
	updates := updatesFor(map[string]interface{}{
		"title":           "Brioche Brunch",
		"discountPercent": 10.0,
		"isActive":        true,
	})

	require.Len(t, updates, 4)
	require.Equal(t, "discountPercent", updates[0].Path)
	require.Equal(t, "isActive", updates[1].Path)
	require.Equal(t, "title", updates[2].Path)
	require.Equal(t, fieldUpdatedAt, updates[3].Path)
	require.Equal(t, firestore.ServerTimestamp, updates[3].Value)
}

func TestWithUpdatedAtCopies(t *testing.T) {
	fields := map[string]interface{}{"title": "Scone Sunday"}
	data := withUpdatedAt(fields)

	require.Equal(t, "Scone Sunday", data["title"])
	require.Equal(t, firestore.ServerTimestamp, data[fieldUpdatedAt])
	require.NotContains(t, fields, fieldUpdatedAt)
}
