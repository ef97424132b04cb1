package memory

import (
	"context"
	"testing"

	xerrors "bakery-popup/internal/pkg/errors"

	"github.com/stretchr/testify/require"
)

func TestListKeepsCreationOrder(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.Create(ctx, "popupOffers", id, map[string]interface{}{"title": id}))
	}

	docs, err := s.List(ctx, "popupOffers")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	require.Equal(t, "zeta", docs[0].ID)
	require.Equal(t, "alpha", docs[1].ID)
	require.Equal(t, "mid", docs[2].ID)
}

func TestMissingDocuments(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "config", "popupHero")
	require.ErrorIs(t, err, xerrors.ErrNotFound)
	require.ErrorIs(t, s.Update(ctx, "config", "popupHero", nil), xerrors.ErrNotFound)

	require.NoError(t, s.Create(ctx, "config", "popupHero", map[string]interface{}{"duration": 5}))
	require.ErrorIs(t, s.Create(ctx, "config", "popupHero", nil), xerrors.ErrConflict)

	docs, err := s.List(ctx, "nothing-here")
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestReturnedFieldsAreCopies(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "popupOffers", "a", map[string]interface{}{"title": "Scone"}))

	doc, err := s.Get(ctx, "popupOffers", "a")
	require.NoError(t, err)
	doc.Fields["title"] = "changed"

	again, err := s.Get(ctx, "popupOffers", "a")
	require.NoError(t, err)
	require.Equal(t, "Scone", again.Fields["title"])
}
