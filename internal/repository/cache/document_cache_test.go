package cache

import (
	"context"
	"testing"
	"time"

	"bakery-popup/internal/domain/popup"
	"bakery-popup/internal/repository/memory"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingStore struct {
	popup.DocumentStore
	lists int
}

func (s *countingStore) List(ctx context.Context, collection string) ([]popup.Document, error) {
	s.lists++
	return s.DocumentStore.List(ctx, collection)
}

func newCache(t *testing.T) (*DocumentCache, *countingStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &countingStore{DocumentStore: memory.NewDocumentStore()}
	return NewDocumentCache(store, client, time.Minute, zap.NewNop()), store
}

func TestListIsServedFromCache(t *testing.T) {
	c, store := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Create(ctx, popup.CollectionOffers, "a", map[string]interface{}{"title": "Baguette"}))

	first, err := c.List(ctx, popup.CollectionOffers)
	require.NoError(t, err)
	second, err := c.List(ctx, popup.CollectionOffers)
	require.NoError(t, err)

	require.Equal(t, 1, store.lists)
	require.Equal(t, first[0].ID, second[0].ID)
	require.Equal(t, "Baguette", second[0].Fields["title"])
}

func TestWritesInvalidate(t *testing.T) {
	c, store := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Create(ctx, popup.CollectionOffers, "a", map[string]interface{}{"title": "Baguette"}))

	_, err := c.List(ctx, popup.CollectionOffers)
	require.NoError(t, err)

	require.NoError(t, c.Update(ctx, popup.CollectionOffers, "a", map[string]interface{}{"title": "Brioche"}))

	docs, err := c.List(ctx, popup.CollectionOffers)
	require.NoError(t, err)
	require.Equal(t, 2, store.lists)
	require.Equal(t, "Brioche", docs[0].Fields["title"])
}

func TestRedisOutageFallsThroughToStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })

	store := &countingStore{DocumentStore: memory.NewDocumentStore()}
	c := NewDocumentCache(store, client, time.Minute, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, popup.CollectionConfig, popup.ConfigKeyPopupHero, map[string]interface{}{"duration": 5}))

	doc, err := c.Get(ctx, popup.CollectionConfig, popup.ConfigKeyPopupHero)
	require.NoError(t, err)
	require.Equal(t, 5, doc.Fields["duration"])
}
