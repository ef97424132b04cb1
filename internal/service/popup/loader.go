// internal/service/popup/loader.go
package popup

import (
	"context"
	"errors"
	"fmt"

	"bakery-popup/internal/domain/popup"
	"bakery-popup/internal/metrics"
	xerrors "bakery-popup/internal/pkg/errors"

	"go.uber.org/zap"
)

var errNoOffers = errors.New("offer collection is empty")

// Loader produces the offers and countdown duration for one activation.
type Loader interface {
	Load(ctx context.Context) popup.Feed
}

// FeedLoader reads the offer feed from the offer store. It never returns an
// error: any failure degrades to popup.DefaultFeed.
type FeedLoader struct {
	store   popup.DocumentReader
	logger  *zap.Logger
	metrics *metrics.PopupMetrics
}

func NewFeedLoader(store popup.DocumentReader, logger *zap.Logger, m *metrics.PopupMetrics) *FeedLoader {
	return &FeedLoader{
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

// Load fetches active offers in store order plus the configured duration.
// A store with no offer documents at all is treated like a fetch failure;
// a store whose offers are all inactive yields an empty feed.
func (l *FeedLoader) Load(ctx context.Context) popup.Feed {
	feed, err := l.load(ctx)
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Warn("offer feed unavailable, using welcome offer", zap.Error(err))
			l.metrics.FeedFallback()
		}
		return popup.DefaultFeed()
	}
	return feed
}

func (l *FeedLoader) load(ctx context.Context) (popup.Feed, error) {
	docs, err := l.store.List(ctx, popup.CollectionOffers)
	if err != nil {
		return popup.Feed{}, fmt.Errorf("failed to list offers: %w", err)
	}
	if len(docs) == 0 {
		return popup.Feed{}, errNoOffers
	}

	offers := make([]popup.Offer, 0, len(docs))
	for _, doc := range docs {
		o := popup.DecodeOffer(doc)
		if o.IsActive {
			offers = append(offers, o)
		}
	}

	cfgDoc, err := l.store.Get(ctx, popup.CollectionConfig, popup.ConfigKeyPopupHero)
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return popup.Feed{}, fmt.Errorf("failed to get popup config: %w", err)
	}
	if errors.Is(err, xerrors.ErrNotFound) {
		cfgDoc = nil
	}

	return popup.Feed{
		Offers:   offers,
		Duration: popup.DecodeConfig(cfgDoc).Duration,
	}, nil
}
