package popup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bakery-popup/internal/domain/popup"
	"bakery-popup/internal/pkg/clock"
	"bakery-popup/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store unavailable")

// failingStore fails every read.
type failingStore struct{}

func (failingStore) List(context.Context, string) ([]popup.Document, error) {
	return nil, errStoreDown
}

func (failingStore) Get(context.Context, string, string) (*popup.Document, error) {
	return nil, errStoreDown
}

// staticLoader hands out a fixed feed and counts calls.
type staticLoader struct {
	mu    sync.Mutex
	feed  popup.Feed
	calls int
}

func (l *staticLoader) Load(context.Context) popup.Feed {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.feed
}

func (l *staticLoader) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// blockingLoader parks until released or its context is cancelled.
type blockingLoader struct {
	started chan struct{}
	release chan struct{}
	feed    popup.Feed
}

func newBlockingLoader(feed popup.Feed) *blockingLoader {
	return &blockingLoader{
		started: make(chan struct{}),
		release: make(chan struct{}),
		feed:    feed,
	}
}

func (l *blockingLoader) Load(ctx context.Context) popup.Feed {
	close(l.started)
	select {
	case <-l.release:
	case <-ctx.Done():
	}
	return l.feed
}

type recordingObserver struct {
	mu       sync.Mutex
	displays []popup.Snapshot
	ticks    []int
	rotates  []int
	closing  int
	empty    int
}

func (o *recordingObserver) OnDisplay(s popup.Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.displays = append(o.displays, s)
}

func (o *recordingObserver) OnTick(s popup.Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ticks = append(o.ticks, s.TimeLeft)
}

func (o *recordingObserver) OnRotate(s popup.Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotates = append(o.rotates, s.CurrentIndex)
}

func (o *recordingObserver) OnClosing(popup.Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closing++
}

func (o *recordingObserver) OnEmpty(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.empty++
}

type sessionFixture struct {
	session  *Session
	clock    *clock.Manual
	observer *recordingObserver
	closes   int
	reasons  []popup.CloseReason
}

func newSessionFixture(t *testing.T, loader Loader) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		clock:    clock.NewManual(time.Unix(1700000000, 0)),
		observer: &recordingObserver{},
	}
	f.session = NewSession(loader, func(_ string, reason popup.CloseReason) {
		f.closes++
		f.reasons = append(f.reasons, reason)
	}, zap.NewNop(),
		WithClock(f.clock),
		WithObserver(f.observer),
	)
	t.Cleanup(f.session.Teardown)
	return f
}

func activeOffer(id string) popup.Offer {
	return popup.Offer{ID: id, Title: "Offer " + id, IsActive: true}
}

func feedOf(duration int, ids ...string) popup.Feed {
	feed := popup.Feed{Duration: duration}
	for _, id := range ids {
		feed.Offers = append(feed.Offers, activeOffer(id))
	}
	return feed
}

func seedOffer(t *testing.T, store *memory.DocumentStore, id string, active bool) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), popup.CollectionOffers, id, map[string]interface{}{
		popup.FieldTitle:    "Offer " + id,
		popup.FieldIsActive: active,
	}))
}

func seedDuration(t *testing.T, store *memory.DocumentStore, d interface{}) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), popup.CollectionConfig, popup.ConfigKeyPopupHero, map[string]interface{}{
		popup.FieldDuration: d,
	}))
}
