// internal/service/popup/session.go
package popup

import (
	"context"
	"sync"

	"bakery-popup/internal/domain/popup"
	"bakery-popup/internal/metrics"
	"bakery-popup/internal/pkg/clock"
	xerrors "bakery-popup/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Observer receives every frame the session produces. Methods run with the
// session lock held and must not call back into the Session.
type Observer interface {
	OnDisplay(s popup.Snapshot)
	OnTick(s popup.Snapshot)
	OnRotate(s popup.Snapshot)
	OnClosing(s popup.Snapshot)
	OnEmpty(sessionID string)
}

type nopObserver struct{}

func (nopObserver) OnDisplay(popup.Snapshot) {}
func (nopObserver) OnTick(popup.Snapshot)    {}
func (nopObserver) OnRotate(popup.Snapshot)  {}
func (nopObserver) OnClosing(popup.Snapshot) {}
func (nopObserver) OnEmpty(string)           {}

// CloseFunc is invoked at most once per displayed activation, when the
// session closes itself on timeout or the user closes it.
type CloseFunc func(sessionID string, reason popup.CloseReason)

// SessionOption configures a Session.
type SessionOption func(*Session)

func WithClock(c clock.Clock) SessionOption {
	return func(s *Session) { s.clock = c }
}

func WithObserver(o Observer) SessionOption {
	return func(s *Session) { s.observer = o }
}

func WithMetrics(m *metrics.PopupMetrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// Session drives one popup: Idle -> Loading -> Displaying -> Closing -> Idle.
//
// Every timer belongs to the current activation's arena and every timer
// callback carries the epoch it was scheduled in; a callback whose epoch is
// stale or whose state no longer matches does nothing. The close callback
// runs at most once per activation, and only for sessions that displayed.
type Session struct {
	loader   Loader
	onClose  CloseFunc
	clock    clock.Clock
	observer Observer
	logger   *zap.Logger
	metrics  *metrics.PopupMetrics

	mu         sync.Mutex
	state      popup.SessionState
	epoch      uint64
	open       bool
	sessionID  string
	offers     []popup.Offer
	index      int
	timeLeft   int
	duration   int
	fallback   bool
	closeFired bool
	torndown   bool
	arena      *timerArena
	cancelLoad context.CancelFunc
}

func NewSession(loader Loader, onClose CloseFunc, logger *zap.Logger, opts ...SessionOption) *Session {
	s := &Session{
		loader:   loader,
		onClose:  onClose,
		clock:    clock.Real{},
		observer: nopObserver{},
		logger:   logger,
		state:    popup.StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.onClose == nil {
		s.onClose = func(string, popup.CloseReason) {}
	}
	s.arena = newTimerArena(s.clock)
	return s
}

// SetOpen feeds the host's open flag. Only edges matter: false->true starts
// an activation, true->false tears the current one down without invoking
// the close callback.
func (s *Session) SetOpen(ctx context.Context, open bool) error {
	s.mu.Lock()
	prev := s.open
	s.open = open
	s.mu.Unlock()

	switch {
	case open && !prev:
		return s.activate(ctx)
	case !open && prev:
		s.mu.Lock()
		s.endLocked(popup.CloseReasonExternal, false)
		s.mu.Unlock()
	}
	return nil
}

// Open starts an activation regardless of the current open flag. It returns
// ErrSessionBusy unless the session is Idle.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
	return s.activate(ctx)
}

// Close is the user dismissing the popup. A displayed session invokes the
// close callback immediately, skipping the grace delay.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case popup.StateDisplaying, popup.StateClosing:
		s.endLocked(popup.CloseReasonManual, true)
	case popup.StateLoading:
		s.endLocked(popup.CloseReasonManual, false)
	}
}

// Teardown releases everything when the host goes away. It is final: any
// later or in-flight activation returns ErrActivationAborted.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.torndown = true
	s.endLocked(popup.CloseReasonTeardown, false)
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() popup.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current state.
func (s *Session) State() popup.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) activate(ctx context.Context) error {
	s.mu.Lock()
	if s.torndown {
		s.open = false
		s.mu.Unlock()
		s.metrics.Activation("aborted")
		return xerrors.ErrActivationAborted
	}
	if s.state != popup.StateIdle {
		s.mu.Unlock()
		s.metrics.Activation("busy")
		return xerrors.ErrSessionBusy
	}

	s.epoch++
	epoch := s.epoch
	s.state = popup.StateLoading
	s.sessionID = ulid.Make().String()
	s.offers = nil
	s.index = 0
	s.timeLeft = 0
	s.duration = 0
	s.fallback = false
	s.closeFired = false

	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	s.mu.Unlock()

	feed := s.loader.Load(loadCtx)
	// The loader swallows cancellation into the fallback feed, so a dead
	// context has to be checked here.
	cancelled := loadCtx.Err() != nil
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.torndown || s.epoch != epoch || s.state != popup.StateLoading {
		s.metrics.Activation("aborted")
		return xerrors.ErrActivationAborted
	}
	s.cancelLoad = nil
	if cancelled {
		s.state = popup.StateIdle
		s.open = false
		s.epoch++
		s.metrics.Activation("aborted")
		return xerrors.ErrActivationAborted
	}

	if len(feed.Offers) == 0 {
		s.state = popup.StateIdle
		s.open = false
		s.metrics.Activation("empty")
		s.logger.Info("no active offers, popup suppressed", zap.String("session_id", s.sessionID))
		s.observer.OnEmpty(s.sessionID)
		return nil
	}

	s.offers = append([]popup.Offer(nil), feed.Offers...)
	s.duration = feed.Duration
	s.timeLeft = feed.Duration
	s.fallback = feed.Fallback
	s.state = popup.StateDisplaying

	s.arena.Every(popup.CountdownInterval, func() { s.tick(epoch) })
	if len(s.offers) > 1 {
		s.arena.Every(popup.RotationInterval, func() { s.rotate(epoch) })
	}

	s.metrics.Activation("displayed")
	s.metrics.SessionDisplayed()
	s.logger.Info("popup displayed",
		zap.String("session_id", s.sessionID),
		zap.Int("offers", len(s.offers)),
		zap.Int("duration", s.duration),
		zap.Bool("fallback", s.fallback),
	)
	s.observer.OnDisplay(s.snapshotLocked())
	return nil
}

func (s *Session) tick(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || s.state != popup.StateDisplaying {
		return
	}

	s.timeLeft--
	if s.timeLeft > 0 {
		s.observer.OnTick(s.snapshotLocked())
		return
	}

	s.timeLeft = 0
	s.state = popup.StateClosing
	s.arena.ReleaseAll()
	s.arena.After(popup.CloseGrace, func() { s.finish(epoch) })
	s.observer.OnTick(s.snapshotLocked())
	s.observer.OnClosing(s.snapshotLocked())
}

func (s *Session) rotate(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || s.state != popup.StateDisplaying {
		return
	}

	s.index = (s.index + 1) % len(s.offers)
	s.observer.OnRotate(s.snapshotLocked())
}

func (s *Session) finish(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || s.state != popup.StateClosing {
		return
	}
	s.endLocked(popup.CloseReasonTimeout, true)
}

// endLocked returns the session to Idle from any state. Bumping the epoch
// makes any callback already in flight inert.
func (s *Session) endLocked(reason popup.CloseReason, notify bool) {
	s.arena.ReleaseAll()
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}

	wasLive := s.state == popup.StateDisplaying || s.state == popup.StateClosing
	if s.state == popup.StateIdle {
		s.open = false
		return
	}

	s.state = popup.StateIdle
	s.open = false
	s.epoch++

	if !wasLive {
		return
	}

	s.metrics.SessionEnded(string(reason))
	s.logger.Info("popup closed",
		zap.String("session_id", s.sessionID),
		zap.String("reason", string(reason)),
	)

	if notify && !s.closeFired {
		s.closeFired = true
		s.onClose(s.sessionID, reason)
	}
}

func (s *Session) snapshotLocked() popup.Snapshot {
	return popup.Snapshot{
		SessionID:    s.sessionID,
		State:        s.state,
		StateName:    s.state.String(),
		Offers:       append([]popup.Offer(nil), s.offers...),
		CurrentIndex: s.index,
		TimeLeft:     s.timeLeft,
		Duration:     s.duration,
		Fallback:     s.fallback,
	}
}
