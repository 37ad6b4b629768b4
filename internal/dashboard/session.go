// Package dashboard drives the weather acquisition flow: positioning, the
// combined fetch and its bounded retry schedule.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/i18n"
	"github.com/i474232898/weather-dashboard/internal/location"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// ErrNoCoordinate is returned by Retry before any coordinate is known.
var ErrNoCoordinate = errors.New("no coordinate to fetch")

// Phase is the externally visible state of a fetch session.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseLoading        Phase = "loading"
	PhaseRetryScheduled Phase = "retry_scheduled"
	PhaseError          Phase = "error"
	PhaseLoaded         Phase = "loaded"
)

// Fetcher is satisfied by *weather.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, c weather.Coordinate) (weather.WeatherRecord, error)
}

// State is an immutable snapshot handed to subscribers.
type State struct {
	Phase      Phase
	Attempt    int           // failures so far in this session
	RetryIn    time.Duration // delay of the pending retry, if any
	Generation uint64
	Coordinate *weather.Coordinate
	Record     *weather.WeatherRecord
	ErrorKey   i18n.Key
	Err        error
}

// Loading reports whether the loading indicator should be shown. A scheduled
// retry keeps the session loading rather than surfacing an error.
func (s State) Loading() bool {
	return s.Phase == PhaseLoading || s.Phase == PhaseRetryScheduled
}

// Session owns the fetch state machine. Every Load starts a new generation;
// results and timers belonging to an older generation are dropped.
type Session struct {
	mu sync.Mutex

	fetcher    Fetcher
	clock      clockwork.Clock
	store      weather.Store
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	state       State
	timer       clockwork.Timer
	closed      bool
	subscribers []func(State)
}

// Option configures a Session.
type Option func(*Session)

func WithClock(c clockwork.Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithStore records every successful fetch in a history store.
func WithStore(st weather.Store) Option {
	return func(s *Session) { s.store = st }
}

func WithMaxRetries(n int) Option {
	return func(s *Session) { s.maxRetries = n }
}

// WithRetryDelay sets the base of the linear backoff (delay = base × attempt).
func WithRetryDelay(d time.Duration) Option {
	return func(s *Session) { s.retryDelay = d }
}

func NewSession(fetcher Fetcher, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		fetcher:    fetcher,
		clock:      clockwork.NewRealClock(),
		logger:     zap.NewNop(),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		ctx:        ctx,
		cancel:     cancel,
		state:      State{Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive every state transition. fn runs outside the
// session lock and must not block for long.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Now exposes the session clock for presentation (theme month).
func (s *Session) Now() time.Time {
	return s.clock.Now()
}

// Locate resolves the startup coordinate and loads its weather. Positioning
// failures end the session in the error phase immediately and are never retried.
func (s *Session) Locate(ctx context.Context, p location.Positioner) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return context.Canceled
	}
	gen := s.beginLocked(nil)
	snap, subs := s.state, s.subscribers
	s.mu.Unlock()
	notify(subs, snap)

	coord, err := p.Position(ctx, location.DefaultOptions())

	s.mu.Lock()
	if gen != s.state.Generation || s.closed {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.state.Phase = PhaseError
		s.state.ErrorKey = location.MessageKey(err)
		s.state.Err = err
		snap, subs = s.state, s.subscribers
		s.mu.Unlock()

		s.logger.Warn("positioning failed", zap.Error(err))
		notify(subs, snap)
		return err
	}
	s.mu.Unlock()

	s.Load(coord)
	return nil
}

// Load starts a new fetch session for c. Any pending retry of an earlier
// session is cancelled and its in-flight result will be ignored.
func (s *Session) Load(c weather.Coordinate) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	gen := s.beginLocked(&c)
	snap, subs := s.state, s.subscribers
	s.mu.Unlock()

	s.logger.Info("weather fetch started",
		zap.String("coordinate", c.Key()),
		zap.Uint64("generation", gen))
	notify(subs, snap)

	go s.attempt(gen, c)
}

// Retry is the user-triggered retry: the attempt counter starts over and the
// last known coordinate is fetched right away.
func (s *Session) Retry() error {
	s.mu.Lock()
	coord := s.state.Coordinate
	s.mu.Unlock()

	if coord == nil {
		return ErrNoCoordinate
	}
	s.Load(*coord)
	return nil
}

// Refresh reloads the last coordinate unless a session is still in flight.
// It reports whether a fetch was started.
func (s *Session) Refresh() bool {
	s.mu.Lock()
	coord := s.state.Coordinate
	busy := s.state.Loading()
	s.mu.Unlock()

	if coord == nil || busy {
		return false
	}
	s.Load(*coord)
	return true
}

// Close stops the pending retry and cancels in-flight fetches.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimerLocked()
	s.cancel()
}

// beginLocked opens a new generation in the loading phase.
func (s *Session) beginLocked(c *weather.Coordinate) uint64 {
	s.stopTimerLocked()

	coord := s.state.Coordinate
	if c != nil {
		coord = c
	}
	s.state = State{
		Phase:      PhaseLoading,
		Generation: s.state.Generation + 1,
		Coordinate: coord,
		Record:     s.state.Record,
	}
	return s.state.Generation
}

func (s *Session) attempt(gen uint64, c weather.Coordinate) {
	rec, err := s.fetcher.Fetch(s.ctx, c)

	s.mu.Lock()
	if gen != s.state.Generation || s.closed {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded fetch result", zap.Uint64("generation", gen))
		return
	}

	if err == nil {
		s.state.Phase = PhaseLoaded
		s.state.Attempt = 0
		s.state.RetryIn = 0
		s.state.Record = &rec
		s.state.ErrorKey = ""
		s.state.Err = nil
		snap, subs := s.state, s.subscribers
		s.mu.Unlock()

		if s.store != nil {
			s.store.SaveRecord(rec)
		}
		s.logger.Info("weather fetch succeeded",
			zap.String("coordinate", c.Key()),
			zap.String("place", rec.Place.Name))
		notify(subs, snap)
		return
	}

	if s.state.Attempt < s.maxRetries {
		s.state.Attempt++
		delay := s.retryDelay * time.Duration(s.state.Attempt)
		s.state.Phase = PhaseRetryScheduled
		s.state.RetryIn = delay
		s.state.Err = err
		s.timer = s.clock.AfterFunc(delay, func() { s.fire(gen, c) })
		snap, subs := s.state, s.subscribers
		s.mu.Unlock()

		s.logger.Warn("weather fetch failed, retry scheduled",
			zap.Int("attempt", snap.Attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		notify(subs, snap)
		return
	}

	s.state.Phase = PhaseError
	s.state.RetryIn = 0
	s.state.ErrorKey = i18n.KeyError
	s.state.Err = err
	snap, subs := s.state, s.subscribers
	s.mu.Unlock()

	s.logger.Error("weather fetch failed, giving up",
		zap.Int("attempts", snap.Attempt+1),
		zap.Error(err))
	notify(subs, snap)
}

// fire runs a scheduled retry.
func (s *Session) fire(gen uint64, c weather.Coordinate) {
	s.mu.Lock()
	if gen != s.state.Generation || s.closed || s.state.Phase != PhaseRetryScheduled {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.state.Phase = PhaseLoading
	s.state.RetryIn = 0
	snap, subs := s.state, s.subscribers
	s.mu.Unlock()

	notify(subs, snap)
	s.attempt(gen, c)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
