// Package tracker runs the client-side location sampling loop: one
// capture-and-send cycle immediately on start, then one per interval
// until stopped.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
)

const DefaultInterval = 60 * time.Second

// Coordinates is one device position reading.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Provider abstracts the device location API. RequestPermission is
// called once per Start; implementations return an error carrying
// ErrCodePermissionDenied when the user declines.
type Provider interface {
	RequestPermission(ctx context.Context) error
	Current(ctx context.Context) (Coordinates, error)
}

// Submitter delivers a captured sample to the server.
type Submitter interface {
	Submit(ctx context.Context, coords Coordinates) error
}

// Tracker is a start/stoppable periodic sampler. It owns a single
// timer goroutine; ticks never overlap, and an overdue tick is dropped
// rather than run concurrently with the previous one.
type Tracker struct {
	provider  Provider
	submitter Submitter
	interval  time.Duration

	mu     sync.Mutex
	active bool
	done   chan struct{}
}

type Option func(*Tracker)

// WithInterval overrides the sampling period. Used by tests; production
// callers keep the default.
func WithInterval(interval time.Duration) Option {
	return func(t *Tracker) {
		if interval > 0 {
			t.interval = interval
		}
	}
}

func New(provider Provider, submitter Submitter, opts ...Option) *Tracker {
	t := &Tracker{
		provider:  provider,
		submitter: submitter,
		interval:  DefaultInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start requests location permission and, on grant, performs one
// immediate capture-and-send cycle before arming the repeating timer.
// On permission denial the tracker stays idle and the error is
// returned to the caller. Starting an already active tracker is a
// no-op.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active {
		return nil
	}

	if err := t.provider.RequestPermission(ctx); err != nil {
		log.Warn().Err(err).Msg("location permission not granted")
		return apperrors.PermissionDenied("Location permission not granted").WithCause(err)
	}

	// First sample goes out before the timer is armed. A capture
	// failure here does not abort tracking; the next tick retries.
	t.captureAndSend(ctx)

	t.active = true
	t.done = make(chan struct{})
	go t.run(t.done)

	log.Info().Dur("interval", t.interval).Msg("location tracking started")
	return nil
}

// Stop cancels future ticks and returns the tracker to idle. An
// in-flight capture is allowed to complete. Stopping an idle tracker
// is a no-op.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return
	}

	close(t.done)
	t.active = false
	t.done = nil

	log.Info().Msg("location tracking stopped")
}

// Active reports whether the sampling loop is running.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tracker) run(done chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.captureAndSend(context.Background())
		}
	}
}

// captureAndSend performs one cycle. Failures are logged and skipped;
// a bad tick never stops the timer. The next scheduled tick is the
// retry.
func (t *Tracker) captureAndSend(ctx context.Context) {
	coords, err := t.provider.Current(ctx)
	if err != nil {
		log.Warn().Err(apperrors.SampleCaptureFailed(err)).Msg("skipping location sample")
		return
	}

	if err := t.submitter.Submit(ctx, coords); err != nil {
		log.Warn().Err(apperrors.SampleCaptureFailed(err)).Msg("failed to submit location sample")
		return
	}

	log.Debug().
		Float64("latitude", coords.Latitude).
		Float64("longitude", coords.Longitude).
		Msg("location sample submitted")
}
