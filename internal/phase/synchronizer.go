// Package phase keeps a page in step with its group's server-side phase.
//
// A Synchronizer remembers the phase the current page assumes, polls the
// backend for the authoritative one, and calls its navigator exactly once
// whenever the two diverge.
package phase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/listenupapp/movienight/internal/domain"
	domainerrors "github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/logger"
)

const (
	defaultInterval        = time.Second
	defaultBreakerTimeout  = 10 * time.Second
	defaultBreakerFailures = 5
)

// Fetcher reads a group's current phase. backend.Gateway implements it.
type Fetcher interface {
	Phase(ctx context.Context, groupID domain.GroupID) (domain.Phase, error)
}

// Navigator switches the UI to the page for a phase.
type Navigator func(domain.Phase)

// Options tunes a Synchronizer. Zero values take defaults.
type Options struct {
	Interval        time.Duration
	BreakerTimeout  time.Duration
	BreakerFailures uint32
	Logger          *slog.Logger
	// OnError receives every failed check. Background checks report here
	// only; the poll loop keeps going.
	OnError func(error)
}

// Synchronizer polls a group's phase and navigates on divergence.
type Synchronizer struct {
	groupID  domain.GroupID
	fetcher  Fetcher
	navigate Navigator
	opts     Options
	logger   *slog.Logger
	cb       *gobreaker.CircuitBreaker[domain.Phase]

	mu       sync.Mutex
	assumed  domain.Phase
	running  bool
	stopChan chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a synchronizer for groupID whose page assumes phase assumed.
func New(groupID domain.GroupID, assumed domain.Phase, fetcher Fetcher, navigate Navigator, opts Options) *Synchronizer {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = defaultBreakerTimeout
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = defaultBreakerFailures
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	s := &Synchronizer{
		groupID:  groupID,
		fetcher:  fetcher,
		navigate: navigate,
		opts:     opts,
		logger:   log,
		assumed:  assumed,
	}
	s.cb = gobreaker.NewCircuitBreaker[domain.Phase](gobreaker.Settings{
		Name:        fmt.Sprintf("phase-%d", groupID),
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// Canceled checks say nothing about backend health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("phase breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return s
}

// Assumed returns the phase the current page assumes.
func (s *Synchronizer) Assumed() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assumed
}

// Check fetches the phase once. When it differs from the assumed phase
// the navigator is called and the fetched phase becomes the assumed one.
// On failure the assumed phase is kept and nothing navigates.
func (s *Synchronizer) Check(ctx context.Context) (domain.Phase, error) {
	if s.groupID == 0 {
		return s.Assumed(), domainerrors.Validation("no group selected")
	}

	fetched, err := s.cb.Execute(func() (domain.Phase, error) {
		p, err := s.fetcher.Phase(ctx, s.groupID)
		if err != nil {
			return "", err
		}
		if !p.Valid() {
			return "", fmt.Errorf("unknown phase %q", p)
		}
		return p, nil
	})
	if err != nil && ctx.Err() != nil {
		// Torn down mid-request.
		s.logger.Debug("phase check canceled", "group_id", s.groupID)
		return s.Assumed(), err
	}
	if err != nil {
		s.logger.Warn("phase check failed", "group_id", s.groupID, "error", err)
		if s.opts.OnError != nil {
			s.opts.OnError(err)
		}
		return s.Assumed(), err
	}

	if err := ctx.Err(); err != nil {
		return s.Assumed(), err
	}

	s.mu.Lock()
	diverged := fetched != s.assumed
	from := s.assumed
	s.assumed = fetched
	s.mu.Unlock()

	if diverged {
		s.logger.Info("phase changed", "group_id", s.groupID, "from", from, "to", fetched)
		if s.navigate != nil {
			s.navigate(fetched)
		}
	}
	return fetched, nil
}

// Start begins polling: one check immediately, then one per interval,
// until ctx is canceled or Stop is called.
func (s *Synchronizer) Start(ctx context.Context) error {
	if s.groupID == 0 {
		return domainerrors.Validation("no group selected")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.stopChan = make(chan struct{})
	s.cancel = cancel
	stop := s.stopChan
	s.mu.Unlock()

	s.logger.Debug("starting phase poller", "group_id", s.groupID, "interval", s.opts.Interval)

	s.wg.Add(1)
	go s.pollLoop(ctx, stop)
	return nil
}

// Stop ends polling. An in-flight check is canceled, not awaited to
// completion, so Stop returns promptly even against a slow backend.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Debug("phase poller stopped", "group_id", s.groupID)
}

func (s *Synchronizer) pollLoop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	s.poll(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Synchronizer) poll(ctx context.Context) {
	// Errors were already logged and reported to OnError.
	_, _ = s.Check(ctx)
}
