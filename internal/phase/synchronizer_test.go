package phase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/errors"
)

type result struct {
	phase domain.Phase
	err   error
}

// scriptedFetcher returns its results in order and repeats the last one.
type scriptedFetcher struct {
	mu      sync.Mutex
	results []result
	calls   int
}

func (f *scriptedFetcher) Phase(context.Context, domain.GroupID) (domain.Phase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.calls, len(f.results)-1)
	f.calls++
	return f.results[i].phase, f.results[i].err
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recorder struct {
	mu     sync.Mutex
	phases []domain.Phase
}

func (r *recorder) navigate(p domain.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, p)
}

func (r *recorder) got() []domain.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Phase(nil), r.phases...)
}

func TestCheck_EqualPhaseNeverNavigates(t *testing.T) {
	f := &scriptedFetcher{results: []result{{phase: domain.PhasePool}}}
	rec := &recorder{}
	s := New(1, domain.PhasePool, f, rec.navigate, Options{})

	for range 3 {
		p, err := s.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.PhasePool, p)
	}
	assert.Empty(t, rec.got())
}

func TestCheck_DivergenceNavigatesExactlyOnce(t *testing.T) {
	f := &scriptedFetcher{results: []result{{phase: domain.PhaseVoting}}}
	rec := &recorder{}
	s := New(1, domain.PhasePool, f, rec.navigate, Options{})

	for range 3 {
		_, err := s.Check(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, []domain.Phase{domain.PhaseVoting}, rec.got())
	assert.Equal(t, domain.PhaseVoting, s.Assumed())
}

func TestCheck_FailureKeepsAssumedPhase(t *testing.T) {
	var reported []error
	f := &scriptedFetcher{results: []result{
		{err: fmt.Errorf("connection refused")},
		{phase: "ARCHIVED"},
	}}
	rec := &recorder{}
	s := New(1, domain.PhaseVoting, f, rec.navigate, Options{OnError: func(err error) { reported = append(reported, err) }})

	p, err := s.Check(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.PhaseVoting, p)

	_, err = s.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown phase")

	assert.Empty(t, rec.got())
	assert.Equal(t, domain.PhaseVoting, s.Assumed())
	assert.Len(t, reported, 2)
}

func TestCheck_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	f := &scriptedFetcher{results: []result{{err: fmt.Errorf("502")}}}
	s := New(1, domain.PhasePool, f, nil, Options{BreakerFailures: 2, BreakerTimeout: time.Hour})

	for range 4 {
		_, _ = s.Check(context.Background())
	}

	assert.Equal(t, 2, f.Calls(), "an open breaker must not reach the backend")
}

func TestCheck_EmptyGroup(t *testing.T) {
	f := &scriptedFetcher{results: []result{{phase: domain.PhasePool}}}
	s := New(0, domain.PhasePool, f, nil, Options{})

	_, err := s.Check(context.Background())
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.ErrorIs(t, s.Start(context.Background()), errors.ErrValidation)
	assert.Zero(t, f.Calls())
}

func TestStart_PollsUntilStopped(t *testing.T) {
	f := &scriptedFetcher{results: []result{
		{phase: domain.PhasePool},
		{phase: domain.PhasePool},
		{phase: domain.PhaseVoting},
	}}
	rec := &recorder{}
	s := New(1, domain.PhasePool, f, rec.navigate, Options{Interval: 10 * time.Millisecond})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")

	assert.Eventually(t, func() bool { return len(rec.got()) == 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	calls := f.Calls()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, calls, f.Calls(), "no polling after Stop")
	assert.Equal(t, []domain.Phase{domain.PhaseVoting}, rec.got())

	s.Stop()
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	f := &scriptedFetcher{results: []result{{phase: domain.PhasePool}}}
	s := New(1, domain.PhasePool, f, nil, Options{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	assert.Eventually(t, func() bool { return f.Calls() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	s.Stop()
	calls := f.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, f.Calls())
}

// slowFetcher blocks each fetch until its context ends or delay passes.
type slowFetcher struct {
	delay   time.Duration
	started chan struct{}
	once    sync.Once
}

func (f *slowFetcher) Phase(ctx context.Context, _ domain.GroupID) (domain.Phase, error) {
	f.once.Do(func() { close(f.started) })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(f.delay):
		return domain.PhaseVoting, nil
	}
}

func TestStop_CancelsInFlightCheck(t *testing.T) {
	f := &slowFetcher{delay: 3 * time.Second, started: make(chan struct{})}
	rec := &recorder{}
	var reported []error
	s := New(1, domain.PhasePool, f, rec.navigate, Options{
		Interval: 10 * time.Millisecond,
		OnError:  func(err error) { reported = append(reported, err) },
	})

	require.NoError(t, s.Start(context.Background()))
	select {
	case <-f.started:
	case <-time.After(time.Second):
		t.Fatal("poller never fetched")
	}

	begin := time.Now()
	s.Stop()

	assert.Less(t, time.Since(begin), 500*time.Millisecond)
	assert.Empty(t, rec.got())
	assert.Empty(t, reported, "teardown is not a failure")
	assert.Equal(t, domain.PhasePool, s.Assumed())
}
