// Package backendtest provides an in-memory movie-night backend for tests.
//
// It serves the same REST surface the client talks to, enforces the same
// rules (pool quota, phase gates, creator-only advances), and lets tests
// inject one-shot failures and inspect the calls it received.
package backendtest

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/listenupapp/movienight/internal/domain"
)

type groupState struct {
	group    domain.Group
	pool     []domain.PoolEntry
	rankings map[domain.UserID][]domain.RankingEntry
}

type failure struct {
	status  int
	message string
}

// Backend is a fake movie-night REST backend.
type Backend struct {
	mu       sync.Mutex
	router   *chi.Mux
	tokens   map[string]domain.UserID
	movies   map[domain.MovieID]domain.Movie
	groups   map[domain.GroupID]*groupState
	failures map[string]failure
	calls    []string
}

// New creates an empty backend.
func New() *Backend {
	b := &Backend{
		router:   chi.NewRouter(),
		tokens:   make(map[string]domain.UserID),
		movies:   make(map[domain.MovieID]domain.Movie),
		groups:   make(map[domain.GroupID]*groupState),
		failures: make(map[string]failure),
	}
	b.setupRoutes()
	return b
}

// Start serves the backend on a test server closed at test cleanup.
func Start(t testing.TB) (*Backend, *httptest.Server) {
	t.Helper()
	b := New()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

func (b *Backend) setupRoutes() {
	b.router.Use(middleware.Recoverer)
	b.router.Use(b.record)
	b.router.Use(b.injectFailures)

	b.router.Route("/groups/{groupId}", func(r chi.Router) {
		r.Use(b.requireAuth)
		r.Get("/", b.handleGetGroup)
		r.Get("/pool", b.handleGetPool)
		r.Post("/pool/{movieId}", b.handleAddToPool)
		r.Delete("/pool/{movieId}", b.handleRemoveFromPool)
		r.Post("/start-voting", b.handleStartVoting)
		r.Get("/vote-state", b.handleVoteState)
		r.Post("/users/{userId}/rankings", b.handleSubmitRankings)
		r.Post("/show-results", b.handleShowResults)
		r.Get("/rankings/result", b.handleRankingResult)
		r.Get("/rankings/details", b.handleRankingDetails)
	})
}

// AddUser registers a user reachable with token.
func (b *Backend) AddUser(userID domain.UserID, token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = userID
}

// AddMovie makes a movie available to pools.
func (b *Backend) AddMovie(movies ...domain.Movie) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range movies {
		b.movies[m.ID] = m
	}
}

// AddGroup creates a group. An empty phase defaults to POOL.
func (b *Backend) AddGroup(g domain.Group) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g.Phase == "" {
		g.Phase = domain.PhasePool
	}
	if !slices.Contains(g.MemberIDs, g.CreatorID) {
		g.MemberIDs = append(g.MemberIDs, g.CreatorID)
	}
	pool := g.Pool
	g.Pool = nil
	b.groups[g.ID] = &groupState{
		group:    g,
		pool:     pool,
		rankings: make(map[domain.UserID][]domain.RankingEntry),
	}
}

// SetPhase forces a group's phase.
func (b *Backend) SetPhase(groupID domain.GroupID, phase domain.Phase) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gs, ok := b.groups[groupID]; ok {
		gs.group.Phase = phase
	}
}

// Phase returns a group's phase.
func (b *Backend) Phase(groupID domain.GroupID) domain.Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gs, ok := b.groups[groupID]; ok {
		return gs.group.Phase
	}
	return ""
}

// PoolEntries returns a copy of a group's pool.
func (b *Backend) PoolEntries(groupID domain.GroupID) []domain.PoolEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gs, ok := b.groups[groupID]; ok {
		return slices.Clone(gs.pool)
	}
	return nil
}

// SetRankings stores a ballot as if userID had already voted.
func (b *Backend) SetRankings(groupID domain.GroupID, userID domain.UserID, rankings []domain.RankingEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gs, ok := b.groups[groupID]; ok {
		gs.rankings[userID] = slices.Clone(rankings)
	}
}

// Rankings returns the ballot userID submitted, nil if none.
func (b *Backend) Rankings(groupID domain.GroupID, userID domain.UserID) []domain.RankingEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gs, ok := b.groups[groupID]; ok {
		return slices.Clone(gs.rankings[userID])
	}
	return nil
}

// FailNext makes the next request matching method and path fail with
// status and a {"message": ...} payload.
func (b *Backend) FailNext(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, message: message}
}

// Calls returns every request received as "METHOD /path".
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// CallCount counts requests received as "METHOD /path".
func (b *Backend) CallCount(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == method+" "+path {
			n++
		}
	}
	return n
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		f, ok := b.failures[key]
		delete(b.failures, key)
		b.mu.Unlock()

		if ok {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		_, known := b.tokens[token]
		b.mu.Unlock()

		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
