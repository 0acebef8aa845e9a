// Package pool manages a group's candidate-movie pool while the group is in
// the POOL phase.
package pool

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/logger"
)

// Backend is the subset of the backend API the pool page uses.
type Backend interface {
	Group(ctx context.Context, groupID domain.GroupID) (domain.Group, error)
	Pool(ctx context.Context, groupID domain.GroupID) ([]domain.PoolEntry, error)
	AddToPool(ctx context.Context, groupID domain.GroupID, movieID domain.MovieID) ([]domain.PoolEntry, error)
	RemoveFromPool(ctx context.Context, groupID domain.GroupID, movieID domain.MovieID) error
	StartVoting(ctx context.Context, groupID domain.GroupID) error
}

// Manager holds the client's view of one group's pool. The server stays
// authoritative: every successful mutation adopts what it returns.
type Manager struct {
	backend Backend
	groupID domain.GroupID
	logger  *slog.Logger

	mu      sync.RWMutex
	group   domain.Group
	entries []domain.PoolEntry
}

// NewManager creates a manager for groupID.
func NewManager(backend Backend, groupID domain.GroupID, log *slog.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{backend: backend, groupID: groupID, logger: log}
}

// Load fetches the group and its pool.
func (m *Manager) Load(ctx context.Context) error {
	group, err := m.backend.Group(ctx, m.groupID)
	if err != nil {
		return err
	}
	entries, err := m.backend.Pool(ctx, m.groupID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.group = group
	m.entries = entries
	m.logger.Debug("pool loaded", "group_id", m.groupID, "phase", group.Phase, "entries", len(entries))
	return nil
}

// Add puts a movie in the pool. Outside the POOL phase it fails locally
// with CONFLICT and nothing is sent. On success the server's pool replaces
// the local one; server rejections (quota, membership, unknown movie,
// duplicate) leave the local pool untouched.
func (m *Manager) Add(ctx context.Context, movieID domain.MovieID) error {
	if movieID <= 0 {
		return errors.Validationf("invalid movie id %d", movieID)
	}
	if err := m.requirePoolPhase("added"); err != nil {
		return err
	}

	entries, err := m.backend.AddToPool(ctx, m.groupID, movieID)
	if err != nil {
		m.logger.Info("add to pool rejected", "group_id", m.groupID, "movie_id", movieID, "error", err)
		return err
	}

	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	return nil
}

// Remove takes a movie out of the pool. The entry disappears locally
// before the request is sent and is restored if the request fails.
func (m *Manager) Remove(ctx context.Context, movieID domain.MovieID) error {
	if err := m.requirePoolPhase("removed"); err != nil {
		return err
	}

	m.mu.Lock()
	snapshot := slices.Clone(m.entries)
	if i := domain.FindEntry(m.entries, movieID); i >= 0 {
		m.entries = slices.Delete(m.entries, i, i+1)
	}
	m.mu.Unlock()

	if err := m.backend.RemoveFromPool(ctx, m.groupID, movieID); err != nil {
		m.mu.Lock()
		m.entries = snapshot
		m.mu.Unlock()
		m.logger.Info("remove from pool rolled back", "group_id", m.groupID, "movie_id", movieID, "error", err)
		return err
	}
	return nil
}

// StartVoting advances the group to VOTING. Only the creator may do this;
// anyone else is refused locally without a request.
func (m *Manager) StartVoting(ctx context.Context, userID domain.UserID) error {
	if !m.IsCreator(userID) {
		return errors.Forbidden("Only the group creator can start voting.")
	}
	if err := m.requirePoolPhase("voted on"); err != nil {
		return err
	}

	if err := m.backend.StartVoting(ctx, m.groupID); err != nil {
		return err
	}

	m.mu.Lock()
	m.group.Phase = domain.PhaseVoting
	m.mu.Unlock()
	return nil
}

func (m *Manager) requirePoolPhase(action string) error {
	if phase := m.Phase(); phase != domain.PhasePool {
		return errors.Conflictf("Movies can only be %s while the group is collecting its pool (current phase: %s).", action, phase)
	}
	return nil
}

// CanAdd is the local quota hint: fewer than the per-user quota of
// entries, in the POOL phase. The server decides.
func (m *Manager) CanAdd(userID domain.UserID) bool {
	return m.Phase() == domain.PhasePool && m.Remaining(userID) > 0
}

// Remaining returns how many more movies userID may add.
func (m *Manager) Remaining(userID domain.UserID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return max(0, domain.PoolQuotaPerUser-domain.CountAddedBy(m.entries, userID))
}

// Entries returns a copy of the pool.
func (m *Manager) Entries() []domain.PoolEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.entries)
}

// Phase returns the last known phase.
func (m *Manager) Phase() domain.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.group.Phase
}

// Group returns the last loaded group.
func (m *Manager) Group() domain.Group {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.group
}

// IsCreator reports whether userID created the group.
func (m *Manager) IsCreator(userID domain.UserID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.group.IsCreator(userID)
}
