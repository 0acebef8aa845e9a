package pool

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/movienight/internal/apiclient"
	"github.com/listenupapp/movienight/internal/backend"
	"github.com/listenupapp/movienight/internal/backendtest"
	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/session"
)

var (
	alien  = domain.Movie{ID: 10, Title: "Alien", Year: 1979}
	brazil = domain.Movie{ID: 20, Title: "Brazil", Year: 1985}
	cube   = domain.Movie{ID: 30, Title: "Cube", Year: 1997}
)

const groupID domain.GroupID = 4

// newManager wires a manager for userID against an in-memory backend in
// which user 1 created group 4 and users 1 and 2 are members.
func newManager(t *testing.T, userID domain.UserID, phase domain.Phase, pool []domain.PoolEntry) (*Manager, *backendtest.Backend) {
	t.Helper()
	b, srv := backendtest.Start(t)
	b.AddUser(1, "t1")
	b.AddUser(2, "t2")
	b.AddMovie(alien, brazil, cube)
	b.AddGroup(domain.Group{ID: groupID, CreatorID: 1, MemberIDs: []domain.UserID{1, 2}, Phase: phase, Pool: pool})

	token := map[domain.UserID]string{1: "t1", 2: "t2"}[userID]
	client, err := apiclient.New(srv.URL, session.NewMemoryStore(domain.Session{Token: token, UserID: userID}), nil, apiclient.Options{})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	m := NewManager(backend.NewGateway(client), groupID, nil)
	require.NoError(t, m.Load(context.Background()))
	return m, b
}

func TestManager_Load(t *testing.T) {
	m, _ := newManager(t, 2, domain.PhasePool, []domain.PoolEntry{{Movie: alien, AddedBy: 1}})

	assert.Equal(t, domain.PhasePool, m.Phase())
	assert.Len(t, m.Entries(), 1)
	assert.False(t, m.IsCreator(2))
	assert.True(t, m.CanAdd(2))
	assert.Equal(t, 2, m.Remaining(2))
}

func TestManager_AddAdoptsServerPool(t *testing.T) {
	m, b := newManager(t, 2, domain.PhasePool, nil)
	ctx := context.Background()

	// Someone else adds behind our back; the response carries it.
	b.AddGroup(domain.Group{ID: groupID, CreatorID: 1, MemberIDs: []domain.UserID{1, 2}, Pool: []domain.PoolEntry{{Movie: cube, AddedBy: 1}}})

	require.NoError(t, m.Add(ctx, alien.ID))

	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, cube.ID, entries[0].Movie.ID)
	assert.Equal(t, alien.ID, entries[1].Movie.ID)
	assert.Equal(t, 1, m.Remaining(2))
}

func TestManager_QuotaRejectedWithoutLocalChange(t *testing.T) {
	m, b := newManager(t, 2, domain.PhasePool, []domain.PoolEntry{
		{Movie: alien, AddedBy: 2},
		{Movie: brazil, AddedBy: 2},
	})

	assert.False(t, m.CanAdd(2))

	err := m.Add(context.Background(), cube.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrForbidden)
	assert.Equal(t, "You can only add 2 movies to the pool", errors.UserMessage(err))
	assert.Len(t, m.Entries(), 2)
	assert.Len(t, b.PoolEntries(groupID), 2)
}

func TestManager_AddOutsidePoolPhaseIsLocalConflict(t *testing.T) {
	m, b := newManager(t, 2, domain.PhaseVoting, nil)
	before := len(b.Calls())

	err := m.Add(context.Background(), alien.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConflict)
	assert.Len(t, b.Calls(), before, "no request may be sent")
	assert.False(t, m.CanAdd(2))
}

func TestManager_AddInvalidMovie(t *testing.T) {
	m, _ := newManager(t, 2, domain.PhasePool, nil)

	assert.ErrorIs(t, m.Add(context.Background(), 0), errors.ErrValidation)
}

func TestManager_AddUnknownMovie(t *testing.T) {
	m, _ := newManager(t, 2, domain.PhasePool, nil)

	err := m.Add(context.Background(), 999)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.Empty(t, m.Entries())
}

func TestManager_RemoveSuccess(t *testing.T) {
	m, b := newManager(t, 2, domain.PhasePool, []domain.PoolEntry{{Movie: alien, AddedBy: 2}})

	require.NoError(t, m.Remove(context.Background(), alien.ID))

	assert.Empty(t, m.Entries())
	assert.Empty(t, b.PoolEntries(groupID))
}

func TestManager_RemoveRollsBackOnFailure(t *testing.T) {
	m, b := newManager(t, 2, domain.PhasePool, []domain.PoolEntry{
		{Movie: alien, AddedBy: 1},
		{Movie: brazil, AddedBy: 2},
	})
	b.FailNext(http.MethodDelete, "/groups/4/pool/20", http.StatusInternalServerError, "database unavailable")

	err := m.Remove(context.Background(), brazil.ID)
	require.Error(t, err)

	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, brazil.ID, entries[1].Movie.ID)
}

func TestManager_RemoveOthersMovieRollsBack(t *testing.T) {
	m, _ := newManager(t, 2, domain.PhasePool, []domain.PoolEntry{{Movie: alien, AddedBy: 1}})

	err := m.Remove(context.Background(), alien.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)
	assert.Len(t, m.Entries(), 1)
}

func TestManager_StartVoting(t *testing.T) {
	t.Run("non-creator refused locally", func(t *testing.T) {
		m, b := newManager(t, 2, domain.PhasePool, nil)
		before := len(b.Calls())

		err := m.StartVoting(context.Background(), 2)
		assert.ErrorIs(t, err, errors.ErrForbidden)
		assert.Len(t, b.Calls(), before)
	})

	t.Run("creator advances", func(t *testing.T) {
		m, b := newManager(t, 1, domain.PhasePool, nil)

		require.NoError(t, m.StartVoting(context.Background(), 1))
		assert.Equal(t, domain.PhaseVoting, m.Phase())
		assert.Equal(t, domain.PhaseVoting, b.Phase(groupID))
	})
}
