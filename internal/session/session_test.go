package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/validation"
)

func newBadger(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadger(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(domain.Session{}),
		"badger": newBadger(t),
	}
}

func TestStore_RoundTripAndClear(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s, err := store.Load(ctx)
			require.NoError(t, err)
			assert.False(t, s.LoggedIn())

			require.NoError(t, store.Save(ctx, domain.Session{Token: "abc", UserID: 7}))

			s, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, domain.Session{Token: "abc", UserID: 7}, s)

			require.NoError(t, store.Clear(ctx))
			s, err = store.Load(ctx)
			require.NoError(t, err)
			assert.False(t, s.LoggedIn())
		})
	}
}

func TestBadgerStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := OpenBadger(dir, nil)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, domain.Session{Token: "tok", UserID: 3}))
	require.NoError(t, first.Shutdown())

	second, err := OpenBadger(dir, nil)
	require.NoError(t, err)
	defer second.Close()

	s, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(3), s.UserID)
	assert.Equal(t, "tok", s.Token)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(ctx)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	v := validation.New()

	t.Run("saves valid credentials", func(t *testing.T) {
		store := NewMemoryStore(domain.Session{})

		s, err := Login(ctx, store, v, 5, "token-5")
		require.NoError(t, err)
		assert.True(t, s.LoggedIn())

		loaded, _ := store.Load(ctx)
		assert.Equal(t, s, loaded)
	})

	t.Run("rejects invalid credentials without saving", func(t *testing.T) {
		store := NewMemoryStore(domain.Session{Token: "old", UserID: 1})

		_, err := Login(ctx, store, v, 0, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrValidation)

		loaded, _ := store.Load(ctx)
		assert.Equal(t, "old", loaded.Token)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(domain.Session{Token: "x", UserID: 2})

	require.NoError(t, Logout(ctx, store, nil))

	s, _ := store.Load(ctx)
	assert.False(t, s.LoggedIn())
}
