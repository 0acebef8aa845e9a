// Package session persists the client-local login state: the bearer token
// and the id of the logged-in user.
package session

import (
	"context"
	"log/slog"

	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/validation"
)

// Store loads and saves the current session. Load returns a zero Session
// when nobody is logged in.
type Store interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context) error
}

// Login validates the credentials and saves them as the current session.
func Login(ctx context.Context, store Store, v *validation.Validator, userID domain.UserID, token string) (domain.Session, error) {
	s := domain.Session{Token: token, UserID: userID}
	if err := v.Validate(s); err != nil {
		return domain.Session{}, err
	}
	if err := store.Save(ctx, s); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

// Logout clears the current session.
func Logout(ctx context.Context, store Store, logger *slog.Logger) error {
	if err := store.Clear(ctx); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("session cleared")
	}
	return nil
}
