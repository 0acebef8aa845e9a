package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/movienight/internal/config"
	"github.com/listenupapp/movienight/internal/logger"
	"github.com/listenupapp/movienight/internal/session"
)

// SessionStoreHandle wraps the session store with shutdown capability.
type SessionStoreHandle struct {
	*session.BadgerStore
}

// Shutdown implements do.Shutdownable.
func (h *SessionStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideSessionStore opens the local session database.
func ProvideSessionStore(i do.Injector) (*SessionStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	store, err := session.OpenBadger(cfg.Session.Path, log.Component("session"))
	if err != nil {
		return nil, err
	}

	log.Debug("Session store opened", "path", cfg.Session.Path)
	return &SessionStoreHandle{BadgerStore: store}, nil
}
