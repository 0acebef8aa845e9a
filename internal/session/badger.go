package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/listenupapp/movienight/internal/domain"
)

const keyCurrentSession = "session:current"

// BadgerStore persists the session in a badger database so a login
// survives restarts.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) the session database at path.
func OpenBadger(path string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	if logger != nil {
		logger.Debug("session store opened", "path", path)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

// Load implements Store.
func (b *BadgerStore) Load(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	var s domain.Session
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyCurrentSession))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// Save implements Store.
func (b *BadgerStore) Save(ctx context.Context, s domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyCurrentSession), data)
	})
}

// Clear implements Store.
func (b *BadgerStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyCurrentSession))
	})
}

// Close closes the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// Shutdown implements do.Shutdowner.
func (b *BadgerStore) Shutdown() error {
	if b.logger != nil {
		b.logger.Debug("closing session store")
	}
	return b.Close()
}
