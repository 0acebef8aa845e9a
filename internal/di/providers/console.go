package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/movienight/internal/backend"
	"github.com/listenupapp/movienight/internal/config"
	"github.com/listenupapp/movienight/internal/console"
	"github.com/listenupapp/movienight/internal/logger"
	"github.com/listenupapp/movienight/internal/phase"
	"github.com/listenupapp/movienight/internal/validation"
)

// ProvideConsole provides the interactive console on stdin and stdout.
func ProvideConsole(i do.Injector) (*console.Console, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	gateway := do.MustInvoke[*backend.Gateway](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)

	return console.New(console.Options{
		Backend:   gateway,
		Sessions:  sessions.BadgerStore,
		Validator: v,
		Logger:    log.Component("console"),
		Sync: phase.Options{
			Interval:       cfg.Sync.PollInterval,
			BreakerTimeout: cfg.Sync.BreakerTimeout,
		},
		In:  os.Stdin,
		Out: os.Stdout,
	}), nil
}
