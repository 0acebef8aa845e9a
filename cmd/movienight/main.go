// Package main provides the entry point for the movienight console client.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/listenupapp/movienight/internal/config"
	"github.com/listenupapp/movienight/internal/console"
	"github.com/listenupapp/movienight/internal/di"
	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer(os.Args[1:])

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		// The configured logger may be what failed.
		logger.New(logger.Config{}).Fatal("Failed to start movienight", "error", err)
	}

	cfg := do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)
	shell := do.MustInvoke[*console.Console](injector)

	var groupID domain.GroupID
	if cfg.Console.GroupID != "" {
		id, err := strconv.ParseInt(cfg.Console.GroupID, 10, 64)
		if err != nil || id <= 0 {
			log.WithField("group_id", cfg.Console.GroupID).Warn("Ignoring invalid group id")
		} else {
			groupID = domain.GroupID(id)
		}
	}

	// Stop on SIGINT/SIGTERM as well as on quit
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := shell.Run(ctx, groupID); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Console stopped")
	}

	log.Debug("Shutting down")

	// The DI container handles shutdown order automatically
	if report := injector.Shutdown(); !report.Succeed {
		log.WithError(report).Error("Shutdown error")
	}
}
