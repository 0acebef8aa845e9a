// Package console is the interactive terminal front end. It routes between
// the pool, vote and results pages, follows the group's phase, and runs
// every user command and navigation on a single event loop.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/logger"
	"github.com/listenupapp/movienight/internal/phase"
	"github.com/listenupapp/movienight/internal/pool"
	"github.com/listenupapp/movienight/internal/ranking"
	"github.com/listenupapp/movienight/internal/results"
	"github.com/listenupapp/movienight/internal/session"
	"github.com/listenupapp/movienight/internal/validation"
)

// Backend is everything the pages need from the backend.
type Backend interface {
	pool.Backend
	ranking.Backend
	results.Backend
	phase.Fetcher
}

// Options configures a Console.
type Options struct {
	Backend   Backend
	Sessions  session.Store
	Validator *validation.Validator
	Logger    *slog.Logger
	Sync      phase.Options
	In        io.Reader
	Out       io.Writer
}

// Console is one terminal session.
type Console struct {
	backend   Backend
	sessions  session.Store
	validator *validation.Validator
	logger    *slog.Logger
	syncOpts  phase.Options
	in        io.Reader
	out       io.Writer

	groupID domain.GroupID
	group   domain.Group
	phase   domain.Phase
	loadErr error

	pool    *pool.Manager
	vote    *ranking.Service
	results *results.Viewer

	sync  *phase.Synchronizer
	navCh chan domain.Phase
}

// New creates a console.
func New(opts Options) *Console {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	return &Console{
		backend:   opts.Backend,
		sessions:  opts.Sessions,
		validator: opts.Validator,
		logger:    log,
		syncOpts:  opts.Sync,
		in:        opts.In,
		out:       opts.Out,
		navCh:     make(chan domain.Phase, 1),
	}
}

// Run reads commands until quit, end of input, or ctx is done. When
// groupID is non-zero that group is opened first.
func (c *Console) Run(ctx context.Context, groupID domain.GroupID) error {
	defer c.stopSync()

	lines := make(chan string)
	go c.readLines(ctx, lines)

	c.printf("movienight: type 'help' for commands.\n")
	if groupID != 0 {
		c.open(ctx, groupID)
	}
	c.prompt()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.Handle(ctx, line); quit {
				return nil
			}
			c.prompt()

		case p := <-c.navCh:
			if p == c.phase {
				continue
			}
			c.printf("\nThe group moved on to %s.\n", p)
			c.mount(ctx, p)
			c.prompt()
		}
	}
}

func (c *Console) readLines(ctx context.Context, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

// Handle runs one command line and reports whether the console should exit.
func (c *Console) Handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	if name == "quit" || name == "exit" {
		return true
	}

	cmd, ok := c.lookup(name)
	if !ok {
		c.printf("Unknown command %q. Type 'help' for the list.\n", name)
		return false
	}
	if cmd.route != "" && c.loadErr != nil {
		c.printf("! This page did not load: %s Type 'retry' to try again.\n", errors.UserMessage(c.loadErr))
		return false
	}
	if err := cmd.run(c, ctx, args); err != nil {
		c.banner(err)
	}
	return false
}

// Navigate switches to the page for p, tearing down the current one.
func (c *Console) Navigate(ctx context.Context, p domain.Phase) {
	c.mount(ctx, p)
}

// Close stops phase polling for the mounted page.
func (c *Console) Close() {
	c.stopSync()
}

// Route returns the mounted page, "" when no group is open.
func (c *Console) Route() domain.Route {
	return c.phase.Route()
}

// open selects a group and mounts the page for its current phase.
func (c *Console) open(ctx context.Context, groupID domain.GroupID) {
	c.stopSync()
	c.groupID = groupID
	c.phase = ""
	c.clearPages()

	group, err := c.backend.Group(ctx, groupID)
	if err != nil {
		c.loadErr = err
		c.printf("! Could not open group %d: %s\n", groupID, errors.UserMessage(err))
		return
	}
	c.group = group
	c.printf("Opened %q (group %d).\n", group.Name, group.ID)
	c.mount(ctx, group.Phase)
}

// mount builds and loads the page for p and restarts phase polling with p
// as the assumed phase.
func (c *Console) mount(ctx context.Context, p domain.Phase) {
	c.stopSync()
	c.clearPages()
	c.phase = p

	var load func(context.Context) error
	switch p.Route() {
	case domain.RoutePool:
		c.pool = pool.NewManager(c.backend, c.groupID, c.logger)
		load = c.pool.Load
	case domain.RouteVote:
		c.vote = ranking.NewService(c.backend, c.groupID, c.validator, c.logger)
		load = c.vote.Load
	case domain.RouteResults:
		c.results = results.NewViewer(c.backend, c.groupID, c.logger)
		load = c.results.Load
	default:
		c.loadErr = errors.Validationf("The group is in an unknown phase %q.", p)
		c.banner(c.loadErr)
		return
	}

	c.logger.Debug("mounting page", "route", p.Route(), "group_id", c.groupID)
	c.loadErr = load(ctx)
	if c.loadErr != nil {
		c.printf("! This page did not load: %s Type 'retry' to try again.\n", errors.UserMessage(c.loadErr))
	} else {
		c.refreshGroup()
		c.render(ctx)
	}

	c.startSync(ctx, p)
}

func (c *Console) clearPages() {
	c.pool, c.vote, c.results = nil, nil, nil
	c.loadErr = nil
}

func (c *Console) refreshGroup() {
	switch {
	case c.pool != nil:
		c.group = c.pool.Group()
	case c.vote != nil:
		c.group = c.vote.Group()
	}
}

func (c *Console) startSync(ctx context.Context, p domain.Phase) {
	opts := c.syncOpts
	opts.Logger = c.logger
	c.sync = phase.New(c.groupID, p, c.backend, c.enqueueNavigation, opts)
	if err := c.sync.Start(ctx); err != nil {
		c.logger.Warn("phase polling not started", "error", err)
	}
}

// stopSync stops the page's poller and discards any phase it queued, which
// belonged to the page being torn down.
func (c *Console) stopSync() {
	if c.sync != nil {
		c.sync.Stop()
		c.sync = nil
	}
	select {
	case <-c.navCh:
	default:
	}
}

// enqueueNavigation hands a phase change to the event loop. It never
// blocks: a newer phase replaces one not yet consumed.
func (c *Console) enqueueNavigation(p domain.Phase) {
	for {
		select {
		case c.navCh <- p:
			return
		default:
			select {
			case <-c.navCh:
			default:
			}
		}
	}
}

func (c *Console) currentUser(ctx context.Context) (domain.Session, error) {
	s, err := c.sessions.Load(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !s.LoggedIn() {
		return domain.Session{}, errors.Unauthorized("You are not logged in. Use 'login <userId> <token>'.")
	}
	return s, nil
}

func (c *Console) isCreator(ctx context.Context) bool {
	s, err := c.sessions.Load(ctx)
	if err != nil {
		return false
	}
	return c.group.IsCreator(s.UserID)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) banner(err error) {
	c.printf("! %s\n", errors.UserMessage(err))
	switch {
	case errors.Is(err, errors.ErrUnauthorized):
		c.printf("  Use 'login <userId> <token>'.\n")
	case errors.Is(err, errors.ErrNetwork), errors.Is(err, errors.ErrInternal), errors.Is(err, errors.ErrConflict):
		c.printf("  Type 'retry' to reload the page.\n")
	}
}

func (c *Console) prompt() {
	if c.groupID == 0 {
		c.printf("movienight> ")
		return
	}
	route := string(c.phase.Route())
	if route == "" {
		route = "?"
	}
	c.printf("movienight[%s #%d]> ", route, c.groupID)
}
