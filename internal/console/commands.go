package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/ranking"
	"github.com/listenupapp/movienight/internal/session"
)

type command struct {
	name    string
	usage   string
	summary string
	// route limits the command to one page; "" means everywhere.
	route       domain.Route
	creatorOnly bool
	run         func(c *Console, ctx context.Context, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{name: "help", usage: "help", summary: "list the commands for this page", run: (*Console).cmdHelp},
		{name: "login", usage: "login <userId> <token>", summary: "store your credentials", run: (*Console).cmdLogin},
		{name: "logout", usage: "logout", summary: "forget your credentials", run: (*Console).cmdLogout},
		{name: "whoami", usage: "whoami", summary: "show the logged-in user", run: (*Console).cmdWhoami},
		{name: "open", usage: "open <groupId>", summary: "open a group and jump to its current phase", run: (*Console).cmdOpen},
		{name: "group", usage: "group", summary: "show the open group", run: (*Console).cmdGroup},
		{name: "retry", usage: "retry", summary: "reload the current page", run: (*Console).cmdRetry},

		{name: "list", usage: "list", summary: "show the pool", route: domain.RoutePool, run: (*Console).cmdPoolList},
		{name: "add", usage: "add <movieId>", summary: "add a movie to the pool", route: domain.RoutePool, run: (*Console).cmdPoolAdd},
		{name: "remove", usage: "remove <movie>", summary: "remove a movie you added", route: domain.RoutePool, run: (*Console).cmdPoolRemove},
		{name: "start-voting", usage: "start-voting", summary: "close the pool and open voting", route: domain.RoutePool, creatorOnly: true, run: (*Console).cmdStartVoting},

		{name: "show", usage: "show", summary: "show the ranking board", route: domain.RouteVote, run: (*Console).cmdVoteShow},
		{name: "rank", usage: "rank <movie> <slot>", summary: "put a movie into a slot", route: domain.RouteVote, run: (*Console).cmdRank},
		{name: "unrank", usage: "unrank <slot>", summary: "return a slot's movie to the pool", route: domain.RouteVote, run: (*Console).cmdUnrank},
		{name: "swap", usage: "swap <slot> <slot>", summary: "swap two slots", route: domain.RouteVote, run: (*Console).cmdSwap},
		{name: "move", usage: "move <from> <to>", summary: "move between locations like p3 and s1", route: domain.RouteVote, run: (*Console).cmdMove},
		{name: "undo", usage: "undo", summary: "revert the last move", route: domain.RouteVote, run: (*Console).cmdUndo},
		{name: "submit", usage: "submit", summary: "submit your rankings", route: domain.RouteVote, run: (*Console).cmdSubmit},
		{name: "show-results", usage: "show-results", summary: "close voting and publish results", route: domain.RouteVote, creatorOnly: true, run: (*Console).cmdShowResults},

		{name: "show", usage: "show", summary: "show the results", route: domain.RouteResults, run: (*Console).cmdResults},
	}
}

// lookup finds name among the global commands and those of the mounted page.
func (c *Console) lookup(name string) (command, bool) {
	route := c.Route()
	for _, cmd := range commands {
		if cmd.name == name && (cmd.route == "" || cmd.route == route) {
			return cmd, true
		}
	}
	return command{}, false
}

func usageError(usage string) error {
	return errors.Validationf("Usage: %s", usage)
}

func (c *Console) cmdHelp(ctx context.Context, _ []string) error {
	route := c.Route()
	creator := c.isCreator(ctx)
	for _, cmd := range commands {
		if cmd.route != "" && cmd.route != route {
			continue
		}
		if cmd.creatorOnly && !creator {
			continue
		}
		c.printf("  %-24s %s\n", cmd.usage, cmd.summary)
	}
	c.printf("  %-24s %s\n", "quit", "leave")
	return nil
}

func (c *Console) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("login <userId> <token>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errors.Validationf("User id %q must be a number.", args[0])
	}
	s, err := session.Login(ctx, c.sessions, c.validator, domain.UserID(id), args[1])
	if err != nil {
		return err
	}
	c.printf("Logged in as user %d.\n", s.UserID)
	return nil
}

func (c *Console) cmdLogout(ctx context.Context, _ []string) error {
	if err := session.Logout(ctx, c.sessions, c.logger); err != nil {
		return err
	}
	c.printf("Logged out.\n")
	return nil
}

func (c *Console) cmdWhoami(ctx context.Context, _ []string) error {
	s, err := c.sessions.Load(ctx)
	if err != nil {
		return err
	}
	if !s.LoggedIn() {
		c.printf("Not logged in.\n")
		return nil
	}
	c.printf("Logged in as user %d.\n", s.UserID)
	return nil
}

func (c *Console) cmdOpen(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("open <groupId>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return errors.Validationf("Group id %q must be a positive number.", args[0])
	}
	c.open(ctx, domain.GroupID(id))
	return nil
}

func (c *Console) cmdGroup(ctx context.Context, _ []string) error {
	if c.groupID == 0 {
		return errors.Validation("No group is open. Use 'open <groupId>'.")
	}
	group, err := c.backend.Group(ctx, c.groupID)
	if err != nil {
		return err
	}
	c.group = group
	c.renderGroup(ctx)
	return nil
}

func (c *Console) cmdRetry(ctx context.Context, _ []string) error {
	switch {
	case c.groupID == 0:
		return errors.Validation("No group is open. Use 'open <groupId>'.")
	case c.phase == "":
		c.open(ctx, c.groupID)
	default:
		c.mount(ctx, c.phase)
	}
	return nil
}

func (c *Console) cmdPoolList(ctx context.Context, _ []string) error {
	c.render(ctx)
	return nil
}

func (c *Console) cmdPoolAdd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("add <movieId>")
	}
	id, ok := domain.ParseMovieID(args[0])
	if !ok {
		return errors.Validationf("Movie id %q must be a positive number.", args[0])
	}
	if err := c.pool.Add(ctx, id); err != nil {
		return err
	}
	c.render(ctx)
	return nil
}

func (c *Console) cmdPoolRemove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("remove <movie>")
	}
	movie, err := resolveMovie(domain.PoolMovies(c.pool.Entries()), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := c.pool.Remove(ctx, movie.ID); err != nil {
		return err
	}
	c.render(ctx)
	return nil
}

func (c *Console) cmdStartVoting(ctx context.Context, _ []string) error {
	s, err := c.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := c.pool.StartVoting(ctx, s.UserID); err != nil {
		return err
	}
	c.printf("Voting is open.\n")
	c.mount(ctx, domain.PhaseVoting)
	return nil
}

func (c *Console) cmdVoteShow(ctx context.Context, _ []string) error {
	c.render(ctx)
	return nil
}

func (c *Console) cmdRank(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("rank <movie> <slot>")
	}
	slot, err := parseSlot(args[len(args)-1])
	if err != nil {
		return err
	}
	board := c.vote.Board()
	movie, err := resolveMovie(boardMovies(board), strings.Join(args[:len(args)-1], " "))
	if err != nil {
		return err
	}
	if err := board.Place(movie.ID, slot); err != nil {
		return err
	}
	c.render(ctx)
	return nil
}

func (c *Console) cmdUnrank(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("unrank <slot>")
	}
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	if err := c.vote.Board().Remove(slot); err != nil {
		return err
	}
	c.render(ctx)
	return nil
}

func (c *Console) cmdSwap(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("swap <slot> <slot>")
	}
	a, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	b, err := parseSlot(args[1])
	if err != nil {
		return err
	}
	if err := c.vote.Board().Move(ranking.InSlot(a), ranking.InSlot(b)); err != nil {
		return err
	}
	c.render(ctx)
	return nil
}

func (c *Console) cmdMove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("move <from> <to>")
	}
	from, err := ranking.ParseLocation(args[0])
	if err != nil {
		return err
	}
	to, err := ranking.ParseLocation(args[1])
	if err != nil {
		return err
	}
	if err := c.vote.Board().Move(from, to); err != nil {
		return err
	}
	c.render(ctx)
	return nil
}

func (c *Console) cmdUndo(ctx context.Context, _ []string) error {
	if !c.vote.Board().Undo() {
		c.printf("Nothing to undo.\n")
		return nil
	}
	c.render(ctx)
	return nil
}

func (c *Console) cmdSubmit(ctx context.Context, _ []string) error {
	s, err := c.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := c.vote.Submit(ctx, s.UserID); err != nil {
		return err
	}
	c.printf("Your rankings were submitted.\n")
	c.render(ctx)
	return nil
}

func (c *Console) cmdShowResults(ctx context.Context, _ []string) error {
	s, err := c.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := c.vote.ShowResults(ctx, s.UserID); err != nil {
		return err
	}
	c.mount(ctx, domain.PhaseResults)
	return nil
}

func (c *Console) cmdResults(ctx context.Context, _ []string) error {
	c.render(ctx)
	return nil
}

// parseSlot accepts "2" or "s2" and returns the 0-based slot index.
func parseSlot(s string) (int, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "s")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.Validationf("Slot %q must be a number of 1 or more.", s)
	}
	return n - 1, nil
}
