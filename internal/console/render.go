package console

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/listenupapp/movienight/internal/domain"
)

// render prints the mounted page.
func (c *Console) render(ctx context.Context) {
	switch {
	case c.pool != nil:
		c.renderPool(ctx)
	case c.vote != nil:
		c.renderVote()
	case c.results != nil:
		if err := c.results.Render(c.out); err != nil {
			c.banner(err)
		}
	}
}

func (c *Console) renderPool(ctx context.Context) {
	entries := c.pool.Entries()
	c.printf("Pool for %q: %d movie(s)\n", c.pool.Group().Name, len(entries))

	var self domain.UserID
	if s, err := c.sessions.Load(ctx); err == nil {
		self = s.UserID
	}

	if len(entries) == 0 {
		c.printf("  The pool is empty. Add a movie with 'add <movieId>'.\n")
	} else {
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  #\tID\tMOVIE\tADDED BY")
		for i, e := range entries {
			by := fmt.Sprintf("user %d", e.AddedBy)
			if e.AddedBy == self && self != 0 {
				by = "you"
			}
			fmt.Fprintf(tw, "  %d\t%d\t%s\t%s\n", i+1, e.Movie.ID, e.Movie.Label(), by)
		}
		_ = tw.Flush()
	}

	if self != 0 {
		c.printf("You can add %d more.\n", c.pool.Remaining(self))
	}
}

func (c *Console) renderVote() {
	board := c.vote.Board()
	if board == nil {
		return
	}

	c.printf("Your ranking:\n")
	for i, m := range board.Slots() {
		label := "(empty)"
		if m != nil {
			label = fmt.Sprintf("%s [%d]", m.Label(), m.ID)
		}
		c.printf("  s%d  %s\n", i+1, label)
	}

	available := board.Available()
	if len(available) > 0 {
		c.printf("Available:\n")
		for i, m := range available {
			c.printf("  p%d  %s [%d]\n", i+1, m.Label(), m.ID)
		}
	}

	switch {
	case board.Locked():
		c.printf("Your rankings are submitted. Waiting for the group.\n")
	case board.CanSubmit():
		c.printf("Ready to submit. Type 'submit'.\n")
	default:
		c.printf("Ranked %d of %d.\n", board.Filled(), len(board.Slots()))
	}
}

func (c *Console) renderGroup(ctx context.Context) {
	g := c.group
	c.printf("Group %d: %s\n", g.ID, g.Name)
	c.printf("  Phase:   %s\n", g.Phase)
	c.printf("  Members: %d\n", len(g.MemberIDs))
	role := "member"
	if c.isCreator(ctx) {
		role = "creator"
	}
	c.printf("  You:     %s\n", role)
	if g.Phase != c.phase && c.phase != "" {
		c.printf("  This page shows %s.\n", strings.ToLower(string(c.phase)))
	}
}
