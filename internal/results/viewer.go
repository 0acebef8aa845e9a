// Package results loads and renders a group's voting outcome.
package results

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/logger"
)

// Backend is the subset of the backend API the results page uses.
type Backend interface {
	RankingResult(ctx context.Context, groupID domain.GroupID) (domain.RankingResult, error)
	RankingDetails(ctx context.Context, groupID domain.GroupID) ([]domain.MovieAverage, error)
}

// Summary is a group's outcome. A summary without a winner is the valid
// "no results yet" state.
type Summary struct {
	Winner  *domain.Movie
	Voters  int
	Details []domain.MovieAverage
}

// Empty reports whether there is nothing to show yet.
func (s Summary) Empty() bool {
	return s.Winner == nil && len(s.Details) == 0
}

// Viewer is the read-only results page.
type Viewer struct {
	backend Backend
	groupID domain.GroupID
	logger  *slog.Logger
	summary Summary
}

// NewViewer creates a viewer for groupID.
func NewViewer(backend Backend, groupID domain.GroupID, log *slog.Logger) *Viewer {
	if log == nil {
		log = logger.Discard()
	}
	return &Viewer{backend: backend, groupID: groupID, logger: log}
}

// Load fetches the winner and the average-rank table. A 404 from either
// endpoint means no results yet and is not an error.
func (v *Viewer) Load(ctx context.Context) error {
	var summary Summary

	result, err := v.backend.RankingResult(ctx, v.groupID)
	switch {
	case errors.Is(err, errors.ErrNotFound):
	case err != nil:
		return err
	default:
		summary.Winner = result.WinningMovie
		summary.Voters = result.NumberOfVoters
	}

	details, err := v.backend.RankingDetails(ctx, v.groupID)
	switch {
	case errors.Is(err, errors.ErrNotFound):
	case err != nil:
		return err
	default:
		summary.Details = details
	}

	v.summary = summary
	v.logger.Debug("results loaded", "group_id", v.groupID, "empty", summary.Empty(), "voters", summary.Voters)
	return nil
}

// Summary returns the loaded outcome.
func (v *Viewer) Summary() Summary { return v.summary }

// Render writes the outcome to w.
func (v *Viewer) Render(w io.Writer) error {
	s := v.summary
	if s.Empty() {
		_, err := fmt.Fprintln(w, "No results yet. Voting may still be in progress.")
		return err
	}

	if s.Winner != nil {
		fmt.Fprintf(w, "Winner: %s\n", s.Winner.Label())
	}
	fmt.Fprintf(w, "Voters: %d\n", s.Voters)

	if len(s.Details) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMOVIE\tAVG RANK")
	for i, d := range s.Details {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, d.Movie.Label(), strconv.FormatFloat(d.AverageRank, 'f', 2, 64))
	}
	return tw.Flush()
}
