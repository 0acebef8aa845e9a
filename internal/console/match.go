package console

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/ranking"
)

// resolveMovie finds the movie a user referred to, either by id or by
// title. Titles match case-insensitively; an exact title wins over a
// partial one, and a partial match must be unique.
func resolveMovie(movies []domain.Movie, ref string) (domain.Movie, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Movie{}, errors.Validation("Name a movie by id or title.")
	}
	if id, ok := domain.ParseMovieID(ref); ok {
		for _, m := range movies {
			if m.ID == id {
				return m, nil
			}
		}
		return domain.Movie{}, errors.NotFoundf("Movie %d is not here.", id)
	}

	want := foldTitle(ref)
	var exact, partial []domain.Movie
	for _, m := range movies {
		title := foldTitle(m.Title)
		switch {
		case title == want || foldTitle(m.Label()) == want:
			exact = append(exact, m)
		case strings.Contains(title, want):
			partial = append(partial, m)
		}
	}

	candidates := exact
	if len(candidates) == 0 {
		candidates = partial
	}
	switch len(candidates) {
	case 0:
		return domain.Movie{}, errors.NotFoundf("No movie here matches %q.", ref)
	case 1:
		return candidates[0], nil
	default:
		labels := make([]string, len(candidates))
		for i, m := range candidates {
			labels[i] = fmt.Sprintf("%s [%d]", m.Label(), m.ID)
		}
		return domain.Movie{}, errors.Validationf("%q matches several movies: %s. Use the movie id.", ref, strings.Join(labels, ", "))
	}
}

func foldTitle(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}

// boardMovies lists every movie on the board, ranked or not.
func boardMovies(b *ranking.Board) []domain.Movie {
	movies := b.Available()
	for _, m := range b.Slots() {
		if m != nil {
			movies = append(movies, *m)
		}
	}
	return movies
}
