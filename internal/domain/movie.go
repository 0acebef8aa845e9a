// Package domain contains the movie-night client's data model.
package domain

import (
	"strconv"
	"strings"
)

// MovieID is the backend's stable integer id for a movie.
type MovieID int64

// String implements fmt.Stringer.
func (id MovieID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseMovieID parses a user-supplied movie id. Only positive integers are valid.
func ParseMovieID(s string) (MovieID, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return MovieID(n), true
}

// Movie is sourced entirely from the backend and never mutated by the client.
type Movie struct {
	ID          MovieID  `json:"movieId" validate:"gt=0"`
	Title       string   `json:"title"`
	PosterURL   string   `json:"posterURL,omitempty"`
	Description string   `json:"description,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Directors   []string `json:"directors,omitempty"`
	Actors      []string `json:"actors,omitempty"`
	TrailerURL  string   `json:"trailerURL,omitempty"`
	Year        int      `json:"year,omitempty"`
	Language    string   `json:"originalLanguage,omitempty"`
}

// Label returns the title with the release year when known, e.g. "Heat (1995)".
func (m Movie) Label() string {
	if m.Year == 0 {
		return m.Title
	}
	return m.Title + " (" + strconv.Itoa(m.Year) + ")"
}
