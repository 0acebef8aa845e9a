package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountAddedBy(t *testing.T) {
	entries := []PoolEntry{
		{Movie: Movie{ID: 1}, AddedBy: 7},
		{Movie: Movie{ID: 2}, AddedBy: 9},
		{Movie: Movie{ID: 3}, AddedBy: 7},
	}

	assert.Equal(t, 2, CountAddedBy(entries, 7))
	assert.Equal(t, 1, CountAddedBy(entries, 9))
	assert.Equal(t, 0, CountAddedBy(entries, 11))
	assert.Equal(t, 2, FindEntry(entries, 3))
	assert.Equal(t, -1, FindEntry(entries, 4))
	assert.Equal(t, []Movie{{ID: 1}, {ID: 2}, {ID: 3}}, PoolMovies(entries))
}

func TestParseMovieID(t *testing.T) {
	tests := []struct {
		in     string
		want   MovieID
		wantOK bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"tt0113277", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMovieID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlotCount(t *testing.T) {
	assert.Equal(t, 0, SlotCount(0))
	assert.Equal(t, 3, SlotCount(3))
	assert.Equal(t, 5, SlotCount(5))
	assert.Equal(t, 5, SlotCount(8))
}

func TestMovie_Label(t *testing.T) {
	assert.Equal(t, "Heat (1995)", Movie{Title: "Heat", Year: 1995}.Label())
	assert.Equal(t, "Heat", Movie{Title: "Heat"}.Label())
}
