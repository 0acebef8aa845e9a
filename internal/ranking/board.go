// Package ranking implements the voting page: a board of ranking slots
// filled from the group's pool, with undo and submission gating.
package ranking

import (
	"slices"

	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/errors"
)

// Snapshot is one recorded board state.
type Snapshot struct {
	Available []domain.Movie
	Slots     []*domain.Movie
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{Available: slices.Clone(s.Available), Slots: slices.Clone(s.Slots)}
}

// Board holds the movies still available and the ranking slots. Every
// movie of the pool is always in exactly one place: available or one slot.
//
// Board is not safe for concurrent use; the console event loop owns it.
type Board struct {
	available []domain.Movie
	slots     []*domain.Movie
	history   []Snapshot
	total     int
	locked    bool
}

// NewBoard builds the board for a vote state. A prior ranking is seeded
// into slot rank-1 when that slot exists and is free; movies it names that
// are not in the pool are ignored. Any prior ranking locks the board.
func NewBoard(state domain.VoteState) *Board {
	b := &Board{
		available: slices.Clone(state.Pool),
		slots:     make([]*domain.Movie, domain.SlotCount(len(state.Pool))),
		total:     len(state.Pool),
		locked:    len(state.Rankings) > 0,
	}

	for _, r := range state.Rankings {
		idx := r.Rank - 1
		if idx < 0 || idx >= len(b.slots) || b.slots[idx] != nil {
			continue
		}
		i := slices.IndexFunc(b.available, func(m domain.Movie) bool { return m.ID == r.MovieID })
		if i < 0 {
			continue
		}
		movie := b.available[i]
		b.available = slices.Delete(b.available, i, i+1)
		b.slots[idx] = &movie
	}

	b.history = []Snapshot{b.snapshot()}
	return b
}

func (b *Board) snapshot() Snapshot {
	return Snapshot{Available: slices.Clone(b.available), Slots: slices.Clone(b.slots)}
}

// Available returns the unranked movies in display order.
func (b *Board) Available() []domain.Movie { return slices.Clone(b.available) }

// Slots returns the ranking slots; nil entries are empty.
func (b *Board) Slots() []*domain.Movie { return slices.Clone(b.slots) }

// Total returns the pool size.
func (b *Board) Total() int { return b.total }

// Locked reports whether the ballot was submitted.
func (b *Board) Locked() bool { return b.locked }

// Lock freezes the board after a successful submission.
func (b *Board) Lock() { b.locked = true }

// Depth returns the number of recorded snapshots, including the initial one.
func (b *Board) Depth() int { return len(b.history) }

// Filled returns the number of occupied slots.
func (b *Board) Filled() int {
	n := 0
	for _, m := range b.slots {
		if m != nil {
			n++
		}
	}
	return n
}

// Move moves the movie at from to to:
//
//	pool -> empty slot      the movie takes the slot
//	pool -> occupied slot   the occupant returns to the end of the pool
//	slot -> pool            the slot empties; the movie is inserted at to.Index
//	slot -> slot            the two slots swap contents
//
// Moves within the pool and onto the same slot change nothing and are not
// recorded. Invalid addresses fail without touching the board or history.
func (b *Board) Move(from, to Location) error {
	if b.locked {
		return errors.Conflict("Your rankings were already submitted and can no longer be changed.")
	}
	if err := b.checkSource(from, to); err != nil {
		return err
	}
	if to.Area == AreaSlot && (to.Index < 0 || to.Index >= len(b.slots)) {
		return errors.Validationf("there is no %s (slots: %d)", to.describe(), len(b.slots))
	}

	switch {
	case from.Area == AreaPool && to.Area == AreaPool:
		return nil
	case from.Area == AreaSlot && to.Area == AreaSlot && from.Index == to.Index:
		return nil
	case from.Area == AreaSlot && to.Area == AreaSlot && b.slots[from.Index] == nil && b.slots[to.Index] == nil:
		return nil
	}

	b.history = append(b.history, b.snapshot())

	switch {
	case from.Area == AreaPool:
		movie := b.available[from.Index]
		b.available = slices.Delete(b.available, from.Index, from.Index+1)
		if displaced := b.slots[to.Index]; displaced != nil {
			b.available = append(b.available, *displaced)
		}
		b.slots[to.Index] = &movie

	case to.Area == AreaPool:
		movie := *b.slots[from.Index]
		b.slots[from.Index] = nil
		at := to.Index
		if at < 0 || at > len(b.available) {
			at = len(b.available)
		}
		b.available = slices.Insert(b.available, at, movie)

	default:
		b.slots[from.Index], b.slots[to.Index] = b.slots[to.Index], b.slots[from.Index]
	}
	return nil
}

func (b *Board) checkSource(from, to Location) error {
	switch from.Area {
	case AreaPool:
		if from.Index < 0 || from.Index >= len(b.available) {
			return errors.Validationf("there is no movie at %s", from.describe())
		}
	case AreaSlot:
		if from.Index < 0 || from.Index >= len(b.slots) {
			return errors.Validationf("there is no %s (slots: %d)", from.describe(), len(b.slots))
		}
		// Swapping with an empty slot is allowed; emptying one into the pool is not.
		if b.slots[from.Index] == nil && to.Area == AreaPool {
			return errors.Validationf("%s is empty", from.describe())
		}
	default:
		return errors.Validation("unknown location")
	}
	return nil
}

// Place ranks the movie with the given id into slot, from wherever it is.
func (b *Board) Place(movieID domain.MovieID, slot int) error {
	from, ok := b.Find(movieID)
	if !ok {
		return errors.NotFoundf("movie %d is not in this pool", movieID)
	}
	return b.Move(from, InSlot(slot))
}

// Remove empties a slot, returning its movie to the end of the pool.
func (b *Board) Remove(slot int) error {
	return b.Move(InSlot(slot), InPool(PoolEnd))
}

// Find returns where a movie currently is.
func (b *Board) Find(movieID domain.MovieID) (Location, bool) {
	if i := slices.IndexFunc(b.available, func(m domain.Movie) bool { return m.ID == movieID }); i >= 0 {
		return InPool(i), true
	}
	for i, m := range b.slots {
		if m != nil && m.ID == movieID {
			return InSlot(i), true
		}
	}
	return Location{}, false
}

// Undo restores the state before the last recorded mutation. With only the
// initial state left it does nothing and returns false.
func (b *Board) Undo() bool {
	if b.locked || len(b.history) <= 1 {
		return false
	}
	last := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	restored := last.clone()
	b.available, b.slots = restored.Available, restored.Slots
	return true
}

// CanSubmit reports whether the ballot may be sent: every slot filled, no
// movie left available, and at least min(5, pool size) movies ranked.
//
// With more than five movies the pool can never empty, so such a ballot is
// never submittable. This matches the backend's reference client.
// TODO(voting): confirm with product whether ballots over 5-movie pools
// should only require the slots to be full.
func (b *Board) CanSubmit() bool {
	if b.locked || b.total == 0 {
		return false
	}
	filled := b.Filled()
	return filled == len(b.slots) &&
		len(b.available) == 0 &&
		filled >= domain.SlotCount(b.total)
}

// Submission returns the ballot: the occupied slots in order, ranked by
// their position among occupied slots.
func (b *Board) Submission() []domain.RankingEntry {
	entries := make([]domain.RankingEntry, 0, len(b.slots))
	for _, m := range b.slots {
		if m == nil {
			continue
		}
		entries = append(entries, domain.RankingEntry{MovieID: m.ID, Rank: len(entries) + 1})
	}
	return entries
}
