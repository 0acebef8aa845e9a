package backendtest

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/listenupapp/movienight/internal/domain"
)

// lookup resolves the caller and the group, writing the error response
// itself when either is missing. The caller must hold b.mu.
func (b *Backend) lookup(w http.ResponseWriter, r *http.Request) (domain.UserID, *groupState, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	userID := b.tokens[token]

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group id")
		return 0, nil, false
	}
	gs, ok := b.groups[domain.GroupID(groupID)]
	if !ok {
		writeError(w, http.StatusNotFound, "Group not found")
		return 0, nil, false
	}
	if !gs.group.IsMember(userID) {
		writeError(w, http.StatusForbidden, "You are not a member of this group")
		return 0, nil, false
	}
	return userID, gs, true
}

func (b *Backend) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, gs, ok := b.lookup(w, r)
	if !ok {
		return
	}
	g := gs.group
	g.Pool = slices.Clone(gs.pool)
	writeJSON(w, http.StatusOK, g)
}

func (b *Backend) handleGetPool(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, gs, ok := b.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(gs.pool))
}

func (b *Backend) handleAddToPool(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, gs, ok := b.lookup(w, r)
	if !ok {
		return
	}
	movieID, valid := domain.ParseMovieID(chi.URLParam(r, "movieId"))
	if !valid {
		writeError(w, http.StatusBadRequest, "Invalid movie id")
		return
	}
	if gs.group.Phase != domain.PhasePool {
		writeError(w, http.StatusConflict, "Group is not in POOL phase")
		return
	}
	movie, known := b.movies[movieID]
	if !known {
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	if domain.FindEntry(gs.pool, movieID) >= 0 {
		writeError(w, http.StatusConflict, "Movie is already in the pool")
		return
	}
	if domain.CountAddedBy(gs.pool, userID) >= domain.PoolQuotaPerUser {
		writeError(w, http.StatusForbidden, "You can only add 2 movies to the pool")
		return
	}

	gs.pool = append(gs.pool, domain.PoolEntry{Movie: movie, AddedBy: userID})
	writeJSON(w, http.StatusOK, gs.pool)
}

func (b *Backend) handleRemoveFromPool(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, gs, ok := b.lookup(w, r)
	if !ok {
		return
	}
	movieID, _ := domain.ParseMovieID(chi.URLParam(r, "movieId"))
	if gs.group.Phase != domain.PhasePool {
		writeError(w, http.StatusConflict, "Group is not in POOL phase")
		return
	}
	i := domain.FindEntry(gs.pool, movieID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Movie is not in the pool")
		return
	}
	if gs.pool[i].AddedBy != userID {
		writeError(w, http.StatusForbidden, "You can only remove movies you added")
		return
	}

	gs.pool = slices.Delete(gs.pool, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleStartVoting(w http.ResponseWriter, r *http.Request) {
	b.advance(w, r, domain.PhasePool)
}

func (b *Backend) handleShowResults(w http.ResponseWriter, r *http.Request) {
	b.advance(w, r, domain.PhaseVoting)
}

// advance moves the group one phase forward from the expected phase.
func (b *Backend) advance(w http.ResponseWriter, r *http.Request, from domain.Phase) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, gs, ok := b.lookup(w, r)
	if !ok {
		return
	}
	if !gs.group.IsCreator(userID) {
		writeError(w, http.StatusForbidden, "Only the group creator can do this")
		return
	}
	if gs.group.Phase != from {
		writeError(w, http.StatusConflict, "Group is not in "+string(from)+" phase")
		return
	}
	gs.group.Phase, _ = from.Next()
	writeJSON(w, http.StatusOK, gs.group)
}

func (b *Backend) handleVoteState(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, gs, ok := b.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, domain.VoteState{
		Pool:     nonNil(domain.PoolMovies(gs.pool)),
		Rankings: nonNil(gs.rankings[userID]),
	})
}

func (b *Backend) handleSubmitRankings(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, gs, ok := b.lookup(w, r)
	if !ok {
		return
	}
	if chi.URLParam(r, "userId") != strconv.FormatInt(int64(userID), 10) {
		writeError(w, http.StatusForbidden, "You can only submit your own rankings")
		return
	}
	if gs.group.Phase != domain.PhaseVoting {
		writeError(w, http.StatusConflict, "Group is not in VOTING phase")
		return
	}
	if _, voted := gs.rankings[userID]; voted {
		writeError(w, http.StatusConflict, "You have already submitted your rankings")
		return
	}

	var rankings []domain.RankingEntry
	if err := json.NewDecoder(r.Body).Decode(&rankings); err != nil || len(rankings) == 0 {
		writeError(w, http.StatusBadRequest, "Rankings payload is invalid")
		return
	}
	for _, e := range rankings {
		if domain.FindEntry(gs.pool, e.MovieID) < 0 {
			writeError(w, http.StatusBadRequest, "Movie "+e.MovieID.String()+" is not in the pool")
			return
		}
	}

	gs.rankings[userID] = rankings
	w.WriteHeader(http.StatusCreated)
}

func (b *Backend) handleRankingResult(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, gs, ok := b.lookup(w, r)
	if !ok {
		return
	}
	averages := averageRanks(gs)
	if len(averages) == 0 {
		writeError(w, http.StatusNotFound, "No rankings have been submitted")
		return
	}
	winner := averages[0].Movie
	writeJSON(w, http.StatusOK, domain.RankingResult{WinningMovie: &winner, NumberOfVoters: len(gs.rankings)})
}

func (b *Backend) handleRankingDetails(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, gs, ok := b.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(averageRanks(gs)))
}

// averageRanks averages each ranked movie's rank over the voters who ranked
// it, best (lowest) first. Ties break by movie id.
func averageRanks(gs *groupState) []domain.MovieAverage {
	sums := make(map[domain.MovieID]int)
	counts := make(map[domain.MovieID]int)
	for _, ballot := range gs.rankings {
		for _, e := range ballot {
			sums[e.MovieID] += e.Rank
			counts[e.MovieID]++
		}
	}

	averages := make([]domain.MovieAverage, 0, len(sums))
	for _, entry := range gs.pool {
		n := counts[entry.Movie.ID]
		if n == 0 {
			continue
		}
		averages = append(averages, domain.MovieAverage{
			Movie:       entry.Movie,
			AverageRank: float64(sums[entry.Movie.ID]) / float64(n),
		})
	}
	slices.SortFunc(averages, func(a, b domain.MovieAverage) int {
		return cmp.Or(cmp.Compare(a.AverageRank, b.AverageRank), cmp.Compare(a.Movie.ID, b.Movie.ID))
	})
	return averages
}

// nonNil keeps empty collections encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
