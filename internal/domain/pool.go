package domain

// PoolQuotaPerUser is the number of movies one member may contribute to a
// group's pool. The backend enforces it; clients only use it as a hint.
const PoolQuotaPerUser = 2

// PoolEntry is a movie in a group's pool together with its contributor.
type PoolEntry struct {
	Movie   Movie  `json:"movie"`
	AddedBy UserID `json:"addedBy"`
}

// CountAddedBy returns how many entries userID contributed.
func CountAddedBy(entries []PoolEntry, userID UserID) int {
	n := 0
	for _, e := range entries {
		if e.AddedBy == userID {
			n++
		}
	}
	return n
}

// FindEntry returns the index of the entry holding movieID, or -1.
func FindEntry(entries []PoolEntry, movieID MovieID) int {
	for i, e := range entries {
		if e.Movie.ID == movieID {
			return i
		}
	}
	return -1
}

// PoolMovies returns the movies of the given entries in order.
func PoolMovies(entries []PoolEntry) []Movie {
	movies := make([]Movie, len(entries))
	for i, e := range entries {
		movies[i] = e.Movie
	}
	return movies
}
