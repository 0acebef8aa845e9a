package domain

// MaxRankingSlots caps how many movies a voter ranks.
const MaxRankingSlots = 5

// RankingEntry is one ranked movie in a submitted ballot. Rank is 1-based.
type RankingEntry struct {
	MovieID MovieID `json:"movieId" validate:"gt=0"`
	Rank    int     `json:"rank" validate:"gte=1"`
}

// VoteState is the pool and the current user's previously submitted
// rankings, as returned when entering the voting phase.
type VoteState struct {
	Pool     []Movie        `json:"pool"`
	Rankings []RankingEntry `json:"rankings"`
}

// SlotCount returns the number of ranking slots for a pool of the given size.
func SlotCount(poolSize int) int {
	return min(MaxRankingSlots, max(poolSize, 0))
}

// RankingResult is the server-computed outcome of a group's vote.
type RankingResult struct {
	WinningMovie   *Movie `json:"winningMovie"`
	NumberOfVoters int    `json:"numberOfVoters"`
}

// MovieAverage is a movie's average rank across all voters. Lower is better.
type MovieAverage struct {
	Movie       Movie   `json:"movie"`
	AverageRank float64 `json:"averageRank"`
}
