package domain

import "slices"

// UserID identifies a registered user.
type UserID int64

// GroupID identifies a movie-night group.
type GroupID int64

// Phase is a group's lifecycle state. It only ever moves forward:
// POOL, then VOTING, then RESULTS.
type Phase string

// Group phases.
const (
	PhasePool    Phase = "POOL"
	PhaseVoting  Phase = "VOTING"
	PhaseResults Phase = "RESULTS"
)

// Route names the client page that renders a phase.
type Route string

// Client routes, one per phase.
const (
	RoutePool    Route = "pool"
	RouteVote    Route = "vote"
	RouteResults Route = "results"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhasePool, PhaseVoting, PhaseResults:
		return true
	default:
		return false
	}
}

// Route returns the page for the phase, or "" for an unknown phase.
func (p Phase) Route() Route {
	switch p {
	case PhasePool:
		return RoutePool
	case PhaseVoting:
		return RouteVote
	case PhaseResults:
		return RouteResults
	default:
		return ""
	}
}

// Next returns the phase that follows p. RESULTS is terminal.
func (p Phase) Next() (Phase, bool) {
	switch p {
	case PhasePool:
		return PhaseVoting, true
	case PhaseVoting:
		return PhaseResults, true
	default:
		return p, false
	}
}

// Group is a set of users planning one movie night.
type Group struct {
	ID        GroupID     `json:"groupId"`
	Name      string      `json:"groupName"`
	CreatorID UserID      `json:"creatorId"`
	MemberIDs []UserID    `json:"memberIds"`
	Phase     Phase       `json:"phase"`
	Pool      []PoolEntry `json:"pool,omitempty"`
}

// IsCreator reports whether userID created the group. Only the creator may
// advance the phase.
func (g *Group) IsCreator(userID UserID) bool {
	return g != nil && userID != 0 && g.CreatorID == userID
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID UserID) bool {
	return g != nil && slices.Contains(g.MemberIDs, userID)
}
