// Package backend exposes the movie-night REST endpoints as typed calls.
package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/listenupapp/movienight/internal/apiclient"
	"github.com/listenupapp/movienight/internal/domain"
)

// Gateway is the typed view of the backend API.
type Gateway struct {
	client *apiclient.Client
}

// NewGateway wraps client.
func NewGateway(client *apiclient.Client) *Gateway {
	return &Gateway{client: client}
}

func groupPath(groupID domain.GroupID, suffix string) string {
	return fmt.Sprintf("/groups/%d%s", groupID, suffix)
}

// Group fetches a group, including its current phase.
func (g *Gateway) Group(ctx context.Context, groupID domain.GroupID) (domain.Group, error) {
	return apiclient.Get[domain.Group](ctx, g.client, groupPath(groupID, ""))
}

// Phase fetches only the group's phase.
func (g *Gateway) Phase(ctx context.Context, groupID domain.GroupID) (domain.Phase, error) {
	group, err := g.Group(ctx, groupID)
	if err != nil {
		return "", err
	}
	return group.Phase, nil
}

// Pool fetches the group's pool.
func (g *Gateway) Pool(ctx context.Context, groupID domain.GroupID) ([]domain.PoolEntry, error) {
	return apiclient.Get[[]domain.PoolEntry](ctx, g.client, groupPath(groupID, "/pool"))
}

// AddToPool adds a movie and returns the updated pool.
func (g *Gateway) AddToPool(ctx context.Context, groupID domain.GroupID, movieID domain.MovieID) ([]domain.PoolEntry, error) {
	return apiclient.Post[[]domain.PoolEntry](ctx, g.client, groupPath(groupID, "/pool/"+movieID.String()), nil)
}

// RemoveFromPool removes a movie the caller contributed.
func (g *Gateway) RemoveFromPool(ctx context.Context, groupID domain.GroupID, movieID domain.MovieID) error {
	return apiclient.Exec(ctx, g.client, http.MethodDelete, groupPath(groupID, "/pool/"+movieID.String()), nil)
}

// VoteState fetches the pool and the caller's prior rankings.
func (g *Gateway) VoteState(ctx context.Context, groupID domain.GroupID) (domain.VoteState, error) {
	return apiclient.Get[domain.VoteState](ctx, g.client, groupPath(groupID, "/vote-state"))
}

// SubmitRankings posts a user's ballot.
func (g *Gateway) SubmitRankings(ctx context.Context, groupID domain.GroupID, userID domain.UserID, rankings []domain.RankingEntry) error {
	path := groupPath(groupID, fmt.Sprintf("/users/%d/rankings", userID))
	return apiclient.Exec(ctx, g.client, http.MethodPost, path, rankings)
}

// StartVoting advances the group from POOL to VOTING. Creator only.
func (g *Gateway) StartVoting(ctx context.Context, groupID domain.GroupID) error {
	return apiclient.Exec(ctx, g.client, http.MethodPost, groupPath(groupID, "/start-voting"), nil)
}

// ShowResults advances the group from VOTING to RESULTS. Creator only.
func (g *Gateway) ShowResults(ctx context.Context, groupID domain.GroupID) error {
	return apiclient.Exec(ctx, g.client, http.MethodPost, groupPath(groupID, "/show-results"), nil)
}

// RankingResult fetches the winning movie and voter count.
func (g *Gateway) RankingResult(ctx context.Context, groupID domain.GroupID) (domain.RankingResult, error) {
	return apiclient.Get[domain.RankingResult](ctx, g.client, groupPath(groupID, "/rankings/result"))
}

// RankingDetails fetches every movie's average rank.
func (g *Gateway) RankingDetails(ctx context.Context, groupID domain.GroupID) ([]domain.MovieAverage, error) {
	return apiclient.Get[[]domain.MovieAverage](ctx, g.client, groupPath(groupID, "/rankings/details"))
}
