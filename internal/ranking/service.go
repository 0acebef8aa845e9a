package ranking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/listenupapp/movienight/internal/domain"
	"github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/logger"
	"github.com/listenupapp/movienight/internal/validation"
)

// Backend is the subset of the backend API the voting page uses.
type Backend interface {
	Group(ctx context.Context, groupID domain.GroupID) (domain.Group, error)
	VoteState(ctx context.Context, groupID domain.GroupID) (domain.VoteState, error)
	SubmitRankings(ctx context.Context, groupID domain.GroupID, userID domain.UserID, rankings []domain.RankingEntry) error
	ShowResults(ctx context.Context, groupID domain.GroupID) error
}

// Ballot is the payload checked before a submission is sent.
type Ballot struct {
	Rankings []domain.RankingEntry `json:"rankings" validate:"required,max=5,unique=MovieID,dive"`
}

// Service drives the voting page for one group.
type Service struct {
	backend   Backend
	groupID   domain.GroupID
	validator *validation.Validator
	logger    *slog.Logger

	group domain.Group
	board *Board
}

// NewService creates a voting service for groupID.
func NewService(backend Backend, groupID domain.GroupID, v *validation.Validator, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	if v == nil {
		v = validation.New()
	}
	return &Service{backend: backend, groupID: groupID, validator: v, logger: log}
}

// Load fetches the group and the caller's vote state and builds the board.
func (s *Service) Load(ctx context.Context) error {
	group, err := s.backend.Group(ctx, s.groupID)
	if err != nil {
		return err
	}
	state, err := s.backend.VoteState(ctx, s.groupID)
	if err != nil {
		return err
	}

	s.group = group
	s.board = NewBoard(state)
	s.logger.Debug("vote state loaded",
		"group_id", s.groupID,
		"pool", len(state.Pool),
		"prior_rankings", len(state.Rankings),
	)
	return nil
}

// Board returns the loaded board, nil before Load.
func (s *Service) Board() *Board { return s.board }

// Group returns the loaded group.
func (s *Service) Group() domain.Group { return s.group }

// IsCreator reports whether userID created the group.
func (s *Service) IsCreator(userID domain.UserID) bool { return s.group.IsCreator(userID) }

// Submit sends the ballot. Incomplete or malformed ballots are refused
// before any request. The board locks only after the backend accepts it.
func (s *Service) Submit(ctx context.Context, userID domain.UserID) error {
	if s.board == nil {
		return errors.Conflict("The vote has not loaded yet.")
	}
	if s.board.Locked() {
		return errors.Conflict("Your rankings were already submitted.")
	}
	if !s.board.CanSubmit() {
		need := domain.SlotCount(s.board.Total())
		return errors.ValidationWithDetails(
			fmt.Sprintf("Rank every movie before submitting (%d of %d slots filled, %d still unranked).",
				s.board.Filled(), need, len(s.board.Available())),
			map[string]int{"filled": s.board.Filled(), "required": need, "unranked": len(s.board.Available())},
		)
	}

	ballot := Ballot{Rankings: s.board.Submission()}
	if err := s.validator.Validate(ballot); err != nil {
		return err
	}

	if err := s.backend.SubmitRankings(ctx, s.groupID, userID, ballot.Rankings); err != nil {
		s.logger.Info("ranking submission failed", "group_id", s.groupID, "error", err)
		return err
	}

	s.board.Lock()
	s.logger.Info("rankings submitted", "group_id", s.groupID, "ranked", len(ballot.Rankings))
	return nil
}

// ShowResults advances the group to RESULTS. Only the creator may do this;
// anyone else is refused locally without a request.
func (s *Service) ShowResults(ctx context.Context, userID domain.UserID) error {
	if !s.IsCreator(userID) {
		return errors.Forbidden("Only the group creator can reveal the results.")
	}
	if s.group.Phase != domain.PhaseVoting {
		return errors.Conflictf("Results can only be revealed during voting (current phase: %s).", s.group.Phase)
	}
	if err := s.backend.ShowResults(ctx, s.groupID); err != nil {
		return err
	}
	s.group.Phase = domain.PhaseResults
	return nil
}
