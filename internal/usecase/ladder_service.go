package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/user"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

type RegisterPlayerInput struct {
	Actor  user.Principal
	Name   string
	Rating int
}

type AwardRespectInput struct {
	Actor    user.Principal
	PlayerID string
	Points   int
}

// LadderOverview holds both divisions in display order.
type LadderOverview struct {
	High []ladder.Standing `json:"high"`
	Low  []ladder.Standing `json:"low"`
}

type LadderService struct {
	playerRepo ladder.Repository
	logger     *logging.Logger
	now        func() time.Time
}

func NewLadderService(playerRepo ladder.Repository, logger *logging.Logger) *LadderService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LadderService{
		playerRepo: playerRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterPlayer puts the authenticated user on the ladder with zero points.
func (s *LadderService) RegisterPlayer(ctx context.Context, input RegisterPlayerInput) (ladder.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.RegisterPlayer")
	defer span.End()

	playerID := strings.TrimSpace(input.Actor.UserID)
	if playerID == "" {
		return ladder.Player{}, fmt.Errorf("%w: authenticated user is required", ErrUnauthorized)
	}

	_, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return ladder.Player{}, fmt.Errorf("get player: %w", err)
	}
	if exists {
		return ladder.Player{}, fmt.Errorf("%w: player=%s already registered", ErrConflict, playerID)
	}

	now := s.now().UTC()
	item := ladder.Player{
		ID:             playerID,
		Name:           strings.TrimSpace(input.Name),
		Rating:         input.Rating,
		MembershipTier: membership.ParseTier(string(input.Actor.Tier)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := item.Validate(); err != nil {
		return ladder.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.playerRepo.Create(ctx, item); err != nil {
		return ladder.Player{}, fmt.Errorf("create player: %w", err)
	}

	s.logger.InfoContext(ctx, "player registered",
		"player_id", item.ID,
		"division", item.Division(),
		"tier", item.MembershipTier,
	)
	return item, nil
}

func (s *LadderService) GetPlayer(ctx context.Context, playerID string) (ladder.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.GetPlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return ladder.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	item, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return ladder.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return ladder.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	return item, nil
}

// Standings returns one division in display order. Position stays the
// official points rank.
func (s *LadderService) Standings(ctx context.Context, rawDivision string) ([]ladder.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.Standings")
	defer span.End()

	division, ok := ladder.ParseDivision(strings.ToLower(strings.TrimSpace(rawDivision)))
	if !ok {
		return nil, fmt.Errorf("%w: division must be high or low", ErrInvalidInput)
	}
	return s.standings(ctx, division)
}

func (s *LadderService) Overview(ctx context.Context) (LadderOverview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.Overview")
	defer span.End()

	var out LadderOverview
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		items, err := s.standings(ctx, ladder.DivisionHigh)
		out.High = items
		return err
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.standings(ctx, ladder.DivisionLow)
		out.Low = items
		return err
	})
	if err := p.Wait(); err != nil {
		return LadderOverview{}, err
	}
	return out, nil
}

// CheckEligibility reports whether challengerID may challenge targetID.
func (s *LadderService) CheckEligibility(ctx context.Context, challengerID, targetID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.CheckEligibility")
	defer span.End()

	return checkLadderEligibility(ctx, s.playerRepo, challengerID, targetID)
}

// AwardRespect adds respect points, a display-only tie-breaker. Only
// operators and admins may award it.
func (s *LadderService) AwardRespect(ctx context.Context, input AwardRespectInput) (ladder.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.AwardRespect")
	defer span.End()

	if !input.Actor.IsAdmin() && !input.Actor.HasRole(user.RoleOperator) {
		return ladder.Player{}, fmt.Errorf("%w: operator or admin role required", ErrUnauthorized)
	}
	if input.Points <= 0 {
		return ladder.Player{}, fmt.Errorf("%w: respect points must be > 0", ErrInvalidInput)
	}

	item, err := s.GetPlayer(ctx, input.PlayerID)
	if err != nil {
		return ladder.Player{}, err
	}
	item.RespectPoints += input.Points
	item.UpdatedAt = s.now().UTC()
	if err := s.playerRepo.Update(ctx, item); err != nil {
		return ladder.Player{}, fmt.Errorf("update player respect: %w", err)
	}
	item.Version++

	s.logger.Audit(ctx, "player.respect_awarded",
		"player_id", item.ID,
		"points", input.Points,
		"actor_id", input.Actor.UserID,
	)
	return item, nil
}

// SyncMembership copies the identity tier onto the ladder record.
func (s *LadderService) SyncMembership(ctx context.Context, actor user.Principal) (ladder.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LadderService.SyncMembership")
	defer span.End()

	item, err := s.GetPlayer(ctx, actor.UserID)
	if err != nil {
		return ladder.Player{}, err
	}
	tier := membership.ParseTier(string(actor.Tier))
	if item.MembershipTier == tier {
		return item, nil
	}
	item.MembershipTier = tier
	item.UpdatedAt = s.now().UTC()
	if err := s.playerRepo.Update(ctx, item); err != nil {
		return ladder.Player{}, fmt.Errorf("update player tier: %w", err)
	}
	item.Version++
	return item, nil
}

func (s *LadderService) standings(ctx context.Context, division ladder.Division) ([]ladder.Standing, error) {
	players, err := s.playerRepo.ListByDivision(ctx, division)
	if err != nil {
		return nil, fmt.Errorf("list players division=%s: %w", division, err)
	}
	return ladder.SortForDisplay(ladder.Rank(players)), nil
}

func checkLadderEligibility(ctx context.Context, repo ladder.Repository, challengerID, targetID string) error {
	challengerID = strings.TrimSpace(challengerID)
	targetID = strings.TrimSpace(targetID)
	if challengerID == "" || targetID == "" {
		return fmt.Errorf("%w: challenger and target are required", ErrInvalidInput)
	}

	challenger, exists, err := repo.GetByID(ctx, challengerID)
	if err != nil {
		return fmt.Errorf("get challenger: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: player=%s", ErrNotFound, challengerID)
	}

	players, err := repo.ListByDivision(ctx, challenger.Division())
	if err != nil {
		return fmt.Errorf("list players division=%s: %w", challenger.Division(), err)
	}
	err = ladder.CheckEligibility(players, challengerID, targetID)
	if errors.Is(err, ladder.ErrPlayerNotInLadder) {
		// The target exists but sits in the other division.
		if _, exists, getErr := repo.GetByID(ctx, targetID); getErr == nil && exists {
			return fmt.Errorf("%w: %s and %s are in different divisions", ladder.ErrIneligibleChallenge, challengerID, targetID)
		}
		return fmt.Errorf("%w: player=%s", ErrNotFound, targetID)
	}
	return err
}
