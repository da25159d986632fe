package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/sharedpot"
	"github.com/riskibarqy/pool-league/internal/domain/user"
	idgen "github.com/riskibarqy/pool-league/internal/platform/id"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
)

type CreateGameInput struct {
	Actor    user.Principal
	MaxSeats int
	EntryFee money.Cents
}

type CompleteGameInput struct {
	Actor      user.Principal
	GameID     string
	WinnerSeat int
}

type GameResult struct {
	Game         sharedpot.Game
	Payout       *sharedpot.Payout
	Instructions []payment.Instruction
}

type SharedPotService struct {
	gameRepo sharedpot.Repository
	idGen    idgen.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewSharedPotService(gameRepo sharedpot.Repository, idGen idgen.Generator, logger *logging.Logger) *SharedPotService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SharedPotService{
		gameRepo: gameRepo,
		idGen:    idGen,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *SharedPotService) Create(ctx context.Context, input CreateGameInput) (sharedpot.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SharedPotService.Create")
	defer span.End()

	if _, err := requireActor(input.Actor); err != nil {
		return sharedpot.Game{}, err
	}

	gameID, err := s.idGen.NewID()
	if err != nil {
		return sharedpot.Game{}, fmt.Errorf("generate game id: %w", err)
	}
	item, err := sharedpot.New(gameID, input.MaxSeats, input.EntryFee, s.now().UTC())
	if err != nil {
		return sharedpot.Game{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.gameRepo.Create(ctx, item); err != nil {
		return sharedpot.Game{}, fmt.Errorf("create game: %w", err)
	}
	return item, nil
}

// Join seats the actor. Two joins racing for the last seat cannot both
// succeed: the loser gets ErrConflict from the repository.
func (s *SharedPotService) Join(ctx context.Context, actor user.Principal, gameID string) (sharedpot.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SharedPotService.Join")
	defer span.End()

	actorID, err := requireActor(actor)
	if err != nil {
		return sharedpot.Game{}, err
	}
	item, err := s.load(ctx, gameID)
	if err != nil {
		return sharedpot.Game{}, err
	}

	joined, err := item.Join(actorID, s.now().UTC())
	if err != nil {
		return sharedpot.Game{}, err
	}
	if err := s.gameRepo.Update(ctx, joined, nil); err != nil {
		return sharedpot.Game{}, fmt.Errorf("update game: %w", err)
	}
	joined.Version++

	if joined.Status == sharedpot.StatusActive {
		s.logger.InfoContext(ctx, "shared pot game activated",
			"game_id", joined.ID,
			"players", joined.CurrentPlayers,
			"pot", int64(joined.Pot()),
		)
	}
	return joined, nil
}

// Leave frees the actor's seat and refunds the entry fee.
func (s *SharedPotService) Leave(ctx context.Context, actor user.Principal, gameID string) (GameResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SharedPotService.Leave")
	defer span.End()

	actorID, err := requireActor(actor)
	if err != nil {
		return GameResult{}, err
	}
	item, err := s.load(ctx, gameID)
	if err != nil {
		return GameResult{}, err
	}

	now := s.now().UTC()
	left, err := item.Leave(actorID, now)
	if err != nil {
		return GameResult{}, err
	}
	// A player may join and leave repeatedly; the version keeps each refund distinct.
	reference := fmt.Sprintf("%s:leave:%d", item.ID, item.Version)
	refund, err := payment.NewInstruction(payment.KindRefund, reference, actorID, item.EntryFee, "shared pot leave", now)
	if err != nil {
		return GameResult{}, fmt.Errorf("build refund: %w", err)
	}
	instructions := []payment.Instruction{refund}
	if err := s.gameRepo.Update(ctx, left, instructions); err != nil {
		return GameResult{}, fmt.Errorf("update game: %w", err)
	}
	left.Version++

	return GameResult{Game: left, Instructions: instructions}, nil
}

// Complete pays the whole pot to the winning seat. Only operators and
// admins report shared-pot results.
func (s *SharedPotService) Complete(ctx context.Context, input CompleteGameInput) (GameResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SharedPotService.Complete")
	defer span.End()

	if !input.Actor.IsAdmin() && !input.Actor.HasRole(user.RoleOperator) {
		return GameResult{}, fmt.Errorf("%w: operator or admin role required", ErrUnauthorized)
	}
	item, err := s.load(ctx, input.GameID)
	if err != nil {
		return GameResult{}, err
	}

	now := s.now().UTC()
	completed, payout, err := item.Complete(input.WinnerSeat, now)
	if err != nil {
		return GameResult{}, err
	}
	ins, err := payment.NewInstruction(payment.KindPayout, completed.ID, payout.PlayerID, payout.Amount, "shared pot", now)
	if err != nil {
		return GameResult{}, fmt.Errorf("build payout: %w", err)
	}
	instructions := []payment.Instruction{ins}
	if err := s.gameRepo.Update(ctx, completed, instructions); err != nil {
		return GameResult{}, fmt.Errorf("update game: %w", err)
	}
	completed.Version++

	s.logger.InfoContext(ctx, "shared pot game completed",
		"game_id", completed.ID,
		"winner_id", payout.PlayerID,
		"pot", int64(payout.Amount),
	)
	return GameResult{Game: completed, Payout: &payout, Instructions: instructions}, nil
}

func (s *SharedPotService) Get(ctx context.Context, gameID string) (sharedpot.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SharedPotService.Get")
	defer span.End()

	return s.load(ctx, gameID)
}

func (s *SharedPotService) ListOpen(ctx context.Context) ([]sharedpot.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SharedPotService.ListOpen")
	defer span.End()

	items, err := s.gameRepo.ListByStatus(ctx, sharedpot.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("list open games: %w", err)
	}
	return items, nil
}

func (s *SharedPotService) load(ctx context.Context, gameID string) (sharedpot.Game, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return sharedpot.Game{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	item, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return sharedpot.Game{}, fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return sharedpot.Game{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}
	return item, nil
}
