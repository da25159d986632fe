package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/sharedpot"
	idgen "github.com/riskibarqy/pool-league/internal/platform/id"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
)

func newSharedPotService(env *testEnv) *SharedPotService {
	svc := NewSharedPotService(env.games, idgen.NewSequenceGenerator("pot"), logging.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestSharedPotService_FillActivateAndPayOut(t *testing.T) {
	env := newTestEnv(t)
	svc := newSharedPotService(env)
	ctx := t.Context()

	game, err := svc.Create(ctx, CreateGameInput{Actor: operator("op-rina"), MaxSeats: 3, EntryFee: 2500})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	for i, id := range []string{"pl-ayu", "pl-bima", "pl-citra"} {
		joined, err := svc.Join(ctx, player(id), game.ID)
		if err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
		if joined.CurrentPlayers != i+1 || joined.Pot() != money.Cents(2500*(i+1)) {
			t.Fatalf("unexpected game after join %d: players=%d pot=%d", i+1, joined.CurrentPlayers, joined.Pot())
		}
	}

	full, err := svc.Get(ctx, game.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if full.Status != sharedpot.StatusActive || full.ActivatedAt == nil {
		t.Fatalf("expected filled game to activate, got %+v", full)
	}

	if _, err := svc.Join(ctx, player("pl-dimas"), game.ID); !errors.Is(err, sharedpot.ErrGameFull) {
		t.Fatalf("expected ErrGameFull, got %v", err)
	}
	if _, err := svc.Complete(ctx, CompleteGameInput{Actor: player("pl-ayu"), GameID: game.ID, WinnerSeat: 1}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	result, err := svc.Complete(ctx, CompleteGameInput{Actor: operator("op-rina"), GameID: game.ID, WinnerSeat: 2})
	if err != nil {
		t.Fatalf("complete game: %v", err)
	}
	if result.Payout == nil || result.Payout.PlayerID != "pl-bima" || result.Payout.Amount != 7500 {
		t.Fatalf("unexpected payout: %+v", result.Payout)
	}

	instructions, _ := env.outbox.ListByReference(ctx, game.ID)
	if len(instructions) != 1 || instructions[0].Kind != payment.KindPayout || instructions[0].Amount != 7500 {
		t.Fatalf("unexpected payout instructions: %+v", instructions)
	}
}

func TestSharedPotService_LeaveRefundsEveryTime(t *testing.T) {
	env := newTestEnv(t)
	svc := newSharedPotService(env)
	ctx := t.Context()

	game, err := svc.Create(ctx, CreateGameInput{Actor: player("pl-hadi"), MaxSeats: 4, EntryFee: 1000})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	for round := 0; round < 2; round++ {
		if _, err := svc.Join(ctx, player("pl-hadi"), game.ID); err != nil {
			t.Fatalf("join round %d: %v", round, err)
		}
		result, err := svc.Leave(ctx, player("pl-hadi"), game.ID)
		if err != nil {
			t.Fatalf("leave round %d: %v", round, err)
		}
		if result.Game.CurrentPlayers != 0 || result.Game.Pot() != 0 {
			t.Fatalf("unexpected game after leave: %+v", result.Game)
		}
	}

	pending, err := env.outbox.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 || payment.Total(pending, payment.KindRefund) != 2000 {
		t.Fatalf("expected two distinct refunds, got %+v", pending)
	}

	if _, err := svc.Leave(ctx, player("pl-hadi"), game.ID); !errors.Is(err, sharedpot.ErrNotSeated) {
		t.Fatalf("expected ErrNotSeated, got %v", err)
	}
}

func TestSharedPotService_CreateRejectsBadSeats(t *testing.T) {
	env := newTestEnv(t)
	svc := newSharedPotService(env)

	_, err := svc.Create(t.Context(), CreateGameInput{Actor: player("pl-hadi"), MaxSeats: 1, EntryFee: 1000})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSharedPotService_ConcurrentJoinsNeverOverfill(t *testing.T) {
	env := newTestEnv(t)
	svc := newSharedPotService(env)
	ctx := t.Context()

	game, err := svc.Create(ctx, CreateGameInput{Actor: operator("op-tono"), MaxSeats: 2, EntryFee: 1000})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	players := []string{"pl-fajar", "pl-gita", "pl-hadi", "pl-indra"}
	var wg sync.WaitGroup
	for _, id := range players {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = svc.Join(ctx, player(id), game.ID)
		}(id)
	}
	wg.Wait()

	got, err := svc.Get(ctx, game.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if got.CurrentPlayers > got.MaxSeats {
		t.Fatalf("game overfilled: players=%d seats=%d", got.CurrentPlayers, got.MaxSeats)
	}
}
