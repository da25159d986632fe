package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/user"
	laddermock "github.com/riskibarqy/pool-league/internal/mocks/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestLadderService_RegisterPlayerUsingMockery(t *testing.T) {
	t.Parallel()

	repo := laddermock.NewRepository(t)
	repo.On("GetByID", mock.Anything, "pl-new").Return(ladder.Player{}, false, nil).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p ladder.Player) bool {
		return p.ID == "pl-new" && p.Points == 0 && p.MembershipTier == membership.TierBasic
	})).Return(nil).Once()

	svc := NewLadderService(repo, logging.NewNop())
	svc.now = func() time.Time { return fixedNow }

	got, err := svc.RegisterPlayer(context.Background(), RegisterPlayerInput{
		Actor:  user.Principal{UserID: "pl-new", Tier: membership.TierBasic},
		Name:   " Joko ",
		Rating: 615,
	})
	if err != nil {
		t.Fatalf("register player: %v", err)
	}
	if got.Name != "Joko" || got.Division() != ladder.DivisionHigh {
		t.Fatalf("unexpected player: %+v", got)
	}
}

func TestLadderService_RegisterPlayerRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input RegisterPlayerInput
		setup func(repo *laddermock.Repository)
		want  error
	}{
		{
			name:  "anonymous",
			input: RegisterPlayerInput{Name: "Joko", Rating: 500},
			setup: func(*laddermock.Repository) {},
			want:  ErrUnauthorized,
		},
		{
			name:  "already registered",
			input: RegisterPlayerInput{Actor: player("pl-ayu"), Name: "Ayu", Rating: 700},
			setup: func(repo *laddermock.Repository) {
				repo.On("GetByID", mock.Anything, "pl-ayu").Return(ladder.Player{ID: "pl-ayu"}, true, nil).Once()
			},
			want: ErrConflict,
		},
		{
			name:  "missing name",
			input: RegisterPlayerInput{Actor: player("pl-new"), Rating: 500},
			setup: func(repo *laddermock.Repository) {
				repo.On("GetByID", mock.Anything, "pl-new").Return(ladder.Player{}, false, nil).Once()
			},
			want: ErrInvalidInput,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := laddermock.NewRepository(t)
			tc.setup(repo)

			svc := NewLadderService(repo, logging.NewNop())
			_, err := svc.RegisterPlayer(context.Background(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLadderService_StandingsRejectsUnknownDivision(t *testing.T) {
	t.Parallel()

	svc := NewLadderService(laddermock.NewRepository(t), logging.NewNop())
	if _, err := svc.Standings(context.Background(), "middle"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLadderService_OverviewAndRespectTieBreak(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLadderService(env.players, logging.NewNop())
	svc.now = func() time.Time { return fixedNow }
	ctx := t.Context()

	if _, err := svc.AwardRespect(ctx, AwardRespectInput{Actor: player("pl-ayu"), PlayerID: "pl-citra", Points: 3}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected player award to be unauthorized, got %v", err)
	}
	awarded, err := svc.AwardRespect(ctx, AwardRespectInput{Actor: operator("op-rina"), PlayerID: "pl-citra", Points: 3})
	if err != nil {
		t.Fatalf("award respect: %v", err)
	}
	if awarded.RespectPoints != 3 || awarded.Points != 120 {
		t.Fatalf("respect must not change points: %+v", awarded)
	}

	overview, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(overview.High) != 5 || len(overview.Low) != 4 {
		t.Fatalf("unexpected division sizes: high=%d low=%d", len(overview.High), len(overview.Low))
	}

	second, third := overview.High[1], overview.High[2]
	if second.Player.ID != "pl-citra" || third.Player.ID != "pl-bima" {
		t.Fatalf("expected respect to order the tied pair, got %s then %s", second.Player.ID, third.Player.ID)
	}
	if second.Position != 2 || third.Position != 2 {
		t.Fatalf("tied players must share position 2, got %d and %d", second.Position, third.Position)
	}
}

func TestLadderService_CheckEligibility(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLadderService(env.players, logging.NewNop())

	tests := []struct {
		name       string
		challenger string
		target     string
		want       error
	}{
		{name: "one position above", challenger: "pl-dimas", target: "pl-citra"},
		{name: "same position", challenger: "pl-bima", target: "pl-citra"},
		{name: "two positions above", challenger: "pl-dimas", target: "pl-ayu", want: ladder.ErrIneligibleChallenge},
		{name: "below", challenger: "pl-ayu", target: "pl-bima", want: ladder.ErrIneligibleChallenge},
		{name: "other division", challenger: "pl-gita", target: "pl-eka", want: ladder.ErrIneligibleChallenge},
		{name: "unknown target", challenger: "pl-gita", target: "ghost", want: ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.CheckEligibility(t.Context(), tc.challenger, tc.target)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected eligible, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLadderService_SyncMembership(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLadderService(env.players, logging.NewNop())
	ctx := t.Context()

	got, err := svc.SyncMembership(ctx, user.Principal{UserID: "pl-eka", Tier: membership.TierPro})
	if err != nil {
		t.Fatalf("sync membership: %v", err)
	}
	if got.MembershipTier != membership.TierPro || got.Version != 1 {
		t.Fatalf("unexpected synced player: %+v", got)
	}

	stored, _, _ := env.players.GetByID(ctx, "pl-eka")
	if stored.MembershipTier != membership.TierPro {
		t.Fatalf("tier not stored: %s", stored.MembershipTier)
	}
}
