package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
)

func TestFromSettlement_ConservesEveryCent(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	result, err := settlement.Settle(10050, membership.DefaultRateTable().Resolve(membership.TierNone), settlement.DefaultPolicy())
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}
	winners, err := settlement.SplitPrize(result.PrizePool, []string{"captain", "mate"})
	if err != nil {
		t.Fatalf("SplitPrize error: %v", err)
	}

	got, err := FromSettlement("ch-1", result, winners, "op-1", at)
	if err != nil {
		t.Fatalf("FromSettlement error: %v", err)
	}

	if Total(got, KindPayout) != result.PrizePool {
		t.Fatalf("payout total=%d want=%d", Total(got, KindPayout), result.PrizePool)
	}
	if Total(got, KindCommission) != result.RoundedCommission {
		t.Fatalf("commission total=%d want=%d", Total(got, KindCommission), result.RoundedCommission)
	}
	if Total(got, KindPayout)+Total(got, KindCommission) != result.OriginalAmount {
		t.Fatalf("instructions do not sum to stake")
	}

	var operatorSeen bool
	for _, ins := range got {
		if ins.Status != StatusPending {
			t.Fatalf("new instruction must be pending: %+v", ins)
		}
		if ins.ID != IdempotencyKey(ins.Reference, ins.RecipientID, ins.Kind) {
			t.Fatalf("unexpected id %s", ins.ID)
		}
		if ins.Kind == KindCommission && ins.RecipientID == "op-1" {
			operatorSeen = true
		}
	}
	if !operatorSeen {
		t.Fatalf("operator share should go to the operator id")
	}
}

func TestNewInstruction_Validation(t *testing.T) {
	at := time.Now()
	if _, err := NewInstruction(KindRefund, "ref", "p1", 0, "", at); !errors.Is(err, money.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := NewInstruction(KindRefund, "", "p1", 10, "", at); err == nil {
		t.Fatalf("expected missing reference error")
	}
	if _, err := NewInstruction(KindRefund, "ref", "", 10, "", at); err == nil {
		t.Fatalf("expected missing recipient error")
	}
}

func TestInstruction_MarkTransitions(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ins, err := NewInstruction(KindRefund, "ref", "p1", 500, "timeout", at)
	if err != nil {
		t.Fatalf("NewInstruction error: %v", err)
	}

	failed := ins.MarkFailed("gateway down", at.Add(time.Minute))
	if failed.Status != StatusFailed || failed.Attempts != 1 || failed.LastError != "gateway down" {
		t.Fatalf("unexpected failed instruction: %+v", failed)
	}
	if ins.Status != StatusPending {
		t.Fatalf("MarkFailed mutated receiver")
	}

	done := failed.MarkDispatched(at.Add(2 * time.Minute))
	if done.Status != StatusDispatched || done.Attempts != 2 || done.LastError != "" || done.DispatchedAt == nil {
		t.Fatalf("unexpected dispatched instruction: %+v", done)
	}
}
