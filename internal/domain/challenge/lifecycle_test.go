package challenge

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/platform/statemachine"
)

var testNow = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

func solo(id string, tier membership.Tier) Party {
	return Party{ID: id, Roster: []Member{{ID: id, Tier: tier}}}
}

func openChallenge(t *testing.T) Challenge {
	t.Helper()

	c, err := New(NewInput{
		ID:        "ch-1",
		Kind:      KindIndividual,
		CreatedBy: "alice",
		Initiator: solo("alice", membership.TierBasic),
		Stake:     5000,
	}, DefaultStakeLimits(), testNow)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return c
}

func inStatus(t *testing.T, status Status) Challenge {
	t.Helper()

	c := openChallenge(t)
	var err error
	if status == StatusOpen {
		return c
	}
	if c, err = c.Accept(solo("bob", membership.TierNone), testNow); err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if status == StatusAccepted {
		return c
	}
	if c, err = c.Start(testNow); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if status == StatusInProgress {
		return c
	}
	if status == StatusCompleted {
		if c, err = c.Complete("alice", testNow); err != nil {
			t.Fatalf("Complete error: %v", err)
		}
		return c
	}
	if c, err = c.Void("admin", "table broke", testNow); err != nil {
		t.Fatalf("Void error: %v", err)
	}
	return c
}

func TestNew_StakeBounds(t *testing.T) {
	tests := []struct {
		name    string
		stake   money.Cents
		wantErr error
	}{
		{name: "min", stake: 1000},
		{name: "max", stake: 1_000_000},
		{name: "below min", stake: 999, wantErr: money.ErrInvalidAmount},
		{name: "above max", stake: 1_000_001, wantErr: money.ErrInvalidAmount},
		{name: "zero", stake: 0, wantErr: money.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(NewInput{
				ID:        "ch",
				Kind:      KindIndividual,
				CreatedBy: "alice",
				Initiator: solo("alice", membership.TierNone),
				Stake:     tt.stake,
			}, DefaultStakeLimits(), testNow)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_ProGate(t *testing.T) {
	in := NewInput{
		ID:                    "ch",
		Kind:                  KindTeam,
		CreatedBy:             "cap",
		Initiator:             Party{ID: "cap", Roster: []Member{{ID: "cap", Tier: membership.TierPro}, {ID: "mate", Tier: membership.TierBasic}}},
		Stake:                 5000,
		RequiresProMembership: true,
	}
	if _, err := New(in, DefaultStakeLimits(), testNow); !errors.Is(err, ErrMembershipRequired) {
		t.Fatalf("expected ErrMembershipRequired for non-pro teammate, got %v", err)
	}

	in.Initiator.Roster[1].Tier = membership.TierPro
	proposed := solo("rival", membership.TierRookie)
	in.ProposedTarget = &proposed
	if _, err := New(in, DefaultStakeLimits(), testNow); !errors.Is(err, ErrMembershipRequired) {
		t.Fatalf("expected ErrMembershipRequired for non-pro target, got %v", err)
	}

	in.ProposedTarget = nil
	c, err := New(in, DefaultStakeLimits(), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusOpen || len(c.InitiatorRoster) != 2 {
		t.Fatalf("unexpected challenge: %+v", c)
	}

	accepting := Party{ID: "cap2", Roster: []Member{{ID: "cap2", Tier: membership.TierPro}, {ID: "mate2", Tier: membership.TierNone}}}
	if _, err := c.Accept(accepting, testNow); !errors.Is(err, ErrMembershipRequired) {
		t.Fatalf("expected ErrMembershipRequired on accept, got %v", err)
	}
}

func TestNew_RejectsBadParties(t *testing.T) {
	proposed := solo("alice", membership.TierNone)
	_, err := New(NewInput{
		ID:             "ch",
		Kind:           KindIndividual,
		CreatedBy:      "alice",
		Initiator:      solo("alice", membership.TierNone),
		ProposedTarget: &proposed,
		Stake:          5000,
	}, DefaultStakeLimits(), testNow)
	if !errors.Is(err, ErrInvalidParticipant) {
		t.Fatalf("expected ErrInvalidParticipant for self challenge, got %v", err)
	}

	_, err = New(NewInput{
		ID:        "ch",
		Kind:      KindTeam,
		CreatedBy: "cap",
		Initiator: Party{ID: "cap", Roster: []Member{{ID: "mate"}, {ID: "cap"}}},
		Stake:     5000,
	}, DefaultStakeLimits(), testNow)
	if !errors.Is(err, ErrInvalidParticipant) {
		t.Fatalf("expected ErrInvalidParticipant for captain not first, got %v", err)
	}
}

func TestAccept(t *testing.T) {
	c := openChallenge(t)

	if _, err := c.Accept(solo("alice", membership.TierNone), testNow); !errors.Is(err, ErrInvalidParticipant) {
		t.Fatalf("initiator must not accept, got %v", err)
	}

	accepted, err := c.Accept(solo("bob", membership.TierNone), testNow)
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if accepted.Status != StatusAccepted || accepted.TargetID != "bob" || accepted.AcceptedAt == nil {
		t.Fatalf("unexpected accepted challenge: %+v", accepted)
	}
	if c.Status != StatusOpen || c.TargetID != "" {
		t.Fatalf("Accept mutated receiver: %+v", c)
	}

	if _, err := accepted.Accept(solo("carol", membership.TierNone), testNow); !errors.Is(err, ErrAlreadyAccepted) {
		t.Fatalf("expected ErrAlreadyAccepted, got %v", err)
	}
}

func TestAccept_ProposedTargetOnly(t *testing.T) {
	proposed := solo("bob", membership.TierNone)
	c, err := New(NewInput{
		ID:             "ch",
		Kind:           KindIndividual,
		CreatedBy:      "alice",
		Initiator:      solo("alice", membership.TierNone),
		ProposedTarget: &proposed,
		Stake:          5000,
	}, DefaultStakeLimits(), testNow)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := c.Accept(solo("carol", membership.TierNone), testNow); !errors.Is(err, ErrInvalidParticipant) {
		t.Fatalf("expected ErrInvalidParticipant, got %v", err)
	}
	if _, err := c.Accept(solo("bob", membership.TierNone), testNow); err != nil {
		t.Fatalf("Accept error: %v", err)
	}
}

func TestAcceptMatrix(t *testing.T) {
	tests := []struct {
		status  Status
		wantErr error
	}{
		{status: StatusAccepted, wantErr: ErrAlreadyAccepted},
		{status: StatusInProgress, wantErr: ErrAlreadyAccepted},
		{status: StatusCompleted, wantErr: ErrAlreadyAccepted},
		{status: StatusCancelled, wantErr: statemachine.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, err := inStatus(t, tt.status).Accept(solo("carol", membership.TierNone), testNow)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got.Status != tt.status {
				t.Fatalf("rejected accept changed status to %s", got.Status)
			}
		})
	}
}

func TestCancelMatrix(t *testing.T) {
	tests := []struct {
		status  Status
		wantErr error
	}{
		{status: StatusOpen},
		{status: StatusAccepted},
		{status: StatusInProgress, wantErr: statemachine.ErrInvalidTransition},
		{status: StatusCompleted, wantErr: statemachine.ErrInvalidTransition},
		{status: StatusCancelled, wantErr: statemachine.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			c := inStatus(t, tt.status)
			got, err := c.Cancel("alice", ReasonWithdrawn, testNow)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if got.Status != tt.status {
					t.Fatalf("rejected cancel changed status to %s", got.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("Cancel error: %v", err)
			}
			if got.Status != StatusCancelled || got.CancelReason != ReasonWithdrawn || got.CancelledAt == nil {
				t.Fatalf("unexpected cancelled challenge: %+v", got)
			}
		})
	}
}

func TestCancel_Reasons(t *testing.T) {
	c := openChallenge(t)

	if _, err := c.Cancel("bob", ReasonWithdrawn, testNow); !errors.Is(err, ErrInvalidParticipant) {
		t.Fatalf("only initiator can withdraw, got %v", err)
	}
	if _, err := c.Cancel("", ReasonTimeout, testNow); err != nil {
		t.Fatalf("timeout cancel error: %v", err)
	}
	if _, err := c.Cancel("alice", CancelReason("bored"), testNow); err == nil {
		t.Fatalf("expected invalid reason error")
	}

	accepted := inStatus(t, StatusAccepted)
	if _, err := accepted.Cancel("", ReasonTimeout, testNow); !errors.Is(err, statemachine.ErrInvalidTransition) {
		t.Fatalf("accepted challenges must not time out, got %v", err)
	}
	declined, err := accepted.Cancel("bob", ReasonDeclined, testNow)
	if err != nil {
		t.Fatalf("decline error: %v", err)
	}
	if declined.CancelledBy != "bob" {
		t.Fatalf("unexpected canceller: %+v", declined)
	}
}

func TestComplete(t *testing.T) {
	if _, err := inStatus(t, StatusAccepted).Complete("alice", testNow); !errors.Is(err, statemachine.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	c := inStatus(t, StatusInProgress)
	if _, err := c.Complete("mallory", testNow); !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("expected ErrInvalidWinner, got %v", err)
	}

	done, err := c.Complete("bob", testNow)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if done.Status != StatusCompleted || done.WinnerID != "bob" {
		t.Fatalf("unexpected completed challenge: %+v", done)
	}
	if c.WinnerID != "" {
		t.Fatalf("winner must stay empty until completed")
	}
	if _, err := done.Complete("bob", testNow); !errors.Is(err, statemachine.ErrInvalidTransition) {
		t.Fatalf("second completion must fail, got %v", err)
	}
}

func TestVoid(t *testing.T) {
	if _, err := openChallenge(t).Void("admin", "x", testNow); !errors.Is(err, statemachine.ErrInvalidTransition) {
		t.Fatalf("void only applies in progress, got %v", err)
	}

	c := inStatus(t, StatusInProgress)
	if _, err := c.Void("admin", " ", testNow); err == nil {
		t.Fatalf("expected note error")
	}
	voided, err := c.Void("admin", "table broke", testNow)
	if err != nil {
		t.Fatalf("Void error: %v", err)
	}
	if voided.Status != StatusCancelled || voided.CancelReason != ReasonVoided || voided.VoidNote != "table broke" || voided.CancelledBy != "admin" {
		t.Fatalf("unexpected voided challenge: %+v", voided)
	}
}

func TestUpdateStake_OnlyWhileOpen(t *testing.T) {
	c := openChallenge(t)

	updated, err := c.UpdateStake("alice", 7500, DefaultStakeLimits(), testNow)
	if err != nil {
		t.Fatalf("UpdateStake error: %v", err)
	}
	if updated.Stake != 7500 || c.Stake != 5000 {
		t.Fatalf("unexpected stakes: updated=%d original=%d", updated.Stake, c.Stake)
	}

	if _, err := c.UpdateStake("alice", 1, DefaultStakeLimits(), testNow); !errors.Is(err, money.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := c.UpdateStake("bob", 7500, DefaultStakeLimits(), testNow); !errors.Is(err, ErrInvalidParticipant) {
		t.Fatalf("expected ErrInvalidParticipant, got %v", err)
	}

	for _, status := range []Status{StatusAccepted, StatusInProgress, StatusCompleted} {
		if _, err := inStatus(t, status).UpdateStake("alice", 7500, DefaultStakeLimits(), testNow); !errors.Is(err, statemachine.ErrInvalidTransition) {
			t.Fatalf("status=%s expected ErrInvalidTransition, got %v", status, err)
		}
	}
}

func TestContributions(t *testing.T) {
	c := openChallenge(t)
	c.Stake = 5001

	open := c.Contributions()
	if len(open) != 1 || open[0].RecipientID != "alice" || open[0].Amount != 2501 {
		t.Fatalf("unexpected open contributions: %+v", open)
	}

	accepted, err := c.Accept(solo("bob", membership.TierNone), testNow)
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	both := accepted.Contributions()
	if len(both) != 2 || both[0].Amount+both[1].Amount != 5001 || both[1].RecipientID != "bob" {
		t.Fatalf("unexpected contributions: %+v", both)
	}
}
