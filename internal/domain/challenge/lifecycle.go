package challenge

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
	"github.com/riskibarqy/pool-league/internal/platform/statemachine"
)

type NewInput struct {
	ID                    string
	Kind                  Kind
	CreatedBy             string
	Initiator             Party
	ProposedTarget        *Party
	OperatorID            string
	Stake                 money.Cents
	RequiresProMembership bool
	ExpiresAt             *time.Time
}

// New creates an open challenge after checking the stake bounds and, when
// required, the pro membership of every known participant.
func New(in NewInput, limits StakeLimits, at time.Time) (Challenge, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return Challenge{}, fmt.Errorf("challenge id is required")
	}
	if _, ok := AllKinds[in.Kind]; !ok {
		return Challenge{}, fmt.Errorf("invalid challenge kind: %s", in.Kind)
	}
	if strings.TrimSpace(in.CreatedBy) == "" {
		return Challenge{}, fmt.Errorf("challenge creator is required")
	}
	if err := validateParty(in.Kind, in.Initiator); err != nil {
		return Challenge{}, err
	}
	if err := money.RequireWithin(in.Stake, limits.Min, limits.Max); err != nil {
		return Challenge{}, err
	}

	proposedID := ""
	if in.ProposedTarget != nil {
		proposedID = strings.TrimSpace(in.ProposedTarget.ID)
		if proposedID == "" {
			return Challenge{}, fmt.Errorf("%w: proposed target id is required", ErrInvalidParticipant)
		}
		if proposedID == in.Initiator.ID {
			return Challenge{}, fmt.Errorf("%w: cannot challenge yourself", ErrInvalidParticipant)
		}
	}

	if in.RequiresProMembership {
		if err := requireTier(in.Initiator, membership.TierPro); err != nil {
			return Challenge{}, err
		}
		if in.ProposedTarget != nil {
			if err := requireTier(*in.ProposedTarget, membership.TierPro); err != nil {
				return Challenge{}, err
			}
		}
	}

	return Challenge{
		ID:                    in.ID,
		Kind:                  in.Kind,
		CreatedBy:             strings.TrimSpace(in.CreatedBy),
		InitiatorID:           in.Initiator.ID,
		InitiatorRoster:       in.Initiator.memberIDs(),
		ProposedTargetID:      proposedID,
		OperatorID:            strings.TrimSpace(in.OperatorID),
		Stake:                 in.Stake,
		Status:                StatusOpen,
		RequiresProMembership: in.RequiresProMembership,
		ExpiresAt:             in.ExpiresAt,
		CreatedAt:             at,
		UpdatedAt:             at,
	}, nil
}

// Accept binds the accepting side. A second accept fails with ErrAlreadyAccepted.
func (c Challenge) Accept(acceptor Party, at time.Time) (Challenge, error) {
	next, err := Transitions.Next(c.Status, ActionAccept)
	if err != nil {
		return c, err
	}
	if err := validateParty(c.Kind, acceptor); err != nil {
		return c, err
	}
	if acceptor.ID == c.InitiatorID {
		return c, fmt.Errorf("%w: initiator cannot accept its own challenge", ErrInvalidParticipant)
	}
	if c.ProposedTargetID != "" && acceptor.ID != c.ProposedTargetID {
		return c, fmt.Errorf("%w: challenge is addressed to %s", ErrInvalidParticipant, c.ProposedTargetID)
	}
	for _, m := range acceptor.Roster {
		for _, existing := range c.InitiatorRoster {
			if m.ID == existing {
				return c, fmt.Errorf("%w: player %s is on both sides", ErrInvalidParticipant, m.ID)
			}
		}
	}
	if c.RequiresProMembership {
		if err := requireTier(acceptor, membership.TierPro); err != nil {
			return c, err
		}
	}

	out := c.clone()
	out.Status = next
	out.TargetID = acceptor.ID
	out.TargetRoster = acceptor.memberIDs()
	out.AcceptedAt = &at
	out.UpdatedAt = at
	return out, nil
}

func (c Challenge) Start(at time.Time) (Challenge, error) {
	next, err := Transitions.Next(c.Status, ActionStart)
	if err != nil {
		return c, err
	}

	out := c.clone()
	out.Status = next
	out.StartedAt = &at
	out.UpdatedAt = at
	return out, nil
}

// Complete records the winner. Settlement is computed separately by Resolve.
func (c Challenge) Complete(winnerID string, at time.Time) (Challenge, error) {
	next, err := Transitions.Next(c.Status, ActionComplete)
	if err != nil {
		return c, err
	}
	if !c.IsParticipant(winnerID) {
		return c, fmt.Errorf("%w: %s", ErrInvalidWinner, winnerID)
	}

	out := c.clone()
	out.Status = next
	out.WinnerID = winnerID
	out.CompletedAt = &at
	out.UpdatedAt = at
	return out, nil
}

// Cancel ends an open or accepted challenge without settlement.
func (c Challenge) Cancel(actorID string, reason CancelReason, at time.Time) (Challenge, error) {
	next, err := Transitions.Next(c.Status, ActionCancel)
	if err != nil {
		return c, err
	}

	actorID = strings.TrimSpace(actorID)
	switch reason {
	case ReasonWithdrawn:
		if actorID != c.InitiatorID && actorID != c.CreatedBy {
			return c, fmt.Errorf("%w: only the initiator can withdraw", ErrInvalidParticipant)
		}
	case ReasonDeclined:
		if actorID == "" || (actorID != c.ProposedTargetID && actorID != c.TargetID) {
			return c, fmt.Errorf("%w: only the target can decline", ErrInvalidParticipant)
		}
	case ReasonTimeout:
		if c.Status != StatusOpen {
			return c, fmt.Errorf("%w: only open challenges expire", statemachine.ErrInvalidTransition)
		}
	default:
		return c, fmt.Errorf("invalid cancel reason: %s", reason)
	}

	out := c.clone()
	out.Status = next
	out.CancelReason = reason
	out.CancelledBy = actorID
	out.CancelledAt = &at
	out.UpdatedAt = at
	return out, nil
}

// Void is the administrative exit for a challenge already in progress.
func (c Challenge) Void(actorID, note string, at time.Time) (Challenge, error) {
	next, err := Transitions.Next(c.Status, ActionVoid)
	if err != nil {
		return c, err
	}
	actorID = strings.TrimSpace(actorID)
	note = strings.TrimSpace(note)
	if actorID == "" {
		return c, fmt.Errorf("void actor is required")
	}
	if note == "" {
		return c, fmt.Errorf("void note is required")
	}

	out := c.clone()
	out.Status = next
	out.CancelReason = ReasonVoided
	out.CancelledBy = actorID
	out.VoidNote = note
	out.CancelledAt = &at
	out.UpdatedAt = at
	return out, nil
}

// UpdateStake changes the stake while the challenge is still open.
func (c Challenge) UpdateStake(actorID string, stake money.Cents, limits StakeLimits, at time.Time) (Challenge, error) {
	next, err := Transitions.Next(c.Status, ActionUpdateStake)
	if err != nil {
		return c, err
	}
	if actorID != c.InitiatorID && actorID != c.CreatedBy {
		return c, fmt.Errorf("%w: only the initiator can change the stake", ErrInvalidParticipant)
	}
	if err := money.RequireWithin(stake, limits.Min, limits.Max); err != nil {
		return c, err
	}

	out := c.clone()
	out.Status = next
	out.Stake = stake
	out.UpdatedAt = at
	return out, nil
}

// Contributions returns what each committed side has put into escrow. The
// stake is shared between the sides and the initiator covers the odd cent.
func (c Challenge) Contributions() []settlement.Allocation {
	targetShare := c.Stake / 2
	out := []settlement.Allocation{{RecipientID: c.InitiatorID, Amount: c.Stake - targetShare}}
	if c.TargetID != "" {
		out = append(out, settlement.Allocation{RecipientID: c.TargetID, Amount: targetShare})
	}
	return out
}

func validateParty(kind Kind, p Party) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: party id is required", ErrInvalidParticipant)
	}
	if len(p.Roster) == 0 {
		return fmt.Errorf("%w: roster is required", ErrInvalidParticipant)
	}

	seen := make(map[string]struct{}, len(p.Roster))
	for _, m := range p.Roster {
		if m.ID == "" {
			return fmt.Errorf("%w: roster member id is required", ErrInvalidParticipant)
		}
		if _, exists := seen[m.ID]; exists {
			return fmt.Errorf("%w: duplicate roster member %s", ErrInvalidParticipant, m.ID)
		}
		seen[m.ID] = struct{}{}
	}

	switch kind {
	case KindIndividual:
		if len(p.Roster) != 1 || p.Roster[0].ID != p.ID {
			return fmt.Errorf("%w: individual challenge roster must be the player only", ErrInvalidParticipant)
		}
	case KindTeam:
		if p.Roster[0].ID != p.ID {
			return fmt.Errorf("%w: team side must be led by its captain", ErrInvalidParticipant)
		}
	}

	return nil
}

func requireTier(p Party, required membership.Tier) error {
	for _, m := range p.Roster {
		if !m.Tier.AtLeast(required) {
			return fmt.Errorf("%w: %s needs tier %s, has %s", ErrMembershipRequired, m.ID, required, membership.ParseTier(string(m.Tier)))
		}
	}
	return nil
}
