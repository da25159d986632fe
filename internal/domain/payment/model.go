package payment

import (
	"fmt"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
)

type Kind string

const (
	KindPayout     Kind = "payout"
	KindRefund     Kind = "refund"
	KindCommission Kind = "commission"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusDispatched Status = "dispatched"
	StatusFailed     Status = "failed"
)

// MaxAttempts bounds how often a failed instruction is retried.
const MaxAttempts = 5

// Instruction asks the payment collaborator to move Amount to RecipientID.
// It is written to the outbox together with the state change that caused it.
type Instruction struct {
	ID           string
	Kind         Kind
	Reference    string
	RecipientID  string
	Amount       money.Cents
	Memo         string
	Status       Status
	Attempts     int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DispatchedAt *time.Time
}

// IdempotencyKey identifies one transfer across retries.
func IdempotencyKey(reference, recipientID string, kind Kind) string {
	return fmt.Sprintf("%s:%s:%s", reference, recipientID, kind)
}

func NewInstruction(kind Kind, reference, recipientID string, amount money.Cents, memo string, at time.Time) (Instruction, error) {
	if reference == "" {
		return Instruction{}, fmt.Errorf("payment reference is required")
	}
	if recipientID == "" {
		return Instruction{}, fmt.Errorf("payment recipient is required")
	}
	if err := money.RequirePositive(amount); err != nil {
		return Instruction{}, err
	}

	return Instruction{
		ID:          IdempotencyKey(reference, recipientID, kind),
		Kind:        kind,
		Reference:   reference,
		RecipientID: recipientID,
		Amount:      amount,
		Memo:        memo,
		Status:      StatusPending,
		CreatedAt:   at,
		UpdatedAt:   at,
	}, nil
}

func (i Instruction) MarkDispatched(at time.Time) Instruction {
	i.Status = StatusDispatched
	i.Attempts++
	i.LastError = ""
	i.DispatchedAt = &at
	i.UpdatedAt = at
	return i
}

func (i Instruction) MarkFailed(reason string, at time.Time) Instruction {
	i.Status = StatusFailed
	i.Attempts++
	i.LastError = reason
	i.UpdatedAt = at
	return i
}

// FromSettlement turns a settlement into payout and commission instructions.
// Payout amounts sum to the prize pool and commission amounts sum to the
// rounded commission. The first stakeholder also receives the retained
// remainder. Zero amounts produce no instruction.
func FromSettlement(reference string, result settlement.Result, winners []settlement.Allocation, operatorID string, at time.Time) ([]Instruction, error) {
	out := make([]Instruction, 0, len(winners)+len(result.Shares))

	for _, alloc := range winners {
		if alloc.Amount == 0 {
			continue
		}
		ins, err := NewInstruction(KindPayout, reference, alloc.RecipientID, alloc.Amount, "prize", at)
		if err != nil {
			return nil, err
		}
		out = append(out, ins)
	}

	for i, share := range result.Shares {
		amount := share.Amount
		if i == 0 {
			amount += result.Retained
		}
		if amount == 0 {
			continue
		}
		recipient := string(share.Stakeholder)
		if share.Stakeholder == settlement.StakeholderOperator && operatorID != "" {
			recipient = operatorID
		}
		ins, err := NewInstruction(KindCommission, reference, recipient, amount, string(share.Stakeholder), at)
		if err != nil {
			return nil, err
		}
		out = append(out, ins)
	}

	return out, nil
}

// Refunds returns one refund per contribution.
func Refunds(reference string, contributions []settlement.Allocation, memo string, at time.Time) ([]Instruction, error) {
	out := make([]Instruction, 0, len(contributions))
	for _, c := range contributions {
		if c.Amount == 0 {
			continue
		}
		ins, err := NewInstruction(KindRefund, reference, c.RecipientID, c.Amount, memo, at)
		if err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	return out, nil
}

func Total(instructions []Instruction, kind Kind) money.Cents {
	var sum money.Cents
	for _, ins := range instructions {
		if ins.Kind == kind {
			sum += ins.Amount
		}
	}
	return sum
}
