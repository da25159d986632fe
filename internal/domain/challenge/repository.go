package challenge

import (
	"context"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/payment"
)

type ListFilter struct {
	Status        Status
	Kind          Kind
	ParticipantID string
	Limit         int
}

// Repository describes challenge persistence needs from use cases.
//
// Update and Complete are compare-and-swap on Version of every entity they
// write. Instructions are inserted into the payment outbox in the same
// transaction.
type Repository interface {
	Create(ctx context.Context, c Challenge) error
	GetByID(ctx context.Context, challengeID string) (Challenge, bool, error)
	List(ctx context.Context, filter ListFilter) ([]Challenge, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]Challenge, error)
	Update(ctx context.Context, c Challenge, instructions []payment.Instruction) error
	Complete(ctx context.Context, completion Completion) error
}
