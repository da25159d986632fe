package sharedpot

import (
	"context"

	"github.com/riskibarqy/pool-league/internal/domain/payment"
)

// Repository describes shared-pot persistence needs from use cases.
//
// Update is compare-and-swap on Version, so two joins racing for the last
// seat cannot both succeed. Instructions are written to the payment outbox
// in the same transaction.
type Repository interface {
	Create(ctx context.Context, g Game) error
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	ListByStatus(ctx context.Context, status Status) ([]Game, error)
	Update(ctx context.Context, g Game, instructions []payment.Instruction) error
}
