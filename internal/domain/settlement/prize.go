package settlement

import (
	"fmt"

	"github.com/riskibarqy/pool-league/internal/domain/money"
)

type Allocation struct {
	RecipientID string
	Amount      money.Cents
}

// SplitPrize divides pool evenly across recipients. The first recipient
// (captain) receives the remainder so the allocations always sum to pool.
func SplitPrize(pool money.Cents, recipients []string) ([]Allocation, error) {
	if pool < 0 {
		return nil, fmt.Errorf("%w: prize pool must be >= 0, got %d", money.ErrInvalidAmount, pool)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	seen := make(map[string]struct{}, len(recipients))
	for _, id := range recipients {
		if id == "" {
			return nil, fmt.Errorf("recipient id is required")
		}
		if _, exists := seen[id]; exists {
			return nil, fmt.Errorf("duplicate recipient %s", id)
		}
		seen[id] = struct{}{}
	}

	each := pool / money.Cents(len(recipients))
	remainder := pool - each*money.Cents(len(recipients))

	out := make([]Allocation, 0, len(recipients))
	for i, id := range recipients {
		amt := each
		if i == 0 {
			amt += remainder
		}
		out = append(out, Allocation{RecipientID: id, Amount: amt})
	}
	return out, nil
}
