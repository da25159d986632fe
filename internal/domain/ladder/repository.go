package ladder

import "context"

// Repository describes player persistence needs from use cases.
//
// Update is a compare-and-swap on Version: it succeeds only when the stored
// version equals p.Version and stores p with Version+1.
type Repository interface {
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	GetByIDs(ctx context.Context, playerIDs []string) ([]Player, error)
	ListByDivision(ctx context.Context, division Division) ([]Player, error)
	Create(ctx context.Context, p Player) error
	Update(ctx context.Context, p Player) error
}
