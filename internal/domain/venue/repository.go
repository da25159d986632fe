package venue

import "context"

// Repository describes venue persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Venue, error)
	GetByID(ctx context.Context, venueID string) (Venue, bool, error)
	Create(ctx context.Context, v Venue) error
	// UpdateAccess persists an unlock or lock together with its audit entry,
	// compare-and-swap on Version.
	UpdateAccess(ctx context.Context, v Venue, entry AuditEntry) error
	ListAudit(ctx context.Context, venueID string) ([]AuditEntry, error)
}
