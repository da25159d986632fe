package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/pool-league/internal/domain/revision"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
)

type VenueRepository struct {
	store *Store
}

func NewVenueRepository(store *Store) *VenueRepository {
	return &VenueRepository{store: store}
}

func (r *VenueRepository) List(_ context.Context) ([]venue.Venue, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]venue.Venue, 0, len(r.store.venueOrder))
	for _, id := range r.store.venueOrder {
		out = append(out, r.store.venues[id])
	}
	return out, nil
}

func (r *VenueRepository) GetByID(_ context.Context, venueID string) (venue.Venue, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	v, ok := r.store.venues[venueID]
	return v, ok, nil
}

func (r *VenueRepository) Create(_ context.Context, v venue.Venue) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.venues[v.ID]; exists {
		return fmt.Errorf("venue %s already exists", v.ID)
	}
	for _, existing := range r.store.venues {
		if existing.Slug == v.Slug {
			return fmt.Errorf("venue slug %s already taken", v.Slug)
		}
	}
	r.store.venues[v.ID] = v
	r.store.venueOrder = append(r.store.venueOrder, v.ID)
	return nil
}

func (r *VenueRepository) UpdateAccess(_ context.Context, v venue.Venue, entry venue.AuditEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.venues[v.ID]
	if !ok {
		return fmt.Errorf("venue %s not found", v.ID)
	}
	if err := revision.Check("venue", v.ID, stored.Version, v.Version); err != nil {
		return err
	}

	v.Version++
	r.store.venues[v.ID] = v
	r.store.venueAudit[v.ID] = append(r.store.venueAudit[v.ID], entry)
	return nil
}

func (r *VenueRepository) ListAudit(_ context.Context, venueID string) ([]venue.AuditEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]venue.AuditEntry(nil), r.store.venueAudit[venueID]...), nil
}
