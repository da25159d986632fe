package cache

import (
	"context"

	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
	basecache "github.com/riskibarqy/pool-league/internal/platform/cache"
)

const (
	ladderPrefix = "ladder:"
	venuePrefix  = "venue:"
)

// PlayerRepository caches division listings for standings reads. Point reads
// go straight through so compare-and-swap writes see current versions.
type PlayerRepository struct {
	next  ladder.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next ladder.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (ladder.Player, bool, error) {
	return r.next.GetByID(ctx, playerID)
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]ladder.Player, error) {
	return r.next.GetByIDs(ctx, playerIDs)
}

func (r *PlayerRepository) ListByDivision(ctx context.Context, division ladder.Division) ([]ladder.Player, error) {
	items, err := basecache.Load(ctx, r.cache, divisionKey(division), func(ctx context.Context) ([]ladder.Player, error) {
		items, err := r.next.ListByDivision(ctx, division)
		if err != nil {
			return nil, err
		}
		return append([]ladder.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]ladder.Player(nil), items...), nil
}

func (r *PlayerRepository) Create(ctx context.Context, p ladder.Player) error {
	if err := r.next.Create(ctx, p); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, ladderPrefix)
	return nil
}

func (r *PlayerRepository) Update(ctx context.Context, p ladder.Player) error {
	if err := r.next.Update(ctx, p); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, ladderPrefix)
	return nil
}

func divisionKey(division ladder.Division) string {
	return ladderPrefix + "division:" + string(division)
}

// VenueRepository caches the venue list used by hall standings.
type VenueRepository struct {
	next  venue.Repository
	cache *basecache.Store
}

func NewVenueRepository(next venue.Repository, cache *basecache.Store) *VenueRepository {
	return &VenueRepository{next: next, cache: cache}
}

func (r *VenueRepository) List(ctx context.Context) ([]venue.Venue, error) {
	items, err := basecache.Load(ctx, r.cache, venuePrefix+"list", func(ctx context.Context) ([]venue.Venue, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]venue.Venue(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]venue.Venue(nil), items...), nil
}

func (r *VenueRepository) GetByID(ctx context.Context, venueID string) (venue.Venue, bool, error) {
	return r.next.GetByID(ctx, venueID)
}

func (r *VenueRepository) Create(ctx context.Context, v venue.Venue) error {
	if err := r.next.Create(ctx, v); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, venuePrefix)
	return nil
}

func (r *VenueRepository) UpdateAccess(ctx context.Context, v venue.Venue, entry venue.AuditEntry) error {
	if err := r.next.UpdateAccess(ctx, v, entry); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, venuePrefix)
	return nil
}

func (r *VenueRepository) ListAudit(ctx context.Context, venueID string) ([]venue.AuditEntry, error) {
	return r.next.ListAudit(ctx, venueID)
}

// ChallengeRepository passes every call through and drops cached standings
// once a completion has moved players or venue aggregates.
type ChallengeRepository struct {
	challenge.Repository
	cache *basecache.Store
}

func NewChallengeRepository(next challenge.Repository, cache *basecache.Store) *ChallengeRepository {
	return &ChallengeRepository{Repository: next, cache: cache}
}

func (r *ChallengeRepository) Complete(ctx context.Context, completion challenge.Completion) error {
	if err := r.Repository.Complete(ctx, completion); err != nil {
		return err
	}
	if len(completion.Players) > 0 {
		r.cache.DeletePrefix(ctx, ladderPrefix)
	}
	if len(completion.Venues) > 0 {
		r.cache.DeletePrefix(ctx, venuePrefix)
	}
	return nil
}
