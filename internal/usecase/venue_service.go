package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/user"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
	idgen "github.com/riskibarqy/pool-league/internal/platform/id"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
)

type CreateVenueInput struct {
	Actor      user.Principal
	Name       string
	OperatorID string
}

type VenueService struct {
	venueRepo venue.Repository
	idGen     idgen.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewVenueService(venueRepo venue.Repository, idGen idgen.Generator, logger *logging.Logger) *VenueService {
	if logger == nil {
		logger = logging.Default()
	}
	return &VenueService{
		venueRepo: venueRepo,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *VenueService) Create(ctx context.Context, input CreateVenueInput) (venue.Venue, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VenueService.Create")
	defer span.End()

	if !input.Actor.IsAdmin() {
		return venue.Venue{}, fmt.Errorf("%w: admin role required", ErrUnauthorized)
	}

	venueID, err := s.idGen.NewID()
	if err != nil {
		return venue.Venue{}, fmt.Errorf("generate venue id: %w", err)
	}
	item, err := venue.New(venueID, input.Name, input.OperatorID, s.now().UTC())
	if err != nil {
		return venue.Venue{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.venueRepo.Create(ctx, item); err != nil {
		return venue.Venue{}, fmt.Errorf("create venue: %w", err)
	}

	s.logger.Audit(ctx, "venue.created",
		"venue_id", item.ID,
		"slug", item.Slug,
		"actor_id", input.Actor.UserID,
	)
	return item, nil
}

func (s *VenueService) List(ctx context.Context) ([]venue.Venue, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VenueService.List")
	defer span.End()

	items, err := s.venueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return items, nil
}

func (s *VenueService) Get(ctx context.Context, venueID string) (venue.Venue, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VenueService.Get")
	defer span.End()

	return loadVenue(ctx, s.venueRepo, venueID)
}

// HallStandings orders venues by hall battle points, then wins.
func (s *VenueService) HallStandings(ctx context.Context) ([]venue.Venue, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VenueService.HallStandings")
	defer span.End()

	items, err := s.venueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Points != items[j].Points {
			return items[i].Points > items[j].Points
		}
		return items[i].Wins > items[j].Wins
	})
	return items, nil
}

func (s *VenueService) Unlock(ctx context.Context, actor user.Principal, venueID string) (venue.Venue, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VenueService.Unlock")
	defer span.End()

	return s.changeAccess(ctx, actor, venueID, venue.AuditUnlock)
}

func (s *VenueService) Lock(ctx context.Context, actor user.Principal, venueID string) (venue.Venue, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VenueService.Lock")
	defer span.End()

	return s.changeAccess(ctx, actor, venueID, venue.AuditLock)
}

func (s *VenueService) Audit(ctx context.Context, actor user.Principal, venueID string) ([]venue.AuditEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VenueService.Audit")
	defer span.End()

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", ErrUnauthorized)
	}
	item, err := loadVenue(ctx, s.venueRepo, venueID)
	if err != nil {
		return nil, err
	}
	entries, err := s.venueRepo.ListAudit(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list venue audit: %w", err)
	}
	return entries, nil
}

func (s *VenueService) changeAccess(ctx context.Context, actor user.Principal, venueID string, action venue.AuditAction) (venue.Venue, error) {
	if !actor.IsAdmin() {
		return venue.Venue{}, fmt.Errorf("%w: admin role required", ErrUnauthorized)
	}

	item, err := loadVenue(ctx, s.venueRepo, venueID)
	if err != nil {
		return venue.Venue{}, err
	}

	now := s.now().UTC()
	var (
		updated venue.Venue
		entry   *venue.AuditEntry
	)
	switch action {
	case venue.AuditUnlock:
		updated, entry, err = item.Unlock(actor.UserID, now)
	default:
		updated, entry, err = item.Lock(actor.UserID, now)
	}
	if err != nil {
		return venue.Venue{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if entry == nil {
		return item, nil
	}

	if err := s.venueRepo.UpdateAccess(ctx, updated, *entry); err != nil {
		return venue.Venue{}, fmt.Errorf("update venue access: %w", err)
	}
	updated.Version++

	s.logger.Audit(ctx, "venue."+string(action),
		"venue_id", updated.ID,
		"actor_id", actor.UserID,
	)
	return updated, nil
}

func loadVenue(ctx context.Context, repo venue.Repository, venueID string) (venue.Venue, error) {
	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		return venue.Venue{}, fmt.Errorf("%w: venue id is required", ErrInvalidInput)
	}
	item, exists, err := repo.GetByID(ctx, venueID)
	if err != nil {
		return venue.Venue{}, fmt.Errorf("get venue: %w", err)
	}
	if !exists {
		return venue.Venue{}, fmt.Errorf("%w: venue=%s", ErrNotFound, venueID)
	}
	return item, nil
}
