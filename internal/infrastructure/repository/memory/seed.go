package memory

import (
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
)

const (
	VenueIDCornerPocket = "venue-corner-pocket"
	VenueIDEightBall    = "venue-eight-ball"
)

var seedTime = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func SeedPlayers() []ladder.Player {
	players := []ladder.Player{
		{ID: "pl-ayu", Name: "Ayu Lestari", Rating: 720, Points: 140, MembershipTier: membership.TierPro},
		{ID: "pl-bima", Name: "Bima Santoso", Rating: 690, Points: 120, MembershipTier: membership.TierBasic},
		{ID: "pl-citra", Name: "Citra Dewi", Rating: 655, Points: 120, MembershipTier: membership.TierPro},
		{ID: "pl-dimas", Name: "Dimas Pratama", Rating: 640, Points: 95, MembershipTier: membership.TierRookie},
		{ID: "pl-eka", Name: "Eka Putri", Rating: 610, Points: 80, MembershipTier: membership.TierNone},
		{ID: "pl-fajar", Name: "Fajar Nugroho", Rating: 580, Points: 110, MembershipTier: membership.TierBasic},
		{ID: "pl-gita", Name: "Gita Maharani", Rating: 540, Points: 90, MembershipTier: membership.TierPro},
		{ID: "pl-hadi", Name: "Hadi Wijaya", Rating: 500, Points: 70, MembershipTier: membership.TierRookie},
		{ID: "pl-indra", Name: "Indra Kusuma", Rating: 455, Points: 40, MembershipTier: membership.TierNone},
	}
	for i := range players {
		players[i].CreatedAt = seedTime
		players[i].UpdatedAt = seedTime
	}
	return players
}

func SeedVenues() []venue.Venue {
	unlockedAt := seedTime
	return []venue.Venue{
		{
			ID:              VenueIDCornerPocket,
			Name:            "Corner Pocket Billiards",
			Slug:            "corner-pocket-billiards",
			OperatorID:      "op-rina",
			BattlesUnlocked: true,
			UnlockedBy:      "admin-root",
			UnlockedAt:      &unlockedAt,
			CreatedAt:       seedTime,
			UpdatedAt:       seedTime,
		},
		{
			ID:         VenueIDEightBall,
			Name:       "Eight Ball Lounge",
			Slug:       "eight-ball-lounge",
			OperatorID: "op-tono",
			CreatedAt:  seedTime,
			UpdatedAt:  seedTime,
		},
	}
}

// NewSeededStore returns a store preloaded with the seed ladder and venues.
func NewSeededStore() *Store {
	s := NewStore()
	for _, p := range SeedPlayers() {
		s.players[p.ID] = p
		s.playerOrder = append(s.playerOrder, p.ID)
	}
	for _, v := range SeedVenues() {
		s.venues[v.ID] = v
		s.venueOrder = append(s.venueOrder, v.ID)
	}
	return s
}
