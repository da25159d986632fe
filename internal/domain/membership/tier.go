package membership

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/pool-league/internal/domain/money"
)

type Tier string

const (
	TierNone   Tier = "none"
	TierRookie Tier = "rookie"
	TierBasic  Tier = "basic"
	TierPro    Tier = "pro"
)

var AllTiers = map[Tier]struct{}{
	TierNone:   {},
	TierRookie: {},
	TierBasic:  {},
	TierPro:    {},
}

// ParseTier normalizes a tier tag. Anything unrecognized is a non-member.
func ParseTier(raw string) Tier {
	tier := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := AllTiers[tier]; !ok {
		return TierNone
	}
	return tier
}

// AtLeast reports whether t grants everything required grants.
func (t Tier) AtLeast(required Tier) bool {
	return rank(ParseTier(string(t))) >= rank(ParseTier(string(required)))
}

func rank(t Tier) int {
	switch t {
	case TierPro:
		return 3
	case TierBasic:
		return 2
	case TierRookie:
		return 1
	default:
		return 0
	}
}

// Benefits is the canonical benefit set of one tier.
type Benefits struct {
	Tier                Tier
	CommissionRate      money.BasisPoints
	TournamentEntryFee  money.Cents
	FreeTournamentEntry bool
	Perks               []string
}

// RateTable maps tiers to benefits. It is read-only configuration.
type RateTable map[Tier]Benefits

func DefaultRateTable() RateTable {
	return RateTable{
		TierNone: {
			Tier:               TierNone,
			CommissionRate:     1000,
			TournamentEntryFee: 2000,
		},
		TierRookie: {
			Tier:               TierRookie,
			CommissionRate:     800,
			TournamentEntryFee: 1500,
			Perks:              []string{"ladder_access"},
		},
		TierBasic: {
			Tier:               TierBasic,
			CommissionRate:     800,
			TournamentEntryFee: 1500,
			Perks:              []string{"ladder_access", "team_challenges"},
		},
		TierPro: {
			Tier:                TierPro,
			CommissionRate:      500,
			TournamentEntryFee:  0,
			FreeTournamentEntry: true,
			Perks:               []string{"ladder_access", "team_challenges", "pro_challenges", "hall_battles"},
		},
	}
}

// Resolve returns the benefits for tier. Unknown or missing tiers resolve to
// the non-member entry, and if that is missing too, to the highest rate in the
// table, so a lookup can never produce a discount by accident.
func (t RateTable) Resolve(tier Tier) Benefits {
	if benefits, ok := t[ParseTier(string(tier))]; ok {
		return clone(benefits)
	}
	if benefits, ok := t[TierNone]; ok {
		return clone(benefits)
	}

	worst := Benefits{Tier: TierNone}
	for _, benefits := range t {
		if benefits.CommissionRate > worst.CommissionRate {
			worst = benefits
		}
	}
	worst.Tier = TierNone
	worst.FreeTournamentEntry = false
	return clone(worst)
}

// WithRates returns a copy of t with commission rates replaced.
func (t RateTable) WithRates(rates map[Tier]money.BasisPoints) RateTable {
	out := make(RateTable, len(t))
	for tier, benefits := range t {
		out[tier] = clone(benefits)
	}
	for tier, rate := range rates {
		benefits := out[tier]
		benefits.Tier = tier
		benefits.CommissionRate = rate
		out[tier] = benefits
	}
	return out
}

// ParseRates parses "tier:bp,tier:bp" overrides.
func ParseRates(raw string) (map[Tier]money.BasisPoints, error) {
	out := make(map[Tier]money.BasisPoints)
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid rate item %q, expected tier:basis_points", item)
		}
		tier := Tier(strings.ToLower(strings.TrimSpace(segments[0])))
		if _, ok := AllTiers[tier]; !ok {
			return nil, fmt.Errorf("unknown tier in item %q", item)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(segments[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rate in item %q: %w", item, err)
		}
		if value < 0 || value > int64(money.BasisPointScale) {
			return nil, fmt.Errorf("rate must be within [0, %d] in item %q", money.BasisPointScale, item)
		}
		out[tier] = money.BasisPoints(value)
	}
	return out, nil
}

func clone(b Benefits) Benefits {
	b.Perks = append([]string(nil), b.Perks...)
	return b
}
