package ladder

import (
	"fmt"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/membership"
)

// HighDivisionRating is the lowest rating that places a player in the high division.
const HighDivisionRating = 600

type Division string

const (
	DivisionHigh Division = "high"
	DivisionLow  Division = "low"
)

func ParseDivision(raw string) (Division, bool) {
	switch Division(raw) {
	case DivisionHigh:
		return DivisionHigh, true
	case DivisionLow:
		return DivisionLow, true
	default:
		return "", false
	}
}

// Player is a ladder participant. Points, Streak, Wins and Losses change only
// through ApplyResult.
type Player struct {
	ID             string
	Name           string
	Rating         int
	Points         int
	Streak         int
	RespectPoints  int
	MembershipTier membership.Tier
	Wins           int
	Losses         int
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Division is derived from rating on every call and never stored.
func (p Player) Division() Division {
	if p.Rating >= HighDivisionRating {
		return DivisionHigh
	}
	return DivisionLow
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.Rating < 0 {
		return fmt.Errorf("player rating must be >= 0")
	}
	if p.Streak < 0 {
		return fmt.Errorf("player streak must be >= 0")
	}
	if p.RespectPoints < 0 {
		return fmt.Errorf("player respect points must be >= 0")
	}

	return nil
}

// Standing is a player's official position in its division. Position is a
// dense rank: players with equal points share a position.
type Standing struct {
	Position int
	Player   Player
}
