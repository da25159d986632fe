package ladder

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrIneligibleChallenge = errors.New("ineligible challenge")
	ErrPlayerNotInLadder   = errors.New("player not in ladder")
	ErrInvalidRules        = errors.New("invalid ladder rules")
)

const (
	MinKingDrop = 3
	MaxKingDrop = 7
)

// Rules stores rank movement parameters.
type Rules struct {
	WinPoints   int
	LossPenalty int
	StreakBonus int
	StreakEvery int
	KingDrop    int
}

func DefaultRules() Rules {
	return Rules{
		WinPoints:   10,
		LossPenalty: 5,
		StreakBonus: 25,
		StreakEvery: 3,
		KingDrop:    MinKingDrop,
	}
}

func (r Rules) Validate() error {
	if r.WinPoints <= 0 {
		return fmt.Errorf("%w: win points must be > 0", ErrInvalidRules)
	}
	if r.LossPenalty < 0 {
		return fmt.Errorf("%w: loss penalty must be >= 0", ErrInvalidRules)
	}
	if r.StreakBonus < 0 {
		return fmt.Errorf("%w: streak bonus must be >= 0", ErrInvalidRules)
	}
	if r.StreakEvery <= 0 {
		return fmt.Errorf("%w: streak interval must be > 0", ErrInvalidRules)
	}
	if r.KingDrop < MinKingDrop || r.KingDrop > MaxKingDrop {
		return fmt.Errorf("%w: king drop must be within [%d, %d], got %d", ErrInvalidRules, MinKingDrop, MaxKingDrop, r.KingDrop)
	}

	return nil
}

// Rank orders players by points descending. Equal points keep input order
// and share a position.
func Rank(players []Player) []Standing {
	sorted := append([]Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})

	out := make([]Standing, 0, len(sorted))
	position := 0
	for i, p := range sorted {
		if i == 0 || p.Points != sorted[i-1].Points {
			position++
		}
		out = append(out, Standing{Position: position, Player: p})
	}
	return out
}

// SortForDisplay applies respect points as a secondary key. The result is for
// presentation only; positions stay those of Rank.
func SortForDisplay(standings []Standing) []Standing {
	out := append([]Standing(nil), standings...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Player.RespectPoints > out[j].Player.RespectPoints
	})
	return out
}

// PositionOf returns the official position of playerID within players.
func PositionOf(players []Player, playerID string) (int, bool) {
	for _, standing := range Rank(players) {
		if standing.Player.ID == playerID {
			return standing.Position, true
		}
	}
	return 0, false
}

// CheckEligibility allows a challenge only against an opponent in the same
// division whose position equals the challenger's or is exactly one above it.
func CheckEligibility(players []Player, challengerID, targetID string) error {
	if challengerID == targetID {
		return fmt.Errorf("%w: cannot challenge yourself", ErrIneligibleChallenge)
	}

	challenger, ok := find(players, challengerID)
	if !ok {
		return fmt.Errorf("%w: challenger %s", ErrPlayerNotInLadder, challengerID)
	}
	target, ok := find(players, targetID)
	if !ok {
		return fmt.Errorf("%w: target %s", ErrPlayerNotInLadder, targetID)
	}
	if challenger.Division() != target.Division() {
		return fmt.Errorf("%w: %s is in division %s, %s is in division %s", ErrIneligibleChallenge, challengerID, challenger.Division(), targetID, target.Division())
	}

	division := filterDivision(players, challenger.Division())
	challengerPos, _ := PositionOf(division, challengerID)
	targetPos, _ := PositionOf(division, targetID)
	if targetPos != challengerPos && targetPos != challengerPos-1 {
		return fmt.Errorf("%w: challenger position=%d target position=%d", ErrIneligibleChallenge, challengerPos, targetPos)
	}

	return nil
}

func find(players []Player, playerID string) (Player, bool) {
	for _, p := range players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

func filterDivision(players []Player, division Division) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		if p.Division() == division {
			out = append(out, p)
		}
	}
	return out
}
