package ladder

import (
	"fmt"
	"sort"
	"time"
)

// Delta describes how one match changed a player.
type Delta struct {
	PlayerID       string
	Won            bool
	PointsBefore   int
	PointsAfter    int
	StreakBefore   int
	StreakAfter    int
	StreakBonus    int
	PositionBefore int
	PositionAfter  int
	KingDropped    bool
}

func (d Delta) Points() int {
	return d.PointsAfter - d.PointsBefore
}

type Outcome struct {
	Winner Delta
	Loser  Delta
}

// Apply returns p with the matching delta applied. Players not in the outcome
// are returned unchanged.
func (o Outcome) Apply(p Player, at time.Time) Player {
	var d Delta
	switch p.ID {
	case o.Winner.PlayerID:
		d = o.Winner
	case o.Loser.PlayerID:
		d = o.Loser
	default:
		return p
	}

	p.Points = d.PointsAfter
	p.Streak = d.StreakAfter
	if d.Won {
		p.Wins++
	} else {
		p.Losses++
	}
	p.UpdatedAt = at
	return p
}

// ApplyResult computes the rank movement of one completed match over a
// snapshot of the ladder. The snapshot is not modified.
//
// The winner gains WinPoints, plus StreakBonus when the new streak is a
// multiple of StreakEvery. The loser's streak resets and it loses LossPenalty
// points, floored at zero. When the loser held position 1 its points are
// instead set so that exactly KingDrop distinct positions sit above it, or to
// the bottom of the division when fewer exist.
func ApplyResult(players []Player, winnerID, loserID string, rules Rules) (Outcome, error) {
	if err := rules.Validate(); err != nil {
		return Outcome{}, err
	}
	if winnerID == loserID {
		return Outcome{}, fmt.Errorf("winner and loser must be different players")
	}

	winner, ok := find(players, winnerID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: winner %s", ErrPlayerNotInLadder, winnerID)
	}
	loser, ok := find(players, loserID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: loser %s", ErrPlayerNotInLadder, loserID)
	}

	winnerDivision := filterDivision(players, winner.Division())
	loserDivision := filterDivision(players, loser.Division())

	winnerDelta := Delta{
		PlayerID:     winner.ID,
		Won:          true,
		PointsBefore: winner.Points,
		StreakBefore: winner.Streak,
		StreakAfter:  winner.Streak + 1,
	}
	winnerDelta.PositionBefore, _ = PositionOf(winnerDivision, winner.ID)
	if winnerDelta.StreakAfter%rules.StreakEvery == 0 {
		winnerDelta.StreakBonus = rules.StreakBonus
	}
	winnerDelta.PointsAfter = winner.Points + rules.WinPoints + winnerDelta.StreakBonus

	loserDelta := Delta{
		PlayerID:     loser.ID,
		PointsBefore: loser.Points,
		StreakBefore: loser.Streak,
		StreakAfter:  0,
	}
	loserDelta.PositionBefore, _ = PositionOf(loserDivision, loser.ID)

	if loserDelta.PositionBefore == 1 && len(loserDivision) > 1 {
		loserDelta.PointsAfter = kingPoints(loserDivision, loser.ID, winnerDelta, rules.KingDrop)
		loserDelta.KingDropped = true
	} else {
		loserDelta.PointsAfter = loser.Points - rules.LossPenalty
		if loserDelta.PointsAfter < 0 {
			loserDelta.PointsAfter = 0
		}
		if loserDelta.PointsAfter > loser.Points {
			loserDelta.PointsAfter = loser.Points
		}
	}

	outcome := Outcome{Winner: winnerDelta, Loser: loserDelta}

	updated := make([]Player, 0, len(players))
	for _, p := range players {
		updated = append(updated, outcome.Apply(p, time.Time{}))
	}
	updatedWinner, _ := find(updated, winner.ID)
	updatedLoser, _ := find(updated, loser.ID)
	outcome.Winner.PositionAfter, _ = PositionOf(filterDivision(updated, updatedWinner.Division()), winner.ID)
	outcome.Loser.PositionAfter, _ = PositionOf(filterDivision(updated, updatedLoser.Division()), loser.ID)

	return outcome, nil
}

// kingPoints returns the points that leave exactly drop distinct levels above
// the deposed leader, using the other players' post-match points.
func kingPoints(division []Player, kingID string, winner Delta, drop int) int {
	seen := make(map[int]struct{}, len(division))
	levels := make([]int, 0, len(division))
	for _, p := range division {
		if p.ID == kingID {
			continue
		}
		points := p.Points
		if p.ID == winner.PlayerID {
			points = winner.PointsAfter
		}
		if _, exists := seen[points]; exists {
			continue
		}
		seen[points] = struct{}{}
		levels = append(levels, points)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))

	if len(levels) >= drop {
		return levels[drop-1] - 1
	}
	return levels[len(levels)-1] - 1
}
