package challenge

import (
	"fmt"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
)

// ResolveInput is the snapshot a completion is computed from.
type ResolveInput struct {
	Engine *settlement.Engine
	// PayerTier is the tier of the winning side's lead member.
	PayerTier membership.Tier

	// Individual challenges: the current ladder and its rules.
	Standings   []ladder.Player
	LadderRules ladder.Rules

	// Hall battles: both venues keyed by id.
	Venues        map[string]venue.Venue
	HallWinPoints int
}

// Completion is everything that must be persisted atomically when a
// challenge completes.
type Completion struct {
	Challenge    Challenge
	Settlement   settlement.Result
	Ladder       *ladder.Outcome
	Players      []ladder.Player
	Venues       []venue.Venue
	Instructions []payment.Instruction
}

// Resolve completes the challenge and derives rank movement, venue
// aggregates, settlement and payment instructions. Nothing is mutated.
func (c Challenge) Resolve(winnerID string, in ResolveInput, at time.Time) (Completion, error) {
	if in.Engine == nil {
		return Completion{}, fmt.Errorf("settlement engine is required")
	}

	completed, err := c.Complete(winnerID, at)
	if err != nil {
		return Completion{}, err
	}
	loserID := completed.Opponent(winnerID)

	result, err := in.Engine.Settle(completed.Stake, in.PayerTier)
	if err != nil {
		return Completion{}, err
	}

	recipients := []string{winnerID}
	if completed.Kind == KindTeam {
		recipients = completed.RosterOf(winnerID)
	}
	allocations, err := settlement.SplitPrize(result.PrizePool, recipients)
	if err != nil {
		return Completion{}, err
	}
	instructions, err := payment.FromSettlement(completed.ID, result, allocations, completed.OperatorID, at)
	if err != nil {
		return Completion{}, err
	}

	out := Completion{
		Challenge:    completed,
		Settlement:   result,
		Instructions: instructions,
	}

	switch completed.Kind {
	case KindIndividual:
		outcome, err := ladder.ApplyResult(in.Standings, winnerID, loserID, in.LadderRules)
		if err != nil {
			return Completion{}, err
		}
		out.Ladder = &outcome
		for _, p := range in.Standings {
			if p.ID == winnerID || p.ID == loserID {
				out.Players = append(out.Players, outcome.Apply(p, at))
			}
		}
	case KindHall:
		winnerVenue, ok := in.Venues[winnerID]
		if !ok {
			return Completion{}, fmt.Errorf("winning venue %s not loaded", winnerID)
		}
		loserVenue, ok := in.Venues[loserID]
		if !ok {
			return Completion{}, fmt.Errorf("losing venue %s not loaded", loserID)
		}
		out.Venues = []venue.Venue{
			winnerVenue.RecordHallResult(true, in.HallWinPoints, at),
			loserVenue.RecordHallResult(false, in.HallWinPoints, at),
		}
	}

	return out, nil
}
