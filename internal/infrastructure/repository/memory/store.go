package memory

import (
	"sync"

	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/sharedpot"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
)

// Store keeps every aggregate behind one lock so multi-entity writes such as
// challenge completion are atomic, like a database transaction.
type Store struct {
	mu sync.RWMutex

	players      map[string]ladder.Player
	playerOrder  []string
	challenges   map[string]challenge.Challenge
	challengeIDs []string
	venues       map[string]venue.Venue
	venueOrder   []string
	venueAudit   map[string][]venue.AuditEntry
	games        map[string]sharedpot.Game
	gameOrder    []string
	instructions map[string]payment.Instruction
	insOrder     []string
	dispatches   map[string]jobscheduler.DispatchEvent
}

func NewStore() *Store {
	return &Store{
		players:      make(map[string]ladder.Player),
		challenges:   make(map[string]challenge.Challenge),
		venues:       make(map[string]venue.Venue),
		venueAudit:   make(map[string][]venue.AuditEntry),
		games:        make(map[string]sharedpot.Game),
		instructions: make(map[string]payment.Instruction),
		dispatches:   make(map[string]jobscheduler.DispatchEvent),
	}
}

// appendInstructionsLocked inserts outbox rows. Existing ids are kept as is,
// so replaying the same state change does not duplicate a transfer.
func (s *Store) appendInstructionsLocked(items []payment.Instruction) {
	for _, ins := range items {
		if _, exists := s.instructions[ins.ID]; exists {
			continue
		}
		s.instructions[ins.ID] = ins
		s.insOrder = append(s.insOrder, ins.ID)
	}
}

func cloneChallenge(c challenge.Challenge) challenge.Challenge {
	c.InitiatorRoster = append([]string(nil), c.InitiatorRoster...)
	c.TargetRoster = append([]string(nil), c.TargetRoster...)
	return c
}

func cloneGame(g sharedpot.Game) sharedpot.Game {
	g.Seats = append([]sharedpot.Seat(nil), g.Seats...)
	return g
}
