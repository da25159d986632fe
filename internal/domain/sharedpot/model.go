package sharedpot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/platform/statemachine"
)

var (
	ErrGameFull      = errors.New("game is full")
	ErrAlreadySeated = errors.New("player already seated")
	ErrNotSeated     = errors.New("player not seated")
)

const (
	MinSeats = 2
	MaxSeats = 16
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Action string

const (
	ActionFill     Action = "fill"
	ActionComplete Action = "complete"
)

var Transitions = statemachine.New[Status, Action]("shared pot").
	Allow(StatusOpen, ActionFill, StatusActive).
	Allow(StatusActive, ActionComplete, StatusCompleted)

// Seat is one position at the table. An empty PlayerID marks an open seat.
type Seat struct {
	Number   int
	PlayerID string
	JoinedAt *time.Time
}

func (s Seat) IsOpen() bool {
	return s.PlayerID == ""
}

// Game accumulates entry fees until every seat is taken. The pot is always
// derived from CurrentPlayers and EntryFee.
type Game struct {
	ID             string
	MaxSeats       int
	Seats          []Seat
	CurrentPlayers int
	EntryFee       money.Cents
	Status         Status
	WinnerSeat     int
	WinnerID       string
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ActivatedAt    *time.Time
	CompletedAt    *time.Time
}

// Payout is the full pot handed to the winning seat.
type Payout struct {
	GameID   string
	Seat     int
	PlayerID string
	Amount   money.Cents
}

func New(id string, maxSeats int, entryFee money.Cents, at time.Time) (Game, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Game{}, fmt.Errorf("game id is required")
	}
	if maxSeats < MinSeats || maxSeats > MaxSeats {
		return Game{}, fmt.Errorf("max seats must be within [%d, %d], got %d", MinSeats, MaxSeats, maxSeats)
	}
	if err := money.RequirePositive(entryFee); err != nil {
		return Game{}, err
	}
	if maxFee := money.MaxAmount / money.Cents(maxSeats); entryFee > maxFee {
		return Game{}, fmt.Errorf("%w: entry fee %d exceeds %d for %d seats", money.ErrInvalidAmount, entryFee, maxFee, maxSeats)
	}

	seats := make([]Seat, maxSeats)
	for i := range seats {
		seats[i] = Seat{Number: i + 1}
	}

	return Game{
		ID:        id,
		MaxSeats:  maxSeats,
		Seats:     seats,
		EntryFee:  entryFee,
		Status:    StatusOpen,
		CreatedAt: at,
		UpdatedAt: at,
	}, nil
}

func (g Game) Pot() money.Cents {
	return money.Multiply(g.EntryFee, g.CurrentPlayers)
}

// Join seats playerID in the lowest open seat. The join that takes the last
// seat also activates the game.
func (g Game) Join(playerID string, at time.Time) (Game, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return g, fmt.Errorf("player id is required")
	}
	if g.CurrentPlayers >= g.MaxSeats {
		return g, fmt.Errorf("%w: game=%s seats=%d", ErrGameFull, g.ID, g.MaxSeats)
	}
	if g.Status != StatusOpen {
		return g, fmt.Errorf("%w: cannot join a %s game", statemachine.ErrInvalidTransition, g.Status)
	}
	if _, ok := g.SeatOf(playerID); ok {
		return g, fmt.Errorf("%w: %s", ErrAlreadySeated, playerID)
	}

	out := g.clone()
	for i := range out.Seats {
		if out.Seats[i].IsOpen() {
			out.Seats[i].PlayerID = playerID
			out.Seats[i].JoinedAt = &at
			break
		}
	}
	out.CurrentPlayers++
	out.UpdatedAt = at

	if out.CurrentPlayers == out.MaxSeats {
		next, err := Transitions.Next(out.Status, ActionFill)
		if err != nil {
			return g, err
		}
		out.Status = next
		out.ActivatedAt = &at
	}
	return out, nil
}

// Leave frees the player's seat while the game is still open.
func (g Game) Leave(playerID string, at time.Time) (Game, error) {
	if g.Status != StatusOpen {
		return g, fmt.Errorf("%w: cannot leave a %s game", statemachine.ErrInvalidTransition, g.Status)
	}
	seat, ok := g.SeatOf(playerID)
	if !ok {
		return g, fmt.Errorf("%w: %s", ErrNotSeated, playerID)
	}

	out := g.clone()
	out.Seats[seat-1].PlayerID = ""
	out.Seats[seat-1].JoinedAt = nil
	out.CurrentPlayers--
	out.UpdatedAt = at
	return out, nil
}

// Complete ends an active game and returns the payout for winnerSeat.
func (g Game) Complete(winnerSeat int, at time.Time) (Game, Payout, error) {
	next, err := Transitions.Next(g.Status, ActionComplete)
	if err != nil {
		return g, Payout{}, err
	}
	if winnerSeat < 1 || winnerSeat > len(g.Seats) || g.Seats[winnerSeat-1].IsOpen() {
		return g, Payout{}, fmt.Errorf("invalid winner seat %d", winnerSeat)
	}

	out := g.clone()
	out.Status = next
	out.WinnerSeat = winnerSeat
	out.WinnerID = out.Seats[winnerSeat-1].PlayerID
	out.CompletedAt = &at
	out.UpdatedAt = at

	return out, Payout{
		GameID:   out.ID,
		Seat:     winnerSeat,
		PlayerID: out.WinnerID,
		Amount:   out.Pot(),
	}, nil
}

// SeatOf returns the 1-based seat of playerID.
func (g Game) SeatOf(playerID string) (int, bool) {
	for _, seat := range g.Seats {
		if seat.PlayerID == playerID && playerID != "" {
			return seat.Number, true
		}
	}
	return 0, false
}

func (g Game) clone() Game {
	g.Seats = append([]Seat(nil), g.Seats...)
	return g
}
