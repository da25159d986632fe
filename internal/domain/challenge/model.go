package challenge

import (
	"errors"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/platform/statemachine"
)

var (
	ErrMembershipRequired = errors.New("membership tier required")
	ErrAlreadyAccepted    = errors.New("challenge already accepted")
	ErrInvalidWinner      = errors.New("winner is not a participant")
	ErrInvalidParticipant = errors.New("invalid challenge participant")
)

type Kind string

const (
	KindIndividual Kind = "individual"
	KindTeam       Kind = "team"
	KindHall       Kind = "hall"
)

var AllKinds = map[Kind]struct{}{
	KindIndividual: {},
	KindTeam:       {},
	KindHall:       {},
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type Action string

const (
	ActionAccept      Action = "accept"
	ActionStart       Action = "start"
	ActionComplete    Action = "complete"
	ActionCancel      Action = "cancel"
	ActionVoid        Action = "void"
	ActionUpdateStake Action = "update_stake"
)

type CancelReason string

const (
	ReasonWithdrawn CancelReason = "withdrawn"
	ReasonDeclined  CancelReason = "declined"
	ReasonTimeout   CancelReason = "timeout"
	ReasonVoided    CancelReason = "voided"
)

// Transitions is the single table of legal challenge moves.
var Transitions = statemachine.New[Status, Action]("challenge").
	Allow(StatusOpen, ActionUpdateStake, StatusOpen).
	Allow(StatusOpen, ActionAccept, StatusAccepted).
	Allow(StatusAccepted, ActionStart, StatusInProgress).
	Allow(StatusInProgress, ActionComplete, StatusCompleted).
	Allow(StatusOpen, ActionCancel, StatusCancelled).
	Allow(StatusAccepted, ActionCancel, StatusCancelled).
	Allow(StatusInProgress, ActionVoid, StatusCancelled).
	Reject(StatusAccepted, ActionAccept, ErrAlreadyAccepted).
	Reject(StatusInProgress, ActionAccept, ErrAlreadyAccepted).
	Reject(StatusCompleted, ActionAccept, ErrAlreadyAccepted)

// StakeLimits bounds the stake accepted at creation.
type StakeLimits struct {
	Min money.Cents
	Max money.Cents
}

func DefaultStakeLimits() StakeLimits {
	return StakeLimits{Min: 10 * money.Dollar, Max: 10_000 * money.Dollar}
}

// Member is one participant together with the tier supplied by identity.
type Member struct {
	ID   string
	Tier membership.Tier
}

// Party is one side of a challenge. For individual challenges ID is the
// player, for team challenges the captain, for hall battles the venue.
// Roster lists the players on the side; the first member leads it.
type Party struct {
	ID     string
	Roster []Member
}

func (p Party) memberIDs() []string {
	out := make([]string, 0, len(p.Roster))
	for _, m := range p.Roster {
		out = append(out, m.ID)
	}
	return out
}

// Challenge generalizes individual, team and hall matches.
type Challenge struct {
	ID                    string
	Kind                  Kind
	CreatedBy             string
	InitiatorID           string
	InitiatorRoster       []string
	ProposedTargetID      string
	TargetID              string
	TargetRoster          []string
	OperatorID            string
	Stake                 money.Cents
	Status                Status
	RequiresProMembership bool
	WinnerID              string
	CancelReason          CancelReason
	CancelledBy           string
	VoidNote              string
	ExpiresAt             *time.Time
	AcceptedAt            *time.Time
	StartedAt             *time.Time
	CompletedAt           *time.Time
	CancelledAt           *time.Time
	Version               int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsParticipant reports whether id is one of the two sides.
func (c Challenge) IsParticipant(id string) bool {
	return id != "" && (id == c.InitiatorID || id == c.TargetID)
}

// Involves reports whether id is a side or a rostered player.
func (c Challenge) Involves(id string) bool {
	if c.IsParticipant(id) || c.ProposedTargetID == id {
		return true
	}
	for _, m := range c.InitiatorRoster {
		if m == id {
			return true
		}
	}
	for _, m := range c.TargetRoster {
		if m == id {
			return true
		}
	}
	return false
}

// Opponent returns the other side of id.
func (c Challenge) Opponent(id string) string {
	if id == c.InitiatorID {
		return c.TargetID
	}
	return c.InitiatorID
}

// RosterOf returns the roster of side id.
func (c Challenge) RosterOf(id string) []string {
	if id == c.InitiatorID {
		return append([]string(nil), c.InitiatorRoster...)
	}
	if id == c.TargetID {
		return append([]string(nil), c.TargetRoster...)
	}
	return nil
}

func (c Challenge) IsTerminal() bool {
	return c.Status == StatusCompleted || c.Status == StatusCancelled
}

func (c Challenge) clone() Challenge {
	c.InitiatorRoster = append([]string(nil), c.InitiatorRoster...)
	c.TargetRoster = append([]string(nil), c.TargetRoster...)
	return c
}
