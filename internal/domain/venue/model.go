package venue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

var ErrVenueLocked = errors.New("venue battles are locked")

type AuditAction string

const (
	AuditUnlock AuditAction = "unlock"
	AuditLock   AuditAction = "lock"
)

// Venue is a hall that can take part in inter-venue challenges once unlocked.
// UnlockedBy and UnlockedAt are set together on unlock and cleared together
// on lock.
type Venue struct {
	ID              string
	Name            string
	Slug            string
	OperatorID      string
	Wins            int
	Losses          int
	Points          int
	BattlesUnlocked bool
	UnlockedBy      string
	UnlockedAt      *time.Time
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AuditEntry records one administrative unlock or lock.
type AuditEntry struct {
	VenueID    string
	Action     AuditAction
	ActorID    string
	OccurredAt time.Time
}

func New(id, name, operatorID string, at time.Time) (Venue, error) {
	v := Venue{
		ID:         strings.TrimSpace(id),
		Name:       strings.TrimSpace(name),
		Slug:       slug.Make(name),
		OperatorID: strings.TrimSpace(operatorID),
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	if err := v.Validate(); err != nil {
		return Venue{}, err
	}
	return v, nil
}

func (v Venue) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("venue id is required")
	}
	if v.Name == "" {
		return fmt.Errorf("venue name is required")
	}
	if v.Slug == "" {
		return fmt.Errorf("venue slug is required")
	}
	if v.BattlesUnlocked != (v.UnlockedBy != "" && v.UnlockedAt != nil) {
		return fmt.Errorf("venue unlock audit fields are inconsistent")
	}

	return nil
}

// Unlock opens the venue for inter-venue battles. Unlocking an unlocked venue
// is a no-op and produces no audit entry.
func (v Venue) Unlock(actorID string, at time.Time) (Venue, *AuditEntry, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return v, nil, fmt.Errorf("unlock actor is required")
	}
	if v.BattlesUnlocked {
		return v, nil, nil
	}

	v.BattlesUnlocked = true
	v.UnlockedBy = actorID
	v.UnlockedAt = &at
	v.UpdatedAt = at
	return v, &AuditEntry{VenueID: v.ID, Action: AuditUnlock, ActorID: actorID, OccurredAt: at}, nil
}

// Lock closes the venue. Locking a locked venue is a no-op.
func (v Venue) Lock(actorID string, at time.Time) (Venue, *AuditEntry, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return v, nil, fmt.Errorf("lock actor is required")
	}
	if !v.BattlesUnlocked {
		return v, nil, nil
	}

	v.BattlesUnlocked = false
	v.UnlockedBy = ""
	v.UnlockedAt = nil
	v.UpdatedAt = at
	return v, &AuditEntry{VenueID: v.ID, Action: AuditLock, ActorID: actorID, OccurredAt: at}, nil
}

func (v Venue) EnsureBattlesUnlocked() error {
	if !v.BattlesUnlocked {
		return fmt.Errorf("%w: venue=%s", ErrVenueLocked, v.ID)
	}
	return nil
}

// RecordHallResult updates the aggregates of one side of a finished hall battle.
func (v Venue) RecordHallResult(won bool, winPoints int, at time.Time) Venue {
	if won {
		v.Wins++
		v.Points += winPoints
	} else {
		v.Losses++
	}
	v.UpdatedAt = at
	return v
}
