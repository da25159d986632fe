package postgres

import "time"

type venueTableModel struct {
	ID              int64      `db:"id"`
	PublicID        string     `db:"public_id"`
	Name            string     `db:"name"`
	Slug            string     `db:"slug"`
	OperatorID      *string    `db:"operator_id"`
	Wins            int        `db:"wins"`
	Losses          int        `db:"losses"`
	Points          int        `db:"points"`
	BattlesUnlocked bool       `db:"battles_unlocked"`
	UnlockedBy      *string    `db:"unlocked_by"`
	UnlockedAt      *time.Time `db:"unlocked_at"`
	Version         int64      `db:"version"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

type venueWriteModel struct {
	PublicID        string     `db:"public_id"`
	Name            string     `db:"name"`
	Slug            string     `db:"slug"`
	OperatorID      *string    `db:"operator_id"`
	Wins            int        `db:"wins"`
	Losses          int        `db:"losses"`
	Points          int        `db:"points"`
	BattlesUnlocked bool       `db:"battles_unlocked"`
	UnlockedBy      *string    `db:"unlocked_by"`
	UnlockedAt      *time.Time `db:"unlocked_at"`
	Version         int64      `db:"version"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

type venueAuditTableModel struct {
	VenuePublicID string    `db:"venue_public_id"`
	Action        string    `db:"action"`
	ActorID       string    `db:"actor_id"`
	OccurredAt    time.Time `db:"occurred_at"`
}
