package postgres

import (
	"time"

	"github.com/lib/pq"
)

type challengeTableModel struct {
	ID                    int64          `db:"id"`
	PublicID              string         `db:"public_id"`
	Kind                  string         `db:"kind"`
	CreatedBy             string         `db:"created_by"`
	InitiatorID           string         `db:"initiator_id"`
	InitiatorRoster       pq.StringArray `db:"initiator_roster"`
	ProposedTargetID      *string        `db:"proposed_target_id"`
	TargetID              *string        `db:"target_id"`
	TargetRoster          pq.StringArray `db:"target_roster"`
	OperatorID            *string        `db:"operator_id"`
	Stake                 int64          `db:"stake"`
	Status                string         `db:"status"`
	RequiresProMembership bool           `db:"requires_pro_membership"`
	WinnerID              *string        `db:"winner_id"`
	CancelReason          *string        `db:"cancel_reason"`
	CancelledBy           *string        `db:"cancelled_by"`
	VoidNote              *string        `db:"void_note"`
	ExpiresAt             *time.Time     `db:"expires_at"`
	AcceptedAt            *time.Time     `db:"accepted_at"`
	StartedAt             *time.Time     `db:"started_at"`
	CompletedAt           *time.Time     `db:"completed_at"`
	CancelledAt           *time.Time     `db:"cancelled_at"`
	Version               int64          `db:"version"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
	DeletedAt             *time.Time     `db:"deleted_at"`
}

type challengeWriteModel struct {
	PublicID              string         `db:"public_id"`
	Kind                  string         `db:"kind"`
	CreatedBy             string         `db:"created_by"`
	InitiatorID           string         `db:"initiator_id"`
	InitiatorRoster       pq.StringArray `db:"initiator_roster"`
	ProposedTargetID      *string        `db:"proposed_target_id"`
	TargetID              *string        `db:"target_id"`
	TargetRoster          pq.StringArray `db:"target_roster"`
	OperatorID            *string        `db:"operator_id"`
	Stake                 int64          `db:"stake"`
	Status                string         `db:"status"`
	RequiresProMembership bool           `db:"requires_pro_membership"`
	WinnerID              *string        `db:"winner_id"`
	CancelReason          *string        `db:"cancel_reason"`
	CancelledBy           *string        `db:"cancelled_by"`
	VoidNote              *string        `db:"void_note"`
	ExpiresAt             *time.Time     `db:"expires_at"`
	AcceptedAt            *time.Time     `db:"accepted_at"`
	StartedAt             *time.Time     `db:"started_at"`
	CompletedAt           *time.Time     `db:"completed_at"`
	CancelledAt           *time.Time     `db:"cancelled_at"`
	Version               int64          `db:"version"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}
