package postgres

import "time"

type ladderPlayerTableModel struct {
	ID             int64      `db:"id"`
	PublicID       string     `db:"public_id"`
	Name           string     `db:"name"`
	Rating         int        `db:"rating"`
	Points         int        `db:"points"`
	Streak         int        `db:"streak"`
	RespectPoints  int        `db:"respect_points"`
	MembershipTier string     `db:"membership_tier"`
	Wins           int        `db:"wins"`
	Losses         int        `db:"losses"`
	Version        int64      `db:"version"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type ladderPlayerWriteModel struct {
	PublicID       string    `db:"public_id"`
	Name           string    `db:"name"`
	Rating         int       `db:"rating"`
	Points         int       `db:"points"`
	Streak         int       `db:"streak"`
	RespectPoints  int       `db:"respect_points"`
	MembershipTier string    `db:"membership_tier"`
	Wins           int       `db:"wins"`
	Losses         int       `db:"losses"`
	Version        int64     `db:"version"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
