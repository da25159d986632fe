package postgres

import "time"

type sharedPotGameTableModel struct {
	ID             int64      `db:"id"`
	PublicID       string     `db:"public_id"`
	MaxSeats       int        `db:"max_seats"`
	Seats          string     `db:"seats"`
	CurrentPlayers int        `db:"current_players"`
	EntryFee       int64      `db:"entry_fee"`
	Status         string     `db:"status"`
	WinnerSeat     int        `db:"winner_seat"`
	WinnerID       *string    `db:"winner_id"`
	Version        int64      `db:"version"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	ActivatedAt    *time.Time `db:"activated_at"`
	CompletedAt    *time.Time `db:"completed_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type sharedPotGameWriteModel struct {
	PublicID       string     `db:"public_id"`
	MaxSeats       int        `db:"max_seats"`
	Seats          string     `db:"seats"`
	CurrentPlayers int        `db:"current_players"`
	EntryFee       int64      `db:"entry_fee"`
	Status         string     `db:"status"`
	WinnerSeat     int        `db:"winner_seat"`
	WinnerID       *string    `db:"winner_id"`
	Version        int64      `db:"version"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	ActivatedAt    *time.Time `db:"activated_at"`
	CompletedAt    *time.Time `db:"completed_at"`
}

// seatDocument is the JSON shape of one element of the seats column.
type seatDocument struct {
	Number   int        `json:"number"`
	PlayerID string     `json:"player_id,omitempty"`
	JoinedAt *time.Time `json:"joined_at,omitempty"`
}
