package postgres

import "time"

type paymentInstructionTableModel struct {
	ID           int64      `db:"id"`
	PublicID     string     `db:"public_id"`
	Kind         string     `db:"kind"`
	Reference    string     `db:"reference"`
	RecipientID  string     `db:"recipient_id"`
	Amount       int64      `db:"amount"`
	Memo         string     `db:"memo"`
	Status       string     `db:"status"`
	Attempts     int        `db:"attempts"`
	LastError    *string    `db:"last_error"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DispatchedAt *time.Time `db:"dispatched_at"`
}

type paymentInstructionInsertModel struct {
	PublicID     string     `db:"public_id"`
	Kind         string     `db:"kind"`
	Reference    string     `db:"reference"`
	RecipientID  string     `db:"recipient_id"`
	Amount       int64      `db:"amount"`
	Memo         string     `db:"memo"`
	Status       string     `db:"status"`
	Attempts     int        `db:"attempts"`
	LastError    *string    `db:"last_error"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DispatchedAt *time.Time `db:"dispatched_at"`
}
