package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/sharedpot"
	qb "github.com/riskibarqy/pool-league/internal/platform/querybuilder"
)

type SharedPotRepository struct {
	db *sqlx.DB
}

var sharedPotSelectColumns = []string{
	"id",
	"public_id",
	"max_seats",
	"seats::text AS seats",
	"current_players",
	"entry_fee",
	"status",
	"winner_seat",
	"winner_id",
	"version",
	"created_at",
	"updated_at",
	"activated_at",
	"completed_at",
	"deleted_at",
}

func NewSharedPotRepository(db *sqlx.DB) *SharedPotRepository {
	return &SharedPotRepository{db: db}
}

func (r *SharedPotRepository) Create(ctx context.Context, g sharedpot.Game) error {
	model, err := sharedPotModelFrom(g)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("shared_pot_games", model, "")
	if err != nil {
		return fmt.Errorf("build insert shared pot game query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("game %s already exists", g.ID)
		}
		return fmt.Errorf("insert shared pot game %s: %w", g.ID, err)
	}
	return nil
}

func (r *SharedPotRepository) GetByID(ctx context.Context, gameID string) (sharedpot.Game, bool, error) {
	query, args, err := qb.Select(sharedPotSelectColumns...).From("shared_pot_games").
		Where(
			qb.Eq("public_id", gameID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return sharedpot.Game{}, false, fmt.Errorf("build select shared pot game query: %w", err)
	}

	var row sharedPotGameTableModel
	if err := getContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return sharedpot.Game{}, false, nil
		}
		return sharedpot.Game{}, false, fmt.Errorf("select shared pot game: %w", err)
	}

	g, err := sharedPotFromRow(row)
	if err != nil {
		return sharedpot.Game{}, false, err
	}
	return g, true, nil
}

func (r *SharedPotRepository) ListByStatus(ctx context.Context, status sharedpot.Status) ([]sharedpot.Game, error) {
	conds := []qb.Condition{qb.IsNull("deleted_at")}
	if status != "" {
		conds = append(conds, qb.Eq("status", string(status)))
	}
	query, args, err := qb.Select(sharedPotSelectColumns...).From("shared_pot_games").
		Where(conds...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list shared pot games query: %w", err)
	}

	var rows []sharedPotGameTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list shared pot games status=%s: %w", status, err)
	}

	out := make([]sharedpot.Game, 0, len(rows))
	for _, row := range rows {
		g, err := sharedPotFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *SharedPotRepository) Update(ctx context.Context, g sharedpot.Game, instructions []payment.Instruction) error {
	model, err := sharedPotModelFrom(g)
	if err != nil {
		return err
	}

	return inTx(ctx, r.db, "shared pot update", func(tx *sqlx.Tx) error {
		builder, err := qb.UpdateModel("shared_pot_games", model, "public_id", "version", "created_at", "max_seats", "entry_fee")
		if err != nil {
			return fmt.Errorf("build update shared pot game query: %w", err)
		}
		query, args, err := builder.
			SetExpr("version", "version + 1").
			Where(
				qb.Eq("public_id", g.ID),
				qb.Eq("version", g.Version),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update shared pot game query: %w", err)
		}
		if err := execVersioned(ctx, tx, "shared_pot_games", "game", g.ID, g.Version, query, args...); err != nil {
			return err
		}
		return insertInstructions(ctx, tx, instructions)
	})
}

func sharedPotModelFrom(g sharedpot.Game) (sharedPotGameWriteModel, error) {
	docs := make([]seatDocument, 0, len(g.Seats))
	for _, seat := range g.Seats {
		docs = append(docs, seatDocument{Number: seat.Number, PlayerID: seat.PlayerID, JoinedAt: nullableTime(seat.JoinedAt)})
	}
	raw, err := sonic.MarshalString(docs)
	if err != nil {
		return sharedPotGameWriteModel{}, fmt.Errorf("encode seats game=%s: %w", g.ID, err)
	}

	return sharedPotGameWriteModel{
		PublicID:       g.ID,
		MaxSeats:       g.MaxSeats,
		Seats:          raw,
		CurrentPlayers: g.CurrentPlayers,
		EntryFee:       int64(g.EntryFee),
		Status:         string(g.Status),
		WinnerSeat:     g.WinnerSeat,
		WinnerID:       optionalString(g.WinnerID),
		Version:        g.Version,
		CreatedAt:      g.CreatedAt.UTC(),
		UpdatedAt:      g.UpdatedAt.UTC(),
		ActivatedAt:    nullableTime(g.ActivatedAt),
		CompletedAt:    nullableTime(g.CompletedAt),
	}, nil
}

func sharedPotFromRow(row sharedPotGameTableModel) (sharedpot.Game, error) {
	var docs []seatDocument
	if row.Seats != "" {
		if err := sonic.UnmarshalString(row.Seats, &docs); err != nil {
			return sharedpot.Game{}, fmt.Errorf("decode seats game=%s: %w", row.PublicID, err)
		}
	}
	seats := make([]sharedpot.Seat, 0, len(docs))
	for _, doc := range docs {
		seats = append(seats, sharedpot.Seat{Number: doc.Number, PlayerID: doc.PlayerID, JoinedAt: doc.JoinedAt})
	}

	return sharedpot.Game{
		ID:             row.PublicID,
		MaxSeats:       row.MaxSeats,
		Seats:          seats,
		CurrentPlayers: row.CurrentPlayers,
		EntryFee:       money.Cents(row.EntryFee),
		Status:         sharedpot.Status(row.Status),
		WinnerSeat:     row.WinnerSeat,
		WinnerID:       stringValue(row.WinnerID),
		Version:        row.Version,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		ActivatedAt:    row.ActivatedAt,
		CompletedAt:    row.CompletedAt,
	}, nil
}
