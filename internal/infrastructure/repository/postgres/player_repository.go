package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/membership"
	qb "github.com/riskibarqy/pool-league/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var ladderPlayerSelectColumns = []string{
	"id",
	"public_id",
	"name",
	"rating",
	"points",
	"streak",
	"respect_points",
	"membership_tier",
	"wins",
	"losses",
	"version",
	"created_at",
	"updated_at",
	"deleted_at",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (ladder.Player, bool, error) {
	query, args, err := qb.Select(ladderPlayerSelectColumns...).From("ladder_players").
		Where(
			qb.Eq("public_id", playerID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return ladder.Player{}, false, fmt.Errorf("build select ladder player query: %w", err)
	}

	var row ladderPlayerTableModel
	if err := getContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return ladder.Player{}, false, nil
		}
		return ladder.Player{}, false, fmt.Errorf("select ladder player: %w", err)
	}

	return ladderPlayerFromRow(row), true, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]ladder.Player, error) {
	if len(playerIDs) == 0 {
		return []ladder.Player{}, nil
	}

	query, args, err := qb.Select(ladderPlayerSelectColumns...).From("ladder_players").
		Where(
			qb.InStrings("public_id", playerIDs),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ladder players by ids query: %w", err)
	}

	var rows []ladderPlayerTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select ladder players by ids: %w", err)
	}

	return ladderPlayersFromRows(rows), nil
}

// ListByDivision filters on rating since division is never stored.
func (r *PlayerRepository) ListByDivision(ctx context.Context, division ladder.Division) ([]ladder.Player, error) {
	ratingCond := qb.Lt("rating", ladder.HighDivisionRating)
	if division == ladder.DivisionHigh {
		ratingCond = qb.Gte("rating", ladder.HighDivisionRating)
	}

	query, args, err := qb.Select(ladderPlayerSelectColumns...).From("ladder_players").
		Where(ratingCond, qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ladder players by division query: %w", err)
	}

	var rows []ladderPlayerTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select ladder players division=%s: %w", division, err)
	}

	return ladderPlayersFromRows(rows), nil
}

func (r *PlayerRepository) Create(ctx context.Context, p ladder.Player) error {
	query, args, err := qb.InsertModel("ladder_players", ladderPlayerModelFrom(p), "")
	if err != nil {
		return fmt.Errorf("build insert ladder player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("player %s already exists", p.ID)
		}
		return fmt.Errorf("insert ladder player %s: %w", p.ID, err)
	}
	return nil
}

func (r *PlayerRepository) Update(ctx context.Context, p ladder.Player) error {
	return inTx(ctx, r.db, "ladder player update", func(tx *sqlx.Tx) error {
		return updateLadderPlayer(ctx, tx, p)
	})
}

func updateLadderPlayer(ctx context.Context, tx *sqlx.Tx, p ladder.Player) error {
	builder, err := qb.UpdateModel("ladder_players", ladderPlayerModelFrom(p), "public_id", "version", "created_at")
	if err != nil {
		return fmt.Errorf("build update ladder player query: %w", err)
	}
	query, args, err := builder.
		SetExpr("version", "version + 1").
		Where(
			qb.Eq("public_id", p.ID),
			qb.Eq("version", p.Version),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update ladder player query: %w", err)
	}
	return execVersioned(ctx, tx, "ladder_players", "player", p.ID, p.Version, query, args...)
}

func ladderPlayerModelFrom(p ladder.Player) ladderPlayerWriteModel {
	return ladderPlayerWriteModel{
		PublicID:       p.ID,
		Name:           p.Name,
		Rating:         p.Rating,
		Points:         p.Points,
		Streak:         p.Streak,
		RespectPoints:  p.RespectPoints,
		MembershipTier: string(p.MembershipTier),
		Wins:           p.Wins,
		Losses:         p.Losses,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt.UTC(),
		UpdatedAt:      p.UpdatedAt.UTC(),
	}
}

func ladderPlayerFromRow(row ladderPlayerTableModel) ladder.Player {
	return ladder.Player{
		ID:             row.PublicID,
		Name:           row.Name,
		Rating:         row.Rating,
		Points:         row.Points,
		Streak:         row.Streak,
		RespectPoints:  row.RespectPoints,
		MembershipTier: membership.Tier(row.MembershipTier),
		Wins:           row.Wins,
		Losses:         row.Losses,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func ladderPlayersFromRows(rows []ladderPlayerTableModel) []ladder.Player {
	out := make([]ladder.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, ladderPlayerFromRow(row))
	}
	return out
}
