package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pool-league/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo ladder and venues into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM ladder_players WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count ladder players for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range memory.SeedPlayers() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO ladder_players (public_id, name, rating, points, membership_tier, created_at, updated_at)
VALUES (:public_id, :name, :rating, :points, :membership_tier, :created_at, :updated_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":       p.ID,
			"name":            p.Name,
			"rating":          p.Rating,
			"points":          p.Points,
			"membership_tier": string(p.MembershipTier),
			"created_at":      p.CreatedAt.UTC(),
			"updated_at":      p.UpdatedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed ladder player %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed ladder player %s: %w", p.ID, err)
		}
	}

	for _, v := range memory.SeedVenues() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO venues (public_id, name, slug, operator_id, battles_unlocked, unlocked_by, unlocked_at, created_at, updated_at)
VALUES (:public_id, :name, :slug, :operator_id, :battles_unlocked, :unlocked_by, :unlocked_at, :created_at, :updated_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":        v.ID,
			"name":             v.Name,
			"slug":             v.Slug,
			"operator_id":      optionalString(v.OperatorID),
			"battles_unlocked": v.BattlesUnlocked,
			"unlocked_by":      optionalString(v.UnlockedBy),
			"unlocked_at":      nullableTime(v.UnlockedAt),
			"created_at":       v.CreatedAt.UTC(),
			"updated_at":       v.UpdatedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed venue %s query: %w", v.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed venue %s: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
