package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
	qb "github.com/riskibarqy/pool-league/internal/platform/querybuilder"
)

type VenueRepository struct {
	db *sqlx.DB
}

var venueSelectColumns = []string{
	"id",
	"public_id",
	"name",
	"slug",
	"operator_id",
	"wins",
	"losses",
	"points",
	"battles_unlocked",
	"unlocked_by",
	"unlocked_at",
	"version",
	"created_at",
	"updated_at",
	"deleted_at",
}

func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

func (r *VenueRepository) List(ctx context.Context) ([]venue.Venue, error) {
	query, args, err := qb.Select(venueSelectColumns...).From("venues").
		Where(qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list venues query: %w", err)
	}

	var rows []venueTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}

	out := make([]venue.Venue, 0, len(rows))
	for _, row := range rows {
		out = append(out, venueFromRow(row))
	}
	return out, nil
}

func (r *VenueRepository) GetByID(ctx context.Context, venueID string) (venue.Venue, bool, error) {
	query, args, err := qb.Select(venueSelectColumns...).From("venues").
		Where(
			qb.Eq("public_id", venueID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return venue.Venue{}, false, fmt.Errorf("build select venue query: %w", err)
	}

	var row venueTableModel
	if err := getContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return venue.Venue{}, false, nil
		}
		return venue.Venue{}, false, fmt.Errorf("select venue: %w", err)
	}
	return venueFromRow(row), true, nil
}

func (r *VenueRepository) Create(ctx context.Context, v venue.Venue) error {
	query, args, err := qb.InsertModel("venues", venueModelFrom(v), "")
	if err != nil {
		return fmt.Errorf("build insert venue query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("venue %s or slug %s already exists", v.ID, v.Slug)
		}
		return fmt.Errorf("insert venue %s: %w", v.ID, err)
	}
	return nil
}

func (r *VenueRepository) UpdateAccess(ctx context.Context, v venue.Venue, entry venue.AuditEntry) error {
	return inTx(ctx, r.db, "venue access update", func(tx *sqlx.Tx) error {
		if err := updateVenue(ctx, tx, v); err != nil {
			return err
		}

		query, args, err := qb.InsertModel("venue_audit_entries", venueAuditTableModel{
			VenuePublicID: entry.VenueID,
			Action:        string(entry.Action),
			ActorID:       entry.ActorID,
			OccurredAt:    entry.OccurredAt.UTC(),
		}, "")
		if err != nil {
			return fmt.Errorf("build insert venue audit query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert venue audit venue=%s: %w", entry.VenueID, err)
		}
		return nil
	})
}

func (r *VenueRepository) ListAudit(ctx context.Context, venueID string) ([]venue.AuditEntry, error) {
	query, args, err := qb.Select("venue_public_id", "action", "actor_id", "occurred_at").
		From("venue_audit_entries").
		Where(qb.Eq("venue_public_id", venueID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list venue audit query: %w", err)
	}

	var rows []venueAuditTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list venue audit venue=%s: %w", venueID, err)
	}

	out := make([]venue.AuditEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, venue.AuditEntry{
			VenueID:    row.VenuePublicID,
			Action:     venue.AuditAction(row.Action),
			ActorID:    row.ActorID,
			OccurredAt: row.OccurredAt,
		})
	}
	return out, nil
}

func updateVenue(ctx context.Context, tx *sqlx.Tx, v venue.Venue) error {
	builder, err := qb.UpdateModel("venues", venueModelFrom(v), "public_id", "version", "created_at")
	if err != nil {
		return fmt.Errorf("build update venue query: %w", err)
	}
	query, args, err := builder.
		SetExpr("version", "version + 1").
		Where(
			qb.Eq("public_id", v.ID),
			qb.Eq("version", v.Version),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update venue query: %w", err)
	}
	return execVersioned(ctx, tx, "venues", "venue", v.ID, v.Version, query, args...)
}

func venueModelFrom(v venue.Venue) venueWriteModel {
	return venueWriteModel{
		PublicID:        v.ID,
		Name:            v.Name,
		Slug:            v.Slug,
		OperatorID:      optionalString(v.OperatorID),
		Wins:            v.Wins,
		Losses:          v.Losses,
		Points:          v.Points,
		BattlesUnlocked: v.BattlesUnlocked,
		UnlockedBy:      optionalString(v.UnlockedBy),
		UnlockedAt:      nullableTime(v.UnlockedAt),
		Version:         v.Version,
		CreatedAt:       v.CreatedAt.UTC(),
		UpdatedAt:       v.UpdatedAt.UTC(),
	}
}

func venueFromRow(row venueTableModel) venue.Venue {
	return venue.Venue{
		ID:              row.PublicID,
		Name:            row.Name,
		Slug:            row.Slug,
		OperatorID:      stringValue(row.OperatorID),
		Wins:            row.Wins,
		Losses:          row.Losses,
		Points:          row.Points,
		BattlesUnlocked: row.BattlesUnlocked,
		UnlockedBy:      stringValue(row.UnlockedBy),
		UnlockedAt:      row.UnlockedAt,
		Version:         row.Version,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
