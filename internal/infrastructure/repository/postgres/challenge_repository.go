package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	qb "github.com/riskibarqy/pool-league/internal/platform/querybuilder"
)

type ChallengeRepository struct {
	db *sqlx.DB
}

var challengeSelectColumns = []string{
	"id",
	"public_id",
	"kind",
	"created_by",
	"initiator_id",
	"initiator_roster",
	"proposed_target_id",
	"target_id",
	"target_roster",
	"operator_id",
	"stake",
	"status",
	"requires_pro_membership",
	"winner_id",
	"cancel_reason",
	"cancelled_by",
	"void_note",
	"expires_at",
	"accepted_at",
	"started_at",
	"completed_at",
	"cancelled_at",
	"version",
	"created_at",
	"updated_at",
	"deleted_at",
}

func NewChallengeRepository(db *sqlx.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func (r *ChallengeRepository) Create(ctx context.Context, c challenge.Challenge) error {
	query, args, err := qb.InsertModel("challenges", challengeModelFrom(c), "")
	if err != nil {
		return fmt.Errorf("build insert challenge query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("challenge %s already exists", c.ID)
		}
		return fmt.Errorf("insert challenge %s: %w", c.ID, err)
	}
	return nil
}

func (r *ChallengeRepository) GetByID(ctx context.Context, challengeID string) (challenge.Challenge, bool, error) {
	query, args, err := qb.Select(challengeSelectColumns...).From("challenges").
		Where(
			qb.Eq("public_id", challengeID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, fmt.Errorf("build select challenge query: %w", err)
	}

	var row challengeTableModel
	if err := getContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return challenge.Challenge{}, false, nil
		}
		return challenge.Challenge{}, false, fmt.Errorf("select challenge: %w", err)
	}

	return challengeFromRow(row), true, nil
}

// List returns newest first.
func (r *ChallengeRepository) List(ctx context.Context, filter challenge.ListFilter) ([]challenge.Challenge, error) {
	conds := []qb.Condition{qb.IsNull("deleted_at")}
	if filter.Status != "" {
		conds = append(conds, qb.Eq("status", string(filter.Status)))
	}
	if filter.Kind != "" {
		conds = append(conds, qb.Eq("kind", string(filter.Kind)))
	}
	if id := filter.ParticipantID; id != "" {
		conds = append(conds, qb.Expr(
			"(initiator_id = ? OR target_id = ? OR proposed_target_id = ? OR ? = ANY(initiator_roster) OR ? = ANY(target_roster))",
			id, id, id, id, id,
		))
	}

	builder := qb.Select(challengeSelectColumns...).From("challenges").
		Where(conds...).
		OrderBy("id DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list challenges query: %w", err)
	}

	var rows []challengeTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}

	return challengesFromRows(rows), nil
}

func (r *ChallengeRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]challenge.Challenge, error) {
	builder := qb.Select(challengeSelectColumns...).From("challenges").
		Where(
			qb.Eq("status", string(challenge.StatusOpen)),
			qb.IsNotNull("expires_at"),
			qb.Lte("expires_at", now.UTC()),
			qb.IsNull("deleted_at"),
		).
		OrderBy("expires_at", "id")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list expired challenges query: %w", err)
	}

	var rows []challengeTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list expired challenges: %w", err)
	}

	return challengesFromRows(rows), nil
}

func (r *ChallengeRepository) Update(ctx context.Context, c challenge.Challenge, instructions []payment.Instruction) error {
	return inTx(ctx, r.db, "challenge update", func(tx *sqlx.Tx) error {
		if err := updateChallenge(ctx, tx, c); err != nil {
			return err
		}
		return insertInstructions(ctx, tx, instructions)
	})
}

// Complete writes the challenge, both ladder players or venues and the
// settlement instructions in one transaction.
func (r *ChallengeRepository) Complete(ctx context.Context, completion challenge.Completion) error {
	return inTx(ctx, r.db, "challenge completion", func(tx *sqlx.Tx) error {
		if err := updateChallenge(ctx, tx, completion.Challenge); err != nil {
			return err
		}
		for _, p := range completion.Players {
			if err := updateLadderPlayer(ctx, tx, p); err != nil {
				return err
			}
		}
		for _, v := range completion.Venues {
			if err := updateVenue(ctx, tx, v); err != nil {
				return err
			}
		}
		return insertInstructions(ctx, tx, completion.Instructions)
	})
}

func updateChallenge(ctx context.Context, tx *sqlx.Tx, c challenge.Challenge) error {
	builder, err := qb.UpdateModel("challenges", challengeModelFrom(c), "public_id", "version", "created_at", "created_by", "kind")
	if err != nil {
		return fmt.Errorf("build update challenge query: %w", err)
	}
	query, args, err := builder.
		SetExpr("version", "version + 1").
		Where(
			qb.Eq("public_id", c.ID),
			qb.Eq("version", c.Version),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update challenge query: %w", err)
	}
	return execVersioned(ctx, tx, "challenges", "challenge", c.ID, c.Version, query, args...)
}

func challengeModelFrom(c challenge.Challenge) challengeWriteModel {
	return challengeWriteModel{
		PublicID:              c.ID,
		Kind:                  string(c.Kind),
		CreatedBy:             c.CreatedBy,
		InitiatorID:           c.InitiatorID,
		InitiatorRoster:       append([]string{}, c.InitiatorRoster...),
		ProposedTargetID:      optionalString(c.ProposedTargetID),
		TargetID:              optionalString(c.TargetID),
		TargetRoster:          append([]string{}, c.TargetRoster...),
		OperatorID:            optionalString(c.OperatorID),
		Stake:                 int64(c.Stake),
		Status:                string(c.Status),
		RequiresProMembership: c.RequiresProMembership,
		WinnerID:              optionalString(c.WinnerID),
		CancelReason:          optionalString(string(c.CancelReason)),
		CancelledBy:           optionalString(c.CancelledBy),
		VoidNote:              optionalString(c.VoidNote),
		ExpiresAt:             nullableTime(c.ExpiresAt),
		AcceptedAt:            nullableTime(c.AcceptedAt),
		StartedAt:             nullableTime(c.StartedAt),
		CompletedAt:           nullableTime(c.CompletedAt),
		CancelledAt:           nullableTime(c.CancelledAt),
		Version:               c.Version,
		CreatedAt:             c.CreatedAt.UTC(),
		UpdatedAt:             c.UpdatedAt.UTC(),
	}
}

func challengeFromRow(row challengeTableModel) challenge.Challenge {
	c := challenge.Challenge{
		ID:                    row.PublicID,
		Kind:                  challenge.Kind(row.Kind),
		CreatedBy:             row.CreatedBy,
		InitiatorID:           row.InitiatorID,
		ProposedTargetID:      stringValue(row.ProposedTargetID),
		TargetID:              stringValue(row.TargetID),
		OperatorID:            stringValue(row.OperatorID),
		Stake:                 money.Cents(row.Stake),
		Status:                challenge.Status(row.Status),
		RequiresProMembership: row.RequiresProMembership,
		WinnerID:              stringValue(row.WinnerID),
		CancelReason:          challenge.CancelReason(stringValue(row.CancelReason)),
		CancelledBy:           stringValue(row.CancelledBy),
		VoidNote:              stringValue(row.VoidNote),
		ExpiresAt:             row.ExpiresAt,
		AcceptedAt:            row.AcceptedAt,
		StartedAt:             row.StartedAt,
		CompletedAt:           row.CompletedAt,
		CancelledAt:           row.CancelledAt,
		Version:               row.Version,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
	if len(row.InitiatorRoster) > 0 {
		c.InitiatorRoster = append([]string(nil), row.InitiatorRoster...)
	}
	if len(row.TargetRoster) > 0 {
		c.TargetRoster = append([]string(nil), row.TargetRoster...)
	}
	return c
}

func challengesFromRows(rows []challengeTableModel) []challenge.Challenge {
	out := make([]challenge.Challenge, 0, len(rows))
	for _, row := range rows {
		out = append(out, challengeFromRow(row))
	}
	return out
}
