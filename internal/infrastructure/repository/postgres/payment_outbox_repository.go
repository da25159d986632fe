package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	qb "github.com/riskibarqy/pool-league/internal/platform/querybuilder"
)

// PaymentOutbox reads and marks rows written by the challenge and shared pot
// repositories.
type PaymentOutbox struct {
	db *sqlx.DB
}

var paymentInstructionSelectColumns = []string{
	"id",
	"public_id",
	"kind",
	"reference",
	"recipient_id",
	"amount",
	"memo",
	"status",
	"attempts",
	"last_error",
	"created_at",
	"updated_at",
	"dispatched_at",
}

func NewPaymentOutbox(db *sqlx.DB) *PaymentOutbox {
	return &PaymentOutbox{db: db}
}

func (r *PaymentOutbox) ListPending(ctx context.Context, limit int) ([]payment.Instruction, error) {
	builder := qb.Select(paymentInstructionSelectColumns...).From("payment_instructions").
		Where(qb.Expr(
			"(status = ? OR (status = ? AND attempts < ?))",
			string(payment.StatusPending), string(payment.StatusFailed), payment.MaxAttempts,
		)).
		OrderBy("id")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending payment instructions query: %w", err)
	}

	var rows []paymentInstructionTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pending payment instructions: %w", err)
	}
	return instructionsFromRows(rows), nil
}

func (r *PaymentOutbox) ListByReference(ctx context.Context, reference string) ([]payment.Instruction, error) {
	query, args, err := qb.Select(paymentInstructionSelectColumns...).From("payment_instructions").
		Where(qb.Eq("reference", reference)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list payment instructions by reference query: %w", err)
	}

	var rows []paymentInstructionTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list payment instructions reference=%s: %w", reference, err)
	}
	return instructionsFromRows(rows), nil
}

func (r *PaymentOutbox) MarkDispatched(ctx context.Context, instructionID string, at time.Time) error {
	query, args, err := qb.Update("payment_instructions").
		Set("status", string(payment.StatusDispatched)).
		SetExpr("attempts", "attempts + 1").
		Set("last_error", nil).
		Set("dispatched_at", at.UTC()).
		Set("updated_at", at.UTC()).
		Where(qb.Eq("public_id", instructionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark payment dispatched query: %w", err)
	}
	return r.execMark(ctx, instructionID, query, args)
}

func (r *PaymentOutbox) MarkFailed(ctx context.Context, instructionID, reason string, at time.Time) error {
	query, args, err := qb.Update("payment_instructions").
		Set("status", string(payment.StatusFailed)).
		SetExpr("attempts", "attempts + 1").
		Set("last_error", optionalString(reason)).
		Set("updated_at", at.UTC()).
		Where(qb.Eq("public_id", instructionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark payment failed query: %w", err)
	}
	return r.execMark(ctx, instructionID, query, args)
}

func (r *PaymentOutbox) execMark(ctx context.Context, instructionID, query string, args []any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update payment instruction %s: %w", instructionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for payment instruction %s: %w", instructionID, err)
	}
	if affected == 0 {
		return fmt.Errorf("payment instruction %s not found", instructionID)
	}
	return nil
}

func instructionModelFrom(ins payment.Instruction) paymentInstructionInsertModel {
	return paymentInstructionInsertModel{
		PublicID:     ins.ID,
		Kind:         string(ins.Kind),
		Reference:    ins.Reference,
		RecipientID:  ins.RecipientID,
		Amount:       int64(ins.Amount),
		Memo:         ins.Memo,
		Status:       string(ins.Status),
		Attempts:     ins.Attempts,
		LastError:    optionalString(ins.LastError),
		CreatedAt:    ins.CreatedAt.UTC(),
		UpdatedAt:    ins.UpdatedAt.UTC(),
		DispatchedAt: nullableTime(ins.DispatchedAt),
	}
}

func instructionsFromRows(rows []paymentInstructionTableModel) []payment.Instruction {
	out := make([]payment.Instruction, 0, len(rows))
	for _, row := range rows {
		out = append(out, payment.Instruction{
			ID:           row.PublicID,
			Kind:         payment.Kind(row.Kind),
			Reference:    row.Reference,
			RecipientID:  row.RecipientID,
			Amount:       money.Cents(row.Amount),
			Memo:         row.Memo,
			Status:       payment.Status(row.Status),
			Attempts:     row.Attempts,
			LastError:    stringValue(row.LastError),
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
			DispatchedAt: row.DispatchedAt,
		})
	}
	return out
}
