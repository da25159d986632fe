package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/revision"
	qb "github.com/riskibarqy/pool-league/internal/platform/querybuilder"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullableTime(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	out := value.UTC()
	return &out
}

// isBindParameterMismatch matches the error a transaction-pooling proxy
// returns when a cached statement is reused with another argument count.
func isBindParameterMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "bind message supplies") && strings.Contains(msg, "prepared statement")
}

func isUnnamedPreparedStatementMissing(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "26000" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "unnamed prepared statement does not exist") || strings.Contains(msg, "(26000)")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// inlineArgs renders $n placeholders as literals so a read can be replayed
// over the simple query protocol.
func inlineArgs(query string, args []any) (string, error) {
	literals := make([]string, len(args))
	for i, arg := range args {
		lit, err := literal(arg)
		if err != nil {
			return "", fmt.Errorf("inline arg $%d: %w", i+1, err)
		}
		literals[i] = lit
	}

	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] != '$' {
			b.WriteByte(query[i])
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte(query[i])
			continue
		}
		n, _ := strconv.Atoi(query[i+1 : j])
		if n < 1 || n > len(literals) {
			return "", fmt.Errorf("placeholder $%d out of range", n)
		}
		b.WriteString(literals[n-1])
		i = j - 1
	}
	return b.String(), nil
}

func literal(arg any) (string, error) {
	switch v := arg.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteLiteral(v), nil
	case *string:
		if v == nil {
			return "NULL", nil
		}
		return quoteLiteral(*v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return quoteLiteral(v.UTC().Format(time.RFC3339Nano)), nil
	case fmt.Stringer:
		return quoteLiteral(v.String()), nil
	default:
		return "", fmt.Errorf("unsupported literal type %T", arg)
	}
}

// selectContext retries once without server-side statements when a pooled
// connection lost the statement it was bound to.
func selectContext(ctx context.Context, db sqlx.QueryerContext, dest any, query string, args ...any) error {
	err := sqlx.SelectContext(ctx, db, dest, query, args...)
	if err == nil || !(isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err)) {
		return err
	}
	inlined, inlineErr := inlineArgs(query, args)
	if inlineErr != nil {
		return err
	}
	return sqlx.SelectContext(ctx, db, dest, inlined)
}

func getContext(ctx context.Context, db sqlx.QueryerContext, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, db, dest, query, args...)
	if err == nil || !(isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err)) {
		return err
	}
	inlined, inlineErr := inlineArgs(query, args)
	if inlineErr != nil {
		return err
	}
	return sqlx.GetContext(ctx, db, dest, inlined)
}

func inTx(ctx context.Context, db *sqlx.DB, name string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for %s: %w", name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s tx: %w", name, err)
	}
	return nil
}

// execVersioned runs an UPDATE guarded by "version = expected". When no row
// matches it reads the stored version to tell a stale write from a missing row.
func execVersioned(ctx context.Context, tx *sqlx.Tx, table, kind, id string, expected int64, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", kind, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s %s: %w", kind, id, err)
	}
	if affected == 1 {
		return nil
	}

	var stored int64
	lookup := fmt.Sprintf("SELECT version FROM %s WHERE public_id = $1 AND deleted_at IS NULL", table)
	if err := tx.GetContext(ctx, &stored, lookup, id); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%s %s not found", kind, id)
		}
		return fmt.Errorf("read %s %s version: %w", kind, id, err)
	}
	if err := revision.Check(kind, id, stored, expected); err != nil {
		return err
	}
	return fmt.Errorf("update %s %s: no row updated", kind, id)
}

// insertInstructions appends outbox rows. An existing id is left untouched so
// replaying a state change never duplicates a transfer.
func insertInstructions(ctx context.Context, tx *sqlx.Tx, items []payment.Instruction) error {
	for _, ins := range items {
		query, args, err := qb.InsertModel("payment_instructions", instructionModelFrom(ins), "ON CONFLICT (public_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert payment instruction query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert payment instruction %s: %w", ins.ID, err)
		}
	}
	return nil
}
