package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/usecase"
	"github.com/shopspring/decimal"
)

// QuoteSettlement previews the commission for an amount and tier. The amount
// is taken from amount_cents, or from amount in display units ("100.50").
func (h *Handler) QuoteSettlement(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.QuoteSettlement")
	defer span.End()

	query := r.URL.Query()
	amount, err := parseQuoteAmount(query.Get("amount_cents"), query.Get("amount"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.settlementService.Quote(ctx, usecase.QuoteInput{
		Amount: amount,
		Tier:   query.Get("tier"),
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementToDTO(result))
}

func (h *Handler) ListMembershipBenefits(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMembershipBenefits")
	defer span.End()

	table := h.settlementService.BenefitTable(ctx)
	out := make([]benefitsDTO, 0, len(table))
	for _, item := range table {
		out = append(out, benefitsToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func parseQuoteAmount(rawCents, rawDisplay string) (money.Cents, error) {
	rawCents = strings.TrimSpace(rawCents)
	rawDisplay = strings.TrimSpace(rawDisplay)

	switch {
	case rawCents != "":
		v, err := strconv.ParseInt(rawCents, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: amount_cents must be an integer", usecase.ErrInvalidInput)
		}
		return money.Cents(v), nil
	case rawDisplay != "":
		v, err := decimal.NewFromString(rawDisplay)
		if err != nil {
			return 0, fmt.Errorf("%w: amount must be a decimal number", usecase.ErrInvalidInput)
		}
		scaled := v.Shift(2)
		if !scaled.Equal(scaled.Truncate(0)) {
			return 0, fmt.Errorf("%w: amount has more than two decimal places", usecase.ErrInvalidInput)
		}
		if scaled.GreaterThan(decimal.NewFromInt(int64(money.MaxAmount))) {
			return 0, fmt.Errorf("%w: amount exceeds %s", money.ErrInvalidAmount, decimal.New(int64(money.MaxAmount), -2).StringFixed(2))
		}
		return money.Cents(scaled.IntPart()), nil
	default:
		return 0, fmt.Errorf("%w: amount_cents or amount is required", usecase.ErrInvalidInput)
	}
}
