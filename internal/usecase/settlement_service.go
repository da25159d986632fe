package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
)

var tierOrder = []membership.Tier{
	membership.TierNone,
	membership.TierRookie,
	membership.TierBasic,
	membership.TierPro,
}

type QuoteInput struct {
	Amount money.Cents
	Tier   string
}

type SettlementService struct {
	engine *settlement.Engine
}

func NewSettlementService(engine *settlement.Engine) *SettlementService {
	return &SettlementService{engine: engine}
}

// Quote settles an amount without persisting anything.
func (s *SettlementService) Quote(ctx context.Context, input QuoteInput) (settlement.Result, error) {
	_, span := startUsecaseSpan(ctx, "usecase.SettlementService.Quote")
	defer span.End()

	result, err := s.engine.Settle(input.Amount, membership.ParseTier(input.Tier))
	if err != nil {
		return settlement.Result{}, fmt.Errorf("settle quote: %w", err)
	}
	return result, nil
}

func (s *SettlementService) Benefits(ctx context.Context, tier string) membership.Benefits {
	_, span := startUsecaseSpan(ctx, "usecase.SettlementService.Benefits")
	defer span.End()

	return s.engine.Benefits(membership.ParseTier(tier))
}

// BenefitTable lists every tier from non-member to pro.
func (s *SettlementService) BenefitTable(ctx context.Context) []membership.Benefits {
	_, span := startUsecaseSpan(ctx, "usecase.SettlementService.BenefitTable")
	defer span.End()

	out := make([]membership.Benefits, 0, len(tierOrder))
	for _, tier := range tierOrder {
		out = append(out, s.engine.Benefits(tier))
	}
	return out
}

func (s *SettlementService) Policy() settlement.Policy {
	return s.engine.Policy()
}
