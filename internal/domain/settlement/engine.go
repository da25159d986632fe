package settlement

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/money"
)

var ErrInvalidPolicy = errors.New("invalid settlement policy")

type Stakeholder string

const (
	StakeholderPlatform  Stakeholder = "platform"
	StakeholderOperator  Stakeholder = "operator"
	StakeholderBonusFund Stakeholder = "bonus_fund"
)

// SplitRule assigns a whole percentage of the commission to a stakeholder.
type SplitRule struct {
	Stakeholder Stakeholder
	Percent     int
}

// Policy controls rounding and the commission split. The first split rule
// keeps whatever integer division leaves undistributed.
type Policy struct {
	RoundUpToUnit bool
	RoundingUnit  money.Cents
	Splits        []SplitRule
}

func DefaultPolicy() Policy {
	return Policy{
		RoundUpToUnit: false,
		RoundingUnit:  money.Dollar,
		Splits: []SplitRule{
			{Stakeholder: StakeholderPlatform, Percent: 50},
			{Stakeholder: StakeholderOperator, Percent: 30},
			{Stakeholder: StakeholderBonusFund, Percent: 20},
		},
	}
}

func (p Policy) Validate() error {
	if len(p.Splits) == 0 {
		return fmt.Errorf("%w: at least one split is required", ErrInvalidPolicy)
	}
	if p.RoundUpToUnit && p.RoundingUnit <= 0 {
		return fmt.Errorf("%w: rounding unit must be > 0 when round-up is enabled", ErrInvalidPolicy)
	}

	total := 0
	seen := make(map[Stakeholder]struct{}, len(p.Splits))
	for _, split := range p.Splits {
		if split.Stakeholder == "" {
			return fmt.Errorf("%w: stakeholder is required", ErrInvalidPolicy)
		}
		if _, exists := seen[split.Stakeholder]; exists {
			return fmt.Errorf("%w: duplicate stakeholder %s", ErrInvalidPolicy, split.Stakeholder)
		}
		seen[split.Stakeholder] = struct{}{}
		if split.Percent < 0 {
			return fmt.Errorf("%w: negative percent for %s", ErrInvalidPolicy, split.Stakeholder)
		}
		total += split.Percent
	}
	if total > 100 {
		return fmt.Errorf("%w: splits sum to %d%%", ErrInvalidPolicy, total)
	}

	return nil
}

// ParseSplits parses "stakeholder:percent,..." into split rules, keeping the
// given order. The result is not validated.
func ParseSplits(raw string) ([]SplitRule, error) {
	out := make([]SplitRule, 0, 3)
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("%w: invalid split item %q, expected stakeholder:percent", ErrInvalidPolicy, item)
		}
		percent, err := strconv.Atoi(strings.TrimSpace(segments[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid percent in item %q", ErrInvalidPolicy, item)
		}
		out = append(out, SplitRule{
			Stakeholder: Stakeholder(strings.ToLower(strings.TrimSpace(segments[0]))),
			Percent:     percent,
		})
	}
	return out, nil
}

type Share struct {
	Stakeholder Stakeholder
	Percent     int
	Amount      money.Cents
}

// Result is the outcome of settling one amount.
//
// Sum of Shares plus Retained equals RoundedCommission, and PrizePool plus
// RoundedCommission equals OriginalAmount.
type Result struct {
	OriginalAmount    money.Cents
	Tier              membership.Tier
	Rate              money.BasisPoints
	RawCommission     money.Cents
	RoundedCommission money.Cents
	Shares            []Share
	Retained          money.Cents
	PrizePool         money.Cents
}

// ShareOf returns the floor share of a stakeholder, zero when absent.
func (r Result) ShareOf(stakeholder Stakeholder) money.Cents {
	for _, share := range r.Shares {
		if share.Stakeholder == stakeholder {
			return share.Amount
		}
	}
	return 0
}

// Engine settles amounts against a fixed rate table and policy.
type Engine struct {
	rates  membership.RateTable
	policy Policy
}

func NewEngine(rates membership.RateTable, policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if rates == nil {
		rates = membership.DefaultRateTable()
	}
	policy.Splits = append([]SplitRule(nil), policy.Splits...)

	return &Engine{rates: rates, policy: policy}, nil
}

func (e *Engine) Policy() Policy {
	out := e.policy
	out.Splits = append([]SplitRule(nil), e.policy.Splits...)
	return out
}

func (e *Engine) Benefits(tier membership.Tier) membership.Benefits {
	return e.rates.Resolve(tier)
}

func (e *Engine) Settle(amount money.Cents, tier membership.Tier) (Result, error) {
	return Settle(amount, e.rates.Resolve(tier), e.policy)
}

// Settle computes commission, split and prize pool for amount.
func Settle(amount money.Cents, benefits membership.Benefits, policy Policy) (Result, error) {
	if err := money.RequireSettleable(amount); err != nil {
		return Result{}, err
	}

	raw := money.ApplyRateCeil(amount, benefits.CommissionRate)
	rounded := raw
	if policy.RoundUpToUnit {
		rounded = money.RoundUpToUnit(raw, policy.RoundingUnit)
	}
	if rounded > amount {
		rounded = amount
	}

	shares := make([]Share, 0, len(policy.Splits))
	var distributed money.Cents
	for _, split := range policy.Splits {
		amt := money.PercentFloor(rounded, split.Percent)
		distributed += amt
		shares = append(shares, Share{
			Stakeholder: split.Stakeholder,
			Percent:     split.Percent,
			Amount:      amt,
		})
	}

	return Result{
		OriginalAmount:    amount,
		Tier:              benefits.Tier,
		Rate:              benefits.CommissionRate,
		RawCommission:     raw,
		RoundedCommission: rounded,
		Shares:            shares,
		Retained:          rounded - distributed,
		PrizePool:         amount - rounded,
	}, nil
}
