package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/riskibarqy/pool-league/internal/config"
	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
	"github.com/shopspring/decimal"
)

var tierOrder = []membership.Tier{
	membership.TierNone,
	membership.TierRookie,
	membership.TierBasic,
	membership.TierPro,
}

// feequote prints the settlement breakdown of each amount for every tier,
// using the same rate table and policy the API loads from the environment.
func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <amount> [amount...]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  %s 50.00 125.75\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	engine, err := settlement.NewEngine(cfg.RateTable(), cfg.SettlementPolicy)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	for _, raw := range os.Args[1:] {
		amount, err := parseAmount(raw)
		if err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(1)
		}

		pterm.DefaultSection.Printfln("Quote for %s", display(amount))
		data, err := quoteTable(engine, amount)
		if err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(1)
		}
		if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(1)
		}
	}
}

func quoteTable(engine *settlement.Engine, amount money.Cents) (pterm.TableData, error) {
	policy := engine.Policy()

	header := []string{"Tier", "Rate", "Raw", "Commission", "Prize pool"}
	for _, split := range policy.Splits {
		header = append(header, fmt.Sprintf("%s (%d%%)", split.Stakeholder, split.Percent))
	}
	header = append(header, "Retained")

	data := pterm.TableData{header}
	for _, tier := range tierOrder {
		result, err := engine.Settle(amount, tier)
		if err != nil {
			return nil, fmt.Errorf("settle %s for %s: %w", display(amount), tier, err)
		}
		row := []string{
			pterm.LightCyan(string(tier)),
			rate(result.Rate),
			display(result.RawCommission),
			display(result.RoundedCommission),
			pterm.LightGreen(display(result.PrizePool)),
		}
		for _, split := range policy.Splits {
			row = append(row, display(result.ShareOf(split.Stakeholder)))
		}
		row = append(row, display(result.Retained))
		data = append(data, row)
	}
	return data, nil
}

// parseAmount reads a major-unit amount with at most two decimals.
func parseAmount(raw string) (money.Cents, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if value.Exponent() < -2 && !value.Equal(value.Truncate(2)) {
		return 0, fmt.Errorf("amount %q has more than two decimals", raw)
	}
	if !value.IsPositive() {
		return 0, fmt.Errorf("amount %q must be positive", raw)
	}
	cents := value.Shift(2)
	if cents.GreaterThan(decimal.NewFromInt(int64(money.MaxAmount))) {
		return 0, fmt.Errorf("amount %q exceeds %s", raw, display(money.MaxAmount))
	}
	return money.Cents(cents.IntPart()), nil
}

func display(v money.Cents) string {
	return decimal.New(int64(v), -2).StringFixed(2)
}

func rate(v money.BasisPoints) string {
	return decimal.New(int64(v), -2).StringFixed(2) + "%"
}

func init() {
	if v, err := strconv.ParseBool(os.Getenv("NO_COLOR")); err == nil && v {
		pterm.DisableColor()
	}
}
