package money

import (
	"errors"
	"math"
	"testing"
)

func TestApplyRateCeil(t *testing.T) {
	tests := []struct {
		name   string
		amount Cents
		rate   BasisPoints
		want   Cents
	}{
		{name: "exact", amount: 10000, rate: 500, want: 500},
		{name: "rounds up fractional cent", amount: 10050, rate: 1000, want: 1005},
		{name: "one cent at low rate", amount: 1, rate: 1, want: 1},
		{name: "odd amount", amount: 333, rate: 300, want: 10},
		{name: "zero amount", amount: 0, rate: 500, want: 0},
		{name: "zero rate", amount: 999, rate: 0, want: 0},
		{name: "largest settleable amount at full rate", amount: MaxAmount, rate: BasisPointScale, want: MaxAmount},
		{name: "product beyond int64", amount: math.MaxInt64, rate: 1000, want: 922337203685477581},
		{name: "saturates", amount: math.MaxInt64, rate: 20000, want: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyRateCeil(tt.amount, tt.rate); got != tt.want {
				t.Fatalf("ApplyRateCeil(%d, %d)=%d want=%d", tt.amount, tt.rate, got, tt.want)
			}
		})
	}
}

func TestRoundUpToUnit(t *testing.T) {
	tests := []struct {
		amount Cents
		unit   Cents
		want   Cents
	}{
		{amount: 1005, unit: Dollar, want: 1100},
		{amount: 1100, unit: Dollar, want: 1100},
		{amount: 1, unit: Dollar, want: 100},
		{amount: 0, unit: Dollar, want: 0},
		{amount: 1005, unit: 0, want: 1005},
	}

	for _, tt := range tests {
		if got := RoundUpToUnit(tt.amount, tt.unit); got != tt.want {
			t.Fatalf("RoundUpToUnit(%d, %d)=%d want=%d", tt.amount, tt.unit, got, tt.want)
		}
	}
}

func TestRequireWithin(t *testing.T) {
	if err := RequireWithin(1000, 1000, 1_000_000); err != nil {
		t.Fatalf("expected lower bound to be inclusive, got %v", err)
	}
	if err := RequireWithin(1_000_000, 1000, 1_000_000); err != nil {
		t.Fatalf("expected upper bound to be inclusive, got %v", err)
	}
	if err := RequireWithin(999, 1000, 1_000_000); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := RequirePositive(0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
}

func TestPercentFloor(t *testing.T) {
	if got := PercentFloor(1005, 50); got != 502 {
		t.Fatalf("PercentFloor(1005, 50)=%d want=502", got)
	}
	if got := PercentFloor(1005, 30); got != 301 {
		t.Fatalf("PercentFloor(1005, 30)=%d want=301", got)
	}
}

func TestRequireSettleable(t *testing.T) {
	for _, amount := range []Cents{0, -1, MaxAmount + 1, math.MaxInt64} {
		if err := RequireSettleable(amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("RequireSettleable(%d): expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	for _, amount := range []Cents{1, MaxAmount} {
		if err := RequireSettleable(amount); err != nil {
			t.Fatalf("RequireSettleable(%d): unexpected error %v", amount, err)
		}
	}
}
