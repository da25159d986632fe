package money

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ErrInvalidAmount is returned for non-positive or out-of-bounds amounts.
var ErrInvalidAmount = errors.New("invalid amount")

// Cents is an amount in minor currency units. All arithmetic in the core
// happens on Cents; conversion to major units is a display concern.
type Cents int64

// BasisPoints is a rate where 10000 equals 100%.
type BasisPoints int64

const (
	// BasisPointScale is the denominator of a BasisPoints rate.
	BasisPointScale BasisPoints = 10000
	// Dollar is one whole currency unit.
	Dollar Cents = 100

	// MaxAmount is the largest amount whose commission at any rate up to
	// 100% fits in int64.
	MaxAmount Cents = Cents(math.MaxInt64 / int64(BasisPointScale))
)

// RequirePositive rejects zero and negative amounts.
func RequirePositive(amount Cents) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be > 0, got %d", ErrInvalidAmount, amount)
	}
	return nil
}

// RequireSettleable accepts 0 < amount <= MaxAmount.
func RequireSettleable(amount Cents) error {
	if err := RequirePositive(amount); err != nil {
		return err
	}
	if amount > MaxAmount {
		return fmt.Errorf("%w: amount %d exceeds %d", ErrInvalidAmount, amount, MaxAmount)
	}
	return nil
}

// RequireWithin checks min <= amount <= max.
func RequireWithin(amount, min, max Cents) error {
	if amount < min || amount > max {
		return fmt.Errorf("%w: amount %d outside [%d, %d]", ErrInvalidAmount, amount, min, max)
	}
	return nil
}

// ApplyRateCeil returns ceil(amount * rate / 10000) for non-negative inputs.
// The product is computed in 128 bits; a result beyond int64 saturates.
func ApplyRateCeil(amount Cents, rate BasisPoints) Cents {
	if amount <= 0 || rate <= 0 {
		return 0
	}
	scale := uint64(BasisPointScale)
	hi, lo := bits.Mul64(uint64(amount), uint64(rate))
	lo, carry := bits.Add64(lo, scale-1, 0)
	hi += carry
	if hi >= scale {
		return Cents(math.MaxInt64)
	}
	q, _ := bits.Div64(hi, lo, scale)
	if q > math.MaxInt64 {
		return Cents(math.MaxInt64)
	}
	return Cents(q)
}

// RoundUpToUnit rounds amount up to the next multiple of unit. Zero stays zero
// and a non-positive unit leaves the amount unchanged.
func RoundUpToUnit(amount, unit Cents) Cents {
	if unit <= 0 || amount <= 0 {
		return amount
	}
	if rem := amount % unit; rem != 0 {
		return amount + unit - rem
	}
	return amount
}

// PercentFloor returns floor(amount * percent / 100).
func PercentFloor(amount Cents, percent int) Cents {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	return Cents(int64(amount) * int64(percent) / 100)
}

// Multiply returns amount * n.
func Multiply(amount Cents, n int) Cents {
	return amount * Cents(n)
}
