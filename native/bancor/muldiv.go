package bancor

import (
	"math"

	"github.com/holiman/uint256"
)

// MulDiv returns a*b/c truncated toward zero using a 256-bit intermediate.
// It fails with ErrOverflow when the quotient does not fit in int64.
func MulDiv(a, b, c int64) (int64, error) {
	if c == 0 {
		return 0, ErrDivisionByZero
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	neg := (a < 0) != (b < 0)
	if c < 0 {
		neg = !neg
	}
	x := uint256.NewInt(absU64(a))
	x.Mul(x, uint256.NewInt(absU64(b)))
	x.Div(x, uint256.NewInt(absU64(c)))
	if !x.IsUint64() {
		return 0, ErrOverflow
	}
	q := x.Uint64()
	if neg {
		if q > uint64(math.MaxInt64)+1 {
			return 0, ErrOverflow
		}
		return int64(-q), nil
	}
	if q > math.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(q), nil
}

// SafeProp returns arg*numer/denom, or 0 when either factor is zero.
func SafeProp(arg, numer, denom int64) (int64, error) {
	if arg == 0 || numer == 0 {
		return 0, nil
	}
	return MulDiv(arg, numer, denom)
}

// SafePct applies a basis-point percentage to x.
func SafePct(pct int64, x int64) (int64, error) {
	return SafeProp(pct, x, Denominator)
}

func absU64(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
