package bancor

import "math/big"

// ContinuousRate converts an annual rate in basis points into the equivalent
// continuously compounded rate, truncated to basis points.
func ContinuousRate(annual uint16) int64 {
	if annual == 0 {
		return 0
	}
	x := ratioRay(int64(Denominator)+int64(annual), Denominator)
	l := lnRay(x)
	l.Mul(l, big.NewInt(Denominator))
	return l.Quo(l, oneRay).Int64()
}
