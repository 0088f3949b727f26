package bancor

import "math/big"

// Exponentiation runs in 27-decimal fixed point on big.Int so every platform
// produces bit-identical results. ln uses the atanh series after reducing the
// argument into [1, 2); exp reduces by ln2 and sums the Taylor series until
// the next term truncates to zero.

var (
	oneRay  = new(big.Int).Exp(big.NewInt(10), big.NewInt(27), nil)
	twoRay  = new(big.Int).Lsh(oneRay, 1)
	ln2Ray  = atanhSeries(new(big.Int).Quo(oneRay, big.NewInt(3)))
	bigZero = big.NewInt(0)
)

// maxHalvings bounds the 2^-n factor of exp for very negative inputs; beyond
// it the result is below one ray unit.
const maxHalvings = 128

// atanhSeries returns 2*atanh(z) for 0 <= z < 1 (ray-scaled), which equals
// ln((1+z)/(1-z)).
func atanhSeries(z *big.Int) *big.Int {
	sum := new(big.Int)
	if z.Sign() == 0 {
		return sum
	}
	z2 := new(big.Int).Mul(z, z)
	z2.Quo(z2, oneRay)
	term := new(big.Int).Set(z)
	q := new(big.Int)
	for i := int64(1); term.Sign() != 0; i += 2 {
		q.Quo(term, big.NewInt(i))
		if q.Sign() == 0 {
			break
		}
		sum.Add(sum, q)
		term.Mul(term, z2)
		term.Quo(term, oneRay)
	}
	return sum.Lsh(sum, 1)
}

// lnRay returns ln(x) for a positive ray-scaled x.
func lnRay(x *big.Int) *big.Int {
	y := new(big.Int).Set(x)
	k := int64(0)
	for y.Cmp(twoRay) >= 0 {
		y.Rsh(y, 1)
		k++
	}
	for y.Cmp(oneRay) < 0 {
		y.Lsh(y, 1)
		k--
	}
	num := new(big.Int).Sub(y, oneRay)
	den := new(big.Int).Add(y, oneRay)
	z := num.Mul(num, oneRay)
	z.Quo(z, den)
	out := atanhSeries(z)
	if k != 0 {
		out.Add(out, new(big.Int).Mul(ln2Ray, big.NewInt(k)))
	}
	return out
}

// expRay returns e^x for a ray-scaled x of either sign.
func expRay(x *big.Int) *big.Int {
	neg := x.Sign() < 0
	a := new(big.Int).Abs(x)
	n := new(big.Int).Quo(a, ln2Ray)
	if neg && n.Cmp(big.NewInt(maxHalvings)) > 0 {
		return new(big.Int)
	}
	r := new(big.Int).Sub(a, new(big.Int).Mul(n, ln2Ray))

	sum := new(big.Int).Set(oneRay)
	term := new(big.Int).Set(oneRay)
	for i := int64(1); ; i++ {
		term.Mul(term, r)
		term.Quo(term, oneRay)
		term.Quo(term, big.NewInt(i))
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, term)
	}
	sum.Lsh(sum, uint(n.Uint64()))
	if neg {
		inv := new(big.Int).Mul(oneRay, oneRay)
		return inv.Quo(inv, sum)
	}
	return sum
}

// powRay returns base^(num/den) for a positive ray-scaled base.
func powRay(base *big.Int, num, den int64) *big.Int {
	if base.Cmp(oneRay) == 0 || num == 0 {
		return new(big.Int).Set(oneRay)
	}
	l := lnRay(base)
	l.Mul(l, big.NewInt(num))
	l.Quo(l, big.NewInt(den))
	return expRay(l)
}

// ratioRay returns a/b as a ray-scaled value.
func ratioRay(a, b int64) *big.Int {
	out := new(big.Int).Mul(big.NewInt(a), oneRay)
	return out.Quo(out, big.NewInt(b))
}
