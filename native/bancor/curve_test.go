package bancor

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	coreerrors "mosaicchain/core/errors"
)

func TestReserveForFullRedemptionAppliesFee(t *testing.T) {
	c := CurveState{Supply: 25_000, Reserve: 100_000, CW: 5_000, Fee: 100}
	q, err := ReserveFor(c, 25_000)
	require.NoError(t, err)
	require.Equal(t, int64(99_000), q.Net)
	require.Equal(t, int64(1_000), q.Fee)
	require.Equal(t, int64(100_000), q.Gross())
}

func TestReserveForLinearConnector(t *testing.T) {
	c := CurveState{Supply: 200_000, Reserve: 100_000, CW: Denominator}
	q, err := ReserveFor(c, 5_000)
	require.NoError(t, err)
	require.Equal(t, Quote{Net: 2_500}, q)
}

func TestReserveForLinearUsesWideIntermediate(t *testing.T) {
	c := CurveState{Supply: math.MaxInt64, Reserve: math.MaxInt64 / 2, CW: Denominator}
	q, err := ReserveFor(c, math.MaxInt64/4)
	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt64/8), q.Net)
}

func TestReserveForRejectsOutOfRange(t *testing.T) {
	c := CurveState{Supply: 10, Reserve: 10, CW: 5_000}
	_, err := ReserveFor(c, 11)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	require.ErrorIs(t, err, coreerrors.ErrValidation)
	_, err = ReserveFor(c, -1)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	q, err := ReserveFor(c, 0)
	require.NoError(t, err)
	require.Zero(t, q.Net)
}

func TestReserveForRejectsInvalidCurve(t *testing.T) {
	cases := []CurveState{
		{Supply: 1, Reserve: 1, CW: 0},
		{Supply: 1, Reserve: 1, CW: Denominator + 1},
		{Supply: 1, Reserve: 1, CW: 1, Fee: Denominator + 1},
		{Supply: 5, Reserve: 0, CW: 1},
		{Supply: -1, Reserve: 1, CW: 1},
	}
	for _, c := range cases {
		if _, err := ReserveFor(c, 0); !errors.Is(err, ErrInvalidCurve) {
			t.Fatalf("expected invalid curve for %+v, got %v", c, err)
		}
	}
}

func TestReserveForMonotonic(t *testing.T) {
	curves := []CurveState{
		{Supply: 25_000, Reserve: 100_000, CW: 5_000, Fee: 100},
		{Supply: 1_000_000, Reserve: 3_000, CW: 2_500},
		{Supply: 7_777, Reserve: 1_000_000_000, CW: 9_000, Fee: 30},
	}
	for _, c := range curves {
		prev := int64(-1)
		step := c.Supply / 97
		if step == 0 {
			step = 1
		}
		for amount := int64(0); amount <= c.Supply; amount += step {
			q, err := ReserveFor(c, amount)
			require.NoError(t, err)
			if q.Net < prev {
				t.Fatalf("curve %+v not monotonic at %d: %d < %d", c, amount, q.Net, prev)
			}
			prev = q.Net
		}
		full, err := ReserveFor(c, c.Supply)
		require.NoError(t, err)
		require.GreaterOrEqual(t, full.Net, prev)
		want := c.Reserve * int64(Denominator-c.Fee) / Denominator
		require.Equal(t, want, full.Net)
	}
}

func TestTokensForApproximatelyInvertsReserveFor(t *testing.T) {
	c := CurveState{Supply: 1_000_000, Reserve: 500_000, CW: 5_000}
	minted, err := TokensFor(c, 10_000, true)
	require.NoError(t, err)
	require.Equal(t, int64(9_950), minted)

	after := CurveState{Supply: c.Supply + minted, Reserve: c.Reserve + 10_000, CW: c.CW}
	q, err := ReserveFor(after, minted)
	require.NoError(t, err)
	require.InDelta(t, 10_000, q.Net, 10)
	require.LessOrEqual(t, q.Net, int64(10_000))
}

func TestTokensForBootstrap(t *testing.T) {
	empty := CurveState{CW: 5_000}
	minted, err := TokensFor(empty, 1_234, false)
	require.NoError(t, err)
	require.Equal(t, int64(1_234), minted)

	_, err = TokensFor(empty, 1_234, true)
	require.ErrorIs(t, err, ErrNoReserve)
	require.ErrorIs(t, err, coreerrors.ErrStateConflict)
}

func TestTokensForOverflow(t *testing.T) {
	c := CurveState{Supply: math.MaxInt64 / 2, Reserve: 1, CW: Denominator}
	_, err := TokensFor(c, 1_000_000, true)
	require.ErrorIs(t, err, ErrOverflow)
	require.ErrorIs(t, err, coreerrors.ErrOverflow)
}

func TestSharesForSeedsAndGrows(t *testing.T) {
	seeded, err := SharesFor(0, 0, SharesCW, 500, false)
	require.NoError(t, err)
	require.Equal(t, int64(500), seeded)

	delta, err := SharesFor(1_000, 1_000, SharesCW, 500, false)
	require.NoError(t, err)
	require.Equal(t, int64(144), delta)

	royalty, err := SafePct(2_500, delta)
	require.NoError(t, err)
	require.Equal(t, int64(36), royalty)
}

func TestMulDiv(t *testing.T) {
	v, err := MulDiv(math.MaxInt64, 2, 4)
	require.NoError(t, err)
	require.Equal(t, int64(4611686018427387903), v)

	v, err = MulDiv(-7, 2, 4)
	require.NoError(t, err)
	require.Equal(t, int64(-3), v)

	_, err = MulDiv(math.MaxInt64, 3, 2)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = MulDiv(1, 1, 0)
	require.ErrorIs(t, err, coreerrors.ErrInvariantViolation)

	v, err = SafeProp(0, 5, 0)
	require.NoError(t, err)
	require.Zero(t, v)
}

func TestFixedPointLogExp(t *testing.T) {
	two := new(big.Int).Mul(oneRay, big.NewInt(2))
	require.Zero(t, lnRay(two).Cmp(ln2Ray))
	require.Zero(t, lnRay(oneRay).Sign())

	three := new(big.Int).Mul(oneRay, big.NewInt(3))
	back := expRay(lnRay(three))
	diff := new(big.Int).Sub(back, three)
	require.True(t, diff.CmpAbs(big.NewInt(1_000_000)) < 0, "exp(ln 3) drifted by %s", diff)

	third := ratioRay(1, 3)
	back = expRay(lnRay(third))
	diff.Sub(back, third)
	require.True(t, diff.CmpAbs(big.NewInt(1_000_000)) < 0, "exp(ln 1/3) drifted by %s", diff)

	require.Zero(t, expRay(new(big.Int).Mul(ln2Ray, big.NewInt(-1000))).Sign())
}

func TestContinuousRate(t *testing.T) {
	require.Zero(t, ContinuousRate(0))
	require.Equal(t, int64(1823), ContinuousRate(2000))
	require.Equal(t, int64(6931), ContinuousRate(10_000))
}
