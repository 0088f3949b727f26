package bancor

import (
	"fmt"
	"math"
	"math/big"
)

const (
	// Denominator is the basis-point scale for connector weights and fees.
	Denominator = 10_000
	// SharesCW is the connector weight used for gem share accounting (0.3333).
	SharesCW uint16 = 3333
)

// CurveState is the per-community bonding curve record.
type CurveState struct {
	Supply  int64
	Reserve int64
	CW      uint16
	Fee     uint16
}

// Validate checks the curve invariants.
func (c CurveState) Validate() error {
	if c.CW == 0 || c.CW > Denominator {
		return fmt.Errorf("%w: connector weight %d outside (0, %d]", ErrInvalidCurve, c.CW, Denominator)
	}
	if c.Fee > Denominator {
		return fmt.Errorf("%w: fee %d above %d", ErrInvalidCurve, c.Fee, Denominator)
	}
	if c.Supply < 0 || c.Reserve < 0 {
		return fmt.Errorf("%w: negative supply or reserve", ErrInvalidCurve)
	}
	if c.Reserve == 0 && c.Supply != 0 {
		return fmt.Errorf("%w: supply %d without reserve", ErrInvalidCurve, c.Supply)
	}
	return nil
}

// Quote is the result of a redemption: the net reserve paid out and the fee
// withheld from the gross curve amount.
type Quote struct {
	Net int64
	Fee int64
}

// Gross returns the curve amount before fee deduction.
func (q Quote) Gross() int64 { return q.Net + q.Fee }

// ReserveFor converts a point amount being redeemed into reserve currency.
func ReserveFor(c CurveState, amount int64) (Quote, error) {
	if err := c.Validate(); err != nil {
		return Quote{}, err
	}
	if amount < 0 || amount > c.Supply {
		return Quote{}, fmt.Errorf("%w: %d not within [0, %d]", ErrInvalidQuantity, amount, c.Supply)
	}
	if amount == 0 {
		return Quote{}, nil
	}
	var gross int64
	switch {
	case amount == c.Supply:
		gross = c.Reserve
	case c.CW == Denominator:
		v, err := MulDiv(amount, c.Reserve, c.Supply)
		if err != nil {
			return Quote{}, err
		}
		gross = v
	default:
		// reserve * (1 - (1 - amount/supply)^(1/cw))
		remaining := ratioRay(c.Supply-amount, c.Supply)
		p := powRay(remaining, Denominator, int64(c.CW))
		if p.Cmp(oneRay) > 0 {
			p.Set(oneRay)
		}
		out := new(big.Int).Sub(oneRay, p)
		out.Mul(out, big.NewInt(c.Reserve))
		out.Quo(out, oneRay)
		if !out.IsInt64() {
			return Quote{}, ErrOverflow
		}
		gross = out.Int64()
	}
	if gross > c.Reserve {
		gross = c.Reserve
	}
	net := gross
	if c.Fee > 0 {
		v, err := MulDiv(gross, int64(Denominator-c.Fee), Denominator)
		if err != nil {
			return Quote{}, err
		}
		net = v
	}
	return Quote{Net: net, Fee: gross - net}, nil
}

// TokensFor converts a reserve deposit into newly minted points. With strict
// unset and an empty reserve, the first deposit mints one point per unit.
func TokensFor(c CurveState, deposit int64, strict bool) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return bancorAmount(c.Reserve, c.Supply, c.CW, deposit, strict)
}

// SharesFor returns the share increment for points added to a bucket that
// currently holds points/shares.
func SharesFor(points, shares int64, cw uint16, added int64, strict bool) (int64, error) {
	if cw == 0 || cw > Denominator {
		return 0, fmt.Errorf("%w: connector weight %d", ErrInvalidCurve, cw)
	}
	if points < 0 || shares < 0 {
		return 0, fmt.Errorf("%w: negative bucket", ErrInvalidQuantity)
	}
	return bancorAmount(points, shares, cw, added, strict)
}

// bancorAmount computes supply*(1+amount/reserve)^cw - supply.
func bancorAmount(reserve, supply int64, cw uint16, amount int64, strict bool) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: negative amount %d", ErrInvalidQuantity, amount)
	}
	if !strict && reserve == 0 {
		return amount, nil
	}
	if reserve <= 0 {
		return 0, ErrNoReserve
	}
	if amount == 0 {
		return 0, nil
	}
	if reserve > math.MaxInt64-amount {
		return 0, ErrOverflow
	}
	base := ratioRay(reserve+amount, reserve)
	p := powRay(base, int64(cw), Denominator)
	newSupply := new(big.Int).Mul(big.NewInt(supply), p)
	newSupply.Quo(newSupply, oneRay)
	if !newSupply.IsInt64() {
		return 0, fmt.Errorf("%w: new supply %s", ErrOverflow, newSupply)
	}
	delta := newSupply.Int64() - supply
	if delta < 0 {
		delta = 0
	}
	return delta, nil
}
