package point

import (
	"strings"

	"mosaicchain/native/bancor"
)

// ReserveSymbol scopes reserve-currency balances held inside the ledger.
const ReserveSymbol = "$RESERVE"

// Currency is the per-community point record: curve state plus issuance
// parameters.
type Currency struct {
	Symbol               string
	Issuer               string
	MaxSupply            int64
	Supply               int64
	Reserve              int64
	CW                   uint16
	Fee                  uint16
	TransferFee          uint16
	MinTransferFeePoints int64
}

// Curve projects the currency onto the bonding curve record.
func (c *Currency) Curve() bancor.CurveState {
	return bancor.CurveState{Supply: c.Supply, Reserve: c.Reserve, CW: c.CW, Fee: c.Fee}
}

// Balance is an account's holding of one symbol.
type Balance struct {
	Symbol string
	Owner  string
	Amount int64
}

// NormalizeSymbol upper-cases and trims a community symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func validSymbol(symbol string) bool {
	if len(symbol) == 0 || len(symbol) > 7 {
		return false
	}
	for _, r := range symbol {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
