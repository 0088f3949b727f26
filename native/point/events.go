package point

import (
	"strconv"

	"mosaicchain/core/types"
)

const (
	// EventTypeCurrency is emitted whenever supply, reserve or parameters change.
	EventTypeCurrency = "point.currency"
	// EventTypeBalance is emitted when an account balance changes.
	EventTypeBalance = "point.balance"
	// EventTypeExchange is emitted for buy and sell conversions.
	EventTypeExchange = "point.exchange"
)

func currencyEvent(c *Currency) *types.Event {
	return &types.Event{
		Type: EventTypeCurrency,
		Attributes: map[string]string{
			"symbol":      c.Symbol,
			"issuer":      c.Issuer,
			"supply":      strconv.FormatInt(c.Supply, 10),
			"reserve":     strconv.FormatInt(c.Reserve, 10),
			"maxSupply":   strconv.FormatInt(c.MaxSupply, 10),
			"cw":          strconv.FormatUint(uint64(c.CW), 10),
			"fee":         strconv.FormatUint(uint64(c.Fee), 10),
			"transferFee": strconv.FormatUint(uint64(c.TransferFee), 10),
		},
	}
}

func balanceEvent(b *Balance) *types.Event {
	return &types.Event{
		Type: EventTypeBalance,
		Attributes: map[string]string{
			"symbol":  b.Symbol,
			"account": b.Owner,
			"balance": strconv.FormatInt(b.Amount, 10),
		},
	}
}

func exchangeEvent(symbol, account, direction string, points, reserve, fee int64) *types.Event {
	return &types.Event{
		Type: EventTypeExchange,
		Attributes: map[string]string{
			"symbol":    symbol,
			"account":   account,
			"direction": direction,
			"points":    strconv.FormatInt(points, 10),
			"reserve":   strconv.FormatInt(reserve, 10),
			"fee":       strconv.FormatInt(fee, 10),
		},
	}
}
