package state

import (
	"fmt"

	"mosaicchain/native/point"
)

// Signed quantities are persisted as their two's complement because RLP
// only encodes unsigned integers.
func u64(v int64) uint64 { return uint64(v) }
func i64(v uint64) int64 { return int64(v) }

type storedCurrency struct {
	Symbol               string
	Issuer               string
	MaxSupply            uint64
	Supply               uint64
	Reserve              uint64
	CW                   uint16
	Fee                  uint16
	TransferFee          uint16
	MinTransferFeePoints uint64
}

func newStoredCurrency(c *point.Currency) *storedCurrency {
	return &storedCurrency{
		Symbol:               c.Symbol,
		Issuer:               c.Issuer,
		MaxSupply:            u64(c.MaxSupply),
		Supply:               u64(c.Supply),
		Reserve:              u64(c.Reserve),
		CW:                   c.CW,
		Fee:                  c.Fee,
		TransferFee:          c.TransferFee,
		MinTransferFeePoints: u64(c.MinTransferFeePoints),
	}
}

func (s *storedCurrency) toCurrency() *point.Currency {
	return &point.Currency{
		Symbol:               s.Symbol,
		Issuer:               s.Issuer,
		MaxSupply:            i64(s.MaxSupply),
		Supply:               i64(s.Supply),
		Reserve:              i64(s.Reserve),
		CW:                   s.CW,
		Fee:                  s.Fee,
		TransferFee:          s.TransferFee,
		MinTransferFeePoints: i64(s.MinTransferFeePoints),
	}
}

type storedBalance struct {
	Symbol string
	Owner  string
	Amount uint64
}

// PointCurrencyGet loads the currency record of symbol.
func (m *Manager) PointCurrencyGet(symbol string) (*point.Currency, bool, error) {
	var stored storedCurrency
	ok, err := m.KVGet(pointCurrencyKey(symbol), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.toCurrency(), true, nil
}

// PointCurrencyPut persists a currency record.
func (m *Manager) PointCurrencyPut(c *point.Currency) error {
	if c == nil {
		return fmt.Errorf("point: nil currency")
	}
	return m.KVPut(pointCurrencyKey(c.Symbol), newStoredCurrency(c))
}

// PointCurrencies lists every currency record in key order.
func (m *Manager) PointCurrencies() ([]*point.Currency, error) {
	keys, err := m.keys(pointCurrencyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]*point.Currency, 0, len(keys))
	for _, key := range keys {
		var stored storedCurrency
		ok, err := m.KVGet(key, &stored)
		if err != nil {
			return nil, fmt.Errorf("point: decode %x: %w", key, err)
		}
		if ok {
			out = append(out, stored.toCurrency())
		}
	}
	return out, nil
}

func (m *Manager) PointBalanceGet(symbol, owner string) (*point.Balance, bool, error) {
	var stored storedBalance
	ok, err := m.KVGet(pointBalanceKey(symbol, owner), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &point.Balance{Symbol: stored.Symbol, Owner: stored.Owner, Amount: i64(stored.Amount)}, true, nil
}

func (m *Manager) PointBalancePut(b *point.Balance) error {
	if b == nil {
		return fmt.Errorf("point: nil balance")
	}
	return m.KVPut(pointBalanceKey(b.Symbol, b.Owner), &storedBalance{Symbol: b.Symbol, Owner: b.Owner, Amount: u64(b.Amount)})
}

func (m *Manager) PointBalanceDelete(symbol, owner string) error {
	return m.KVDelete(pointBalanceKey(symbol, owner))
}

// ParamStoreSet stores an encoded parameter blob.
func (m *Manager) ParamStoreSet(name string, value []byte) error {
	return m.KVPutRaw(paramsKey(name), value)
}

// ParamStoreGet loads an encoded parameter blob.
func (m *Manager) ParamStoreGet(name string) ([]byte, bool, error) {
	return m.KVGetRaw(paramsKey(name))
}
