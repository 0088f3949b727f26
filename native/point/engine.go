package point

import (
	"fmt"
	"math"
	"strings"

	"mosaicchain/core/events"
	"mosaicchain/core/types"
	"mosaicchain/native/bancor"
	"mosaicchain/observability/metrics"
)

type engineState interface {
	PointCurrencyGet(symbol string) (*Currency, bool, error)
	PointCurrencyPut(currency *Currency) error
	PointCurrencies() ([]*Currency, error)
	PointBalanceGet(symbol, owner string) (*Balance, bool, error)
	PointBalancePut(balance *Balance) error
	PointBalanceDelete(symbol, owner string) error
}

// FrozenSource reports the points an account has committed elsewhere. Frozen
// points stay on the balance but cannot be spent.
type FrozenSource interface {
	FrozenAmount(symbol, owner string) (int64, error)
}

// CreateParams describes a new community point.
type CreateParams struct {
	Symbol         string
	Issuer         string
	InitialSupply  int64
	InitialReserve int64
	MaxSupply      int64
	CW             uint16
	Fee            uint16
}

// Engine is the balance ledger of community points and the reserve currency.
type Engine struct {
	state     engineState
	emitter   events.Emitter
	frozen    FrozenSource
	feeExempt map[string]struct{}
	telemetry *metrics.CurveMetrics
}

// NewEngine constructs a ledger with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		feeExempt: make(map[string]struct{}),
		telemetry: metrics.Curve(),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetFrozenSource wires the component whose frozen points reduce the
// spendable balance.
func (e *Engine) SetFrozenSource(src FrozenSource) { e.frozen = src }

// ExemptFromTransferFee marks system accounts whose transfers skip the
// transfer fee.
func (e *Engine) ExemptFromTransferFee(accounts ...string) {
	for _, acc := range accounts {
		e.feeExempt[strings.TrimSpace(acc)] = struct{}{}
	}
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(events.Wrap(evt))
}

func (e *Engine) currency(symbol string) (*Currency, error) {
	if e.state == nil {
		return nil, errNilState
	}
	symbol = NormalizeSymbol(symbol)
	if !validSymbol(symbol) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	cur, ok, err := e.state.PointCurrencyGet(symbol)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCurrencyNotFound, symbol)
	}
	return cur, nil
}

func (e *Engine) putCurrency(cur *Currency) error {
	if err := cur.Curve().Validate(); err != nil {
		return err
	}
	if err := e.state.PointCurrencyPut(cur); err != nil {
		return err
	}
	e.emit(currencyEvent(cur))
	return nil
}

// Create registers a new community point. Supply and reserve must both be
// zero or both positive.
func (e *Engine) Create(p CreateParams) error {
	if e.state == nil {
		return errNilState
	}
	symbol := NormalizeSymbol(p.Symbol)
	if !validSymbol(symbol) {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, p.Symbol)
	}
	issuer := strings.TrimSpace(p.Issuer)
	if issuer == "" {
		return ErrInvalidAccount
	}
	if p.MaxSupply <= 0 {
		return fmt.Errorf("%w: maximum supply", ErrInvalidAmount)
	}
	if p.InitialSupply < 0 || p.InitialSupply > p.MaxSupply || p.InitialReserve < 0 {
		return fmt.Errorf("%w: initial supply %d reserve %d", ErrInvalidAmount, p.InitialSupply, p.InitialReserve)
	}
	if (p.InitialSupply == 0) != (p.InitialReserve == 0) {
		return fmt.Errorf("%w: initial supply and reserve must both be set", bancor.ErrInvalidCurve)
	}
	if _, ok, err := e.state.PointCurrencyGet(symbol); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %s", ErrCurrencyExists, symbol)
	}
	existing, err := e.state.PointCurrencies()
	if err != nil {
		return err
	}
	for _, cur := range existing {
		if cur.Issuer == issuer {
			return fmt.Errorf("%w: %s issues %s", ErrIssuerTaken, issuer, cur.Symbol)
		}
	}
	cur := &Currency{
		Symbol:    symbol,
		Issuer:    issuer,
		MaxSupply: p.MaxSupply,
		Supply:    p.InitialSupply,
		Reserve:   p.InitialReserve,
		CW:        p.CW,
		Fee:       p.Fee,
	}
	if err := e.putCurrency(cur); err != nil {
		return err
	}
	return e.addBalance(symbol, issuer, p.InitialSupply)
}

// SetParams updates the transfer fee of a point. Only the issuer may call it.
func (e *Engine) SetParams(symbol, caller string, transferFee uint16, minTransferFeePoints int64) error {
	cur, err := e.currency(symbol)
	if err != nil {
		return err
	}
	if cur.Issuer != caller {
		return ErrUnauthorizedIssuer
	}
	if transferFee > bancor.Denominator {
		return fmt.Errorf("%w: transfer fee above 100%%", ErrInvalidAmount)
	}
	if minTransferFeePoints < 0 || (transferFee > 0 && minTransferFeePoints == 0) {
		return fmt.Errorf("%w: minimum transfer fee points", ErrInvalidAmount)
	}
	cur.TransferFee = transferFee
	cur.MinTransferFeePoints = minTransferFeePoints
	return e.putCurrency(cur)
}

// Open creates an empty balance record.
func (e *Engine) Open(symbol, owner string) error {
	if e.state == nil {
		return errNilState
	}
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return ErrInvalidAccount
	}
	if symbol != ReserveSymbol {
		cur, err := e.currency(symbol)
		if err != nil {
			return err
		}
		symbol = cur.Symbol
	}
	if _, ok, err := e.state.PointBalanceGet(symbol, owner); err != nil || ok {
		return err
	}
	return e.state.PointBalancePut(&Balance{Symbol: symbol, Owner: owner})
}

// Close removes an empty balance record.
func (e *Engine) Close(symbol, owner string) error {
	if e.state == nil {
		return errNilState
	}
	if symbol != ReserveSymbol {
		cur, err := e.currency(symbol)
		if err != nil {
			return err
		}
		if cur.Issuer == owner {
			return ErrIssuerCannotClose
		}
		symbol = cur.Symbol
	}
	bal, ok, err := e.state.PointBalanceGet(symbol, owner)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrBalanceNotFound, symbol, owner)
	}
	if bal.Amount != 0 {
		return ErrBalanceNotEmpty
	}
	return e.state.PointBalanceDelete(symbol, owner)
}

// Issue mints new points to the issuer and forwards them to the recipient.
func (e *Engine) Issue(symbol, to string, amount int64) error {
	cur, err := e.currency(symbol)
	if err != nil {
		return err
	}
	if cur.Reserve <= 0 {
		return ErrNoReserve
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > cur.MaxSupply-cur.Supply {
		return ErrSupplyExceeded
	}
	cur.Supply += amount
	if err := e.putCurrency(cur); err != nil {
		return err
	}
	if err := e.addBalance(cur.Symbol, cur.Issuer, amount); err != nil {
		return err
	}
	if to != "" && to != cur.Issuer {
		return e.Transfer(cur.Symbol, cur.Issuer, to, amount)
	}
	return nil
}

// Retire burns points from an account.
func (e *Engine) Retire(symbol, from string, amount int64) error {
	cur, err := e.currency(symbol)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := e.subBalance(cur.Symbol, from, amount); err != nil {
		return err
	}
	cur.Supply -= amount
	if err := e.sweepEmptySupply(cur); err != nil {
		return err
	}
	return e.putCurrency(cur)
}

// Transfer moves points between accounts. A configured transfer fee is
// charged on top of the amount and burned.
func (e *Engine) Transfer(symbol, from, to string, amount int64) error {
	cur, err := e.currency(symbol)
	if err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" || strings.TrimSpace(from) == "" {
		return ErrInvalidAccount
	}
	if from == to {
		return ErrSelfTransfer
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	fee, err := e.transferFee(cur, from, to, amount)
	if err != nil {
		return err
	}
	if amount > math.MaxInt64-fee {
		return bancor.ErrOverflow
	}
	if err := e.subBalance(cur.Symbol, from, amount+fee); err != nil {
		return err
	}
	if fee > 0 {
		cur.Supply -= fee
		if err := e.sweepEmptySupply(cur); err != nil {
			return err
		}
		if err := e.putCurrency(cur); err != nil {
			return err
		}
	}
	return e.addBalance(cur.Symbol, to, amount)
}

func (e *Engine) transferFee(cur *Currency, from, to string, amount int64) (int64, error) {
	if cur.TransferFee == 0 || from == cur.Issuer || to == cur.Issuer {
		return 0, nil
	}
	if _, ok := e.feeExempt[from]; ok {
		return 0, nil
	}
	if _, ok := e.feeExempt[to]; ok {
		return 0, nil
	}
	fee, err := bancor.SafePct(int64(cur.TransferFee), amount)
	if err != nil {
		return 0, err
	}
	if fee < cur.MinTransferFeePoints {
		fee = cur.MinTransferFeePoints
	}
	return fee, nil
}

// Deposit credits reserve currency arriving from outside the ledger.
func (e *Engine) Deposit(owner string, amount int64) error {
	if e.state == nil {
		return errNilState
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return e.addBalance(ReserveSymbol, owner, amount)
}

// Withdraw debits reserve currency leaving the ledger.
func (e *Engine) Withdraw(owner string, amount int64) error {
	if e.state == nil {
		return errNilState
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return e.subBalance(ReserveSymbol, owner, amount)
}

// Buy converts reserve currency into newly minted points along the curve.
func (e *Engine) Buy(symbol, buyer string, reserveAmount int64) (int64, error) {
	cur, err := e.currency(symbol)
	if err != nil {
		return 0, err
	}
	if reserveAmount <= 0 {
		return 0, ErrInvalidAmount
	}
	if _, ok, err := e.state.PointBalanceGet(cur.Symbol, buyer); err != nil {
		return 0, err
	} else if !ok {
		return 0, fmt.Errorf("%w: %s/%s not opened", ErrBalanceNotFound, cur.Symbol, buyer)
	}
	minted, err := bancor.TokensFor(cur.Curve(), reserveAmount, true)
	if err != nil {
		return 0, err
	}
	if minted <= 0 {
		return 0, fmt.Errorf("%w: these tokens cost zero points", ErrZeroConversion)
	}
	if minted > cur.MaxSupply-cur.Supply {
		return 0, ErrSupplyExceeded
	}
	if err := e.subBalance(ReserveSymbol, buyer, reserveAmount); err != nil {
		return 0, err
	}
	cur.Reserve += reserveAmount
	cur.Supply += minted
	if err := e.putCurrency(cur); err != nil {
		return 0, err
	}
	if err := e.addBalance(cur.Symbol, buyer, minted); err != nil {
		return 0, err
	}
	e.emit(exchangeEvent(cur.Symbol, buyer, "buy", minted, reserveAmount, 0))
	e.telemetry.ObserveConversion(cur.Symbol, "buy", reserveAmount, 0)
	return minted, nil
}

// Sell redeems points for reserve currency. The fee stays in the reserve.
func (e *Engine) Sell(symbol, seller string, points int64) (bancor.Quote, error) {
	cur, err := e.currency(symbol)
	if err != nil {
		return bancor.Quote{}, err
	}
	if points <= 0 {
		return bancor.Quote{}, ErrInvalidAmount
	}
	quote, err := bancor.ReserveFor(cur.Curve(), points)
	if err != nil {
		return bancor.Quote{}, err
	}
	if quote.Net <= 0 {
		return bancor.Quote{}, fmt.Errorf("%w: these points cost zero tokens", ErrZeroConversion)
	}
	if err := e.subBalance(cur.Symbol, seller, points); err != nil {
		return bancor.Quote{}, err
	}
	cur.Reserve -= quote.Net
	cur.Supply -= points
	if err := e.sweepEmptySupply(cur); err != nil {
		return bancor.Quote{}, err
	}
	if err := e.putCurrency(cur); err != nil {
		return bancor.Quote{}, err
	}
	if err := e.addBalance(ReserveSymbol, seller, quote.Net); err != nil {
		return bancor.Quote{}, err
	}
	e.emit(exchangeEvent(cur.Symbol, seller, "sell", points, quote.Net, quote.Fee))
	e.telemetry.ObserveConversion(cur.Symbol, "sell", quote.Net, quote.Fee)
	return quote, nil
}

// Restock grows the reserve without minting points.
func (e *Engine) Restock(symbol, from string, reserveAmount int64) error {
	cur, err := e.currency(symbol)
	if err != nil {
		return err
	}
	if reserveAmount <= 0 {
		return ErrInvalidAmount
	}
	if cur.Supply == 0 {
		return fmt.Errorf("%w: restock requires outstanding supply", ErrNoReserve)
	}
	if err := e.subBalance(ReserveSymbol, from, reserveAmount); err != nil {
		return err
	}
	cur.Reserve += reserveAmount
	return e.putCurrency(cur)
}

// sweepEmptySupply keeps reserve == 0 whenever supply == 0 by paying any
// residual reserve (retained fees) to the issuer.
func (e *Engine) sweepEmptySupply(cur *Currency) error {
	if cur.Supply != 0 || cur.Reserve == 0 {
		return nil
	}
	residual := cur.Reserve
	cur.Reserve = 0
	return e.addBalance(ReserveSymbol, cur.Issuer, residual)
}

func (e *Engine) addBalance(symbol, owner string, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	bal, ok, err := e.state.PointBalanceGet(symbol, owner)
	if err != nil {
		return err
	}
	if !ok {
		bal = &Balance{Symbol: symbol, Owner: owner}
	}
	if bal.Amount > math.MaxInt64-amount {
		return bancor.ErrOverflow
	}
	bal.Amount += amount
	if err := e.state.PointBalancePut(bal); err != nil {
		return err
	}
	e.emit(balanceEvent(bal))
	return nil
}

func (e *Engine) subBalance(symbol, owner string, amount int64) error {
	bal, ok, err := e.state.PointBalanceGet(symbol, owner)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrBalanceNotFound, symbol, owner)
	}
	available := bal.Amount
	if symbol != ReserveSymbol && e.frozen != nil {
		frozen, err := e.frozen.FrozenAmount(symbol, owner)
		if err != nil {
			return err
		}
		available -= frozen
	}
	if available < amount {
		return fmt.Errorf("%w: %s has %d spendable, needs %d", ErrOverdrawn, owner, available, amount)
	}
	bal.Amount -= amount
	if err := e.state.PointBalancePut(bal); err != nil {
		return err
	}
	e.emit(balanceEvent(bal))
	return nil
}

// BalanceOf returns an account's balance and whether the record exists.
func (e *Engine) BalanceOf(symbol, owner string) (int64, bool, error) {
	if e.state == nil {
		return 0, false, errNilState
	}
	if symbol != ReserveSymbol {
		symbol = NormalizeSymbol(symbol)
	}
	bal, ok, err := e.state.PointBalanceGet(symbol, owner)
	if err != nil || !ok {
		return 0, ok, err
	}
	return bal.Amount, true, nil
}

// Spendable returns the balance minus frozen points.
func (e *Engine) Spendable(symbol, owner string) (int64, error) {
	amount, _, err := e.BalanceOf(symbol, owner)
	if err != nil {
		return 0, err
	}
	if e.frozen == nil || symbol == ReserveSymbol {
		return amount, nil
	}
	frozen, err := e.frozen.FrozenAmount(NormalizeSymbol(symbol), owner)
	if err != nil {
		return 0, err
	}
	return amount - frozen, nil
}

// Currency returns a copy of the point record.
func (e *Engine) Currency(symbol string) (*Currency, error) {
	return e.currency(symbol)
}

// Issuer returns the issuing account of a point.
func (e *Engine) Issuer(symbol string) (string, error) {
	cur, err := e.currency(symbol)
	if err != nil {
		return "", err
	}
	return cur.Issuer, nil
}

// Supply returns the outstanding point supply.
func (e *Engine) Supply(symbol string) (int64, error) {
	cur, err := e.currency(symbol)
	if err != nil {
		return 0, err
	}
	return cur.Supply, nil
}

// Quote prices a redemption of amount points without executing it.
func (e *Engine) Quote(symbol string, amount int64) (bancor.Quote, error) {
	cur, err := e.currency(symbol)
	if err != nil {
		return bancor.Quote{}, err
	}
	return bancor.ReserveFor(cur.Curve(), amount)
}

// ReserveFor returns the fee-adjusted reserve value of amount points.
func (e *Engine) ReserveFor(symbol string, amount int64) (int64, error) {
	q, err := e.Quote(symbol, amount)
	if err != nil {
		return 0, err
	}
	return q.Net, nil
}
