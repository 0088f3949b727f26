package emit

import (
	"fmt"
	"strings"
	"time"

	coreerrors "mosaicchain/core/errors"
	"mosaicchain/core/events"
	"mosaicchain/core/types"
	"mosaicchain/native/bancor"
	"mosaicchain/native/gallery"
	"mosaicchain/native/params"
	"mosaicchain/observability/metrics"
)

// SecondsPerYear is the length of the year the annual emission rate refers
// to.
const SecondsPerYear = int64(365 * 24 * 60 * 60)

type engineState interface {
	EmitStatGet(symbol string) (*Stat, bool, error)
	EmitStatPut(stat *Stat) error
}

// Ledger mints emitted points.
type Ledger interface {
	Supply(symbol string) (int64, error)
	Issue(symbol, to string, amount int64) error
}

// ParamSource yields the parameters of a community.
type ParamSource interface {
	Community(symbol string) (*params.Community, error)
}

// Gallery receives the mosaic share of every emission and runs the reward
// tick over it.
type Gallery interface {
	Account() string
	DistributeReward(symbol string, amount int64) (*gallery.TickResult, error)
}

// Leaders receives the leader share of every emission.
type Leaders interface {
	Account() string
	DistributeLeaders(symbol string, amount int64) error
}

// Engine issues periodic community emissions.
type Engine struct {
	state     engineState
	ledger    Ledger
	params    ParamSource
	gallery   Gallery
	leaders   Leaders
	emitter   events.Emitter
	nowFn     func() int64
	telemetry *metrics.EmissionMetrics
}

// NewEngine constructs an emission engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		nowFn:     func() int64 { return time.Now().Unix() },
		telemetry: metrics.Emission(),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the point ledger that mints emitted points.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetParams configures the community parameter source.
func (e *Engine) SetParams(src ParamSource) { e.params = src }

// SetGallery configures the receiver of mosaic emissions.
func (e *Engine) SetGallery(g Gallery) { e.gallery = g }

// SetLeaders configures the receiver of leader emissions.
func (e *Engine) SetLeaders(l Leaders) { e.leaders = l }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(events.Wrap(evt))
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Create starts the emission clock of a community.
func (e *Engine) Create(symbol string) error {
	if e.state == nil {
		return errNilState
	}
	symbol = normalize(symbol)
	if _, ok, err := e.state.EmitStatGet(symbol); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %s", ErrStatExists, symbol)
	}
	now := e.nowFn()
	return e.state.EmitStatPut(&Stat{Symbol: symbol, LastMosaicsReward: now, LastLeadersReward: now})
}

// Stat returns the emission clock of a community.
func (e *Engine) Stat(symbol string) (*Stat, error) {
	if e.state == nil {
		return nil, errNilState
	}
	symbol = normalize(symbol)
	st, ok, err := e.state.EmitStatGet(symbol)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStatNotFound, symbol)
	}
	return st, nil
}

// Due reports whether the reward period of the receiver has elapsed.
func (e *Engine) Due(symbol string, forLeaders bool) (bool, error) {
	if e.params == nil {
		return false, errNoLedger
	}
	st, err := e.Stat(symbol)
	if err != nil {
		return false, err
	}
	cfg, err := e.params.Community(st.Symbol)
	if err != nil {
		return false, err
	}
	passed := e.nowFn() - st.Last(forLeaders)
	if passed < 0 {
		return false, coreerrors.Invariant("emit: last reward of %s is in the future", st.Symbol)
	}
	return passed > 0 && passed >= cfg.RewardPeriod(forLeaders), nil
}

// Amount computes the emission for elapsed seconds on supply: the
// continuous equivalent of the annual rate, prorated over the year, then
// split between leaders and mosaics.
func Amount(cfg *params.Community, supply, elapsed int64, forLeaders bool) (int64, error) {
	cont, err := bancor.SafePct(bancor.ContinuousRate(cfg.EmissionRate), supply)
	if err != nil {
		return 0, err
	}
	period, err := bancor.SafeProp(cont, elapsed, SecondsPerYear)
	if err != nil {
		return 0, err
	}
	pct := int64(params.Denominator) - int64(cfg.LeadersPercent)
	if forLeaders {
		pct = int64(cfg.LeadersPercent)
	}
	return bancor.SafePct(pct, period)
}

// IssueReward mints the emission accrued since the receiver's previous
// reward and hands it over. It fails when the reward period has not
// elapsed yet.
func (e *Engine) IssueReward(symbol string, forLeaders bool) (*Issuance, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if e.ledger == nil || e.params == nil {
		return nil, errNoLedger
	}
	st, err := e.Stat(symbol)
	if err != nil {
		return nil, err
	}
	cfg, err := e.params.Community(st.Symbol)
	if err != nil {
		return nil, err
	}
	now := e.nowFn()
	passed := now - st.Last(forLeaders)
	if passed < 0 {
		return nil, coreerrors.Invariant("emit: last reward of %s is in the future", st.Symbol)
	}
	if passed < cfg.RewardPeriod(forLeaders) {
		return nil, fmt.Errorf("%w: %ds of %ds", ErrUntimely, passed, cfg.RewardPeriod(forLeaders))
	}

	var receiver string
	switch {
	case forLeaders && e.leaders != nil:
		receiver = e.leaders.Account()
	case !forLeaders && e.gallery != nil:
		receiver = e.gallery.Account()
	default:
		return nil, errNoLedger
	}

	supply, err := e.ledger.Supply(st.Symbol)
	if err != nil {
		return nil, err
	}
	amount, err := Amount(cfg, supply, passed, forLeaders)
	if err != nil {
		return nil, err
	}
	if amount > 0 {
		if err := e.ledger.Issue(st.Symbol, receiver, amount); err != nil {
			return nil, err
		}
	}
	st.touch(forLeaders, now)
	if err := e.state.EmitStatPut(st); err != nil {
		return nil, err
	}

	iss := &Issuance{
		Symbol:     st.Symbol,
		ForLeaders: forLeaders,
		Receiver:   receiver,
		At:         now,
		Elapsed:    passed,
		Supply:     supply,
		Amount:     amount,
	}
	if forLeaders {
		if amount > 0 {
			if err := e.leaders.DistributeLeaders(st.Symbol, amount); err != nil {
				return nil, err
			}
		}
	} else {
		tick, err := e.gallery.DistributeReward(st.Symbol, amount)
		if err != nil {
			return nil, err
		}
		iss.Tick = tick
	}
	e.telemetry.ObserveIssue(st.Symbol, receiver, amount, now)
	e.emit(rewardEvent(iss))
	return iss, nil
}

func (e *Engine) maybeIssue(symbol string, forLeaders bool) error {
	due, err := e.Due(symbol, forLeaders)
	if err != nil || !due {
		return err
	}
	_, err = e.IssueReward(symbol, forLeaders)
	return err
}

// MaybeIssue runs the mosaic emission of a community if it is due.
func (e *Engine) MaybeIssue(symbol string) error { return e.maybeIssue(symbol, false) }

// MaybeIssueLeaders runs the leader emission of a community if it is due.
func (e *Engine) MaybeIssueLeaders(symbol string) error { return e.maybeIssue(symbol, true) }
