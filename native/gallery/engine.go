package gallery

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mosaicchain/core/events"
	"mosaicchain/core/types"
	"mosaicchain/native/params"
	"mosaicchain/observability/metrics"
)

type engineState interface {
	GalleryMosaicGet(symbol string, id uint64) (*Mosaic, bool, error)
	GalleryMosaicPut(symbol string, mosaic *Mosaic) error
	GalleryMosaicDelete(symbol string, id uint64) error
	GalleryMosaics(symbol string) ([]*Mosaic, error)

	GalleryGemGet(symbol string, id uint64) (*Gem, bool, error)
	GalleryGemPut(symbol string, gem *Gem) error
	GalleryGemDelete(symbol string, gem *Gem) error
	GalleryGems(symbol string) ([]*Gem, error)
	GalleryGemsByMosaic(symbol string, mosaicID uint64) ([]*Gem, error)
	GalleryNextGemID(symbol string) (uint64, error)

	GalleryInclusionGet(symbol, owner string) (int64, error)
	GalleryInclusionPut(symbol, owner string, amount int64) error

	GalleryProvisionGet(symbol, grantor, recipient string) (*Provision, bool, error)
	GalleryProvisionPut(symbol string, prov *Provision) error
	GalleryProvisionDelete(symbol, grantor, recipient string) error

	GalleryAdviceGet(symbol, leader string) (*Advice, bool, error)
	GalleryAdvicePut(symbol string, advice *Advice) error
	GalleryAdviceDelete(symbol, leader string) error

	GallerySlapsGet(symbol string, mosaicID uint64) (*SlapList, bool, error)
	GallerySlapsPut(symbol string, slaps *SlapList) error
	GallerySlapsDelete(symbol string, mosaicID uint64) error

	GalleryStatGet(symbol string) (*Stat, bool, error)
	GalleryStatPut(stat *Stat) error
}

// Ledger is the point balance ledger the gallery freezes against and pays
// rewards through.
type Ledger interface {
	BalanceOf(symbol, owner string) (int64, bool, error)
	Transfer(symbol, from, to string, amount int64) error
	Issuer(symbol string) (string, error)
	ReserveFor(symbol string, amount int64) (int64, error)
}

// ParamSource yields the parameters of a community for one operation.
type ParamSource interface {
	Community(symbol string) (*params.Community, error)
}

// LeaderSet reports the current leaders of a community.
type LeaderSet interface {
	Leaders(symbol string) ([]string, error)
}

// MosaicHook is notified when the last gem of a mosaic is chopped and the
// mosaic record is deleted.
type MosaicHook interface {
	OnMosaicDestroyed(symbol string, mosaic *Mosaic) error
}

// RewardIssuer triggers a pending emission for the community, if one is due.
type RewardIssuer interface {
	MaybeIssue(symbol string) error
}

// Engine runs the mosaic and gem lifecycle of every community.
type Engine struct {
	state     engineState
	ledger    Ledger
	params    ParamSource
	leaders   LeaderSet
	hooks     []MosaicHook
	rewards   RewardIssuer
	emitter   events.Emitter
	nowFn     func() int64
	account   string
	telemetry *metrics.GalleryMetrics
}

// DefaultAccount holds undistributed mosaic rewards.
const DefaultAccount = "gallery"

// NewEngine constructs a gallery engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		nowFn:     func() int64 { return time.Now().Unix() },
		account:   DefaultAccount,
		telemetry: metrics.Gallery(),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the point ledger.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetParams configures the community parameter source.
func (e *Engine) SetParams(src ParamSource) { e.params = src }

// SetLeaders configures the leader registry consulted by slaps and advice.
func (e *Engine) SetLeaders(leaders LeaderSet) { e.leaders = leaders }

// SetRewardIssuer configures the emission trigger run before stakes and
// claims.
func (e *Engine) SetRewardIssuer(r RewardIssuer) { e.rewards = r }

// AddHook registers a listener for destroyed mosaics.
func (e *Engine) AddHook(h MosaicHook) {
	if h != nil {
		e.hooks = append(e.hooks, h)
	}
}

// SetAccount overrides the account holding mosaic rewards.
func (e *Engine) SetAccount(account string) {
	if strings.TrimSpace(account) != "" {
		e.account = strings.TrimSpace(account)
	}
}

// Account returns the account holding mosaic rewards.
func (e *Engine) Account() string { return e.account }

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

// op carries everything one invocation reads once: the community
// parameters and the current time.
type op struct {
	symbol string
	cfg    *params.Community
	now    int64
}

func (e *Engine) begin(symbol string) (*op, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if e.ledger == nil || e.params == nil {
		return nil, errNoLedger
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	cfg, err := e.params.Community(symbol)
	if err != nil {
		return nil, err
	}
	return &op{symbol: symbol, cfg: cfg, now: e.nowFn()}, nil
}

func (e *Engine) maybeIssue(o *op) error {
	if e.rewards == nil {
		return nil
	}
	return e.rewards.MaybeIssue(o.symbol)
}

func (e *Engine) mosaic(o *op, id uint64) (*Mosaic, error) {
	m, ok, err := e.state.GalleryMosaicGet(o.symbol, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%d", ErrMosaicNotFound, o.symbol, id)
	}
	return m, nil
}

func (e *Engine) putMosaic(o *op, m *Mosaic) error {
	if err := e.state.GalleryMosaicPut(o.symbol, m); err != nil {
		return err
	}
	e.emit(mosaicStateEvent(o.symbol, m))
	return nil
}

func (e *Engine) stat(o *op) (*Stat, error) {
	st, ok, err := e.state.GalleryStatGet(o.symbol)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStatNotFound, o.symbol)
	}
	return st, nil
}

// findGem locates the gem keyed by (mosaic, owner, creator).
func (e *Engine) findGem(o *op, mosaicID uint64, owner, creator string) (*Gem, error) {
	gems, err := e.state.GalleryGemsByMosaic(o.symbol, mosaicID)
	if err != nil {
		return nil, err
	}
	for _, g := range gems {
		if g.Owner == owner && g.Creator == creator {
			return g, nil
		}
	}
	return nil, nil
}

// gemsOfCreator lists the gems of a mosaic attributed to creator, ordered
// by owner.
func (e *Engine) gemsOfCreator(o *op, mosaicID uint64, creator string) ([]*Gem, error) {
	gems, err := e.state.GalleryGemsByMosaic(o.symbol, mosaicID)
	if err != nil {
		return nil, err
	}
	out := gems[:0:0]
	for _, g := range gems {
		if g.Creator == creator {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out, nil
}

// Init opens the gallery ledger of a community.
func (e *Engine) Init(symbol string) error {
	o, err := e.begin(symbol)
	if err != nil {
		return err
	}
	if _, ok, err := e.state.GalleryStatGet(o.symbol); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %s", ErrGalleryExists, o.symbol)
	}
	return e.state.GalleryStatPut(&Stat{Symbol: o.symbol, LastRewardAt: o.now})
}

// Mosaic returns the stored mosaic.
func (e *Engine) Mosaic(symbol string, id uint64) (*Mosaic, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.mosaic(&op{symbol: strings.ToUpper(strings.TrimSpace(symbol))}, id)
}

// Mosaics lists the mosaics of a community in id order.
func (e *Engine) Mosaics(symbol string) ([]*Mosaic, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.GalleryMosaics(strings.ToUpper(strings.TrimSpace(symbol)))
}

// Gems lists the gems of a mosaic in id order.
func (e *Engine) Gems(symbol string, mosaicID uint64) ([]*Gem, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.GalleryGemsByMosaic(strings.ToUpper(strings.TrimSpace(symbol)), mosaicID)
}

// Stat returns the community's gallery ledger.
func (e *Engine) Stat(symbol string) (*Stat, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.stat(&op{symbol: strings.ToUpper(strings.TrimSpace(symbol))})
}

// Provision returns the provision from grantor to recipient.
func (e *Engine) Provision(symbol, grantor, recipient string) (*Provision, bool, error) {
	if e.state == nil {
		return nil, false, errNilState
	}
	return e.state.GalleryProvisionGet(strings.ToUpper(strings.TrimSpace(symbol)), grantor, recipient)
}

// FrozenAmount reports the points owner has staked in gems.
func (e *Engine) FrozenAmount(symbol, owner string) (int64, error) {
	if e.state == nil {
		return 0, errNilState
	}
	return e.state.GalleryInclusionGet(strings.ToUpper(strings.TrimSpace(symbol)), owner)
}
