package publication

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"mosaicchain/core/events"
	"mosaicchain/core/types"
	"mosaicchain/native/bancor"
	"mosaicchain/native/gallery"
	"mosaicchain/native/params"
)

const (
	PostOpus    = "post"
	CommentOpus = "comment"

	secondsPerDay = int64(24 * 60 * 60)
)

type engineState interface {
	PublicationVertexGet(symbol string, id uint64) (*Vertex, bool, error)
	PublicationVertexPut(symbol string, v *Vertex) error
	PublicationVertexDelete(symbol string, id uint64) error
}

// Gallery is the mosaic engine messages are staked into.
type Gallery interface {
	CreateMosaic(symbol string, p gallery.CreateMosaicParams) error
	AddToMosaic(symbol string, p gallery.AddParams) error
	ClaimGem(symbol string, mosaicID uint64, owner, creator string, eager bool) error
	ClaimGemsByCreator(symbol string, mosaicID uint64, creator string, eager, strict bool, damn *bool) (bool, error)
	Mosaic(symbol string, id uint64) (*gallery.Mosaic, error)
	FrozenAmount(symbol, owner string) (int64, error)
}

// Ledger reports point balances used to size automatic stakes.
type Ledger interface {
	BalanceOf(symbol, owner string) (int64, bool, error)
}

// ParamSource yields the parameters of a community.
type ParamSource interface {
	Community(symbol string) (*params.Community, error)
}

// Engine publishes posts and comments as mosaics and turns votes into
// stakes.
type Engine struct {
	state   engineState
	gallery Gallery
	ledger  Ledger
	params  ParamSource
	emitter events.Emitter
}

// NewEngine constructs a publication engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

func (e *Engine) SetState(state engineState) { e.state = state }
func (e *Engine) SetGallery(g Gallery) { e.gallery = g }
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }
func (e *Engine) SetParams(src ParamSource) { e.params = src }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(events.Wrap(evt))
}

func (e *Engine) ready() error {
	if e.state == nil {
		return errNilState
	}
	if e.gallery == nil || e.ledger == nil || e.params == nil {
		return errNoDeps
	}
	return nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func validWeight(weight *uint16) error {
	if weight != nil && (*weight == 0 || *weight > params.Denominator) {
		return fmt.Errorf("%w: %d", ErrInvalidWeight, *weight)
	}
	return nil
}

// GemsPerPeriod is how many automatic stakes fit into one mosaic lifetime.
func GemsPerPeriod(cfg *params.Community) int64 {
	n, err := bancor.SafeProp(cfg.GemsPerDay, cfg.ActivePeriod(), secondsPerDay)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// AmountToFreeze sizes a stake from the spendable balance. An explicit
// weight takes that share of the balance; otherwise the balance is spread
// over GemsPerPeriod stakes. The result never exceeds what is not frozen.
func AmountToFreeze(balance, frozen, gemsPerPeriod int64, weight *uint16) (int64, error) {
	available := balance - frozen
	if available <= 0 {
		return 0, nil
	}
	var weighted int64
	if weight != nil {
		w, err := bancor.SafePct(int64(*weight), balance)
		if err != nil {
			return 0, err
		}
		weighted = w
	} else {
		weighted = balance / gemsPerPeriod
	}
	if weighted == 0 && weight == nil {
		return available, nil
	}
	if weighted > available {
		return available, nil
	}
	return weighted, nil
}

func (e *Engine) stakeFor(symbol, account string, cfg *params.Community, weight *uint16) (int64, error) {
	balance, _, err := e.ledger.BalanceOf(symbol, account)
	if err != nil {
		return 0, err
	}
	frozen, err := e.gallery.FrozenAmount(symbol, account)
	if err != nil {
		return 0, err
	}
	return AmountToFreeze(balance, frozen, GemsPerPeriod(cfg), weight)
}

func (e *Engine) vertex(symbol string, id uint64) (*Vertex, error) {
	v, ok, err := e.state.PublicationVertexGet(symbol, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMessageNotFound, id)
	}
	return v, nil
}

// CreateParams describes a new post or, with Parent set, a reply.
type CreateParams struct {
	ID        MessageID
	Parent    *MessageID
	Header    string
	Body      string
	Weight    *uint16
	Providers []gallery.Provider
}

// CreateMessage publishes a message and opens its mosaic. Posts stake the
// author's automatic or weighted amount together with providers; replies
// stake only the opus minimum and take no providers. It returns the mosaic
// id.
func (e *Engine) CreateMessage(symbol string, p CreateParams) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	symbol = normalizeSymbol(symbol)
	p.ID.Author = strings.TrimSpace(p.ID.Author)
	if p.ID.Author == "" {
		return 0, ErrInvalidAccount
	}
	if err := ValidatePermlink(p.ID.Permlink); err != nil {
		return 0, err
	}
	p.Header = norm.NFC.String(p.Header)
	if len(p.Header) > MaxPermlinkLength {
		return 0, fmt.Errorf("%w: %d bytes", ErrHeaderTooLong, len(p.Header))
	}
	if p.Body == "" {
		return 0, ErrEmptyBody
	}
	if err := validWeight(p.Weight); err != nil {
		return 0, err
	}
	cfg, err := e.params.Community(symbol)
	if err != nil {
		return 0, err
	}

	id := p.ID.Tracery()
	if _, ok, err := e.state.PublicationVertexGet(symbol, id); err != nil {
		return 0, err
	} else if ok {
		return 0, fmt.Errorf("%w: %s", ErrMessageExists, p.ID)
	}

	v := &Vertex{ID: id, Author: p.ID.Author, Permlink: p.ID.Permlink}
	var parent *Vertex
	if p.Parent != nil {
		if p.Weight != nil {
			return 0, fmt.Errorf("%w: weight is redundant for comments", ErrInvalidWeight)
		}
		parent, err = e.vertex(symbol, p.Parent.Tracery())
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrParentNotFound, p.Parent)
		}
		if parent.Level >= MaxCommentDepth {
			return 0, fmt.Errorf("%w: level %d", ErrTooDeep, parent.Level+1)
		}
		v.ParentID = parent.ID
		v.Level = parent.Level + 1
	}

	opusName := PostOpus
	providers := p.Providers
	var amount int64
	if parent != nil {
		opusName = CommentOpus
		providers = nil
	} else if amount, err = e.stakeFor(symbol, v.Author, cfg, p.Weight); err != nil {
		return 0, err
	}
	opus, err := cfg.Opus(opusName)
	if err != nil {
		return 0, err
	}
	minSum := opus.MinMosaicInclusion
	if gems := int64(len(providers)+1) * opus.MinGemInclusion; gems > minSum {
		minSum = gems
	}
	var provided int64
	for _, pr := range providers {
		provided += pr.Amount
	}
	if need := minSum - provided; need > amount {
		amount = need
	}

	if err := e.gallery.CreateMosaic(symbol, gallery.CreateMosaicParams{
		ID:         id,
		Creator:    v.Author,
		Opus:       opusName,
		ContentKey: p.ID.String(),
		Quantity:   amount,
		Royalty:    cfg.AuthorPercent,
		Providers:  providers,
	}); err != nil {
		return 0, err
	}
	if parent != nil {
		parent.ChildCount++
		if err := e.state.PublicationVertexPut(symbol, parent); err != nil {
			return 0, err
		}
	}
	if err := e.state.PublicationVertexPut(symbol, v); err != nil {
		return 0, err
	}
	e.emit(messageEvent(symbol, v, p.Header, false))
	return id, nil
}

// Upvote stakes the voter's points for the message.
func (e *Engine) Upvote(symbol, voter string, id MessageID, weight *uint16, providers []gallery.Provider) error {
	return e.vote(symbol, voter, id, weight, providers, false)
}

// Downvote stakes the voter's points against the message.
func (e *Engine) Downvote(symbol, voter string, id MessageID, weight *uint16, providers []gallery.Provider) error {
	return e.vote(symbol, voter, id, weight, providers, true)
}

// vote settles any opposite vote of the voter on the message, then stakes
// into the mosaic with the requested polarity. A zero weight is a no-op.
func (e *Engine) vote(symbol, voter string, id MessageID, weight *uint16, providers []gallery.Provider, damn bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	symbol = normalizeSymbol(symbol)
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return ErrInvalidAccount
	}
	if voter == id.Author {
		return ErrSelfVote
	}
	if weight != nil && *weight == 0 {
		return nil
	}
	if err := validWeight(weight); err != nil {
		return err
	}
	cfg, err := e.params.Community(symbol)
	if err != nil {
		return err
	}
	mosaicID := id.Tracery()
	if _, err := e.vertex(symbol, mosaicID); err != nil {
		return err
	}
	if _, err := e.gallery.Mosaic(symbol, mosaicID); err != nil {
		return err
	}
	amount, err := e.stakeFor(symbol, voter, cfg, weight)
	if err != nil {
		return err
	}
	if amount == 0 && len(providers) == 0 {
		return fmt.Errorf("%w: %s", ErrNothingToStake, voter)
	}

	opposite := !damn
	if _, err := e.gallery.ClaimGemsByCreator(symbol, mosaicID, voter, true, false, &opposite); err != nil {
		return err
	}
	if err := e.gallery.AddToMosaic(symbol, gallery.AddParams{
		MosaicID:    mosaicID,
		Contributor: voter,
		Quantity:    amount,
		Damn:        damn,
		Providers:   providers,
	}); err != nil {
		return err
	}
	e.emit(voteEvent(symbol, mosaicID, voter, amount, damn, false))
	return nil
}

// Unvote settles every gem the voter created in the message's mosaic,
// forfeiting their reward when the claim date has not passed.
func (e *Engine) Unvote(symbol, voter string, id MessageID) error {
	if err := e.ready(); err != nil {
		return err
	}
	symbol = normalizeSymbol(symbol)
	voter = strings.TrimSpace(voter)
	if voter == id.Author {
		return ErrSelfVote
	}
	mosaicID := id.Tracery()
	if _, err := e.vertex(symbol, mosaicID); err != nil {
		return err
	}
	found, err := e.gallery.ClaimGemsByCreator(symbol, mosaicID, voter, true, false, nil)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s on %s", ErrVoteNotFound, voter, id)
	}
	e.emit(voteEvent(symbol, mosaicID, voter, 0, false, true))
	return nil
}

// Claim chops one gem of the message's mosaic.
func (e *Engine) Claim(symbol string, id MessageID, owner, creator string, eager bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.gallery.ClaimGem(normalizeSymbol(symbol), id.Tracery(), owner, creator, eager)
}

// Message returns the vertex of a message.
func (e *Engine) Message(symbol string, id MessageID) (*Vertex, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.vertex(normalizeSymbol(symbol), id.Tracery())
}

// OnMosaicDestroyed drops the vertex of a message whose mosaic is gone,
// unless replies still hang off it.
func (e *Engine) OnMosaicDestroyed(symbol string, m *gallery.Mosaic) error {
	if e.state == nil {
		return errNilState
	}
	symbol = normalizeSymbol(symbol)
	v, ok, err := e.state.PublicationVertexGet(symbol, m.ID)
	if err != nil || !ok {
		return err
	}
	if v.ChildCount > 0 {
		return nil
	}
	if err := e.state.PublicationVertexDelete(symbol, v.ID); err != nil {
		return err
	}
	if !v.IsRoot() {
		parent, ok, err := e.state.PublicationVertexGet(symbol, v.ParentID)
		if err != nil {
			return err
		}
		if ok && parent.ChildCount > 0 {
			parent.ChildCount--
			if err := e.state.PublicationVertexPut(symbol, parent); err != nil {
				return err
			}
		}
	}
	e.emit(messageEvent(symbol, v, "", true))
	return nil
}
