package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mosaicchain/core/events"
	"mosaicchain/core/state"
	"mosaicchain/core/types"
	"mosaicchain/native/control"
	"mosaicchain/native/emit"
	"mosaicchain/native/gallery"
	"mosaicchain/native/params"
	"mosaicchain/native/point"
	"mosaicchain/native/publication"
	"mosaicchain/observability"
	"mosaicchain/storage"
)

// Journal receives the events and reward ticks of every committed
// operation.
type Journal interface {
	Append(ctx context.Context, evts []*types.Event, ticks []*gallery.TickResult) error
}

// TickNotifier is told about every committed reward tick.
type TickNotifier interface {
	NotifyTick(t *gallery.TickResult)
}

// Options configures the wiring of an App.
type Options struct {
	GalleryAccount string
	ControlAccount string
	Journal        Journal
	Notifier       TickNotifier
	Logger         *slog.Logger
	// Now overrides the wall clock, in unix seconds.
	Now func() int64
}

// App owns the engines of every community and executes operations one at a
// time: each runs against the staged state overlay and is committed only if
// it succeeds.
type App struct {
	mu sync.Mutex

	state *state.Manager

	Points   *point.Engine
	Params   *params.Store
	Gallery  *gallery.Engine
	Emission *emit.Engine
	Control  *control.Registry
	Posts    *publication.Engine

	recorder *events.Recorder
	ticks    []*gallery.TickResult
	journal  Journal
	notifier TickNotifier
	logger   *slog.Logger
	now      func() int64
	pinnedAt int64
}

// New wires the engines over db.
func New(db storage.Database, opts Options) *App {
	a := &App{
		state:    state.NewManager(db),
		recorder: &events.Recorder{},
		journal:  opts.Journal,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.now == nil {
		a.now = func() int64 { return time.Now().Unix() }
	}
	emitter := events.Fanout{a.recorder, observability.CountingEmitter{}}

	a.Params = params.NewStore(a.state)
	a.Points = point.NewEngine()
	a.Gallery = gallery.NewEngine()
	a.Emission = emit.NewEngine()
	a.Control = control.NewRegistry(a.state)
	a.Posts = publication.NewEngine()

	a.Points.SetState(a.state)
	a.Points.SetEmitter(emitter)
	a.Points.SetFrozenSource(a.Gallery)

	if opts.GalleryAccount != "" {
		a.Gallery.SetAccount(opts.GalleryAccount)
	}
	a.Gallery.SetState(a.state)
	a.Gallery.SetLedger(a.Points)
	a.Gallery.SetParams(a.Params)
	a.Gallery.SetLeaders(a.Control)
	a.Gallery.SetRewardIssuer(a.Emission)
	a.Gallery.AddHook(a.Posts)
	a.Gallery.SetEmitter(emitter)
	a.Gallery.SetNowFunc(a.clock)

	if opts.ControlAccount != "" {
		a.Control.SetAccount(opts.ControlAccount)
	}
	a.Control.SetLedger(a.Points)
	a.Control.SetParams(a.Params)
	a.Control.SetRewardIssuer(a.Emission)
	a.Control.SetEmitter(emitter)

	a.Emission.SetState(a.state)
	a.Emission.SetLedger(a.Points)
	a.Emission.SetParams(a.Params)
	a.Emission.SetGallery(tickCapture{app: a})
	a.Emission.SetLeaders(a.Control)
	a.Emission.SetEmitter(emitter)
	a.Emission.SetNowFunc(a.clock)

	a.Posts.SetState(a.state)
	a.Posts.SetGallery(a.Gallery)
	a.Posts.SetLedger(a.Points)
	a.Posts.SetParams(a.Params)
	a.Posts.SetEmitter(emitter)

	a.Points.ExemptFromTransferFee(a.Gallery.Account(), a.Control.Account())
	return a
}

func (a *App) clock() int64 {
	if a.pinnedAt != 0 {
		return a.pinnedAt
	}
	return a.now()
}

// tickCapture records every reward tick of the running operation so it can
// be journaled once the operation commits.
type tickCapture struct {
	app *App
}

func (t tickCapture) Account() string { return t.app.Gallery.Account() }

func (t tickCapture) DistributeReward(symbol string, amount int64) (*gallery.TickResult, error) {
	res, err := t.app.Gallery.DistributeReward(symbol, amount)
	if err == nil && res != nil {
		t.app.ticks = append(t.app.ticks, res)
	}
	return res, err
}

// Do runs fn as one operation. State written by fn is committed when fn
// returns nil and discarded otherwise, together with its events.
func (a *App) Do(ctx context.Context, fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.run(ctx, fn)
	return err
}

func (a *App) run(ctx context.Context, fn func() error) ([]*gallery.TickResult, error) {
	a.recorder.Reset()
	a.ticks = nil
	if err := fn(); err != nil {
		a.state.Discard()
		a.recorder.Reset()
		a.ticks = nil
		return nil, err
	}
	if err := a.state.Commit(); err != nil {
		a.state.Discard()
		a.recorder.Reset()
		a.ticks = nil
		return nil, err
	}
	ticks := a.ticks
	a.ticks = nil
	evts := payloads(a.recorder.Drain())
	if a.journal != nil {
		if err := a.journal.Append(ctx, evts, ticks); err != nil {
			a.logger.Error("journal append failed", "events", len(evts), "ticks", len(ticks), "error", err)
		}
	}
	if a.notifier != nil {
		for _, t := range ticks {
			a.notifier.NotifyTick(t)
		}
	}
	return ticks, nil
}

// View runs a read-only fn under the operation lock.
func (a *App) View(fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := fn()
	a.state.Discard()
	a.recorder.Reset()
	return err
}

func payloads(in []events.Event) []*types.Event {
	out := make([]*types.Event, 0, len(in))
	for _, evt := range in {
		if p, ok := evt.(events.Payload); ok {
			out = append(out, p.Event())
		}
	}
	return out
}
