package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"mosaicchain/config"
	"mosaicchain/core/types"
	"mosaicchain/native/gallery"
	"mosaicchain/native/params"
	"mosaicchain/native/publication"
	"mosaicchain/storage"
)

const (
	t0  = int64(1_700_000_000)
	day = int64(24 * 60 * 60)
	sym = "GOLOS"
)

type memJournal struct {
	mu       sync.Mutex
	events   []*types.Event
	ticks    []*gallery.TickResult
	notified []*gallery.TickResult
}

func (j *memJournal) NotifyTick(t *gallery.TickResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.notified = append(j.notified, t)
}

func (j *memJournal) Append(_ context.Context, evts []*types.Event, ticks []*gallery.TickResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, evts...)
	j.ticks = append(j.ticks, ticks...)
	return nil
}

func (j *memJournal) count(eventType string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, evt := range j.events {
		if evt.Type == eventType {
			n++
		}
	}
	return n
}

type clock struct{ now int64 }

func (c *clock) Now() int64 { return c.now }

func testGenesis() *config.Genesis {
	return &config.Genesis{
		GenesisTime: t0,
		Reserve:     []config.Deposit{{Account: "alice", Amount: 5000}},
		Communities: []config.Community{{
			Symbol:         sym,
			Issuer:         "golos",
			MaxSupply:      1_000_000_000,
			InitialSupply:  1_000_000,
			InitialReserve: 1_000_000,
			CW:             5000,
			Balances: []config.Deposit{
				{Account: "alice", Amount: 10_000},
				{Account: "bob", Amount: 10_000},
			},
			Leaders: []config.Leader{{Account: "lead1"}, {Account: "lead2"}},
			Votes:   []config.Vote{{Voter: "alice", Leader: "lead1", Pct: 5000}},
		}},
	}
}

func newTestApp(t *testing.T) (*App, *clock, *memJournal) {
	t.Helper()
	clk := &clock{now: t0}
	j := &memJournal{}
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	a := New(db, Options{Journal: j, Notifier: j, Now: clk.Now})
	require.NoError(t, a.Bootstrap(context.Background(), testGenesis()))
	return a, clk, j
}

func balance(t *testing.T, a *App, owner string) int64 {
	t.Helper()
	var v int64
	require.NoError(t, a.View(func() error {
		var err error
		v, _, err = a.Points.BalanceOf(sym, owner)
		return err
	}))
	return v
}

func TestBootstrapOnce(t *testing.T) {
	a, _, j := newTestApp(t)
	ok, err := a.Bootstrapped()
	require.NoError(t, err)
	require.True(t, ok)
	require.ErrorIs(t, a.Bootstrap(context.Background(), testGenesis()), ErrAlreadyBootstrapped)

	symbols, err := a.Communities()
	require.NoError(t, err)
	require.Equal(t, []string{sym}, symbols)
	require.Equal(t, int64(10_000), balance(t, a, "alice"))
	require.Equal(t, int64(980_000), balance(t, a, "golos"))

	var leaders []string
	require.NoError(t, a.View(func() error {
		var err error
		leaders, err = a.Control.Leaders(sym)
		return err
	}))
	require.Equal(t, []string{"lead1"}, leaders)
	require.Positive(t, j.count("control.vote"))
}

func TestFailedOperationIsDiscarded(t *testing.T) {
	a, clk, j := newTestApp(t)
	clk.now = t0 + 60
	before := len(j.events)

	post := publication.MessageID{Author: "alice", Permlink: "hello"}
	err := a.Do(context.Background(), func() error {
		if _, err := a.Posts.CreateMessage(sym, publication.CreateParams{ID: post, Body: "hi"}); err != nil {
			return err
		}
		return a.Posts.Upvote(sym, "alice", post, nil, nil)
	})
	require.ErrorIs(t, err, publication.ErrSelfVote)
	require.Len(t, j.events, before)

	require.NoError(t, a.View(func() error {
		_, err := a.Posts.Message(sym, post)
		require.ErrorIs(t, err, publication.ErrMessageNotFound)
		_, err = a.Gallery.Mosaic(sym, post.Tracery())
		require.ErrorIs(t, err, gallery.ErrMosaicNotFound)
		return nil
	}))
}

func TestPublicationLifecycle(t *testing.T) {
	a, clk, j := newTestApp(t)
	ctx := context.Background()
	post := publication.MessageID{Author: "alice", Permlink: "hello"}

	clk.now = t0 + 60
	require.NoError(t, a.Do(ctx, func() error {
		_, err := a.Posts.CreateMessage(sym, publication.CreateParams{ID: post, Header: "Hello", Body: "first"})
		return err
	}))
	clk.now = t0 + 120
	require.NoError(t, a.Do(ctx, func() error {
		return a.Posts.Upvote(sym, "bob", post, nil, nil)
	}))

	var frozen int64
	require.NoError(t, a.View(func() error {
		var err error
		frozen, err = a.Gallery.FrozenAmount(sym, "bob")
		return err
	}))
	require.Equal(t, int64(10_000)/publication.GemsPerPeriod(mustParams(t, a)), frozen)

	// The first mosaic emission is due after one reward period.
	clk.now = t0 + 3601
	ticks, err := a.Tick(ctx, sym)
	require.NoError(t, err)
	require.Len(t, ticks, 1)
	require.Positive(t, ticks[0].Amount)
	require.Len(t, ticks[0].Allocations, 1)
	require.Equal(t, post.Tracery(), ticks[0].Allocations[0].MosaicID)
	require.Len(t, j.ticks, 1)
	require.Len(t, j.notified, 1)

	// Nothing is due right after.
	ticks, err = a.Tick(ctx, sym)
	require.NoError(t, err)
	require.Empty(t, ticks)

	// The leader emission accrues to the only elected leader.
	clk.now = t0 + day + 1
	_, err = a.Tick(ctx, sym)
	require.NoError(t, err)
	require.NoError(t, a.View(func() error {
		l, err := a.Control.Leader(sym, "lead1")
		require.NoError(t, err)
		require.Positive(t, l.Unclaimed)
		return nil
	}))

	// After the claim date both gems are chopped and the message goes away
	// with its mosaic.
	var claimAt int64
	require.NoError(t, a.View(func() error {
		m, err := a.Gallery.Mosaic(sym, post.Tracery())
		claimAt = m.ClaimDate(mustParams(t, a))
		return err
	}))
	clk.now = claimAt + 1
	aliceBefore := balance(t, a, "alice")
	require.NoError(t, a.Do(ctx, func() error {
		if err := a.Posts.Claim(sym, post, "bob", "bob", false); err != nil {
			return err
		}
		return a.Posts.Claim(sym, post, "alice", "alice", false)
	}))
	require.Greater(t, balance(t, a, "alice"), aliceBefore)
	require.NoError(t, a.View(func() error {
		_, err := a.Posts.Message(sym, post)
		require.ErrorIs(t, err, publication.ErrMessageNotFound)
		return nil
	}))
	require.Positive(t, j.count(gallery.EventTypeMosaicChop))
}

func mustParams(t *testing.T, a *App) *params.Community {
	t.Helper()
	cfg, err := a.Params.Community(sym)
	require.NoError(t, err)
	return cfg
}
