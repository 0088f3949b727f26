package emit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mosaicchain/core/events"
	"mosaicchain/native/gallery"
	"mosaicchain/native/params"
)

type mockState struct{ stats map[string]Stat }

func (m *mockState) EmitStatGet(symbol string) (*Stat, bool, error) {
	v, ok := m.stats[symbol]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (m *mockState) EmitStatPut(stat *Stat) error {
	m.stats[stat.Symbol] = *stat
	return nil
}

type fakeLedger struct {
	supply int64
	issued map[string]int64
}

func (l *fakeLedger) Supply(string) (int64, error) { return l.supply, nil }

func (l *fakeLedger) Issue(_ string, to string, amount int64) error {
	l.issued[to] += amount
	l.supply += amount
	return nil
}

type staticParams struct{ cfg *params.Community }

func (p staticParams) Community(string) (*params.Community, error) { return p.cfg, nil }

type fakeGallery struct{ ticks []int64 }

func (g *fakeGallery) Account() string { return "gallery" }

func (g *fakeGallery) DistributeReward(symbol string, amount int64) (*gallery.TickResult, error) {
	g.ticks = append(g.ticks, amount)
	return &gallery.TickResult{Symbol: symbol, Amount: amount}, nil
}

type fakeLeaders struct{ rewards []int64 }

func (l *fakeLeaders) Account() string { return "control" }

func (l *fakeLeaders) DistributeLeaders(_ string, amount int64) error {
	l.rewards = append(l.rewards, amount)
	return nil
}

const (
	sym = "GOLOS"
	t0  = int64(1_700_000_000)
)

type fixture struct {
	eng     *Engine
	ledger  *fakeLedger
	gallery *fakeGallery
	leaders *fakeLeaders
	rec     *events.Recorder
	now     int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ledger:  &fakeLedger{supply: 1_000_000, issued: make(map[string]int64)},
		gallery: &fakeGallery{},
		leaders: &fakeLeaders{},
		rec:     &events.Recorder{},
		now:     t0,
	}
	f.eng = NewEngine()
	f.eng.SetState(&mockState{stats: make(map[string]Stat)})
	f.eng.SetLedger(f.ledger)
	f.eng.SetParams(staticParams{cfg: params.Defaults(sym)})
	f.eng.SetGallery(f.gallery)
	f.eng.SetLeaders(f.leaders)
	f.eng.SetEmitter(f.rec)
	f.eng.SetNowFunc(func() int64 { return f.now })
	require.NoError(t, f.eng.Create(sym))
	return f
}

func TestAmount(t *testing.T) {
	cfg := params.Defaults(sym)
	tests := []struct {
		name       string
		elapsed    int64
		forLeaders bool
		want       int64
	}{
		{name: "hour to mosaics", elapsed: 3600, want: 18},
		{name: "day to leaders", elapsed: 86400, forLeaders: true, want: 49},
		{name: "year to mosaics", elapsed: SecondsPerYear, want: 164070},
		{name: "nothing elapsed", elapsed: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Amount(cfg, 1_000_000, tt.elapsed, tt.forLeaders)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCreateTwiceFails(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.eng.Create(sym), ErrStatExists)
}

func TestIssueRewardRespectsPeriod(t *testing.T) {
	f := newFixture(t)

	f.now = t0 + 3599
	_, err := f.eng.IssueReward(sym, false)
	require.ErrorIs(t, err, ErrUntimely)

	f.now = t0 + 3600
	iss, err := f.eng.IssueReward(sym, false)
	require.NoError(t, err)
	require.Equal(t, int64(18), iss.Amount)
	require.Equal(t, "gallery", iss.Receiver)
	require.NotNil(t, iss.Tick)
	require.Equal(t, []int64{18}, f.gallery.ticks)
	require.Equal(t, int64(18), f.ledger.issued["gallery"])
	require.Len(t, f.rec.Filter(EventTypeReward), 1)

	st, err := f.eng.Stat(sym)
	require.NoError(t, err)
	require.Equal(t, t0+3600, st.LastMosaicsReward)
	require.Equal(t, t0, st.LastLeadersReward)

	_, err = f.eng.IssueReward(sym, false)
	require.ErrorIs(t, err, ErrUntimely)
}

func TestLeaderEmission(t *testing.T) {
	f := newFixture(t)
	f.now = t0 + 86400
	iss, err := f.eng.IssueReward(sym, true)
	require.NoError(t, err)
	require.Equal(t, int64(49), iss.Amount)
	require.Equal(t, []int64{49}, f.leaders.rewards)
	require.Equal(t, int64(49), f.ledger.issued["control"])
	require.Empty(t, f.gallery.ticks)
}

func TestMaybeIssue(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.eng.MaybeIssue(sym))
	require.Empty(t, f.gallery.ticks)

	f.now = t0 + 7200
	require.NoError(t, f.eng.MaybeIssue(sym))
	require.Equal(t, []int64{36}, f.gallery.ticks)

	require.NoError(t, f.eng.MaybeIssueLeaders(sym))
	require.Empty(t, f.leaders.rewards)

	_, err := f.eng.Stat("NOPE")
	require.ErrorIs(t, err, ErrStatNotFound)
	require.ErrorIs(t, f.eng.MaybeIssue("NOPE"), ErrStatNotFound)
}

func TestZeroEmissionStillTicks(t *testing.T) {
	f := newFixture(t)
	f.ledger.supply = 10
	f.now = t0 + 3600
	iss, err := f.eng.IssueReward(sym, false)
	require.NoError(t, err)
	require.Zero(t, iss.Amount)
	require.Equal(t, []int64{0}, f.gallery.ticks)
	require.Zero(t, f.ledger.issued["gallery"])
}
