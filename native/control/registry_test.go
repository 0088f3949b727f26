package control

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"mosaicchain/core/events"
	"mosaicchain/core/state"
	"mosaicchain/native/params"
	"mosaicchain/storage"
)

const sym = "GOLOS"

type fakeLedger struct{ balances map[string]int64 }

func (l *fakeLedger) BalanceOf(_ string, owner string) (int64, bool, error) {
	v, ok := l.balances[owner]
	return v, ok, nil
}

func (l *fakeLedger) Transfer(_ string, from, to string, amount int64) error {
	if l.balances[from] < amount {
		return fmt.Errorf("overdrawn")
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

type staticParams struct{ cfg *params.Community }

func (p staticParams) Community(string) (*params.Community, error) { return p.cfg, nil }

type countingIssuer struct{ calls int }

func (c *countingIssuer) MaybeIssueLeaders(string) error {
	c.calls++
	return nil
}

type fixture struct {
	reg    *Registry
	ledger *fakeLedger
	cfg    *params.Community
	issuer *countingIssuer
	rec    *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ledger: &fakeLedger{balances: map[string]int64{
			"alice": 1000, "bob": 2000, "carol": 3000, DefaultAccount: 5000,
		}},
		cfg:    params.Defaults(sym),
		issuer: &countingIssuer{},
		rec:    &events.Recorder{},
	}
	f.reg = NewRegistry(state.NewManager(storage.NewMemDB()))
	f.reg.SetLedger(f.ledger)
	f.reg.SetParams(staticParams{cfg: f.cfg})
	f.reg.SetRewardIssuer(f.issuer)
	f.reg.SetEmitter(f.rec)
	require.NoError(t, f.reg.Init(sym))
	for _, l := range []string{"lead1", "lead2", "lead3"} {
		require.NoError(t, f.reg.RegLeader(sym, l, "https://"+l))
	}
	return f
}

func pct(v uint16) *uint16 { return &v }

func TestInitAndRegistration(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.reg.Init(sym), ErrAlreadyStarted)
	require.ErrorIs(t, f.reg.RegLeader("NOPE", "lead1", ""), ErrNotStarted)
	require.ErrorIs(t, f.reg.RegLeader(sym, " ", ""), ErrInvalidAccount)
	long := make([]byte, MaxURLSize+1)
	require.ErrorIs(t, f.reg.RegLeader(sym, "lead4", string(long)), ErrURLTooLong)

	all, err := f.reg.Candidates(sym)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Nobody has votes yet, so nobody is elected.
	leaders, err := f.reg.Leaders(sym)
	require.NoError(t, err)
	require.Empty(t, leaders)
}

func TestVoteSplitsPower(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.reg.Vote(sym, "alice", "lead1", pct(1500)), ErrInvalidPct)
	require.ErrorIs(t, f.reg.Vote(sym, "alice", "lead1", pct(0)), ErrInvalidPct)
	require.ErrorIs(t, f.reg.Vote(sym, "alice", "nobody", nil), ErrLeaderNotFound)

	require.NoError(t, f.reg.Vote(sym, "alice", "lead1", pct(5000)))
	require.ErrorIs(t, f.reg.Vote(sym, "alice", "lead1", pct(1000)), ErrAlreadyVoted)
	require.ErrorIs(t, f.reg.Vote(sym, "alice", "lead2", pct(6000)), ErrPowerExhausted)
	require.NoError(t, f.reg.Vote(sym, "alice", "lead2", nil))
	require.ErrorIs(t, f.reg.Vote(sym, "alice", "lead3", nil), ErrPowerExhausted)
	require.Equal(t, 2, f.issuer.calls)

	l1, err := f.reg.Leader(sym, "lead1")
	require.NoError(t, err)
	require.Equal(t, uint64(500), l1.Weight)
	require.Equal(t, uint64(1), l1.Votes)
	l2, err := f.reg.Leader(sym, "lead2")
	require.NoError(t, err)
	require.Equal(t, uint64(500), l2.Weight)

	votes, err := f.reg.Votes(sym, "alice")
	require.NoError(t, err)
	require.Len(t, votes, 2)
	require.Equal(t, uint16(5000), votes[1].Pct)
}

func TestMaxVotes(t *testing.T) {
	f := newFixture(t)
	f.cfg.MaxVotes = 1
	require.NoError(t, f.reg.Vote(sym, "bob", "lead1", pct(1000)))
	require.ErrorIs(t, f.reg.Vote(sym, "bob", "lead2", pct(1000)), ErrTooManyVotes)
}

func TestElectionOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Vote(sym, "alice", "lead2", pct(5000)))
	require.NoError(t, f.reg.Vote(sym, "alice", "lead1", pct(5000)))
	require.NoError(t, f.reg.Vote(sym, "carol", "lead3", nil))

	leaders, err := f.reg.Leaders(sym)
	require.NoError(t, err)
	require.Equal(t, []string{"lead3", "lead1", "lead2"}, leaders)

	f.cfg.LeadersNum = 2
	leaders, err = f.reg.Leaders(sym)
	require.NoError(t, err)
	require.Equal(t, []string{"lead3", "lead1"}, leaders)

	require.NoError(t, f.reg.SetActive(sym, "lead3", false))
	require.ErrorIs(t, f.reg.SetActive(sym, "lead3", false), ErrNoChanges)
	leaders, err = f.reg.Leaders(sym)
	require.NoError(t, err)
	require.Equal(t, []string{"lead1", "lead2"}, leaders)
	require.ErrorIs(t, f.reg.Vote(sym, "bob", "lead3", nil), ErrLeaderInactive)
}

func TestDistributeAndClaim(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Vote(sym, "alice", "lead1", pct(5000)))
	require.NoError(t, f.reg.Vote(sym, "alice", "lead2", nil))
	require.NoError(t, f.reg.Vote(sym, "carol", "lead3", nil))

	require.NoError(t, f.reg.DistributeLeaders(sym, 1000))
	l3, err := f.reg.Leader(sym, "lead3")
	require.NoError(t, err)
	require.Equal(t, uint64(450), l3.Unclaimed)
	l1, err := f.reg.Leader(sym, "lead1")
	require.NoError(t, err)
	require.Equal(t, uint64(75), l1.Unclaimed)

	retained, err := f.reg.Retained(sym)
	require.NoError(t, err)
	require.Equal(t, int64(400), retained)

	amount, err := f.reg.Claim(sym, "lead3")
	require.NoError(t, err)
	require.Equal(t, int64(450), amount)
	require.Equal(t, int64(450), f.ledger.balances["lead3"])
	require.Len(t, f.rec.Filter(EventTypeClaim), 1)

	_, err = f.reg.Claim(sym, "lead3")
	require.ErrorIs(t, err, ErrNothingToClaim)
}

func TestDistributeWithoutLeadersRetains(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.DistributeLeaders(sym, 300))
	require.NoError(t, f.reg.DistributeLeaders(sym, 200))
	retained, err := f.reg.Retained(sym)
	require.NoError(t, err)
	require.Equal(t, int64(500), retained)
}

func TestUnvoteAndUnregister(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Vote(sym, "bob", "lead1", nil))
	require.ErrorIs(t, f.reg.UnregLeader(sym, "lead1"), ErrHasVotes)
	require.ErrorIs(t, f.reg.Unvote(sym, "bob", "lead2"), ErrVoteNotFound)

	require.NoError(t, f.reg.Unvote(sym, "bob", "lead1"))
	l1, err := f.reg.Leader(sym, "lead1")
	require.NoError(t, err)
	require.Zero(t, l1.Weight)
	require.Zero(t, l1.Votes)

	votes, err := f.reg.Votes(sym, "bob")
	require.NoError(t, err)
	require.Empty(t, votes)

	require.NoError(t, f.reg.UnregLeader(sym, "lead1"))
	_, err = f.reg.Leader(sym, "lead1")
	require.ErrorIs(t, err, ErrLeaderNotFound)
	all, err := f.reg.Candidates(sym)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
