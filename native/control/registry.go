package control

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"mosaicchain/core/events"
	"mosaicchain/core/types"
	"mosaicchain/native/bancor"
	"mosaicchain/native/params"
)

const (
	// MaxURLSize bounds the url a leader may publish.
	MaxURLSize = 256
	// DefaultAccount holds leader emissions until they are claimed.
	DefaultAccount = "control"

	pctStep = params.Denominator / 10
)

type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

// Ledger is the point ledger voting power and leader payouts come from.
type Ledger interface {
	BalanceOf(symbol, owner string) (int64, bool, error)
	Transfer(symbol, from, to string, amount int64) error
}

// ParamSource yields the parameters of a community.
type ParamSource interface {
	Community(symbol string) (*params.Community, error)
}

// RewardIssuer triggers the leader emission when it is due.
type RewardIssuer interface {
	MaybeIssueLeaders(symbol string) error
}

// Registry elects community leaders by weighted votes and shares the leader
// emission among them.
type Registry struct {
	state   registryState
	ledger  Ledger
	params  ParamSource
	rewards RewardIssuer
	emitter events.Emitter
	account string
}

// NewRegistry constructs a registry backed by the provided state accessor.
func NewRegistry(state registryState) *Registry {
	return &Registry{state: state, emitter: events.NoopEmitter{}, account: DefaultAccount}
}

func (r *Registry) SetLedger(ledger Ledger) { r.ledger = ledger }
func (r *Registry) SetParams(src ParamSource) { r.params = src }
func (r *Registry) SetRewardIssuer(ri RewardIssuer) { r.rewards = ri }

// SetEmitter configures the event emitter used by the registry.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetAccount overrides the account holding leader emissions.
func (r *Registry) SetAccount(account string) {
	if strings.TrimSpace(account) != "" {
		r.account = strings.TrimSpace(account)
	}
}

// Account returns the account holding leader emissions.
func (r *Registry) Account() string { return r.account }

func (r *Registry) emit(evt *types.Event) {
	if r == nil || evt == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(events.Wrap(evt))
}

// started loads the control ledger and the community parameters.
func (r *Registry) started(symbol string) (*Stat, *params.Community, error) {
	if r == nil || r.state == nil || r.params == nil {
		return nil, nil, errNotInitialised
	}
	var st Stat
	ok, err := r.state.KVGet(statKey(symbol), &st)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotStarted, symbol)
	}
	cfg, err := r.params.Community(symbol)
	if err != nil {
		return nil, nil, err
	}
	return &st, cfg, nil
}

func (r *Registry) leader(symbol, account string) (*Leader, error) {
	var l Leader
	ok, err := r.state.KVGet(leaderKey(symbol, account), &l)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLeaderNotFound, account)
	}
	return &l, nil
}

func (r *Registry) putLeader(symbol string, l *Leader) error {
	if err := r.state.KVPut(leaderKey(symbol, l.Account), l); err != nil {
		return err
	}
	r.emit(leaderEvent(symbol, l))
	return nil
}

func (r *Registry) index(symbol string) (*leaderIndex, error) {
	var idx leaderIndex
	if _, err := r.state.KVGet(indexKey(symbol), &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

func (r *Registry) maybeIssue(symbol string) error {
	if r.rewards == nil {
		return nil
	}
	return r.rewards.MaybeIssueLeaders(symbol)
}

// Init starts leader elections in a community.
func (r *Registry) Init(symbol string) error {
	if r == nil || r.state == nil {
		return errNotInitialised
	}
	symbol = normalizeSymbol(symbol)
	ok, err := r.state.KVGet(statKey(symbol), nil)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: %s", ErrAlreadyStarted, symbol)
	}
	return r.state.KVPut(statKey(symbol), &Stat{Symbol: symbol})
}

// RegLeader registers a candidate, or re-activates and updates the url of
// an existing one.
func (r *Registry) RegLeader(symbol, account, url string) error {
	symbol = normalizeSymbol(symbol)
	account = strings.TrimSpace(account)
	if account == "" {
		return ErrInvalidAccount
	}
	if len(url) > MaxURLSize {
		return fmt.Errorf("%w: %d bytes", ErrURLTooLong, len(url))
	}
	if _, _, err := r.started(symbol); err != nil {
		return err
	}
	l, err := r.leader(symbol, account)
	if err != nil {
		if !errors.Is(err, ErrLeaderNotFound) {
			return err
		}
		idx, err := r.index(symbol)
		if err != nil {
			return err
		}
		idx.Accounts = append(idx.Accounts, account)
		sort.Strings(idx.Accounts)
		if err := r.state.KVPut(indexKey(symbol), idx); err != nil {
			return err
		}
		l = &Leader{Account: account}
	}
	l.URL = url
	l.Active = true
	return r.putLeader(symbol, l)
}

// UnregLeader removes a candidate nobody votes for.
func (r *Registry) UnregLeader(symbol, account string) error {
	symbol = normalizeSymbol(symbol)
	if _, _, err := r.started(symbol); err != nil {
		return err
	}
	l, err := r.leader(symbol, strings.TrimSpace(account))
	if err != nil {
		return err
	}
	if l.Votes != 0 {
		return fmt.Errorf("%w: %d", ErrHasVotes, l.Votes)
	}
	if l.Unclaimed != 0 {
		return fmt.Errorf("%w: %d", ErrHasUnclaimed, l.Unclaimed)
	}
	idx, err := r.index(symbol)
	if err != nil {
		return err
	}
	kept := idx.Accounts[:0]
	for _, a := range idx.Accounts {
		if a != l.Account {
			kept = append(kept, a)
		}
	}
	idx.Accounts = kept
	if err := r.state.KVPut(indexKey(symbol), idx); err != nil {
		return err
	}
	return r.state.KVDelete(leaderKey(symbol, l.Account))
}

// SetActive starts or stops a leader. Inactive leaders keep their votes but
// are neither elected nor rewarded.
func (r *Registry) SetActive(symbol, account string, active bool) error {
	symbol = normalizeSymbol(symbol)
	if _, _, err := r.started(symbol); err != nil {
		return err
	}
	l, err := r.leader(symbol, strings.TrimSpace(account))
	if err != nil {
		return err
	}
	if l.Active == active {
		return ErrNoChanges
	}
	l.Active = active
	return r.putLeader(symbol, l)
}

func (r *Registry) votes(symbol, voter string) (*voterRecord, error) {
	var rec voterRecord
	if _, err := r.state.KVGet(voterKey(symbol, voter), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Registry) putVotes(symbol, voter string, rec *voterRecord) error {
	if len(rec.Votes) == 0 {
		return r.state.KVDelete(voterKey(symbol, voter))
	}
	return r.state.KVPut(voterKey(symbol, voter), rec)
}

// Vote backs leader with pct of the voter's balance. Without pct the rest
// of the voter's power is used.
func (r *Registry) Vote(symbol, voter, leader string, pct *uint16) error {
	symbol = normalizeSymbol(symbol)
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return ErrInvalidAccount
	}
	if pct != nil && (*pct == 0 || *pct > params.Denominator || *pct%pctStep != 0) {
		return fmt.Errorf("%w: %d", ErrInvalidPct, *pct)
	}
	_, cfg, err := r.started(symbol)
	if err != nil {
		return err
	}
	if r.ledger == nil {
		return errNotInitialised
	}
	l, err := r.leader(symbol, strings.TrimSpace(leader))
	if err != nil {
		return err
	}
	if !l.Active {
		return fmt.Errorf("%w: %s", ErrLeaderInactive, l.Account)
	}

	rec, err := r.votes(symbol, voter)
	if err != nil {
		return err
	}
	var used uint16
	for _, v := range rec.Votes {
		if v.Leader == l.Account {
			return fmt.Errorf("%w: %s", ErrAlreadyVoted, l.Account)
		}
		used += v.Pct
	}
	if len(rec.Votes) >= cfg.MaxVotes {
		return fmt.Errorf("%w: %d", ErrTooManyVotes, cfg.MaxVotes)
	}
	if used >= params.Denominator {
		return ErrPowerExhausted
	}
	actual := params.Denominator - used
	if pct != nil {
		if used+*pct > params.Denominator {
			return fmt.Errorf("%w: %d%% of 100%% left", ErrPowerExhausted, (params.Denominator-used)/100)
		}
		actual = *pct
	}

	balance, _, err := r.ledger.BalanceOf(symbol, voter)
	if err != nil {
		return err
	}
	power, err := bancor.SafePct(int64(actual), balance)
	if err != nil {
		return err
	}
	if power < 0 {
		power = 0
	}
	if l.Weight > math.MaxUint64-uint64(power) {
		return bancor.ErrOverflow
	}

	v := Vote{Leader: l.Account, Pct: actual, Power: uint64(power)}
	rec.Votes = append(rec.Votes, v)
	if err := r.putVotes(symbol, voter, rec); err != nil {
		return err
	}
	l.Votes++
	l.Weight += v.Power
	if err := r.putLeader(symbol, l); err != nil {
		return err
	}
	r.emit(voteEvent(symbol, voter, v, false))
	return r.maybeIssue(symbol)
}

// Unvote withdraws the voter's backing of leader.
func (r *Registry) Unvote(symbol, voter, leader string) error {
	symbol = normalizeSymbol(symbol)
	voter = strings.TrimSpace(voter)
	if _, _, err := r.started(symbol); err != nil {
		return err
	}
	l, err := r.leader(symbol, strings.TrimSpace(leader))
	if err != nil {
		return err
	}
	rec, err := r.votes(symbol, voter)
	if err != nil {
		return err
	}
	pos := -1
	for i, v := range rec.Votes {
		if v.Leader == l.Account {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("%w: %s -> %s", ErrVoteNotFound, voter, l.Account)
	}
	v := rec.Votes[pos]
	rec.Votes = append(rec.Votes[:pos], rec.Votes[pos+1:]...)
	if err := r.putVotes(symbol, voter, rec); err != nil {
		return err
	}
	l.Votes--
	if v.Power > l.Weight {
		l.Weight = 0
	} else {
		l.Weight -= v.Power
	}
	if err := r.putLeader(symbol, l); err != nil {
		return err
	}
	r.emit(voteEvent(symbol, voter, v, true))
	return r.maybeIssue(symbol)
}

// Votes lists the leaders a voter backs.
func (r *Registry) Votes(symbol, voter string) ([]Vote, error) {
	if r == nil || r.state == nil {
		return nil, errNotInitialised
	}
	rec, err := r.votes(normalizeSymbol(symbol), strings.TrimSpace(voter))
	if err != nil {
		return nil, err
	}
	return rec.Votes, nil
}

// Candidates lists every registered leader in account order.
func (r *Registry) Candidates(symbol string) ([]*Leader, error) {
	if r == nil || r.state == nil {
		return nil, errNotInitialised
	}
	symbol = normalizeSymbol(symbol)
	idx, err := r.index(symbol)
	if err != nil {
		return nil, err
	}
	out := make([]*Leader, 0, len(idx.Accounts))
	for _, a := range idx.Accounts {
		l, err := r.leader(symbol, a)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Leader returns one registered leader.
func (r *Registry) Leader(symbol, account string) (*Leader, error) {
	if r == nil || r.state == nil {
		return nil, errNotInitialised
	}
	return r.leader(normalizeSymbol(symbol), strings.TrimSpace(account))
}

// top returns the elected leaders: active candidates with positive weight,
// heaviest first, cut to LeadersNum.
func (r *Registry) top(symbol string, cfg *params.Community) ([]*Leader, error) {
	all, err := r.Candidates(symbol)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, l := range all {
		if l.Active && l.Weight > 0 {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if len(out) > cfg.LeadersNum {
		out = out[:cfg.LeadersNum]
	}
	return out, nil
}

// Leaders returns the accounts of the elected leaders.
func (r *Registry) Leaders(symbol string) ([]string, error) {
	symbol = normalizeSymbol(symbol)
	_, cfg, err := r.started(symbol)
	if err != nil {
		return nil, err
	}
	top, err := r.top(symbol, cfg)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(top))
	for i, l := range top {
		out[i] = l.Account
	}
	return out, nil
}

// DistributeLeaders credits amount, plus whatever was retained before, to
// the elected leaders in proportion to their weight. When fewer than
// LeadersNum leaders are elected only their fraction of the pool is paid
// out and the rest is retained.
func (r *Registry) DistributeLeaders(symbol string, amount int64) error {
	symbol = normalizeSymbol(symbol)
	st, cfg, err := r.started(symbol)
	if err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("control: negative reward %d", amount)
	}
	top, err := r.top(symbol, cfg)
	if err != nil {
		return err
	}
	if st.Retained > math.MaxInt64-uint64(amount) {
		return bancor.ErrOverflow
	}
	left := amount + int64(st.Retained)
	var weightSum uint64
	for _, l := range top {
		weightSum += l.Weight
	}
	if weightSum > 0 && weightSum <= math.MaxInt64 {
		pool, err := bancor.SafeProp(left, int64(len(top)), int64(cfg.LeadersNum))
		if err != nil {
			return err
		}
		for _, l := range top {
			share, err := bancor.SafeProp(pool, int64(l.Weight), int64(weightSum))
			if err != nil {
				return err
			}
			l.Unclaimed += uint64(share)
			if err := r.putLeader(symbol, l); err != nil {
				return err
			}
			left -= share
		}
	}
	st.Retained = uint64(left)
	return r.state.KVPut(statKey(symbol), st)
}

// Retained reports the leader emission not yet credited to any leader.
func (r *Registry) Retained(symbol string) (int64, error) {
	st, _, err := r.started(normalizeSymbol(symbol))
	if err != nil {
		return 0, err
	}
	return int64(st.Retained), nil
}

// Claim transfers a leader's unclaimed reward.
func (r *Registry) Claim(symbol, account string) (int64, error) {
	symbol = normalizeSymbol(symbol)
	if _, _, err := r.started(symbol); err != nil {
		return 0, err
	}
	if r.ledger == nil {
		return 0, errNotInitialised
	}
	l, err := r.leader(symbol, strings.TrimSpace(account))
	if err != nil {
		return 0, err
	}
	if l.Unclaimed == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNothingToClaim, l.Account)
	}
	amount := int64(l.Unclaimed)
	if err := r.ledger.Transfer(symbol, r.account, l.Account, amount); err != nil {
		return 0, err
	}
	l.Unclaimed = 0
	if err := r.putLeader(symbol, l); err != nil {
		return 0, err
	}
	r.emit(claimEvent(symbol, l.Account, amount))
	return amount, nil
}
