package gallery

import (
	"fmt"
	"sort"

	"mosaicchain/native/bancor"
	"mosaicchain/native/params"
)

// Candidate is a mosaic with its merged ranking grade.
type Candidate struct {
	MosaicID uint64
	Grade    int64
}

// Allocation is one mosaic's slice of a reward tick.
type Allocation struct {
	MosaicID uint64
	Place    int
	Grade    int64
	Amount   int64
}

// TickResult summarises one reward tick.
type TickResult struct {
	Symbol      string
	At          int64
	Amount      int64
	Allocations []Allocation
	Remainder   int64
	Unclaimed   int64
}

// Rank grades mosaics for a reward tick. The community pass takes up to
// len(CommGrades) collecting, unbanned mosaics with positive community
// rating and grades them by position plus their share of
// CommPointsGradeSum. The leader pass adds LeadGrades by position to the
// mosaics with the highest positive lead rating at or above MinLeadRating.
// The merged candidates are sorted by grade, ties kept in id order, and cut
// to RewardedMosaicNum.
func Rank(mosaics []*Mosaic, cfg *params.Community, now int64) ([]Candidate, error) {
	grades := make(map[uint64]int64)

	comm := make([]*Mosaic, 0, len(mosaics))
	for _, m := range mosaics {
		if m.Collecting(now) && m.CommRating > 0 {
			comm = append(comm, m)
		}
	}
	sort.SliceStable(comm, func(i, j int) bool {
		if comm[i].CommRating != comm[j].CommRating {
			return comm[i].CommRating > comm[j].CommRating
		}
		return comm[i].LeadRating > comm[j].LeadRating
	})
	if len(comm) > len(cfg.CommGrades) {
		comm = comm[:len(cfg.CommGrades)]
	}
	var ratingSum int64
	for _, m := range comm {
		ratingSum += m.CommRating
	}
	for pos, m := range comm {
		share, err := bancor.SafeProp(cfg.CommPointsGradeSum, m.CommRating, ratingSum)
		if err != nil {
			return nil, err
		}
		grades[m.ID] = cfg.CommGrades[pos] + share
	}

	// Banned mosaics stay in the leader pass so their damned gems can be
	// rewarded.
	lead := make([]*Mosaic, 0, len(mosaics))
	for _, m := range mosaics {
		if m.LeadRating > 0 && m.LeadRating >= cfg.MinLeadRating {
			lead = append(lead, m)
		}
	}
	sort.SliceStable(lead, func(i, j int) bool {
		if lead[i].LeadRating != lead[j].LeadRating {
			return lead[i].LeadRating > lead[j].LeadRating
		}
		return lead[i].CommRating > lead[j].CommRating
	})
	if len(lead) > len(cfg.LeadGrades) {
		lead = lead[:len(cfg.LeadGrades)]
	}
	for pos, m := range lead {
		grades[m.ID] += cfg.LeadGrades[pos]
	}

	out := make([]Candidate, 0, len(grades))
	for id, g := range grades {
		out = append(out, Candidate{MosaicID: id, Grade: g})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MosaicID < out[j].MosaicID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Grade > out[j].Grade })
	if len(out) > cfg.RewardedMosaicNum {
		out = out[:cfg.RewardedMosaicNum]
	}
	return out, nil
}

// Split divides total among ranked candidates in proportion to grade. The
// rounding remainder goes to the first (highest graded) candidate. With no
// candidates or a zero grade sum nothing is allocated and the second return
// value is zero.
func Split(total int64, ranked []Candidate) ([]Allocation, int64, error) {
	var gradeSum int64
	for _, c := range ranked {
		gradeSum += c.Grade
	}
	if len(ranked) == 0 || gradeSum <= 0 || total <= 0 {
		return nil, 0, nil
	}
	out := make([]Allocation, len(ranked))
	var given int64
	for i, c := range ranked {
		amount, err := bancor.SafeProp(total, c.Grade, gradeSum)
		if err != nil {
			return nil, 0, err
		}
		out[i] = Allocation{MosaicID: c.MosaicID, Place: i, Grade: c.Grade, Amount: amount}
		given += amount
	}
	remainder := total - given
	out[0].Amount += remainder
	return out, remainder, nil
}

// DistributeReward runs a reward tick: amount points, already held by the
// gallery account, are added to the reward of the top ranked mosaics. With
// no eligible mosaic the amount is recorded as unclaimed.
func (e *Engine) DistributeReward(symbol string, amount int64) (*TickResult, error) {
	o, err := e.begin(symbol)
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: tick amount %d", ErrInvalidAmount, amount)
	}
	st, err := e.stat(o)
	if err != nil {
		return nil, err
	}
	mosaics, err := e.state.GalleryMosaics(o.symbol)
	if err != nil {
		return nil, err
	}
	ranked, err := Rank(mosaics, o.cfg, o.now)
	if err != nil {
		return nil, err
	}
	allocs, remainder, err := Split(amount, ranked)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]*Mosaic, len(mosaics))
	for _, m := range mosaics {
		byID[m.ID] = m
	}
	for _, a := range allocs {
		m := byID[a.MosaicID]
		m.Reward += a.Amount
		if err := e.putMosaic(o, m); err != nil {
			return nil, err
		}
		e.emit(mosaicTopEvent(o.symbol, m, a.Place, a.Amount))
	}

	result := &TickResult{Symbol: o.symbol, At: o.now, Amount: amount, Allocations: allocs, Remainder: remainder}
	if len(allocs) == 0 {
		result.Unclaimed = amount
		st.Unclaimed += amount
		e.telemetry.SetUnclaimed(o.symbol, st.Unclaimed)
	}
	st.LastRewardAt = o.now
	if err := e.state.GalleryStatPut(st); err != nil {
		return nil, err
	}
	e.telemetry.ObserveTick(o.symbol, amount, len(allocs), remainder)
	e.emit(tickEvent(o.symbol, amount, len(allocs), result.Unclaimed))
	return result, nil
}
