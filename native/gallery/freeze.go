package gallery

import (
	"fmt"
	"math"
	"sort"

	coreerrors "mosaicchain/core/errors"
	"mosaicchain/native/bancor"
)

// freeze adjusts the points account has committed to gems. A negative delta
// releases points.
func (e *Engine) freeze(o *op, account string, delta int64) error {
	if delta == 0 {
		return nil
	}
	balance, ok, err := e.ledger.BalanceOf(o.symbol, account)
	if err != nil {
		return err
	}
	if !ok {
		if delta > 0 {
			return fmt.Errorf("%w: %s/%s", ErrBalanceNotFound, o.symbol, account)
		}
		return coreerrors.Invariant("gallery: points of %s are frozen while the balance doesn't exist", account)
	}
	frozen, err := e.state.GalleryInclusionGet(o.symbol, account)
	if err != nil {
		return err
	}
	if frozen < 0 || frozen > balance {
		return fmt.Errorf("%w: %s has %d frozen of %d", ErrInvalidFreezeState, account, frozen, balance)
	}
	next := frozen + delta
	if next < 0 {
		return fmt.Errorf("%w: %s would have %d frozen", ErrInvalidFreezeState, account, next)
	}
	if next > balance {
		return fmt.Errorf("%w: %s needs %d frozen of %d", ErrOverdrawn, account, next, balance)
	}
	if err := e.state.GalleryInclusionPut(o.symbol, account, next); err != nil {
		return err
	}
	e.emit(inclusionEvent(o.symbol, account, next))
	return nil
}

// freezePointsInGem creates or refills the (mosaic, owner, creator) gem and
// folds its stake into the mosaic aggregates. Creating a new gem first runs
// the bounded eviction of stale gems.
func (e *Engine) freezePointsInGem(o *op, creating bool, mosaicID uint64, claimDate int64,
	points, shares, pledge int64, damn bool, owner, creator string) error {
	if points < 0 {
		return coreerrors.Invariant("gallery: points can't be negative")
	}
	if pledge < 0 {
		return coreerrors.Invariant("gallery: pledge can't be negative")
	}
	if (damn && shares > 0) || (!damn && shares < 0) {
		return coreerrors.Invariant("gallery: share sign does not match polarity")
	}
	if shares == 0 && points == 0 && pledge == 0 && !creating {
		return nil
	}

	refilled := false
	if !creating {
		gem, err := e.findGem(o, mosaicID, owner, creator)
		if err != nil {
			return err
		}
		if gem != nil {
			if gem.Damn != damn {
				return ErrGemTypeMismatch
			}
			if !o.cfg.RefillGemEnabled {
				return ErrRefillDisabled
			}
			gem.Points += points
			gem.Shares += shares
			gem.PledgePoints += pledge
			if err := e.state.GalleryGemPut(o.symbol, gem); err != nil {
				return err
			}
			e.emit(gemStateEvent(o.symbol, gem))
			refilled = true
		}
	}

	if !refilled {
		if err := e.evict(o, owner, creator); err != nil {
			return err
		}
		id, err := e.state.GalleryNextGemID(o.symbol)
		if err != nil {
			return err
		}
		gem := &Gem{
			ID:           id,
			MosaicID:     mosaicID,
			ClaimDate:    claimDate,
			Points:       points,
			PledgePoints: pledge,
			Shares:       shares,
			Damn:         damn,
			Owner:        owner,
			Creator:      creator,
		}
		if err := e.state.GalleryGemPut(o.symbol, gem); err != nil {
			return err
		}
		e.emit(gemStateEvent(o.symbol, gem))
	}

	if err := e.freeze(o, owner, points+pledge); err != nil {
		return err
	}

	m, err := e.mosaic(o, mosaicID)
	if err != nil {
		return err
	}
	if damn {
		m.DamnPoints += points
		m.DamnShares -= shares
		m.CommRating -= points
	} else {
		m.Points += points
		m.Shares += shares
		m.CommRating += points
	}
	m.PledgePoints += pledge
	if !refilled {
		if m.GemCount == math.MaxUint32 {
			return fmt.Errorf("%w: gem count", bancor.ErrOverflow)
		}
		m.GemCount++
	}
	e.telemetry.ObserveStake(o.symbol, damn, points)
	return e.state.GalleryMosaicPut(o.symbol, m)
}

// evict makes room before a new gem is inserted. It chops the oldest
// claimable gem of the owner and of the creator, then force-chops, without
// reward, gems whose claim date passed more than the forced chopping delay
// ago. At most AutoClaimNum gems are visited in total.
func (e *Engine) evict(o *op, owner, creator string) error {
	visited := 0
	chopOldestOf := func(account string) error {
		gems, err := e.state.GalleryGems(o.symbol)
		if err != nil {
			return err
		}
		var oldest *Gem
		for _, g := range gems {
			if g.Owner != account {
				continue
			}
			if oldest == nil || g.ClaimDate < oldest.ClaimDate {
				oldest = g
			}
		}
		if oldest == nil || oldest.ClaimDate >= o.now {
			return nil
		}
		visited++
		e.telemetry.ObserveEviction(o.symbol, "owner")
		_, err = e.chopGem(o, oldest, false, false)
		return err
	}
	if err := chopOldestOf(owner); err != nil {
		return err
	}
	if owner != creator {
		if err := chopOldestOf(creator); err != nil {
			return err
		}
	}

	limit := o.now - o.cfg.ForcedChoppingDelay
	gems, err := e.state.GalleryGems(o.symbol)
	if err != nil {
		return err
	}
	sort.SliceStable(gems, func(i, j int) bool { return gems[i].ClaimDate < gems[j].ClaimDate })
	for _, g := range gems {
		if visited >= o.cfg.AutoClaimNum || g.ClaimDate >= limit {
			break
		}
		visited++
		e.telemetry.ObserveEviction(o.symbol, "forced")
		if _, err := e.chopGem(o, g, false, true); err != nil {
			return err
		}
	}
	return nil
}

// payRoyalties moves shares from a contributor to the creator's own gems,
// pro rata to their positive shares. When the creator holds no positive
// shares, the gem the creator owns takes everything. It returns the shares
// actually paid.
func (e *Engine) payRoyalties(o *op, m *Mosaic, shares int64) (int64, error) {
	if shares == 0 {
		return 0, nil
	}
	gems, err := e.gemsOfCreator(o, m.ID, m.Creator)
	if err != nil {
		return 0, err
	}
	var preSum int64
	for _, g := range gems {
		if g.Shares > 0 {
			preSum += g.Shares
		}
	}
	var paid int64
	for _, g := range gems {
		if g.Damn {
			continue
		}
		var cur int64
		if g.Shares > 0 {
			cur, err = bancor.SafeProp(shares, g.Shares, preSum)
			if err != nil {
				return 0, err
			}
		} else if preSum == 0 && g.Owner == m.Creator {
			cur = shares
		}
		if cur <= 0 {
			continue
		}
		g.Shares += cur
		if err := e.state.GalleryGemPut(o.symbol, g); err != nil {
			return 0, err
		}
		e.emit(gemStateEvent(o.symbol, g))
		paid += cur
		if paid == shares {
			break
		}
	}
	fresh, err := e.mosaic(o, m.ID)
	if err != nil {
		return 0, err
	}
	fresh.Shares += paid
	if err := e.state.GalleryMosaicPut(o.symbol, fresh); err != nil {
		return 0, err
	}
	return paid, nil
}

// stake is one staking invocation split across its contributor and
// providers.
type stake struct {
	creating  bool
	mosaicID  uint64
	claimDate int64
	creator   string
	quantity  int64
	providers []Provider
	damn      bool
	pointsSum int64
	sharesAbs int64
	pledge    int64
}

// freezeInGems distributes a stake's shares over one gem per provider and
// the contributor's own gem. Provider fees are taken in shares and credited
// to the contributor. The pledge is split pro rata over the providers and
// the contributor covers what is left of it.
func (e *Engine) freezeInGems(o *op, s stake) error {
	signed := func(v int64) int64 {
		if s.damn {
			return -v
		}
		return v
	}
	var totalFee int64
	leftPledge, leftPoints := s.pledge, s.pointsSum
	for _, p := range s.providers {
		prov, ok, err := e.state.GalleryProvisionGet(o.symbol, p.Account, s.creator)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s -> %s", ErrNoProvision, p.Account, s.creator)
		}
		cur, err := bancor.SafeProp(s.sharesAbs, p.Amount, s.pointsSum)
		if err != nil {
			return err
		}
		fee, err := bancor.SafePct(int64(prov.Fee), cur)
		if err != nil {
			return err
		}
		cur -= fee
		totalFee += fee
		curPledge, err := bancor.SafeProp(leftPledge, p.Amount, leftPoints)
		if err != nil {
			return err
		}

		if err := e.freezePointsInGem(o, s.creating, s.mosaicID, s.claimDate,
			p.Amount-curPledge, signed(cur), curPledge, s.damn, p.Account, s.creator); err != nil {
			return err
		}
		leftPledge -= curPledge
		leftPoints -= p.Amount

		// Eviction inside the gem insert may have settled older gems of
		// this provision.
		prov, ok, err = e.state.GalleryProvisionGet(o.symbol, p.Account, s.creator)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s -> %s", ErrNoProvision, p.Account, s.creator)
		}
		if prov.Available() < p.Amount {
			return fmt.Errorf("%w: %s provides %d, needs %d", ErrNotEnoughProvided, p.Account, prov.Available(), p.Amount)
		}
		prov.Frozen += p.Amount
		if err := e.state.GalleryProvisionPut(o.symbol, prov); err != nil {
			return err
		}
		e.emit(provisionEvent(o.symbol, prov, false))
	}

	if s.quantity != 0 || totalFee != 0 || s.creating {
		cur, err := bancor.SafeProp(s.sharesAbs, s.quantity, s.pointsSum)
		if err != nil {
			return err
		}
		cur += totalFee
		curPledge := min(leftPledge, s.quantity)
		if err := e.freezePointsInGem(o, s.creating, s.mosaicID, s.claimDate,
			s.quantity-curPledge, signed(cur), curPledge, s.damn, s.creator, s.creator); err != nil {
			return err
		}
	}

	m, err := e.mosaic(o, s.mosaicID)
	if err != nil {
		return err
	}
	e.emit(mosaicStateEvent(o.symbol, m))
	return nil
}

func pointsSum(quantity int64, providers []Provider) (int64, error) {
	if quantity < 0 {
		return 0, fmt.Errorf("%w: quantity %d", ErrInvalidAmount, quantity)
	}
	sum := quantity
	for _, p := range providers {
		if p.Amount <= 0 {
			return 0, fmt.Errorf("%w: provided points must be positive", ErrInvalidAmount)
		}
		if sum > math.MaxInt64-p.Amount {
			return 0, bancor.ErrOverflow
		}
		sum += p.Amount
	}
	return sum, nil
}
