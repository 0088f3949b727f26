package gallery

import (
	"fmt"

	"mosaicchain/native/bancor"
)

// chopGem settles a gem: it pays the gem's share of the mosaic reward,
// releases its frozen points and shrinks or deletes the mosaic. A chop not
// requested by a user on a gem whose mosaic isn't claimable yet only
// refreshes the gem's claim date and reports false.
func (e *Engine) chopGem(o *op, gem *Gem, byUser, noRewards bool) (bool, error) {
	m, err := e.mosaic(o, gem.MosaicID)
	if err != nil {
		return false, err
	}
	claimDate := m.ClaimDate(o.cfg)
	if !byUser && claimDate > o.now {
		gem.ClaimDate = claimDate
		return false, e.state.GalleryGemPut(o.symbol, gem)
	}

	var reward int64
	if !noRewards && gem.Damn == m.Banned() {
		switch {
		case !gem.Damn:
			reward, err = bancor.SafeProp(m.Reward, gem.Shares, m.Shares)
		case o.cfg.DamnedGemRewardEnabled:
			reward, err = bancor.SafeProp(m.Reward, -gem.Shares, m.DamnShares)
		}
		if err != nil {
			return false, err
		}
	}

	if err := e.freeze(o, gem.Owner, -gem.Frozen()); err != nil {
		return false, err
	}
	e.emit(gemChopEvent(o.symbol, gem, reward))

	if gem.Creator != gem.Owner {
		prov, ok, err := e.state.GalleryProvisionGet(o.symbol, gem.Owner, gem.Creator)
		if err != nil {
			return false, err
		}
		if ok {
			prov.Total += reward
			prov.Frozen -= gem.Frozen()
			if err := e.state.GalleryProvisionPut(o.symbol, prov); err != nil {
				return false, err
			}
			e.emit(provisionEvent(o.symbol, prov, false))
		}
	}

	if err := e.payReward(o, gem.Owner, reward); err != nil {
		return false, err
	}
	if err := e.state.GalleryGemDelete(o.symbol, gem); err != nil {
		return false, err
	}
	trigger := "user"
	if !byUser {
		trigger = "eviction"
	}
	e.telemetry.ObserveChop(o.symbol, trigger, reward)

	if m.GemCount > 1 || m.LeadRating != 0 {
		if gem.Damn {
			m.DamnPoints -= gem.Points
			m.DamnShares += gem.Shares
			m.CommRating += gem.Points
		} else {
			m.Points -= gem.Points
			m.Shares -= gem.Shares
			m.CommRating -= gem.Points
		}
		m.PledgePoints -= gem.PledgePoints
		m.Reward -= reward
		if m.GemCount > 0 {
			m.GemCount--
		}
		return true, e.putMosaic(o, m)
	}

	st, err := e.stat(o)
	if err != nil {
		return false, err
	}
	st.Unclaimed += m.Reward - reward
	if err := e.state.GalleryStatPut(st); err != nil {
		return false, err
	}
	e.telemetry.SetUnclaimed(o.symbol, st.Unclaimed)
	for _, h := range e.hooks {
		if err := h.OnMosaicDestroyed(o.symbol, m); err != nil {
			return false, err
		}
	}
	if err := e.state.GallerySlapsDelete(o.symbol, m.ID); err != nil {
		return false, err
	}
	if err := e.state.GalleryMosaicDelete(o.symbol, m.ID); err != nil {
		return false, err
	}
	e.emit(mosaicChopEvent(o.symbol, m.ID))
	return true, nil
}

// payReward sends reward points from the gallery account to owner, falling
// back to the community issuer when owner no longer holds a balance.
func (e *Engine) payReward(o *op, owner string, reward int64) error {
	if reward == 0 {
		return nil
	}
	to := owner
	if _, ok, err := e.ledger.BalanceOf(o.symbol, owner); err != nil {
		return err
	} else if !ok {
		issuer, err := e.ledger.Issuer(o.symbol)
		if err != nil {
			return err
		}
		if _, ok, err := e.ledger.BalanceOf(o.symbol, issuer); err != nil {
			return err
		} else if !ok {
			return ErrIssuerBalanceAbsent
		}
		to = issuer
	}
	if to == e.account {
		return nil
	}
	return e.ledger.Transfer(o.symbol, e.account, to, reward)
}

// claimInfo validates the claim window of a mosaic and reports whether the
// claim is premature.
func (e *Engine) claimInfo(o *op, mosaicID uint64, eager bool) (bool, error) {
	m, err := e.mosaic(o, mosaicID)
	if err != nil {
		return false, err
	}
	premature := o.now <= m.ClaimDate(o.cfg)
	if premature && !eager {
		return false, fmt.Errorf("%w: claimable after %d", ErrPrematureClaim, m.ClaimDate(o.cfg))
	}
	return premature, e.maybeIssue(o)
}

// ClaimGem chops the (mosaic, owner, creator) gem. An eager claim before the
// claim date forfeits the gem's reward.
func (e *Engine) ClaimGem(symbol string, mosaicID uint64, owner, creator string, eager bool) error {
	o, err := e.begin(symbol)
	if err != nil {
		return err
	}
	if creator == "" {
		creator = owner
	}
	premature, err := e.claimInfo(o, mosaicID, eager)
	if err != nil {
		return err
	}
	gem, err := e.findGem(o, mosaicID, owner, creator)
	if err != nil {
		return err
	}
	if gem == nil {
		return fmt.Errorf("%w: %s/%s in %d", ErrNothingToClaim, owner, creator, mosaicID)
	}
	_, err = e.chopGem(o, gem, true, premature)
	return err
}

// ClaimGemsByCreator chops every gem of the mosaic attributed to creator,
// optionally only those of one polarity. With strict set, finding nothing
// is an error. It reports whether any gem was chopped.
func (e *Engine) ClaimGemsByCreator(symbol string, mosaicID uint64, creator string, eager, strict bool, damn *bool) (bool, error) {
	o, err := e.begin(symbol)
	if err != nil {
		return false, err
	}
	return e.claimGemsByCreator(o, mosaicID, creator, eager, strict, damn)
}

func (e *Engine) claimGemsByCreator(o *op, mosaicID uint64, creator string, eager, strict bool, damn *bool) (bool, error) {
	premature, err := e.claimInfo(o, mosaicID, eager)
	if err != nil {
		return false, err
	}
	gems, err := e.gemsOfCreator(o, mosaicID, creator)
	if err != nil {
		return false, err
	}
	found := false
	for _, g := range gems {
		if damn != nil && *damn != g.Damn {
			continue
		}
		found = true
		if _, err := e.chopGem(o, g, true, premature); err != nil {
			return false, err
		}
	}
	if !found && strict {
		return false, fmt.Errorf("%w: no gems of %s in %d", ErrNothingToClaim, creator, mosaicID)
	}
	return found, nil
}
