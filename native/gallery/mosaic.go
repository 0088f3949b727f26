package gallery

import (
	"fmt"
	"strings"

	"mosaicchain/native/bancor"
)

// CreateMosaicParams describes the opening stake of a new mosaic.
type CreateMosaicParams struct {
	ID         uint64
	Creator    string
	Opus       string
	ContentKey string
	Quantity   int64
	Royalty    uint16
	Providers  []Provider
}

// AddParams describes a stake into an existing mosaic.
type AddParams struct {
	MosaicID    uint64
	Contributor string
	Quantity    int64
	Damn        bool
	Providers   []Provider
}

// CreateMosaic opens a mosaic and stakes the creator's (and providers')
// points into its first gems.
func (e *Engine) CreateMosaic(symbol string, p CreateMosaicParams) error {
	o, err := e.begin(symbol)
	if err != nil {
		return err
	}
	creator := strings.TrimSpace(p.Creator)
	if creator == "" {
		return ErrInvalidAccount
	}
	if p.Royalty > o.cfg.AuthorPercent {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidRoyalty, p.Royalty, o.cfg.AuthorPercent)
	}
	if len(p.Providers) > o.cfg.MaxProviders {
		return fmt.Errorf("%w: %d", ErrTooManyProviders, len(p.Providers))
	}
	opus, err := o.cfg.Opus(p.Opus)
	if err != nil {
		return err
	}
	sum, err := pointsSum(p.Quantity, p.Providers)
	if err != nil {
		return err
	}
	if opus.MinMosaicInclusion > sum {
		return fmt.Errorf("%w: %d < %d", ErrInclusionTooSmall, sum, opus.MinMosaicInclusion)
	}
	if opus.MinMosaicCost > 0 {
		cost, err := e.ledger.ReserveFor(o.symbol, sum)
		if err != nil {
			return err
		}
		if cost < opus.MinMosaicCost {
			return fmt.Errorf("%w: %d < %d", ErrCostTooSmall, cost, opus.MinMosaicCost)
		}
	}
	if err := e.maybeIssue(o); err != nil {
		return err
	}
	if _, ok, err := e.state.GalleryMosaicGet(o.symbol, p.ID); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %s/%d", ErrMosaicExists, o.symbol, p.ID)
	}

	m := &Mosaic{
		ID:            p.ID,
		Creator:       creator,
		Opus:          opus.Name,
		ContentKey:    p.ContentKey,
		Royalty:       p.Royalty,
		CreatedAt:     o.now,
		CollectionEnd: o.now + o.cfg.CollectionPeriod,
		Status:        StatusActive,
	}
	if err := e.state.GalleryMosaicPut(o.symbol, m); err != nil {
		return err
	}
	pledge := min(sum, opus.MosaicPledge)
	var shares int64
	if sum > pledge {
		shares = sum
	}
	return e.freezeInGems(o, stake{
		creating:  true,
		mosaicID:  m.ID,
		claimDate: m.ClaimDate(o.cfg),
		creator:   creator,
		quantity:  p.Quantity,
		providers: p.Providers,
		pointsSum: sum,
		sharesAbs: shares,
		pledge:    pledge,
	})
}

// AddToMosaic stakes into an open mosaic. Shares are priced on the bonding
// curve of the stake's polarity bucket; a positive stake by anyone but the
// creator pays the mosaic royalty in shares to the creator's gems.
func (e *Engine) AddToMosaic(symbol string, p AddParams) error {
	o, err := e.begin(symbol)
	if err != nil {
		return err
	}
	return e.addToMosaic(o, p)
}

func (e *Engine) addToMosaic(o *op, p AddParams) error {
	contributor := strings.TrimSpace(p.Contributor)
	if contributor == "" {
		return ErrInvalidAccount
	}
	if len(p.Providers) > o.cfg.MaxProviders {
		return fmt.Errorf("%w: %d", ErrTooManyProviders, len(p.Providers))
	}
	m, err := e.mosaic(o, p.MosaicID)
	if err != nil {
		return err
	}
	if o.now > m.CollectionEnd {
		return fmt.Errorf("%w: ended at %d", ErrCollectionClosed, m.CollectionEnd)
	}
	if m.Banned() {
		return ErrMosaicBanned
	}
	if err := e.maybeIssue(o); err != nil {
		return err
	}
	opus, err := o.cfg.Opus(m.Opus)
	if err != nil {
		return err
	}
	sum, err := pointsSum(p.Quantity, p.Providers)
	if err != nil {
		return err
	}
	if int64(len(p.Providers)+1)*opus.MinGemInclusion > sum {
		return fmt.Errorf("%w: %d for %d gems", ErrInclusionTooSmall, sum, len(p.Providers)+1)
	}

	// The emission above may have rewarded this mosaic.
	if m, err = e.mosaic(o, p.MosaicID); err != nil {
		return err
	}
	// Stakes top the pledge up before anything is priced on the curve.
	pledge := max(min(sum, opus.MosaicPledge-m.PledgePoints), 0)
	var shares int64
	if p.Damn {
		shares, err = bancor.SharesFor(m.DamnPoints, m.DamnShares, bancor.SharesCW, sum-pledge, false)
	} else {
		shares, err = bancor.SharesFor(m.Points, m.Shares, bancor.SharesCW, sum-pledge, false)
	}
	if err != nil {
		return err
	}
	if !p.Damn && contributor != m.Creator {
		royalty, err := bancor.SafePct(int64(m.Royalty), shares)
		if err != nil {
			return err
		}
		paid, err := e.payRoyalties(o, m, royalty)
		if err != nil {
			return err
		}
		shares -= paid
	}
	return e.freezeInGems(o, stake{
		mosaicID:  m.ID,
		claimDate: m.ClaimDate(o.cfg),
		creator:   contributor,
		quantity:  p.Quantity,
		providers: p.Providers,
		damn:      p.Damn,
		pointsSum: sum,
		sharesAbs: shares,
		pledge:    pledge,
	})
}
