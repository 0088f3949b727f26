package gallery

import (
	"fmt"
	"strings"
)

func (e *Engine) leaderSet(o *op) ([]string, error) {
	if e.leaders == nil {
		return nil, nil
	}
	return e.leaders.Leaders(o.symbol)
}

func (e *Engine) requireLeader(o *op, account string) ([]string, error) {
	leaders, err := e.leaderSet(o)
	if err != nil {
		return nil, err
	}
	for _, l := range leaders {
		if l == account {
			return leaders, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNotLeader, account, o.symbol)
}

// Advise replaces a leader's favourite mosaics. Each favourite's lead rating
// grows by the advice weight for the size of the set; the previous set's
// weight is withdrawn first. An empty set withdraws the advice.
func (e *Engine) Advise(symbol, leader string, favorites []uint64) error {
	o, err := e.begin(symbol)
	if err != nil {
		return err
	}
	leader = strings.TrimSpace(leader)
	if _, err := e.requireLeader(o, leader); err != nil {
		return err
	}
	favorites = normalizeFavorites(favorites)
	weights := o.cfg.AdviceWeights
	if len(favorites) > len(weights) {
		return fmt.Errorf("%w: %d favourites, at most %d", ErrTooMuchAdvice, len(favorites), len(weights))
	}

	prev, ok, err := e.state.GalleryAdviceGet(o.symbol, leader)
	if err != nil {
		return err
	}
	if ok {
		if sameFavorites(prev.Favorites, favorites) {
			return ErrNoChanges
		}
		if n := len(prev.Favorites); n > 0 && n <= len(weights) {
			w := weights[n-1]
			for _, id := range prev.Favorites {
				m, found, err := e.state.GalleryMosaicGet(o.symbol, id)
				if err != nil {
					return err
				}
				if !found {
					continue
				}
				m.LeadRating -= w
				if err := e.state.GalleryMosaicPut(o.symbol, m); err != nil {
					return err
				}
			}
		}
		if len(favorites) == 0 {
			return e.state.GalleryAdviceDelete(o.symbol, leader)
		}
	} else if len(favorites) == 0 {
		return ErrNoChanges
	}
	if err := e.state.GalleryAdvicePut(o.symbol, &Advice{Leader: leader, Favorites: favorites}); err != nil {
		return err
	}

	w := weights[len(favorites)-1]
	for _, id := range favorites {
		m, err := e.mosaic(o, id)
		if err != nil {
			return err
		}
		m.LeadRating += w
		if err := e.state.GalleryMosaicPut(o.symbol, m); err != nil {
			return err
		}
	}
	return nil
}

// Slap records a leader's vote to ban a collecting mosaic. Votes of accounts
// that are no longer leaders are discarded; once more than two thirds of the
// current leaders have slapped, the mosaic is banned.
func (e *Engine) Slap(symbol, leader string, mosaicID uint64) (bool, error) {
	o, err := e.begin(symbol)
	if err != nil {
		return false, err
	}
	leader = strings.TrimSpace(leader)
	leaders, err := e.requireLeader(o, leader)
	if err != nil {
		return false, err
	}
	m, err := e.mosaic(o, mosaicID)
	if err != nil {
		return false, err
	}
	if m.Banned() {
		return false, ErrMosaicBanned
	}
	if o.now > m.CollectionEnd {
		return false, fmt.Errorf("%w: ended at %d", ErrCollectionClosed, m.CollectionEnd)
	}

	list, ok, err := e.state.GallerySlapsGet(o.symbol, mosaicID)
	if err != nil {
		return false, err
	}
	if !ok {
		list = &SlapList{MosaicID: mosaicID}
	}
	current := make(map[string]struct{}, len(leaders))
	for _, l := range leaders {
		current[l] = struct{}{}
	}
	kept := list.Leaders[:0]
	for _, l := range list.Leaders {
		if l == leader {
			return false, fmt.Errorf("%w: %s", ErrAlreadySlapped, leader)
		}
		if _, still := current[l]; still {
			kept = append(kept, l)
		}
	}
	list.Leaders = append(kept, leader)

	if len(list.Leaders) >= len(leaders)*2/3+1 {
		if err := e.state.GallerySlapsDelete(o.symbol, mosaicID); err != nil {
			return false, err
		}
		m.Status = StatusBanned
		return true, e.putMosaic(o, m)
	}
	return false, e.state.GallerySlapsPut(o.symbol, list)
}

// Ban bans a mosaic directly. Only the community administration calls it.
func (e *Engine) Ban(symbol string, mosaicID uint64) error {
	o, err := e.begin(symbol)
	if err != nil {
		return err
	}
	m, err := e.mosaic(o, mosaicID)
	if err != nil {
		return err
	}
	if m.Banned() {
		return ErrMosaicBanned
	}
	if err := e.state.GallerySlapsDelete(o.symbol, mosaicID); err != nil {
		return err
	}
	m.Status = StatusBanned
	return e.putMosaic(o, m)
}
