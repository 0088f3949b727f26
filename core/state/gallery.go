package state

import (
	"fmt"

	"mosaicchain/native/gallery"
)

type storedMosaic struct {
	ID            uint64
	Creator       string
	Opus          string
	ContentKey    string
	Royalty       uint16
	CreatedAt     uint64
	CollectionEnd uint64
	GemCount      uint32
	Points        uint64
	Shares        uint64
	DamnPoints    uint64
	DamnShares    uint64
	Reward        uint64
	CommRating    uint64
	LeadRating    uint64
	Status        uint8
	PledgePoints  uint64 `rlp:"optional"`
}

func newStoredMosaic(m *gallery.Mosaic) *storedMosaic {
	return &storedMosaic{
		ID:            m.ID,
		Creator:       m.Creator,
		Opus:          m.Opus,
		ContentKey:    m.ContentKey,
		Royalty:       m.Royalty,
		CreatedAt:     u64(m.CreatedAt),
		CollectionEnd: u64(m.CollectionEnd),
		GemCount:      m.GemCount,
		Points:        u64(m.Points),
		Shares:        u64(m.Shares),
		DamnPoints:    u64(m.DamnPoints),
		DamnShares:    u64(m.DamnShares),
		Reward:        u64(m.Reward),
		CommRating:    u64(m.CommRating),
		LeadRating:    u64(m.LeadRating),
		Status:        uint8(m.Status),
		PledgePoints:  u64(m.PledgePoints),
	}
}

func (s *storedMosaic) toMosaic() *gallery.Mosaic {
	return &gallery.Mosaic{
		ID:            s.ID,
		Creator:       s.Creator,
		Opus:          s.Opus,
		ContentKey:    s.ContentKey,
		Royalty:       s.Royalty,
		CreatedAt:     i64(s.CreatedAt),
		CollectionEnd: i64(s.CollectionEnd),
		GemCount:      s.GemCount,
		Points:        i64(s.Points),
		Shares:        i64(s.Shares),
		DamnPoints:    i64(s.DamnPoints),
		DamnShares:    i64(s.DamnShares),
		Reward:        i64(s.Reward),
		CommRating:    i64(s.CommRating),
		LeadRating:    i64(s.LeadRating),
		Status:        gallery.Status(s.Status),
		PledgePoints:  i64(s.PledgePoints),
	}
}

type storedGem struct {
	ID           uint64
	MosaicID     uint64
	ClaimDate    uint64
	Points       uint64
	Shares       uint64
	Damn         bool
	Owner        string
	Creator      string
	PledgePoints uint64 `rlp:"optional"`
}

func newStoredGem(g *gallery.Gem) *storedGem {
	return &storedGem{
		ID:           g.ID,
		MosaicID:     g.MosaicID,
		ClaimDate:    u64(g.ClaimDate),
		Points:       u64(g.Points),
		Shares:       u64(g.Shares),
		Damn:         g.Damn,
		Owner:        g.Owner,
		Creator:      g.Creator,
		PledgePoints: u64(g.PledgePoints),
	}
}

func (s *storedGem) toGem() *gallery.Gem {
	return &gallery.Gem{
		ID:           s.ID,
		MosaicID:     s.MosaicID,
		ClaimDate:    i64(s.ClaimDate),
		Points:       i64(s.Points),
		PledgePoints: i64(s.PledgePoints),
		Shares:       i64(s.Shares),
		Damn:         s.Damn,
		Owner:        s.Owner,
		Creator:      s.Creator,
	}
}

type storedProvision struct {
	Grantor   string
	Recipient string
	Fee       uint16
	Total     uint64
	Frozen    uint64
}

type storedGalleryStat struct {
	Symbol       string
	Unclaimed    uint64
	LastRewardAt uint64
}

var indexMarker = []byte{1}

func (m *Manager) GalleryMosaicGet(symbol string, id uint64) (*gallery.Mosaic, bool, error) {
	var stored storedMosaic
	ok, err := m.KVGet(mosaicKey(symbol, id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.toMosaic(), true, nil
}

func (m *Manager) GalleryMosaicPut(symbol string, mosaic *gallery.Mosaic) error {
	if mosaic == nil {
		return fmt.Errorf("gallery: nil mosaic")
	}
	return m.KVPut(mosaicKey(symbol, mosaic.ID), newStoredMosaic(mosaic))
}

func (m *Manager) GalleryMosaicDelete(symbol string, id uint64) error {
	return m.KVDelete(mosaicKey(symbol, id))
}

// GalleryMosaics lists the mosaics of a community ordered by id.
func (m *Manager) GalleryMosaics(symbol string) ([]*gallery.Mosaic, error) {
	keys, err := m.keys(mosaicScope(symbol))
	if err != nil {
		return nil, err
	}
	out := make([]*gallery.Mosaic, 0, len(keys))
	for _, key := range keys {
		var stored storedMosaic
		if _, err := m.KVGet(key, &stored); err != nil {
			return nil, fmt.Errorf("gallery: decode mosaic %d: %w", tailID(key), err)
		}
		out = append(out, stored.toMosaic())
	}
	return out, nil
}

func (m *Manager) GalleryGemGet(symbol string, id uint64) (*gallery.Gem, bool, error) {
	var stored storedGem
	ok, err := m.KVGet(gemKey(symbol, id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.toGem(), true, nil
}

// GalleryGemPut persists a gem and indexes it under its mosaic.
func (m *Manager) GalleryGemPut(symbol string, gem *gallery.Gem) error {
	if gem == nil {
		return fmt.Errorf("gallery: nil gem")
	}
	if err := m.KVPut(gemKey(symbol, gem.ID), newStoredGem(gem)); err != nil {
		return err
	}
	return m.KVPutRaw(gemByMosaicKey(symbol, gem.MosaicID, gem.ID), indexMarker)
}

func (m *Manager) GalleryGemDelete(symbol string, gem *gallery.Gem) error {
	if gem == nil {
		return fmt.Errorf("gallery: nil gem")
	}
	if err := m.KVDelete(gemKey(symbol, gem.ID)); err != nil {
		return err
	}
	return m.KVDelete(gemByMosaicKey(symbol, gem.MosaicID, gem.ID))
}

// GalleryGems lists every gem of a community ordered by id.
func (m *Manager) GalleryGems(symbol string) ([]*gallery.Gem, error) {
	keys, err := m.keys(gemScope(symbol))
	if err != nil {
		return nil, err
	}
	out := make([]*gallery.Gem, 0, len(keys))
	for _, key := range keys {
		var stored storedGem
		if _, err := m.KVGet(key, &stored); err != nil {
			return nil, fmt.Errorf("gallery: decode gem %d: %w", tailID(key), err)
		}
		out = append(out, stored.toGem())
	}
	return out, nil
}

// GalleryGemsByMosaic lists the gems of one mosaic ordered by id.
func (m *Manager) GalleryGemsByMosaic(symbol string, mosaicID uint64) ([]*gallery.Gem, error) {
	keys, err := m.keys(gemByMosaicScope(symbol, mosaicID))
	if err != nil {
		return nil, err
	}
	out := make([]*gallery.Gem, 0, len(keys))
	for _, key := range keys {
		gem, ok, err := m.GalleryGemGet(symbol, tailID(key))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("gallery: dangling index for gem %d", tailID(key))
		}
		out = append(out, gem)
	}
	return out, nil
}

// GalleryNextGemID returns the next gem id of the community and advances
// the sequence.
func (m *Manager) GalleryNextGemID(symbol string) (uint64, error) {
	var next uint64
	if _, err := m.KVGet(gemSeqKey(symbol), &next); err != nil {
		return 0, err
	}
	if err := m.KVPut(gemSeqKey(symbol), next+1); err != nil {
		return 0, err
	}
	return next, nil
}

// GalleryInclusionGet returns the points an account has frozen in gems.
func (m *Manager) GalleryInclusionGet(symbol, owner string) (int64, error) {
	var amount uint64
	if _, err := m.KVGet(inclusionKey(symbol, owner), &amount); err != nil {
		return 0, err
	}
	return i64(amount), nil
}

// GalleryInclusionPut records the frozen amount; zero removes the record.
func (m *Manager) GalleryInclusionPut(symbol, owner string, amount int64) error {
	if amount == 0 {
		return m.KVDelete(inclusionKey(symbol, owner))
	}
	return m.KVPut(inclusionKey(symbol, owner), u64(amount))
}

func (m *Manager) GalleryProvisionGet(symbol, grantor, recipient string) (*gallery.Provision, bool, error) {
	var stored storedProvision
	ok, err := m.KVGet(provisionKey(symbol, grantor, recipient), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &gallery.Provision{
		Grantor:   stored.Grantor,
		Recipient: stored.Recipient,
		Fee:       stored.Fee,
		Total:     i64(stored.Total),
		Frozen:    i64(stored.Frozen),
	}, true, nil
}

func (m *Manager) GalleryProvisionPut(symbol string, prov *gallery.Provision) error {
	if prov == nil {
		return fmt.Errorf("gallery: nil provision")
	}
	return m.KVPut(provisionKey(symbol, prov.Grantor, prov.Recipient), &storedProvision{
		Grantor:   prov.Grantor,
		Recipient: prov.Recipient,
		Fee:       prov.Fee,
		Total:     u64(prov.Total),
		Frozen:    u64(prov.Frozen),
	})
}

func (m *Manager) GalleryProvisionDelete(symbol, grantor, recipient string) error {
	return m.KVDelete(provisionKey(symbol, grantor, recipient))
}

func (m *Manager) GalleryAdviceGet(symbol, leader string) (*gallery.Advice, bool, error) {
	var advice gallery.Advice
	ok, err := m.KVGet(adviceKey(symbol, leader), &advice)
	if err != nil || !ok {
		return nil, false, err
	}
	return &advice, true, nil
}

func (m *Manager) GalleryAdvicePut(symbol string, advice *gallery.Advice) error {
	if advice == nil {
		return fmt.Errorf("gallery: nil advice")
	}
	return m.KVPut(adviceKey(symbol, advice.Leader), advice)
}

func (m *Manager) GalleryAdviceDelete(symbol, leader string) error {
	return m.KVDelete(adviceKey(symbol, leader))
}

func (m *Manager) GallerySlapsGet(symbol string, mosaicID uint64) (*gallery.SlapList, bool, error) {
	var slaps gallery.SlapList
	ok, err := m.KVGet(slapKey(symbol, mosaicID), &slaps)
	if err != nil || !ok {
		return nil, false, err
	}
	return &slaps, true, nil
}

func (m *Manager) GallerySlapsPut(symbol string, slaps *gallery.SlapList) error {
	if slaps == nil {
		return fmt.Errorf("gallery: nil slap list")
	}
	return m.KVPut(slapKey(symbol, slaps.MosaicID), slaps)
}

func (m *Manager) GallerySlapsDelete(symbol string, mosaicID uint64) error {
	return m.KVDelete(slapKey(symbol, mosaicID))
}

func (m *Manager) GalleryStatGet(symbol string) (*gallery.Stat, bool, error) {
	var stored storedGalleryStat
	ok, err := m.KVGet(galleryStatKey(symbol), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &gallery.Stat{Symbol: stored.Symbol, Unclaimed: i64(stored.Unclaimed), LastRewardAt: i64(stored.LastRewardAt)}, true, nil
}

func (m *Manager) GalleryStatPut(stat *gallery.Stat) error {
	if stat == nil {
		return fmt.Errorf("gallery: nil stat")
	}
	return m.KVPut(galleryStatKey(stat.Symbol), &storedGalleryStat{
		Symbol:       stat.Symbol,
		Unclaimed:    u64(stat.Unclaimed),
		LastRewardAt: u64(stat.LastRewardAt),
	})
}
