package gallery

import (
	"fmt"
	"sort"

	"mosaicchain/native/params"
)

type slapKey struct {
	symbol string
	id     uint64
}

type mockState struct {
	mosaics    map[string]map[uint64]Mosaic
	gems       map[string]map[uint64]Gem
	seq        map[string]uint64
	inclusions map[string]int64
	provisions map[string]Provision
	advice     map[string]Advice
	slaps      map[slapKey]SlapList
	stats      map[string]Stat
}

func newMockState() *mockState {
	return &mockState{
		mosaics:    make(map[string]map[uint64]Mosaic),
		gems:       make(map[string]map[uint64]Gem),
		seq:        make(map[string]uint64),
		inclusions: make(map[string]int64),
		provisions: make(map[string]Provision),
		advice:     make(map[string]Advice),
		slaps:      make(map[slapKey]SlapList),
		stats:      make(map[string]Stat),
	}
}

func (m *mockState) GalleryMosaicGet(symbol string, id uint64) (*Mosaic, bool, error) {
	v, ok := m.mosaics[symbol][id]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (m *mockState) GalleryMosaicPut(symbol string, mosaic *Mosaic) error {
	if m.mosaics[symbol] == nil {
		m.mosaics[symbol] = make(map[uint64]Mosaic)
	}
	m.mosaics[symbol][mosaic.ID] = *mosaic
	return nil
}

func (m *mockState) GalleryMosaicDelete(symbol string, id uint64) error {
	delete(m.mosaics[symbol], id)
	return nil
}

func (m *mockState) GalleryMosaics(symbol string) ([]*Mosaic, error) {
	out := make([]*Mosaic, 0, len(m.mosaics[symbol]))
	for _, v := range m.mosaics[symbol] {
		c := v
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockState) GalleryGemGet(symbol string, id uint64) (*Gem, bool, error) {
	v, ok := m.gems[symbol][id]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (m *mockState) GalleryGemPut(symbol string, gem *Gem) error {
	if m.gems[symbol] == nil {
		m.gems[symbol] = make(map[uint64]Gem)
	}
	m.gems[symbol][gem.ID] = *gem
	return nil
}

func (m *mockState) GalleryGemDelete(symbol string, gem *Gem) error {
	delete(m.gems[symbol], gem.ID)
	return nil
}

func (m *mockState) GalleryGems(symbol string) ([]*Gem, error) {
	out := make([]*Gem, 0, len(m.gems[symbol]))
	for _, v := range m.gems[symbol] {
		c := v
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockState) GalleryGemsByMosaic(symbol string, mosaicID uint64) ([]*Gem, error) {
	all, _ := m.GalleryGems(symbol)
	out := all[:0]
	for _, g := range all {
		if g.MosaicID == mosaicID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockState) GalleryNextGemID(symbol string) (uint64, error) {
	id := m.seq[symbol]
	m.seq[symbol] = id + 1
	return id, nil
}

func (m *mockState) GalleryInclusionGet(symbol, owner string) (int64, error) {
	return m.inclusions[symbol+"/"+owner], nil
}

func (m *mockState) GalleryInclusionPut(symbol, owner string, amount int64) error {
	if amount == 0 {
		delete(m.inclusions, symbol+"/"+owner)
		return nil
	}
	m.inclusions[symbol+"/"+owner] = amount
	return nil
}

func provKey(symbol, grantor, recipient string) string {
	return fmt.Sprintf("%s/%s/%s", symbol, grantor, recipient)
}

func (m *mockState) GalleryProvisionGet(symbol, grantor, recipient string) (*Provision, bool, error) {
	v, ok := m.provisions[provKey(symbol, grantor, recipient)]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (m *mockState) GalleryProvisionPut(symbol string, prov *Provision) error {
	m.provisions[provKey(symbol, prov.Grantor, prov.Recipient)] = *prov
	return nil
}

func (m *mockState) GalleryProvisionDelete(symbol, grantor, recipient string) error {
	delete(m.provisions, provKey(symbol, grantor, recipient))
	return nil
}

func (m *mockState) GalleryAdviceGet(symbol, leader string) (*Advice, bool, error) {
	v, ok := m.advice[symbol+"/"+leader]
	if !ok {
		return nil, false, nil
	}
	v.Favorites = append([]uint64(nil), v.Favorites...)
	return &v, true, nil
}

func (m *mockState) GalleryAdvicePut(symbol string, advice *Advice) error {
	c := *advice
	c.Favorites = append([]uint64(nil), advice.Favorites...)
	m.advice[symbol+"/"+advice.Leader] = c
	return nil
}

func (m *mockState) GalleryAdviceDelete(symbol, leader string) error {
	delete(m.advice, symbol+"/"+leader)
	return nil
}

func (m *mockState) GallerySlapsGet(symbol string, mosaicID uint64) (*SlapList, bool, error) {
	v, ok := m.slaps[slapKey{symbol, mosaicID}]
	if !ok {
		return nil, false, nil
	}
	v.Leaders = append([]string(nil), v.Leaders...)
	return &v, true, nil
}

func (m *mockState) GallerySlapsPut(symbol string, slaps *SlapList) error {
	c := *slaps
	c.Leaders = append([]string(nil), slaps.Leaders...)
	m.slaps[slapKey{symbol, slaps.MosaicID}] = c
	return nil
}

func (m *mockState) GallerySlapsDelete(symbol string, mosaicID uint64) error {
	delete(m.slaps, slapKey{symbol, mosaicID})
	return nil
}

func (m *mockState) GalleryStatGet(symbol string) (*Stat, bool, error) {
	v, ok := m.stats[symbol]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (m *mockState) GalleryStatPut(stat *Stat) error {
	m.stats[stat.Symbol] = *stat
	return nil
}

// mockLedger keeps one balance per account for a single community.
type mockLedger struct {
	balances map[string]int64
	issuer   string
}

func (l *mockLedger) BalanceOf(_ string, owner string) (int64, bool, error) {
	v, ok := l.balances[owner]
	return v, ok, nil
}

func (l *mockLedger) Transfer(_ string, from, to string, amount int64) error {
	if l.balances[from] < amount {
		return fmt.Errorf("mock ledger: %s overdrawn", from)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

func (l *mockLedger) Issuer(string) (string, error) { return l.issuer, nil }

func (l *mockLedger) ReserveFor(_ string, amount int64) (int64, error) { return amount / 2, nil }

type staticParams struct{ cfg *params.Community }

func (p staticParams) Community(string) (*params.Community, error) {
	c := *p.cfg
	return &c, nil
}

type staticLeaders []string

func (l staticLeaders) Leaders(string) ([]string, error) { return l, nil }

type recordingHook struct{ destroyed []uint64 }

func (h *recordingHook) OnMosaicDestroyed(_ string, m *Mosaic) error {
	h.destroyed = append(h.destroyed, m.ID)
	return nil
}
