package gallery

import (
	"sort"

	"mosaicchain/native/params"
)

// Status is the moderation state of a mosaic.
type Status uint8

const (
	StatusActive Status = iota
	StatusBanned
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusBanned:
		return "banned"
	default:
		return "unknown"
	}
}

// Mosaic aggregates every gem staked into one artifact.
type Mosaic struct {
	ID            uint64
	Creator       string
	Opus          string
	ContentKey    string
	Royalty       uint16
	CreatedAt     int64
	CollectionEnd int64
	GemCount      uint32

	Points     int64
	Shares     int64
	DamnPoints int64
	DamnShares int64
	Reward     int64
	// PledgePoints are frozen with the mosaic's gems but priced into no
	// shares.
	PledgePoints int64

	CommRating int64
	LeadRating int64
	Status     Status
}

// Banned reports whether leaders have banned the mosaic.
func (m *Mosaic) Banned() bool { return m.Status == StatusBanned }

// ClaimDate is the moment gems of the mosaic may be chopped with reward.
func (m *Mosaic) ClaimDate(cfg *params.Community) int64 {
	return m.CollectionEnd + cfg.ClaimDelay()
}

// Collecting reports whether the mosaic still accepts stakes at now.
func (m *Mosaic) Collecting(now int64) bool {
	return !m.Banned() && now <= m.CollectionEnd
}

// Gem is one contributor's stake inside a mosaic. Damn gems carry
// non-positive shares.
type Gem struct {
	ID           uint64
	MosaicID     uint64
	ClaimDate    int64
	Points       int64
	PledgePoints int64
	Shares       int64
	Damn         bool
	Owner        string
	Creator      string
}

// Frozen is everything the gem holds frozen for its owner.
func (g *Gem) Frozen() int64 { return g.Points + g.PledgePoints }

// Provision lets Grantor stake on behalf of Recipient for a share fee.
type Provision struct {
	Grantor   string
	Recipient string
	Fee       uint16
	Total     int64
	Frozen    int64
}

// Available is the part of the provision not currently staked.
func (p *Provision) Available() int64 { return p.Total - p.Frozen }

// Provider names a grantor and the provided points used in one stake.
type Provider struct {
	Account string
	Amount  int64
}

// Advice is a leader's current set of favourite mosaics.
type Advice struct {
	Leader    string
	Favorites []uint64
}

// SlapList records the leaders voting to ban a mosaic.
type SlapList struct {
	MosaicID uint64
	Leaders  []string
}

// Stat is the per-community gallery ledger.
type Stat struct {
	Symbol       string
	Unclaimed    int64
	LastRewardAt int64
}

func normalizeFavorites(in []uint64) []uint64 {
	out := make([]uint64, 0, len(in))
	seen := make(map[uint64]struct{}, len(in))
	for _, id := range in {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sameFavorites(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
