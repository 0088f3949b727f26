package params

import (
	"testing"

	"github.com/stretchr/testify/require"

	coreerrors "mosaicchain/core/errors"
)

type memState map[string][]byte

func (m memState) ParamStoreSet(name string, value []byte) error {
	m[name] = append([]byte(nil), value...)
	return nil
}

func (m memState) ParamStoreGet(name string) ([]byte, bool, error) {
	v, ok := m[name]
	return v, ok, nil
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(memState{})
	cfg := Defaults("golos")
	cfg.RefillGemEnabled = true
	cfg.Opuses = append(cfg.Opuses, Opus{Name: "collectible", MinMosaicInclusion: 10, MinMosaicCost: 5})
	require.NoError(t, store.SetCommunity(cfg))

	loaded, err := store.Community("GOLOS")
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	op, err := loaded.Opus("collectible")
	require.NoError(t, err)
	require.EqualValues(t, 10, op.MinMosaicInclusion)
	_, err = loaded.Opus("poem")
	require.ErrorIs(t, err, ErrUnknownOpus)
}

func TestStoreMissingCommunity(t *testing.T) {
	store := NewStore(memState{})
	_, err := store.Community("NONE")
	require.ErrorIs(t, err, ErrCommunityNotFound)
	require.ErrorIs(t, err, coreerrors.ErrNotFound)
}

func TestStoreWithoutState(t *testing.T) {
	var store *Store
	_, err := store.Community("GOLOS")
	require.ErrorIs(t, err, coreerrors.ErrInvariantViolation)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Community)
	}{
		{"empty symbol", func(c *Community) { c.Symbol = "" }},
		{"zero collection", func(c *Community) { c.CollectionPeriod = 0 }},
		{"author percent", func(c *Community) { c.AuthorPercent = Denominator + 1 }},
		{"rewarded num", func(c *Community) { c.RewardedMosaicNum = 0 }},
		{"no advice", func(c *Community) { c.AdviceWeights = nil }},
		{"negative grade", func(c *Community) { c.LeadGrades = []int64{-1} }},
		{"duplicate opus", func(c *Community) { c.Opuses = []Opus{{Name: "post"}, {Name: "post"}} }},
		{"negative opus", func(c *Community) { c.Opuses = []Opus{{Name: "post", MinGemInclusion: -1}} }},
		{"negative pledge", func(c *Community) { c.Opuses = []Opus{{Name: "post", MosaicPledge: -1}} }},
		{"no leaders", func(c *Community) { c.LeadersNum = 0 }},
	}
	require.NoError(t, Defaults("GOLOS").Validate())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults("GOLOS")
			tc.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidParams)
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults(" golos ")
	require.Equal(t, "GOLOS", cfg.Symbol)
	require.Len(t, cfg.CommGrades, 20)
	require.EqualValues(t, 17*day, cfg.CollectionPeriod+cfg.ClaimDelay())
	require.EqualValues(t, 3600, cfg.RewardPeriod(false))
	require.EqualValues(t, day, cfg.RewardPeriod(true))
}
