package gallery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mosaicchain/native/params"
)

func TestSplitProportional(t *testing.T) {
	allocs, rem, err := Split(1000, []Candidate{{1, 500}, {2, 300}, {3, 200}})
	require.NoError(t, err)
	require.Zero(t, rem)
	require.Equal(t, []int64{500, 300, 200}, amounts(allocs))
	require.Equal(t, 2, allocs[2].Place)
}

func TestSplitRemainderGoesToTop(t *testing.T) {
	allocs, rem, err := Split(100, []Candidate{{7, 334}, {3, 333}, {5, 333}})
	require.NoError(t, err)
	require.Equal(t, int64(1), rem)
	require.Equal(t, []int64{34, 33, 33}, amounts(allocs))
	require.Equal(t, uint64(7), allocs[0].MosaicID)
}

func TestSplitNothingToAllocate(t *testing.T) {
	allocs, rem, err := Split(100, nil)
	require.NoError(t, err)
	require.Nil(t, allocs)
	require.Zero(t, rem)

	allocs, _, err = Split(0, []Candidate{{1, 10}})
	require.NoError(t, err)
	require.Nil(t, allocs)
}

func amounts(allocs []Allocation) []int64 {
	out := make([]int64, len(allocs))
	for i, a := range allocs {
		out[i] = a.Amount
	}
	return out
}

func TestRankMergesPasses(t *testing.T) {
	cfg := params.Defaults("GOLOS")
	now := int64(1000)
	end := now + 100
	mosaics := []*Mosaic{
		{ID: 1, CollectionEnd: end, CommRating: 300},
		{ID: 2, CollectionEnd: end, CommRating: 100, LeadRating: 1000},
		{ID: 3, CollectionEnd: end, LeadRating: 500},
		{ID: 4, CollectionEnd: end, CommRating: 1000, LeadRating: 1000, Status: StatusBanned},
		{ID: 5, CollectionEnd: now - 1, CommRating: 900},
		{ID: 6, CollectionEnd: end, CommRating: -50},
	}

	ranked, err := Rank(mosaics, cfg, now)
	require.NoError(t, err)
	require.Equal(t, []Candidate{
		{MosaicID: 1, Grade: 4750},
		{MosaicID: 2, Grade: 2750},
		{MosaicID: 4, Grade: 1000},
		{MosaicID: 3, Grade: 300},
	}, ranked)

	cfg.RewardedMosaicNum = 2
	ranked, err = Rank(mosaics, cfg, now)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	cfg.RewardedMosaicNum = 20
	cfg.MinLeadRating = 600
	ranked, err = Rank(mosaics, cfg, now)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
}

func TestRankKeepsBannedMosaicInLeaderPass(t *testing.T) {
	cfg := params.Defaults("GOLOS")
	now := int64(1000)
	mosaics := []*Mosaic{
		{ID: 1, CollectionEnd: now + 100, CommRating: 300},
		{ID: 4, CollectionEnd: now + 100, LeadRating: 1000, Status: StatusBanned},
	}

	ranked, err := Rank(mosaics, cfg, now)
	require.NoError(t, err)
	require.Equal(t, []Candidate{
		{MosaicID: 1, Grade: 6000},
		{MosaicID: 4, Grade: 1000},
	}, ranked)
}

func TestRankTiesKeepIDOrder(t *testing.T) {
	cfg := params.Defaults("GOLOS")
	cfg.CommGrades = []int64{100, 100}
	cfg.CommPointsGradeSum = 0
	mosaics := []*Mosaic{
		{ID: 9, CollectionEnd: 10, CommRating: 50},
		{ID: 4, CollectionEnd: 10, CommRating: 50},
	}
	ranked, err := Rank(mosaics, cfg, 0)
	require.NoError(t, err)
	require.Equal(t, []uint64{4, 9}, []uint64{ranked[0].MosaicID, ranked[1].MosaicID})
}
