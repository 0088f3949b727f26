package control

import (
	"strconv"

	"mosaicchain/core/types"
)

const (
	EventTypeLeader = "control.leader"
	EventTypeVote   = "control.vote"
	EventTypeClaim  = "control.claim"
)

func leaderEvent(symbol string, l *Leader) *types.Event {
	return &types.Event{
		Type: EventTypeLeader,
		Attributes: map[string]string{
			"symbol":    symbol,
			"leader":    l.Account,
			"active":    strconv.FormatBool(l.Active),
			"votes":     strconv.FormatUint(l.Votes, 10),
			"weight":    strconv.FormatUint(l.Weight, 10),
			"unclaimed": strconv.FormatUint(l.Unclaimed, 10),
		},
	}
}

func voteEvent(symbol, voter string, v Vote, removed bool) *types.Event {
	return &types.Event{
		Type: EventTypeVote,
		Attributes: map[string]string{
			"symbol":  symbol,
			"voter":   voter,
			"leader":  v.Leader,
			"pct":     strconv.FormatUint(uint64(v.Pct), 10),
			"power":   strconv.FormatUint(v.Power, 10),
			"removed": strconv.FormatBool(removed),
		},
	}
}

func claimEvent(symbol, leader string, amount int64) *types.Event {
	return &types.Event{
		Type: EventTypeClaim,
		Attributes: map[string]string{
			"symbol": symbol,
			"leader": leader,
			"amount": strconv.FormatInt(amount, 10),
		},
	}
}
