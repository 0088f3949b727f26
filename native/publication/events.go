package publication

import (
	"strconv"

	"mosaicchain/core/types"
)

const (
	EventTypeMessage = "publication.message"
	EventTypeVote    = "publication.vote"
)

func messageEvent(symbol string, v *Vertex, header string, removed bool) *types.Event {
	return &types.Event{
		Type: EventTypeMessage,
		Attributes: map[string]string{
			"symbol":   symbol,
			"id":       strconv.FormatUint(v.ID, 10),
			"author":   v.Author,
			"permlink": v.Permlink,
			"parent":   strconv.FormatUint(v.ParentID, 10),
			"level":    strconv.FormatUint(uint64(v.Level), 10),
			"header":   header,
			"removed":  strconv.FormatBool(removed),
		},
	}
}

func voteEvent(symbol string, id uint64, voter string, amount int64, damn, removed bool) *types.Event {
	return &types.Event{
		Type: EventTypeVote,
		Attributes: map[string]string{
			"symbol":  symbol,
			"id":      strconv.FormatUint(id, 10),
			"voter":   voter,
			"amount":  strconv.FormatInt(amount, 10),
			"damn":    strconv.FormatBool(damn),
			"removed": strconv.FormatBool(removed),
		},
	}
}
