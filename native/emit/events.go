package emit

import (
	"strconv"

	"mosaicchain/core/types"
)

const EventTypeReward = "emit.reward"

func rewardEvent(iss *Issuance) *types.Event {
	return &types.Event{
		Type: EventTypeReward,
		Attributes: map[string]string{
			"symbol":     iss.Symbol,
			"receiver":   iss.Receiver,
			"forLeaders": strconv.FormatBool(iss.ForLeaders),
			"amount":     strconv.FormatInt(iss.Amount, 10),
			"elapsed":    strconv.FormatInt(iss.Elapsed, 10),
			"supply":     strconv.FormatInt(iss.Supply, 10),
		},
	}
}
