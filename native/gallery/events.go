package gallery

import (
	"strconv"

	"mosaicchain/core/types"
)

const (
	EventTypeMosaicState = "gallery.mosaic.state"
	EventTypeMosaicChop  = "gallery.mosaic.chop"
	EventTypeMosaicTop   = "gallery.mosaic.top"
	EventTypeGemState    = "gallery.gem.state"
	EventTypeGemChop     = "gallery.gem.chop"
	EventTypeInclusion   = "gallery.inclusion"
	EventTypeProvision   = "gallery.provision"
	EventTypeTick        = "gallery.tick"
)

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
func utoa(v uint64) string { return strconv.FormatUint(v, 10) }
func btoa(v bool) string { return strconv.FormatBool(v) }

func mosaicStateEvent(symbol string, m *Mosaic) *types.Event {
	return &types.Event{
		Type: EventTypeMosaicState,
		Attributes: map[string]string{
			"community":     symbol,
			"mosaic":        utoa(m.ID),
			"creator":       m.Creator,
			"collectionEnd": itoa(m.CollectionEnd),
			"gemCount":      utoa(uint64(m.GemCount)),
			"shares":        itoa(m.Shares),
			"damnShares":    itoa(m.DamnShares),
			"reward":        itoa(m.Reward),
			"pledge":        itoa(m.PledgePoints),
			"banned":        btoa(m.Banned()),
		},
	}
}

func mosaicChopEvent(symbol string, id uint64) *types.Event {
	return &types.Event{
		Type: EventTypeMosaicChop,
		Attributes: map[string]string{
			"community": symbol,
			"mosaic":    utoa(id),
		},
	}
}

func mosaicTopEvent(symbol string, m *Mosaic, place int, amount int64) *types.Event {
	return &types.Event{
		Type: EventTypeMosaicTop,
		Attributes: map[string]string{
			"community":  symbol,
			"mosaic":     utoa(m.ID),
			"place":      strconv.Itoa(place),
			"commRating": itoa(m.CommRating),
			"leadRating": itoa(m.LeadRating),
			"amount":     itoa(amount),
		},
	}
}

func gemStateEvent(symbol string, g *Gem) *types.Event {
	shares := g.Shares
	if shares < 0 {
		shares = -shares
	}
	return &types.Event{
		Type: EventTypeGemState,
		Attributes: map[string]string{
			"community": symbol,
			"mosaic":    utoa(g.MosaicID),
			"owner":     g.Owner,
			"creator":   g.Creator,
			"points":    itoa(g.Points),
			"pledge":    itoa(g.PledgePoints),
			"shares":    itoa(shares),
			"damn":      btoa(g.Damn),
		},
	}
}

func gemChopEvent(symbol string, g *Gem, reward int64) *types.Event {
	return &types.Event{
		Type: EventTypeGemChop,
		Attributes: map[string]string{
			"community": symbol,
			"mosaic":    utoa(g.MosaicID),
			"owner":     g.Owner,
			"creator":   g.Creator,
			"reward":    itoa(reward),
			"unfrozen":  itoa(g.Frozen()),
		},
	}
}

func inclusionEvent(symbol, account string, frozen int64) *types.Event {
	return &types.Event{
		Type: EventTypeInclusion,
		Attributes: map[string]string{
			"community": symbol,
			"account":   account,
			"frozen":    itoa(frozen),
		},
	}
}

func provisionEvent(symbol string, p *Provision, removed bool) *types.Event {
	return &types.Event{
		Type: EventTypeProvision,
		Attributes: map[string]string{
			"community": symbol,
			"grantor":   p.Grantor,
			"recipient": p.Recipient,
			"fee":       strconv.FormatUint(uint64(p.Fee), 10),
			"total":     itoa(p.Total),
			"frozen":    itoa(p.Frozen),
			"removed":   btoa(removed),
		},
	}
}

func tickEvent(symbol string, amount int64, winners int, unclaimed int64) *types.Event {
	return &types.Event{
		Type: EventTypeTick,
		Attributes: map[string]string{
			"community": symbol,
			"amount":    itoa(amount),
			"winners":   strconv.Itoa(winners),
			"unclaimed": itoa(unclaimed),
		},
	}
}
