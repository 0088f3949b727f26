package emit

import "mosaicchain/native/gallery"

// Stat tracks the last emission of a community for each receiver.
type Stat struct {
	Symbol            string
	LastMosaicsReward int64
	LastLeadersReward int64
}

// Last returns the time of the previous emission for the receiver.
func (s *Stat) Last(forLeaders bool) int64 {
	if forLeaders {
		return s.LastLeadersReward
	}
	return s.LastMosaicsReward
}

func (s *Stat) touch(forLeaders bool, at int64) {
	if forLeaders {
		s.LastLeadersReward = at
		return
	}
	s.LastMosaicsReward = at
}

// Issuance describes one emission.
type Issuance struct {
	Symbol     string
	ForLeaders bool
	Receiver   string
	At         int64
	Elapsed    int64
	Supply     int64
	Amount     int64
	// Tick is set for mosaic emissions once the gallery has ranked and
	// credited the amount.
	Tick *gallery.TickResult
}
