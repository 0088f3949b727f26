package control

// Leader is a registered leader candidate of a community.
type Leader struct {
	Account string
	URL     string
	Active  bool
	// Votes counts the voters backing the leader.
	Votes uint64
	// Weight is the summed voting power of those voters.
	Weight uint64
	// Unclaimed holds emitted points credited to the leader and not yet
	// transferred.
	Unclaimed uint64
}

// Vote is one voter's backing of a leader. Power is fixed when the vote is
// cast and withdrawn unchanged on unvote.
type Vote struct {
	Leader string
	Pct    uint16
	Power  uint64
}

type voterRecord struct {
	Votes []Vote
}

type leaderIndex struct {
	Accounts []string
}

// Stat is the per-community control ledger.
type Stat struct {
	Symbol string
	// Retained is emission left over after the last leader distribution.
	Retained uint64
}
