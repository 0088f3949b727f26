package exports

import (
	"time"

	"mosaicchain/native/gallery"
)

// TickRow is one mosaic's payout in a reward tick, flattened for export.
type TickRow struct {
	Community string
	TickAt    time.Time
	MosaicID  uint64
	Place     int
	Grade     int64
	Amount    int64
	// Remainder is set on the row that absorbed the rounding remainder.
	Remainder int64
}

// Rows flattens reward ticks into export rows. A tick without allocations
// yields a single row with MosaicID zero carrying the unclaimed amount.
func Rows(ticks []*gallery.TickResult) []TickRow {
	var out []TickRow
	for _, tick := range ticks {
		if tick == nil {
			continue
		}
		at := time.Unix(tick.At, 0).UTC()
		if len(tick.Allocations) == 0 {
			out = append(out, TickRow{Community: tick.Symbol, TickAt: at, Amount: tick.Unclaimed})
			continue
		}
		for i, alloc := range tick.Allocations {
			row := TickRow{
				Community: tick.Symbol,
				TickAt:    at,
				MosaicID:  alloc.MosaicID,
				Place:     alloc.Place,
				Grade:     alloc.Grade,
				Amount:    alloc.Amount,
			}
			if i == 0 {
				row.Remainder = tick.Remainder
			}
			out = append(out, row)
		}
	}
	return out
}
