package exports

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"strconv"
	"time"
)

// TicksCSV builds a CSV export for the supplied rows and returns the
// serialised data alongside a SHA-256 checksum of the payload.
func TicksCSV(rows []TickRow) ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)
	header := []string{"community", "tick_at", "mosaic_id", "place", "grade", "amount", "remainder"}
	if err := writer.Write(header); err != nil {
		return nil, "", err
	}
	for _, row := range rows {
		record := []string{
			row.Community,
			row.TickAt.UTC().Format(time.RFC3339),
			strconv.FormatUint(row.MosaicID, 10),
			strconv.Itoa(row.Place),
			strconv.FormatInt(row.Grade, 10),
			strconv.FormatInt(row.Amount, 10),
			strconv.FormatInt(row.Remainder, 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}
	data := buffer.Bytes()
	checksum := sha256.Sum256(data)
	return data, hex.EncodeToString(checksum[:]), nil
}
