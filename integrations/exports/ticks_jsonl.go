package exports

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// TicksJSONL builds a JSON Lines export for the supplied rows and returns
// the serialised payload alongside a checksum.
func TicksJSONL(rows []TickRow) ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	for _, row := range rows {
		payload := map[string]interface{}{
			"community": row.Community,
			"tick_at":   row.TickAt.UTC().Format(time.RFC3339),
			"mosaic_id": row.MosaicID,
			"place":     row.Place,
			"grade":     row.Grade,
			"amount":    row.Amount,
			"remainder": row.Remainder,
		}
		if err := encoder.Encode(payload); err != nil {
			return nil, "", err
		}
	}
	data := buffer.Bytes()
	checksum := sha256.Sum256(data)
	return data, hex.EncodeToString(checksum[:]), nil
}
