package exports

import (
	"bytes"
	"strings"
	"testing"

	"mosaicchain/native/gallery"
)

func sampleTicks() []*gallery.TickResult {
	return []*gallery.TickResult{
		{
			Symbol: "GOLOS",
			At:     1_700_000_000,
			Amount: 100,
			Allocations: []gallery.Allocation{
				{MosaicID: 7, Place: 0, Grade: 4750, Amount: 60},
				{MosaicID: 9, Place: 1, Grade: 3250, Amount: 39},
			},
			Remainder: 1,
		},
		{Symbol: "GOLOS", At: 1_700_003_600, Amount: 18, Unclaimed: 18},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleTicks())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Remainder != 1 || rows[1].Remainder != 0 {
		t.Fatalf("remainder should sit on the first allocation: %+v", rows[:2])
	}
	if rows[2].MosaicID != 0 || rows[2].Amount != 18 {
		t.Fatalf("unexpected unclaimed row: %+v", rows[2])
	}
}

func TestTicksCSV(t *testing.T) {
	data, checksum, err := TicksCSV(Rows(sampleTicks()))
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(checksum) != 64 {
		t.Fatalf("unexpected checksum %q", checksum)
	}
	output := string(data)
	if !strings.HasPrefix(output, "community,tick_at,mosaic_id,place,grade,amount,remainder\n") {
		t.Fatalf("missing header: %s", output)
	}
	if !strings.Contains(output, "GOLOS,2023-11-14T22:13:20Z,7,0,4750,60,1\n") {
		t.Fatalf("missing allocation row: %s", output)
	}
	_, again, err := TicksCSV(Rows(sampleTicks()))
	if err != nil || again != checksum {
		t.Fatalf("checksum is not deterministic")
	}
}

func TestTicksJSONL(t *testing.T) {
	data, checksum, err := TicksJSONL(Rows(sampleTicks()))
	if err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	if checksum == "" || strings.Count(string(data), "\n") != 3 {
		t.Fatalf("unexpected payload: %s", data)
	}
	if !strings.Contains(string(data), "\"mosaic_id\":9") {
		t.Fatalf("missing mosaic: %s", data)
	}
}

func TestTicksParquet(t *testing.T) {
	var buf bytes.Buffer
	if err := TicksParquet(&buf, Rows(sampleTicks())); err != nil {
		t.Fatalf("parquet: %v", err)
	}
	data := buf.Bytes()
	if len(data) < 8 || string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
		t.Fatalf("output is not a parquet file")
	}
}
