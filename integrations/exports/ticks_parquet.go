package exports

import (
	"fmt"
	"io"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type parquetRow struct {
	Community string `parquet:"name=community, type=BYTE_ARRAY, convertedtype=UTF8"`
	TickAt    string `parquet:"name=tick_at, type=BYTE_ARRAY, convertedtype=UTF8"`
	MosaicID  int64  `parquet:"name=mosaic_id, type=INT64, convertedtype=UINT_64"`
	Place     int32  `parquet:"name=place, type=INT32"`
	Grade     int64  `parquet:"name=grade, type=INT64"`
	Amount    int64  `parquet:"name=amount, type=INT64"`
	Remainder int64  `parquet:"name=remainder, type=INT64"`
}

// TicksParquet writes the rows as a snappy-compressed Parquet file to w.
func TicksParquet(w io.Writer, rows []TickRow) error {
	fw := writerfile.NewWriterFile(w)
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 1)
	if err != nil {
		return fmt.Errorf("exports: parquet schema: %w", err)
	}
	pw.RowGroupSize = 16 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		pr := &parquetRow{
			Community: row.Community,
			TickAt:    row.TickAt.UTC().Format(time.RFC3339),
			MosaicID:  int64(row.MosaicID),
			Place:     int32(row.Place),
			Grade:     row.Grade,
			Amount:    row.Amount,
			Remainder: row.Remainder,
		}
		if err := pw.Write(pr); err != nil {
			pw.WriteStop()
			return fmt.Errorf("exports: parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("exports: parquet flush: %w", err)
	}
	return nil
}
