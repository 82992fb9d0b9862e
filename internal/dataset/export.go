package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV serialises the full, unfiltered Dataset with its original header,
// delimiter and cell text.
func WriteCSV(w io.Writer, ds *Dataset) error {
	if ds == nil {
		return &DataUnavailableError{Err: fmt.Errorf("no dataset loaded")}
	}

	cw := csv.NewWriter(w)
	if ds.Delimiter != 0 {
		cw.Comma = ds.Delimiter
	}

	if err := cw.Write(ds.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(ds.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}
