// Package report serializes batch results and catalog exports to their
// delivery formats.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/franksops/pixport/engine"
)

// WriteCSV writes header rows followed by data rows to path, creating or
// truncating the file.
func WriteCSV(path string, headers [][]string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer f.Close()

	if err := writeRecords(f, headers, rows); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return f.Close()
}

// WriteTransferResults writes the two-column transfer report, one row per
// outcome in the order given. Callers sort beforehand when they want
// reproducible row order.
func WriteTransferResults(w io.Writer, outcomes []engine.Outcome) error {
	rows := make([][]string, 0, len(outcomes))
	for _, out := range outcomes {
		rows = append(rows, []string{out.Name, out.URL})
	}
	return writeRecords(w, [][]string{{"local_filename", "cloudinary_url"}}, rows)
}

func writeRecords(w io.Writer, headers, rows [][]string) error {
	cw := csv.NewWriter(w)
	for _, h := range headers {
		if err := cw.Write(h); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
