package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// CSVSource reads a comma separated export of the spreadsheet.
type CSVSource struct {
	Path string
}

// Rows reads every record. Rows may differ in length.
func (s *CSVSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

// Name is the file path.
func (s *CSVSource) Name() string {
	return s.Path
}
