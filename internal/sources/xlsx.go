package sources

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXSource reads one worksheet of an Excel workbook.
type XLSXSource struct {
	Path string
	// Sheet defaults to the first worksheet when empty.
	Sheet string
}

// Rows reads every row of the sheet.
func (s *XLSXSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("no sheets found in %s", s.Path)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// Name identifies the workbook and sheet.
func (s *XLSXSource) Name() string {
	if s.Sheet == "" {
		return s.Path
	}
	return s.Path + "#" + s.Sheet
}
