// Package sources reads raw spreadsheet rows from files and memory.
package sources

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by FromPath for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// RowSource yields the raw rows of one spreadsheet. Rows keep their ragged
// shape: trailing empty cells may be absent.
type RowSource interface {
	Rows(ctx context.Context) ([][]string, error)
	Name() string
}

// FromPath picks a source by file extension. sheet only applies to workbooks.
func FromPath(path, sheet string) (RowSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return &XLSXSource{Path: path, Sheet: sheet}, nil
	case ".csv":
		return &CSVSource{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// StaticSource serves rows held in memory.
type StaticSource struct {
	Label string
	Data  [][]string
}

// NewStaticSource copies rows so later mutation by the caller is not observed.
func NewStaticSource(label string, rows [][]string) *StaticSource {
	data := make([][]string, len(rows))
	for i, row := range rows {
		data[i] = append([]string(nil), row...)
	}
	return &StaticSource{Label: label, Data: data}
}

// Rows returns the held rows.
func (s *StaticSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Data, nil
}

// Name returns the label.
func (s *StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}
