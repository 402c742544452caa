package ingestion

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingPurchasePrice means the purchase price cell is absent or empty
	ErrMissingPurchasePrice = errors.New("missing purchase price")
	// ErrInvalidPurchasePrice means the purchase price cell is not a non-negative integer
	ErrInvalidPurchasePrice = errors.New("invalid purchase price")
	// ErrUnknownLayout means the caller declared an unsupported layout
	ErrUnknownLayout = errors.New("unknown row layout")
	// ErrMalformedRow wraps a failure recovered during field extraction
	ErrMalformedRow = errors.New("malformed row")
)

// ParseFailure reports a row that could not become a record.
// It is row-scoped: the batch continues without the row.
type ParseFailure struct {
	Row       []string `json:"row"`
	WeekIndex int      `json:"week_index"`
	Reason    string   `json:"reason"`
	Err       error    `json:"-"`
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("unusable row in week %d [%s]: %s", f.WeekIndex, strings.Join(f.Row, ","), f.Reason)
}

func (f *ParseFailure) Unwrap() error {
	return f.Err
}

func newParseFailure(row []string, weekIndex int, err error) *ParseFailure {
	return &ParseFailure{
		Row:       append([]string(nil), row...),
		WeekIndex: weekIndex,
		Reason:    err.Error(),
		Err:       err,
	}
}
