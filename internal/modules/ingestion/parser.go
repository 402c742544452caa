// Package ingestion turns raw spreadsheet rows into weekly records.
package ingestion

import (
	"fmt"
	"strconv"

	"github.com/aristath/turnips/internal/domain"
)

// PatternClassifier resolves a free-text pattern label.
type PatternClassifier interface {
	Classify(label string) domain.PatternCategory
}

// Parser converts one raw row into a WeeklyRecord.
type Parser struct {
	classifier PatternClassifier
}

// NewParser creates a parser using classifier for the two pattern cells.
func NewParser(classifier PatternClassifier) *Parser {
	return &Parser{classifier: classifier}
}

// Parse builds a record from cells laid out as layout.
// The purchase price is mandatory; every other field degrades to missing
// or PatternEmpty when its cell is absent or unreadable.
// The returned error is always a *ParseFailure.
func (p *Parser) Parse(cells []string, weekIndex int, layout Layout) (record domain.WeeklyRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = domain.WeeklyRecord{}
			err = newParseFailure(cells, weekIndex, fmt.Errorf("%w: %v", ErrMalformedRow, r))
		}
	}()

	pos, ok := layoutPositions[layout]
	if !ok {
		return domain.WeeklyRecord{}, newParseFailure(cells, weekIndex, fmt.Errorf("%w: %q", ErrUnknownLayout, layout))
	}

	purchasePrice, err := parsePurchasePrice(cells, pos.purchasePrice)
	if err != nil {
		return domain.WeeklyRecord{}, newParseFailure(cells, weekIndex, err)
	}

	record = domain.WeeklyRecord{
		WeekIndex:       weekIndex,
		PurchasePrice:   purchasePrice,
		PreviousPattern: p.patternAt(cells, pos.previousPattern),
		CurrentPattern:  p.patternAt(cells, pos.currentPattern),
	}
	record.Owner, _ = cellAt(cells, pos.owner)
	if pos.island >= 0 {
		record.IslandName, _ = cellAt(cells, pos.island)
	}
	for i := range record.Prices {
		record.Prices[i] = priceAt(cells, pos.firstPrice+i)
	}

	return record, nil
}

func parsePurchasePrice(cells []string, index int) (int, error) {
	text, ok := cellAt(cells, index)
	if !ok || text == "" {
		return 0, ErrMissingPurchasePrice
	}
	if !isDigits(text) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPurchasePrice, text)
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPurchasePrice, err)
	}
	return v, nil
}

func (p *Parser) patternAt(cells []string, index int) domain.PatternCategory {
	text, ok := cellAt(cells, index)
	if !ok {
		return domain.PatternEmpty
	}
	return p.classifier.Classify(text)
}

// priceAt reads a price slot; only an all-digit cell counts as present.
func priceAt(cells []string, index int) domain.Price {
	text, ok := cellAt(cells, index)
	if !ok || !isDigits(text) {
		return domain.MissingPrice()
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return domain.MissingPrice()
	}
	return domain.NewPrice(v)
}

// cellAt returns the raw cell text and whether the row reaches index.
// Cells are not trimmed: " 77 " is not a price.
func cellAt(cells []string, index int) (string, bool) {
	if index < 0 || index >= len(cells) {
		return "", false
	}
	return cells[index], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
