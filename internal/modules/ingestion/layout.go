package ingestion

import (
	"fmt"
	"strings"

	"github.com/aristath/turnips/internal/domain"
)

// Layout identifies a raw row cell arrangement.
type Layout string

const (
	// LayoutCommunity is the shared community sheet: owner, island, purchase
	// price, 12 prices, current pattern, previous pattern.
	LayoutCommunity Layout = "community"
	// LayoutPersonal is a personal tracking sheet without an island column and
	// with two unused columns before the prices.
	LayoutPersonal Layout = "personal"
)

// cellPositions holds zero-based cell indices for one layout.
// island is -1 when the layout has no island column.
type cellPositions struct {
	owner           int
	island          int
	purchasePrice   int
	firstPrice      int
	currentPattern  int
	previousPattern int
}

var layoutPositions = map[Layout]cellPositions{
	LayoutCommunity: {owner: 0, island: 1, purchasePrice: 2, firstPrice: 3, currentPattern: 15, previousPattern: 16},
	LayoutPersonal:  {owner: 0, island: -1, purchasePrice: 1, firstPrice: 4, currentPattern: 16, previousPattern: 17},
}

// ParseLayout validates a layout name.
func ParseLayout(name string) (Layout, error) {
	l := Layout(strings.ToLower(strings.TrimSpace(name)))
	if !l.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	return l, nil
}

// IsValid reports whether l is a supported layout.
func (l Layout) IsValid() bool {
	_, ok := layoutPositions[l]
	return ok
}

func (l Layout) String() string {
	return string(l)
}

// Width is the number of cells a complete row has in this layout.
func (l Layout) Width() int {
	pos, ok := layoutPositions[l]
	if !ok {
		return 0
	}
	return max(pos.previousPattern, pos.firstPrice+domain.PriceSlots-1) + 1
}
