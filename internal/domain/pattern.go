package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PatternCategory is the shape of a week's price curve.
// The integer values are stable ordinals used in feature arithmetic and as
// classifier labels; they must never be reassigned.
type PatternCategory int

const (
	PatternUnknown    PatternCategory = -1 // label supplied but unresolvable
	PatternEmpty      PatternCategory = 0  // no label supplied
	PatternDecreasing PatternCategory = 1
	PatternRandom     PatternCategory = 2
	PatternHighSpike  PatternCategory = 3
	PatternSmallSpike PatternCategory = 4
)

var patternNames = map[PatternCategory]string{
	PatternUnknown:    "Unknown",
	PatternEmpty:      "Empty",
	PatternDecreasing: "Decreasing",
	PatternRandom:     "Random",
	PatternHighSpike:  "High Spike",
	PatternSmallSpike: "Small Spike",
}

// KnownPatterns lists the four real categories in ordinal order.
func KnownPatterns() []PatternCategory {
	return []PatternCategory{PatternDecreasing, PatternRandom, PatternHighSpike, PatternSmallSpike}
}

// Ordinal returns the numeric weight attached to the category.
func (p PatternCategory) Ordinal() int {
	return int(p)
}

// IsKnown reports whether p is one of the four real categories.
func (p PatternCategory) IsKnown() bool {
	return p >= PatternDecreasing && p <= PatternSmallSpike
}

// IsValid reports whether p is any declared category, including Empty and Unknown.
func (p PatternCategory) IsValid() bool {
	_, ok := patternNames[p]
	return ok
}

// String returns the display name of the category.
func (p PatternCategory) String() string {
	if name, ok := patternNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PatternCategory(%d)", int(p))
}

// ParsePatternCategory maps a display name (case-insensitive) back to its category.
func ParsePatternCategory(name string) (PatternCategory, error) {
	for p, n := range patternNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return PatternUnknown, fmt.Errorf("unknown pattern category %q", name)
}

// PatternFromOrdinal converts a stored ordinal back into a category.
func PatternFromOrdinal(ordinal int) (PatternCategory, error) {
	p := PatternCategory(ordinal)
	if !p.IsValid() {
		return PatternUnknown, fmt.Errorf("invalid pattern ordinal %d", ordinal)
	}
	return p, nil
}

// MarshalJSON encodes the category as its display name.
func (p PatternCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts either a display name or an ordinal.
func (p *PatternCategory) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParsePatternCategory(name)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}

	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err != nil {
		return fmt.Errorf("pattern category must be a name or ordinal: %w", err)
	}
	parsed, err := PatternFromOrdinal(ordinal)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
