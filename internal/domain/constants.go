package domain

const (
	// PriceSlots is the number of price observations in one market week
	// (morning and afternoon, Monday through Saturday).
	PriceSlots = 12

	// DefaultMinPrices is the minimum number of present prices a record needs
	// to be considered valid.
	DefaultMinPrices = 4

	// MissingPriceEpsilon stands in for a missing price slot in feature vectors.
	MissingPriceEpsilon = 1e-5

	// PatternModifierDivisor scales the previous pattern ordinal into a modifier.
	PatternModifierDivisor = 4.0

	// DefaultPatternModifier is used when either pattern is not populated.
	DefaultPatternModifier = 5.0 / PatternModifierDivisor
)
