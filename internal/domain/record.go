package domain

// WeeklyRecord is one island's turnip market data for one week.
// Records are values: copying one never shares state with the original.
type WeeklyRecord struct {
	Owner           string            `json:"owner"`
	IslandName      string            `json:"island_name"`
	Prices          [PriceSlots]Price `json:"prices"`
	WeekIndex       int               `json:"week_index"`
	PurchasePrice   int               `json:"purchase_price"`
	PreviousPattern PatternCategory   `json:"previous_pattern"`
	CurrentPattern  PatternCategory   `json:"current_pattern"`
}

// PresentPriceCount returns the number of non-missing price slots.
func (r WeeklyRecord) PresentPriceCount() int {
	count := 0
	for _, p := range r.Prices {
		if !p.IsMissing() {
			count++
		}
	}
	return count
}

// HasPatternsPopulated is true when both patterns resolved to a real category.
func (r WeeklyRecord) HasPatternsPopulated() bool {
	return r.CurrentPattern.IsKnown() && r.PreviousPattern.IsKnown()
}

// IsValid reports whether at least minPrices slots are present.
func (r WeeklyRecord) IsValid(minPrices int) bool {
	return r.PresentPriceCount() >= minPrices
}

// IsPerfect reports whether the record is usable as a labelled training sample:
// every price slot present and both patterns populated.
// The >= comparison leaves room for layouts with more slots.
func (r WeeklyRecord) IsPerfect() bool {
	return r.PresentPriceCount() >= PriceSlots && r.HasPatternsPopulated()
}

// PatternModifier scales the feature vector by the previous week's pattern.
func (r WeeklyRecord) PatternModifier() float64 {
	if !r.HasPatternsPopulated() {
		return DefaultPatternModifier
	}
	return float64(r.PreviousPattern.Ordinal()) / PatternModifierDivisor
}

// FeatureVector projects the record onto PriceSlots floats: each present price
// as a delta from the purchase price, missing slots as MissingPriceEpsilon,
// all multiplied by PatternModifier.
func (r WeeklyRecord) FeatureVector() []float64 {
	modifier := r.PatternModifier()
	features := make([]float64, PriceSlots)
	for i, p := range r.Prices {
		v, ok := p.Value()
		if ok {
			features[i] = float64(v-r.PurchasePrice) * modifier
		} else {
			features[i] = MissingPriceEpsilon * modifier
		}
	}
	return features
}

// PriceValues returns the present prices in slot order.
func (r WeeklyRecord) PriceValues() []float64 {
	values := make([]float64, 0, PriceSlots)
	for _, p := range r.Prices {
		if v, ok := p.Value(); ok {
			values = append(values, float64(v))
		}
	}
	return values
}

// WithCurrentPattern returns a copy of the record carrying a predicted current
// pattern. The receiver is left untouched.
func (r WeeklyRecord) WithCurrentPattern(p PatternCategory) WeeklyRecord {
	r.CurrentPattern = p
	return r
}
