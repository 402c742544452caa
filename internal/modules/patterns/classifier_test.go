package patterns

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/turnips/internal/domain"
)

func TestClassifier_EmptyLabel(t *testing.T) {
	configs := []Options{
		DefaultOptions(),
		{MaxDistance: 0, UseDistanceMetric: true},
		{MaxDistance: 10, UseDistanceMetric: false},
	}

	for _, opts := range configs {
		assert.Equal(t, domain.PatternEmpty, NewClassifier(opts).Classify(""))
	}
}

func alternateCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i%2 == 0 {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestClassifier_EveryAliasInAnyCase(t *testing.T) {
	c := NewClassifier(DefaultOptions())

	for _, group := range Aliases() {
		for _, alias := range group.Aliases {
			assert.Equal(t, group.Pattern, c.Classify(alias), alias)
			assert.Equal(t, group.Pattern, c.Classify(strings.ToUpper(alias)), alias)
			assert.Equal(t, group.Pattern, c.Classify(alternateCase(alias)), alias)
		}
	}
}

func TestClassifier_Labels(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected domain.PatternCategory
	}{
		{"display name", "High Spike", domain.PatternHighSpike},
		{"abbreviation", "SS", domain.PatternSmallSpike},
		{"large spike shorthand", "ls", domain.PatternHighSpike},
		{"one-character typo", "big spiike", domain.PatternHighSpike},
		{"shouted variant", "BIIIIIG SPIKE", domain.PatternHighSpike},
		{"truncated decreasing", "Decreasin", domain.PatternDecreasing},
		{"truncated fluctuating", "fluctuatin", domain.PatternRandom},
		{"slow spike typo", "slow spkie", domain.PatternSmallSpike},
		{"far from every alias", "zzzzzzzzzz", domain.PatternUnknown},
		{"short miss is not fuzzy matched", "xyz", domain.PatternUnknown},
		// "d" is within 4 edits of any 4-letter label, and Decreasing comes first
		{"table order beats closeness", "spik", domain.PatternDecreasing},
	}

	c := NewClassifier(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.label))
		})
	}
}

func TestClassifier_Idempotent(t *testing.T) {
	c := NewClassifier(DefaultOptions())
	for _, label := range []string{"", "Random", "BIIIIIG SPIKE", "zzzzzzzzzz", "smol", "spik"} {
		assert.Equal(t, c.Classify(label), c.Classify(label), label)
	}
}

func TestClassifier_DistanceMetricDisabled(t *testing.T) {
	c := NewClassifier(Options{MaxDistance: DefaultMaxDistance, UseDistanceMetric: false})

	assert.Equal(t, domain.PatternHighSpike, c.Classify("Big Spike"))
	assert.Equal(t, domain.PatternUnknown, c.Classify("big spiike"))
}

func TestClassifier_NegativeDistanceClamped(t *testing.T) {
	c := NewClassifier(Options{MaxDistance: -3, UseDistanceMetric: true})

	assert.Equal(t, 0, c.Options().MaxDistance)
	assert.Equal(t, domain.PatternRandom, c.Classify("RANDOM"))
	assert.Equal(t, domain.PatternUnknown, c.Classify("randon"))
}

func TestAliases_ReturnsCopy(t *testing.T) {
	groups := Aliases()
	groups[0].Aliases[0] = "tampered"

	assert.Equal(t, "decreasing", Aliases()[0].Aliases[0])
	assert.Equal(t, domain.PatternDecreasing, NewClassifier(DefaultOptions()).Classify("decreasing"))
}

func TestAliases_Order(t *testing.T) {
	var order []domain.PatternCategory
	for _, g := range Aliases() {
		order = append(order, g.Pattern)
	}

	assert.Equal(t, []domain.PatternCategory{
		domain.PatternDecreasing,
		domain.PatternHighSpike,
		domain.PatternSmallSpike,
		domain.PatternRandom,
	}, order)
}
