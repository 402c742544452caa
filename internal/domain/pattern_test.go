package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternCategory_Ordinals(t *testing.T) {
	assert.Equal(t, -1, PatternUnknown.Ordinal())
	assert.Equal(t, 0, PatternEmpty.Ordinal())
	assert.Equal(t, 1, PatternDecreasing.Ordinal())
	assert.Equal(t, 2, PatternRandom.Ordinal())
	assert.Equal(t, 3, PatternHighSpike.Ordinal())
	assert.Equal(t, 4, PatternSmallSpike.Ordinal())
}

func TestPatternCategory_IsKnown(t *testing.T) {
	assert.False(t, PatternUnknown.IsKnown())
	assert.False(t, PatternEmpty.IsKnown())
	for _, p := range KnownPatterns() {
		assert.True(t, p.IsKnown(), p.String())
	}
	assert.False(t, PatternCategory(7).IsKnown())
}

func TestPatternCategory_String(t *testing.T) {
	assert.Equal(t, "High Spike", PatternHighSpike.String())
	assert.Equal(t, "Empty", PatternEmpty.String())
	assert.Equal(t, "PatternCategory(9)", PatternCategory(9).String())
}

func TestParsePatternCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected PatternCategory
		wantErr  bool
	}{
		{name: "exact display name", input: "Small Spike", expected: PatternSmallSpike},
		{name: "case insensitive", input: "decreasing", expected: PatternDecreasing},
		{name: "surrounding space", input: "  Random ", expected: PatternRandom},
		{name: "empty category", input: "Empty", expected: PatternEmpty},
		{name: "not a category", input: "sideways", expected: PatternUnknown, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePatternCategory(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPatternFromOrdinal(t *testing.T) {
	p, err := PatternFromOrdinal(3)
	require.NoError(t, err)
	assert.Equal(t, PatternHighSpike, p)

	p, err = PatternFromOrdinal(-1)
	require.NoError(t, err)
	assert.Equal(t, PatternUnknown, p)

	_, err = PatternFromOrdinal(5)
	assert.Error(t, err)
}

func TestPatternCategory_JSON(t *testing.T) {
	data, err := json.Marshal(PatternSmallSpike)
	require.NoError(t, err)
	assert.JSONEq(t, `"Small Spike"`, string(data))

	var byName PatternCategory
	require.NoError(t, json.Unmarshal([]byte(`"high spike"`), &byName))
	assert.Equal(t, PatternHighSpike, byName)

	var byOrdinal PatternCategory
	require.NoError(t, json.Unmarshal([]byte(`2`), &byOrdinal))
	assert.Equal(t, PatternRandom, byOrdinal)

	var bad PatternCategory
	assert.Error(t, json.Unmarshal([]byte(`12`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}
