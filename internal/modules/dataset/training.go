package dataset

import (
	"fmt"

	"github.com/aristath/turnips/internal/domain"
)

// Predictor is a trained classifier supplied by the training layer.
type Predictor interface {
	Predict(features []float64) (domain.PatternCategory, error)
}

// PerfectData returns the labelled training set.
func PerfectData(records []domain.WeeklyRecord) *Dataset {
	return Build(records, PerfectFilter())
}

// AllData returns every valid record, labelled or not.
func AllData(records []domain.WeeklyRecord, minPrices int) *Dataset {
	return Build(records, ValidFilter(minPrices))
}

// PopulateCurrentPatterns returns a copy of records where every record lacking
// populated patterns carries the predictor's current pattern. Records that are
// already labelled pass through unchanged; the input slice is not modified.
func PopulateCurrentPatterns(records []domain.WeeklyRecord, predictor Predictor) ([]domain.WeeklyRecord, error) {
	populated := make([]domain.WeeklyRecord, len(records))
	for i, record := range records {
		if record.HasPatternsPopulated() {
			populated[i] = record
			continue
		}

		predicted, err := predictor.Predict(record.FeatureVector())
		if err != nil {
			return nil, fmt.Errorf("failed to predict pattern for %s week %d: %w", record.Owner, record.WeekIndex, err)
		}
		populated[i] = record.WithCurrentPattern(predicted)
	}
	return populated, nil
}

// ClassCounts tallies labels per pattern category.
func ClassCounts(labels []int) map[domain.PatternCategory]int {
	counts := make(map[domain.PatternCategory]int)
	for _, label := range labels {
		counts[domain.PatternCategory(label)]++
	}
	return counts
}

// MaxCVFolds is the size of the rarest class: the largest fold count a
// stratified cross-validation over labels can use. Zero for no labels.
func MaxCVFolds(labels []int) int {
	counts := ClassCounts(labels)
	smallest := 0
	for _, n := range counts {
		if smallest == 0 || n < smallest {
			smallest = n
		}
	}
	return smallest
}
