// Package dataset projects weekly records into the feature matrix and label
// vector consumed by classifier training.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/turnips/internal/domain"
)

// Filter selects which records take part in a projection.
type Filter struct {
	// PerfectOnly keeps only fully labelled records with every price present.
	PerfectOnly bool `json:"perfect_only"`
	// MinPrices is the validity threshold used when PerfectOnly is false.
	MinPrices int `json:"min_prices"`
}

// PerfectFilter selects records usable for supervised training.
func PerfectFilter() Filter {
	return Filter{PerfectOnly: true, MinPrices: domain.PriceSlots}
}

// ValidFilter selects every record with at least minPrices prices.
func ValidFilter(minPrices int) Filter {
	return Filter{MinPrices: minPrices}
}

// Accepts reports whether record passes the filter.
func (f Filter) Accepts(record domain.WeeklyRecord) bool {
	if f.PerfectOnly {
		return record.IsPerfect()
	}
	return record.IsValid(f.MinPrices)
}

// Dataset is a row-aligned feature matrix and label vector: Features[i] and
// Labels[i] both come from Records[i].
type Dataset struct {
	Features [][]float64           `json:"features"`
	Labels   []int                 `json:"labels"`
	Records  []domain.WeeklyRecord `json:"-"`
	Filter   Filter                `json:"filter"`
}

// Build selects the records accepted by filter and projects them.
func Build(records []domain.WeeklyRecord, filter Filter) *Dataset {
	selected := Select(records, filter)
	ds := &Dataset{
		Features: make([][]float64, len(selected)),
		Labels:   make([]int, len(selected)),
		Records:  selected,
		Filter:   filter,
	}
	for i, record := range selected {
		ds.Features[i] = record.FeatureVector()
		ds.Labels[i] = record.CurrentPattern.Ordinal()
	}
	return ds
}

// Select returns the records accepted by filter, preserving input order.
func Select(records []domain.WeeklyRecord, filter Filter) []domain.WeeklyRecord {
	selected := make([]domain.WeeklyRecord, 0, len(records))
	for _, record := range records {
		if filter.Accepts(record) {
			selected = append(selected, record)
		}
	}
	return selected
}

// FeatureMatrix returns the N x PriceSlots feature matrix for records passing filter.
func FeatureMatrix(records []domain.WeeklyRecord, filter Filter) [][]float64 {
	return Build(records, filter).Features
}

// LabelVector returns the current pattern ordinals for records passing filter,
// in the same order as FeatureMatrix.
func LabelVector(records []domain.WeeklyRecord, filter Filter) []int {
	return Build(records, filter).Labels
}

// Len is the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Matrix returns the features as a dense matrix. An empty dataset yields an
// empty (zero-dimension) matrix.
func (d *Dataset) Matrix() *mat.Dense {
	if d.Len() == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, 0, d.Len()*domain.PriceSlots)
	for _, row := range d.Features {
		data = append(data, row...)
	}
	return mat.NewDense(d.Len(), domain.PriceSlots, data)
}

// LabelVec returns the labels as a dense vector.
func (d *Dataset) LabelVec() *mat.VecDense {
	if d.Len() == 0 {
		return &mat.VecDense{}
	}
	data := make([]float64, d.Len())
	for i, label := range d.Labels {
		data[i] = float64(label)
	}
	return mat.NewVecDense(d.Len(), data)
}
