// Package analytics derives descriptive statistics from a week's price curve.
package analytics

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/turnips/internal/domain"
)

// SmoothingPeriod is the moving average window applied to the curve.
const SmoothingPeriod = 3

// CurveSummary describes a single weekly price curve.
type CurveSummary struct {
	PresentPrices   int       `json:"present_prices"`
	Min             float64   `json:"min"`
	Max             float64   `json:"max"`
	Mean            float64   `json:"mean"`
	StdDev          float64   `json:"std_dev"`
	PeakSlot        int       `json:"peak_slot"`
	PeakRatio       float64   `json:"peak_ratio"`
	Filled          []float64 `json:"filled"`
	SMA3            []float64 `json:"sma3"`
	MaxRateOfChange float64   `json:"max_rate_of_change"`
	DecreasingRun   int       `json:"decreasing_run"`
}

// Summarize computes the curve summary of record. A record with no present
// prices yields a zero summary with PeakSlot -1.
func Summarize(record domain.WeeklyRecord) CurveSummary {
	present := record.PriceValues()
	if len(present) == 0 {
		return CurveSummary{PeakSlot: -1}
	}

	summary := CurveSummary{
		PresentPrices: len(present),
		Min:           floats.Min(present),
		Max:           floats.Max(present),
		Mean:          stat.Mean(present, nil),
		DecreasingRun: decreasingRun(present),
	}
	if len(present) > 1 {
		summary.StdDev = stat.StdDev(present, nil)
	}

	filled := FillGaps(record.Prices)
	summary.Filled = filled
	summary.PeakSlot = peakSlot(record.Prices)
	if record.PurchasePrice > 0 {
		summary.PeakRatio = summary.Max / float64(record.PurchasePrice)
	}
	summary.SMA3 = smooth(filled, SmoothingPeriod)
	summary.MaxRateOfChange = maxRateOfChange(filled)

	return summary
}

// FillGaps returns the curve with each missing slot carrying the previous
// present price forward. Leading gaps take the first present price. Returns
// nil when no slot is present.
func FillGaps(prices [domain.PriceSlots]domain.Price) []float64 {
	first := -1
	for i, p := range prices {
		if !p.IsMissing() {
			first = i
			break
		}
	}
	if first < 0 {
		return nil
	}

	filled := make([]float64, len(prices))
	v, _ := prices[first].Value()
	last := float64(v)
	for i, p := range prices {
		if v, ok := p.Value(); ok {
			last = float64(v)
		}
		filled[i] = last
	}
	return filled
}

// peakSlot is the first slot holding the maximum present price.
func peakSlot(prices [domain.PriceSlots]domain.Price) int {
	slot, best := -1, math.MinInt
	for i, p := range prices {
		if v, ok := p.Value(); ok && v > best {
			slot, best = i, v
		}
	}
	return slot
}

func smooth(curve []float64, period int) []float64 {
	if len(curve) < period {
		return make([]float64, len(curve))
	}
	sma := talib.Sma(curve, period)
	for i := range sma {
		if i < period-1 || math.IsNaN(sma[i]) {
			sma[i] = 0
		}
	}
	return sma
}

func maxRateOfChange(curve []float64) float64 {
	if len(curve) < 2 {
		return 0
	}
	roc := talib.Roc(curve, 1)
	best := 0.0
	for i := 1; i < len(roc); i++ {
		if !math.IsNaN(roc[i]) && !math.IsInf(roc[i], 0) && roc[i] > best {
			best = roc[i]
		}
	}
	return best
}

// decreasingRun is the length of the longest strictly decreasing sequence of
// consecutive values.
func decreasingRun(values []float64) int {
	longest, current := 0, 0
	for i, v := range values {
		if i > 0 && v < values[i-1] {
			current++
		} else {
			current = 1
		}
		longest = max(longest, current)
	}
	return longest
}
