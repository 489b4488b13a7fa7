package jobscope

import "math"

// Accumulator folds a stream of values into the moments needed for a summary.
// It is a value type; Add returns an updated copy so accumulators stored in
// shared state snapshots are never mutated in place.
type Accumulator struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
	SumSq float64 `json:"-"`
}

// Add folds one value into the accumulator.
func (a Accumulator) Add(v float64) Accumulator {
	if a.Count == 0 || v < a.Min {
		a.Min = v
	}
	if a.Count == 0 || v > a.Max {
		a.Max = v
	}
	a.Count++
	a.Sum += v
	a.SumSq += v * v
	return a
}

// Summary is the reported statistical digest of one metric column.
type Summary struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Stdev float64 `json:"stdev"`
}

// Summary derives the digest. Stdev uses the population formula; a group of
// one value reports 0.
func (a Accumulator) Summary() Summary {
	if a.Count == 0 {
		return Summary{}
	}
	n := float64(a.Count)
	mean := a.Sum / n
	variance := a.SumSq/n - mean*mean
	// Guards against tiny negative variance from float cancellation.
	if variance < 0 {
		variance = 0
	}
	return Summary{
		Count: a.Count,
		Min:   a.Min,
		Mean:  mean,
		Max:   a.Max,
		Stdev: math.Sqrt(variance),
	}
}
