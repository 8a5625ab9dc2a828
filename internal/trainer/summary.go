package trainer

import (
	"fmt"
	"math"
	"sort"
)

// Summary is derived from a run's counters and reaction samples.
// Reaction fields are only meaningful when Samples > 0.
type Summary struct {
	Hits     int
	Misses   int
	Accuracy float64
	Samples  int
	AvgMs    float64
	MedianMs float64
	BestMs   float64
}

// Summarize computes accuracy and reaction statistics.
func Summarize(hits, misses int, reactionsMs []float64) Summary {
	s := Summary{
		Hits:     hits,
		Misses:   misses,
		Accuracy: Accuracy(hits, misses),
		Samples:  len(reactionsMs),
	}
	s.AvgMs, _ = Mean(reactionsMs)
	s.MedianMs, _ = Median(reactionsMs)
	s.BestMs, _ = Min(reactionsMs)
	return s
}

// Accuracy returns hits/(hits+misses), or 0 when nothing was shot.
func Accuracy(hits, misses int) float64 {
	total := hits + misses
	if total <= 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Mean returns the arithmetic mean; ok is false for an empty slice.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Median returns the middle value, averaging the two middle values for
// even lengths.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// Min returns the smallest value.
func Min(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	best := values[0]
	for _, v := range values[1:] {
		if v < best {
			best = v
		}
	}
	return best, true
}

// FormatMs renders a rounded millisecond value, or "-" when absent.
func FormatMs(ms float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d ms", int64(math.Round(ms)))
}
