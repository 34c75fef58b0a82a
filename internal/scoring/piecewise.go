package scoring

import "sort"

// BreakTimeScore maps break duration in minutes to points. The bands are
// deliberately non-monotonic: a moderate break scores best, while both
// too-short and too-long breaks score 0. Boundary semantics are exact and
// must not be "normalized".
func BreakTimeScore(minutes float64) int {
	switch {
	case minutes <= 5:
		return 0
	case minutes < 10:
		return 2
	case minutes <= 35:
		return 5
	case minutes <= 40:
		return 3
	default:
		return 0
	}
}

// Feedback threshold tables: highest threshold <= the input wins.
var (
	studentFeedbackThresholds = map[int]int{
		95: 10,
		90: 8,
		85: 6,
		80: 4,
		75: 2,
	}

	coordinatorFeedbackThresholds = map[int]int{
		95: 5,
		90: 4,
		85: 3,
		80: 2,
		75: 1,
	}
)

// FeedbackScore returns the points for the highest threshold that the score
// meets or exceeds, or 0 when the score is below every threshold.
func FeedbackScore(score float64, thresholds map[int]int) int {
	keys := make([]int, 0, len(thresholds))
	for k := range thresholds {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	for _, threshold := range keys {
		if score >= float64(threshold) {
			return thresholds[threshold]
		}
	}
	return 0
}
