package scoring

// Field Score Tables: static lookups from a categorical answer to its point
// contribution. Lookups are exact-string-match and case-sensitive; anything
// unrecognized (or missing, or not a string) contributes 0.
var (
	cameraQualityScores = map[string]int{
		"Clear":            5,
		"Not clear enough": 3,
		"Bad quality":      1,
		"NA":               0,
	}

	cameraCoverageScores = map[string]int{
		"Full coverage":                          5,
		"Instructor isn't appear":                3,
		"Some students are not appear":           2,
		"Students are not appear":                1,
		"Neither students nor instructor appear": 0,
	}

	soundScores = map[string]int{
		"Working excellent": 5,
		"Good quality":      3,
		"Bad quality":       1,
		"Not working":       0,
	}

	internetScores = map[string]int{
		"Excellent":            5,
		"Frequent Disconnects": 3,
		"Poor Connection":      1,
		"Non-Operational":      0,
	}

	englishScores = map[string]int{
		"Excellent": 5,
		"Good":      3,
		"Bad":       0,
		"NA":        0,
	}
)

// tableScore resolves a categorical answer against a score table.
func tableScore(table map[string]int, answer any) int {
	s, ok := answer.(string)
	if !ok {
		return 0
	}
	return table[s]
}

// binaryScore awards fixed points when the answer equals the ideal value,
// otherwise 0. The slang-language field inverts the usual polarity: its ideal
// answer is "No".
func binaryScore(answer any, ideal string, points int) int {
	if s, ok := answer.(string); ok && s == ideal {
		return points
	}
	return 0
}
