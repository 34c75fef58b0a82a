package scoring

import (
	"fmt"
	"strings"
)

// Summary renders a human-readable report for one answer set: the total
// against the reference ceiling, the rating, then one line per category in
// evaluation order.
func Summary(answers AnswerSet) string {
	result := CalculateSessionScore(answers)

	var sb strings.Builder
	sb.WriteString("Session Scoring Results\n\n")
	fmt.Fprintf(&sb, "Total Score: %d/%d\n", result.TotalScore, result.MaxPossibleScore)
	fmt.Fprintf(&sb, "Session Rating: %s\n\n", result.SessionRating)
	sb.WriteString("Score Breakdown:")
	for _, entry := range result.ScoreBreakdown {
		fmt.Fprintf(&sb, "\n- %s: %d points", entry.Category, entry.Points)
	}
	return sb.String()
}
