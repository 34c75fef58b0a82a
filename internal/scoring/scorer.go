package scoring

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// AnswerSet is the caller-supplied mapping of form field names to submitted
// values for one session audit. The engine never mutates it and never fails
// on it: absent fields, unknown strings, and non-numeric values for numeric
// fields all degrade to a zero contribution.
type AnswerSet map[string]any

// Session ratings, ordered worst to best.
const (
	RatingBad       = "Bad"
	RatingGood      = "Good"
	RatingVeryGood  = "Very Good"
	RatingExcellent = "Excellent"
)

// MaxPossibleScore is the reference ceiling under expected inputs. It is not
// enforced: the total is whatever the breakdown sums to.
const MaxPossibleScore = 100

// BreakdownEntry is one category's contribution to the total.
type BreakdownEntry struct {
	Category string `json:"category"`
	Points   int    `json:"points"`
}

// Breakdown is the ordered per-category contribution list. Order follows the
// fixed evaluation order and is part of the contract: downstream consumers
// (CSV columns, display tables) rely on it.
type Breakdown []BreakdownEntry

// MarshalJSON renders the breakdown as a JSON object whose keys appear in
// evaluation order, matching the shape persistence and display expect.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(entry.Points))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a breakdown stored by MarshalJSON. JSON objects do
// not guarantee key order, so entries are realigned to the canonical
// evaluation order; unknown keys are dropped.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entries := make(Breakdown, 0, len(evaluators))
	for _, ev := range evaluators {
		entries = append(entries, BreakdownEntry{Category: ev.label, Points: raw[ev.label]})
	}
	*b = entries
	return nil
}

// Points returns the contribution recorded for a category, 0 if absent.
func (b Breakdown) Points(category string) int {
	for _, entry := range b {
		if entry.Category == category {
			return entry.Points
		}
	}
	return 0
}

// ScoreResult is the outcome of scoring one answer set.
type ScoreResult struct {
	TotalScore       int       `json:"total_score"`
	SessionRating    string    `json:"session_rating"`
	ScoreBreakdown   Breakdown `json:"score_breakdown"`
	MaxPossibleScore int       `json:"max_possible_score"`
}

// evaluators is the fixed evaluation order: an explicit (label, evaluator)
// list rather than map iteration, because the order is an output contract.
// Labels intentionally differ from field names for a few categories
// ("Full Session", "English language", "Slang language", "Break Time").
var evaluators = []struct {
	label string
	eval  func(AnswerSet) int
}{
	{"Camera", func(a AnswerSet) int { return binaryScore(a["Camera"], "Working", 5) }},
	{"Camera quality", func(a AnswerSet) int { return tableScore(cameraQualityScores, a["Camera quality"]) }},
	{"Camera Coverage", func(a AnswerSet) int { return tableScore(cameraCoverageScores, a["Camera Coverage"]) }},
	{"Sound", func(a AnswerSet) int { return tableScore(soundScores, a["Sound"]) }},
	{"Internet connection", func(a AnswerSet) int { return tableScore(internetScores, a["Internet connection"]) }},
	{"Full Session", func(a AnswerSet) int { return binaryScore(a["Full Session?"], "Yes", 10) }},
	{"Students seated", func(a AnswerSet) int { return binaryScore(a["Students seated"], "Yes", 5) }},
	{"Coordinator appearance", func(a AnswerSet) int { return binaryScore(a["Coordinator appearance"], "Yes", 5) }},
	{"Room adequacy", func(a AnswerSet) int { return binaryScore(a["Room adequacy"], "Room adequate", 5) }},
	{"Instructor appearance", func(a AnswerSet) int { return binaryScore(a["Instructor appearance"], "Yes", 5) }},
	{"Instructor Attitude", func(a AnswerSet) int { return binaryScore(a["Instructor Attitude"], "Good", 5) }},
	{"English language", func(a AnswerSet) int { return tableScore(englishScores, a["English language of instructor"]) }},
	{"Slang language", func(a AnswerSet) int {
		return binaryScore(a["Language of instructor (slang language is used)"], "No", 5)
	}},
	{"Activity", func(a AnswerSet) int { return binaryScore(a["Activity"], "Yes", 5) }},
	{"Break", func(a AnswerSet) int { return binaryScore(a["Break"], "Yes", 5) }},
	{"Break Time", func(a AnswerSet) int { return BreakTimeScore(numericAnswer(a, "Break Time ( Minutes)")) }},
	{"Students feedback", func(a AnswerSet) int {
		return FeedbackScore(numericAnswer(a, "Students feedback average score"), studentFeedbackThresholds)
	}},
	{"Coordinator feedback", func(a AnswerSet) int {
		return FeedbackScore(numericAnswer(a, "Coordinator feedback score"), coordinatorFeedbackThresholds)
	}},
}

// CalculateSessionScore evaluates every category in the fixed order and
// classifies the summed total into a session rating. It is a pure function:
// no error conditions, no side effects, safe for concurrent callers.
func CalculateSessionScore(answers AnswerSet) ScoreResult {
	total := 0
	breakdown := make(Breakdown, 0, len(evaluators))

	for _, ev := range evaluators {
		points := ev.eval(answers)
		breakdown = append(breakdown, BreakdownEntry{Category: ev.label, Points: points})
		total += points
	}

	return ScoreResult{
		TotalScore:       total,
		SessionRating:    classifyRating(total),
		ScoreBreakdown:   breakdown,
		MaxPossibleScore: MaxPossibleScore,
	}
}

// classifyRating maps a total score onto the ordinal session rating.
func classifyRating(total int) string {
	switch {
	case total >= 90:
		return RatingExcellent
	case total >= 70:
		return RatingVeryGood
	case total >= 60:
		return RatingGood
	default:
		return RatingBad
	}
}

// Categories returns the breakdown labels in evaluation order.
func Categories() []string {
	labels := make([]string, len(evaluators))
	for i, ev := range evaluators {
		labels[i] = ev.label
	}
	return labels
}

// numericAnswer coerces an answer to float64. Form submissions arrive as
// decoded JSON, so numbers may show up as float64, int, json.Number, or a
// numeric string; everything else resolves to 0 rather than failing.
func numericAnswer(answers AnswerSet, field string) float64 {
	switch v := answers[field].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
