package exam

import (
	"math"
	"strconv"
	"strings"

	"github.com/junhyuk/hanzam/internal/model"
)

// PassThreshold is the fixed passing score. It is not configurable per
// grade.
const PassThreshold = 70

// passBonus is the experience bonus awarded on top of the per-question
// experience when the exam is passed.
const passBonus = 50

// Grade scores a submission. Answers are keyed by question ID; for
// questions with options the submitted value may be a 1-based option
// index, which is resolved to the option text before comparison. The
// comparison is always strict string equality against the answer key.
//
// Points per question are round(100/n) and the final score is
// round(correct*points). For question counts that do not divide 100
// evenly the total can drift off 100; that is the scoring rule as
// shipped, deliberately not corrected here.
func Grade(questions []model.ExamQuestion, answers map[string]string, key []model.CorrectAnswerEntry) model.GradeResult {
	total := len(questions)
	if total == 0 {
		return model.GradeResult{}
	}

	points := math.Round(100 / float64(total))
	correct := 0

	for _, q := range questions {
		if q.Index < 0 || q.Index >= len(key) {
			continue
		}
		entry := key[q.Index]
		submitted, ok := answers[q.ID]
		if !ok {
			continue
		}
		if resolveAnswer(q, submitted) == entry.CorrectAnswer {
			correct++
		}
	}

	score := int(math.Round(float64(correct) * points))
	passed := score >= PassThreshold

	experience := correct
	if passed {
		experience += passBonus
	}

	return model.GradeResult{
		Score:        score,
		Passed:       passed,
		CorrectCount: correct,
		Total:        total,
		Experience:   experience,
	}
}

// resolveAnswer maps a submitted value to the text that is compared
// against the key. For questions with options a numeric submission is
// treated as a 1-based option index; everything else is compared as the
// literal string.
func resolveAnswer(q model.ExamQuestion, submitted string) string {
	options := q.DisplayOptions()
	if len(options) == 0 {
		return submitted
	}
	idx, err := strconv.Atoi(strings.TrimSpace(submitted))
	if err != nil || idx < 1 || idx > len(options) {
		return submitted
	}
	return options[idx-1]
}
