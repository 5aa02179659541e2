package exam

import (
	"fmt"
	"testing"

	"github.com/junhyuk/hanzam/internal/model"
)

// gradedQuestions builds n sound questions with stamped answers and a
// matching key.
func gradedQuestions(t *testing.T, n int) ([]model.ExamQuestion, []model.CorrectAnswerEntry) {
	t.Helper()
	questions := make([]model.ExamQuestion, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, model.ExamQuestion{
			ID:        fmt.Sprintf("q_%d", i),
			Index:     i,
			Type:      model.QuestionSound,
			Character: fmt.Sprintf("字%d", i),
			Sound:     fmt.Sprintf("음%d", i),
		})
	}
	key := BuildAnswerKey(questions)
	return questions, key
}

func allCorrect(questions []model.ExamQuestion) map[string]string {
	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		answers[q.ID] = q.CorrectAnswer
	}
	return answers
}

func TestGradeAllCorrect(t *testing.T) {
	questions, key := gradedQuestions(t, 10)
	result := Grade(questions, allCorrect(questions), key)

	if result.Score != 100 {
		t.Errorf("score = %d, want 100", result.Score)
	}
	if !result.Passed {
		t.Error("expected pass")
	}
	if result.CorrectCount != 10 || result.Total != 10 {
		t.Errorf("correct/total = %d/%d", result.CorrectCount, result.Total)
	}
	if result.Experience != 60 {
		t.Errorf("experience = %d, want 60", result.Experience)
	}
}

func TestGradeAllWrong(t *testing.T) {
	questions, key := gradedQuestions(t, 10)
	answers := map[string]string{}
	for _, q := range questions {
		answers[q.ID] = "틀림"
	}
	result := Grade(questions, answers, key)

	if result.Score != 0 {
		t.Errorf("score = %d, want 0", result.Score)
	}
	if result.Passed {
		t.Error("expected fail")
	}
	if result.Experience != 0 {
		t.Errorf("experience = %d, want 0", result.Experience)
	}
}

func TestGradeUnansweredCountWrong(t *testing.T) {
	questions, key := gradedQuestions(t, 10)
	answers := allCorrect(questions)
	delete(answers, "q_0")
	delete(answers, "q_1")

	result := Grade(questions, answers, key)
	if result.CorrectCount != 8 {
		t.Errorf("correct = %d, want 8", result.CorrectCount)
	}
	if result.Score != 80 {
		t.Errorf("score = %d, want 80", result.Score)
	}
}

// Per-question points are round(100/n) and the score is correct*points
// rounded, with no cap at 100. Six questions all correct score 102.
func TestGradeRoundingDrift(t *testing.T) {
	tests := []struct {
		n         int
		wantScore int
	}{
		{3, 99},
		{6, 102},
		{7, 98},
		{10, 100},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			questions, key := gradedQuestions(t, tt.n)
			result := Grade(questions, allCorrect(questions), key)
			if result.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", result.Score, tt.wantScore)
			}
		})
	}
}

func TestGradeOptionIndexResolution(t *testing.T) {
	questions := []model.ExamQuestion{{
		ID:      "q_0",
		Index:   0,
		Type:    model.QuestionSound,
		Sound:   "학",
		Options: []string{"수", "학", "문", "교"},
	}}
	key := BuildAnswerKey(questions)

	tests := []struct {
		name        string
		submitted   string
		wantCorrect int
	}{
		{"index of correct option", "2", 1},
		{"index of wrong option", "1", 0},
		{"literal correct text", "학", 1},
		{"index with whitespace", " 2 ", 1},
		{"out of range index is literal", "9", 0},
		{"zero is literal", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Grade(questions, map[string]string{"q_0": tt.submitted}, key)
			if result.CorrectCount != tt.wantCorrect {
				t.Errorf("correct = %d, want %d", result.CorrectCount, tt.wantCorrect)
			}
		})
	}
}

func TestGradeFreeTextIsLiteral(t *testing.T) {
	questions := []model.ExamQuestion{{
		ID:      "q_0",
		Index:   0,
		Type:    model.QuestionHanziWrite,
		Meaning: "배울",
		Sound:   "학",
	}}
	key := BuildAnswerKey(questions)

	// No options, so a numeric submission is compared verbatim.
	result := Grade(questions, map[string]string{"q_0": "1"}, key)
	if result.CorrectCount != 0 {
		t.Errorf("numeric free-text answer counted correct")
	}

	result = Grade(questions, map[string]string{"q_0": "배울 학"}, key)
	if result.CorrectCount != 1 {
		t.Errorf("exact free-text answer not counted")
	}
}

func TestGradeEmptyExam(t *testing.T) {
	result := Grade(nil, nil, nil)
	if result.Score != 0 || result.Total != 0 || result.Passed {
		t.Errorf("empty exam result = %+v", result)
	}
}

func TestGradePassBoundary(t *testing.T) {
	// 10 questions at 10 points each: 7 correct is exactly the threshold.
	questions, key := gradedQuestions(t, 10)
	answers := allCorrect(questions)
	delete(answers, "q_7")
	delete(answers, "q_8")
	delete(answers, "q_9")

	result := Grade(questions, answers, key)
	if result.Score != 70 {
		t.Fatalf("score = %d, want 70", result.Score)
	}
	if !result.Passed {
		t.Error("70 should pass")
	}
	if result.Experience != 57 {
		t.Errorf("experience = %d, want 57", result.Experience)
	}
}
