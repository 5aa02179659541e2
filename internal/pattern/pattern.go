// Package pattern holds the static per-grade exam blueprints: which
// question types an exam for a grade contains, how many of each, and
// whether a pattern draws from textbook-tagged hanzi.
package pattern

import (
	"strconv"

	"github.com/junhyuk/hanzam/internal/model"
)

// gradePatterns is keyed by the canonical grade string ("8", "5.5", ...).
// Order within a slice is the order questions appear in the exam.
var gradePatterns = map[string][]model.PatternSpec{
	"8": {
		{Type: model.QuestionSound, QuestionCount: 10, Name: "음 고르기", Description: "한자의 음을 고르세요"},
		{Type: model.QuestionMeaning, QuestionCount: 10, Name: "뜻 맞는 한자 고르기", Description: "뜻에 맞는 한자를 고르세요"},
	},
	"7": {
		{Type: model.QuestionSound, QuestionCount: 8, Name: "음 고르기", Description: "한자의 음을 고르세요"},
		{Type: model.QuestionMeaning, QuestionCount: 8, Name: "뜻 맞는 한자 고르기", Description: "뜻에 맞는 한자를 고르세요"},
		{Type: model.QuestionWordReading, QuestionCount: 4, Name: "단어 읽기", Description: "한자어의 독음을 고르세요"},
	},
	"6": {
		{Type: model.QuestionSound, QuestionCount: 6, Name: "음 고르기", Description: "한자의 음을 고르세요"},
		{Type: model.QuestionMeaning, QuestionCount: 6, Name: "뜻 맞는 한자 고르기", Description: "뜻에 맞는 한자를 고르세요"},
		{Type: model.QuestionWordReading, QuestionCount: 4, Name: "단어 읽기", Description: "한자어의 독음을 고르세요"},
		{Type: model.QuestionWordMeaning, QuestionCount: 4, Name: "뜻 고르기", Description: "자연스러운 뜻풀이에 맞는 한자를 고르세요"},
	},
	"5.5": {
		{Type: model.QuestionSound, QuestionCount: 5, Name: "음 고르기", Description: "한자의 음을 고르세요"},
		{Type: model.QuestionMeaning, QuestionCount: 5, Name: "뜻 맞는 한자 고르기", Description: "뜻에 맞는 한자를 고르세요"},
		{Type: model.QuestionWordReading, QuestionCount: 4, Name: "단어 읽기", Description: "한자어의 독음을 고르세요"},
		{Type: model.QuestionWordMeaning, QuestionCount: 3, Name: "뜻 고르기", Description: "자연스러운 뜻풀이에 맞는 한자를 고르세요"},
		{Type: model.QuestionHanziWrite, QuestionCount: 3, Name: "훈음 쓰기", Description: "한자의 훈과 음을 쓰세요"},
		{Type: model.QuestionWordReadingWrite, QuestionCount: 3, IsTextBook: true, Name: "교과서 단어 쓰기", Description: "교과서 한자어의 독음을 쓰세요"},
		{Type: model.QuestionBlankHanzi, QuestionCount: 2, IsTextBook: true, Name: "빈칸 한자", Description: "문장의 ○에 들어갈 한자를 쓰세요"},
	},
	"5": {
		{Type: model.QuestionSound, QuestionCount: 5, Name: "음 고르기", Description: "한자의 음을 고르세요"},
		{Type: model.QuestionMeaning, QuestionCount: 5, Name: "뜻 맞는 한자 고르기", Description: "뜻에 맞는 한자를 고르세요"},
		{Type: model.QuestionWordReading, QuestionCount: 3, Name: "단어 읽기", Description: "한자어의 독음을 고르세요"},
		{Type: model.QuestionWordMeaning, QuestionCount: 3, Name: "뜻 고르기", Description: "자연스러운 뜻풀이에 맞는 한자를 고르세요"},
		{Type: model.QuestionHanziWrite, QuestionCount: 4, Name: "훈음 쓰기", Description: "한자의 훈과 음을 쓰세요"},
		{Type: model.QuestionWordReadingWrite, QuestionCount: 2, IsTextBook: true, Name: "교과서 단어 쓰기", Description: "교과서 한자어의 독음을 쓰세요"},
		{Type: model.QuestionBlankHanzi, QuestionCount: 3, IsTextBook: true, Name: "빈칸 한자", Description: "문장의 ○에 들어갈 한자를 쓰세요"},
		{Type: model.QuestionWordMeaningSelect, QuestionCount: 3, IsTextBook: true, Name: "단어 뜻 고르기", Description: "한자어의 뜻으로 알맞은 것을 고르세요"},
		{Type: model.QuestionSentenceReading, QuestionCount: 2, IsTextBook: true, Name: "문장 속 읽기", Description: "문장 속 한자어의 독음을 쓰세요"},
	},
}

// defaultPatterns is used for grades without an explicit blueprint.
var defaultPatterns = []model.PatternSpec{
	{Type: model.QuestionSound, QuestionCount: 5, Name: "음 고르기", Description: "한자의 음을 고르세요"},
	{Type: model.QuestionMeaning, QuestionCount: 5, Name: "뜻 맞는 한자 고르기", Description: "뜻에 맞는 한자를 고르세요"},
}

// GradeKey formats a grade for use as a blueprint key: 8 -> "8", 5.5 -> "5.5".
func GradeKey(grade float64) string {
	return strconv.FormatFloat(grade, 'f', -1, 64)
}

// ForGrade returns the ordered pattern list for a grade. Unknown grades
// fall back to a basic sound/meaning blueprint rather than erroring.
func ForGrade(grade float64) []model.PatternSpec {
	if patterns, ok := gradePatterns[GradeKey(grade)]; ok {
		return patterns
	}
	return defaultPatterns
}

// Grades returns the grades that have an explicit blueprint.
func Grades() []string {
	keys := make([]string, 0, len(gradePatterns))
	for k := range gradePatterns {
		keys = append(keys, k)
	}
	return keys
}

// TotalQuestions returns the sum of per-pattern question counts.
func TotalQuestions(patterns []model.PatternSpec) int {
	total := 0
	for _, p := range patterns {
		total += p.QuestionCount
	}
	return total
}
