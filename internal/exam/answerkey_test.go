package exam

import (
	"testing"

	"github.com/junhyuk/hanzam/internal/model"
)

func TestBuildAnswerKeyParallel(t *testing.T) {
	gen := NewGenerator(testRng(2))
	result := gen.Generate([]model.PatternSpec{
		{Type: model.QuestionSound, QuestionCount: 3},
		{Type: model.QuestionHanziWrite, QuestionCount: 2},
	}, testPool(20))

	key := BuildAnswerKey(result.Questions)
	if len(key) != len(result.Questions) {
		t.Fatalf("key has %d entries for %d questions", len(key), len(result.Questions))
	}
	for i, entry := range key {
		if entry.QuestionIndex != i {
			t.Errorf("key[%d].QuestionIndex = %d", i, entry.QuestionIndex)
		}
		q := result.Questions[i]
		if entry.Type != q.Type || entry.Character != q.Character {
			t.Errorf("key[%d] does not match question %d: %+v", i, i, entry)
		}
		if q.CorrectAnswer != entry.CorrectAnswer {
			t.Errorf("question %d CorrectAnswer %q not stamped from key %q", i, q.CorrectAnswer, entry.CorrectAnswer)
		}
		if entry.CorrectAnswer == "" {
			t.Errorf("key[%d] has empty answer", i)
		}
	}
}

func TestAnswerFor(t *testing.T) {
	word := &model.RelatedWord{Hanzi: "學校", Korean: "학교", IsTextBook: true}
	base := model.ExamQuestion{Character: "學", Meaning: "배울", Sound: "학"}

	tests := []struct {
		name string
		typ  model.QuestionType
		word *model.RelatedWord
		want string
	}{
		{"sound", model.QuestionSound, nil, "학"},
		{"meaning", model.QuestionMeaning, nil, "學"},
		{"word meaning", model.QuestionWordMeaning, nil, "學"},
		{"blank hanzi", model.QuestionBlankHanzi, word, "學"},
		{"word reading", model.QuestionWordReading, word, "학교"},
		{"word reading no word", model.QuestionWordReading, nil, "학"},
		{"word meaning select", model.QuestionWordMeaningSelect, word, "학교"},
		{"word meaning select no word", model.QuestionWordMeaningSelect, nil, "배울"},
		{"hanzi write", model.QuestionHanziWrite, nil, "배울 학"},
		{"word reading write", model.QuestionWordReadingWrite, word, "학교"},
		{"sentence reading", model.QuestionSentenceReading, word, "학교"},
		{"sentence reading no word", model.QuestionSentenceReading, nil, "학"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			q.Type = tt.typ
			q.RelatedWord = tt.word
			if got := AnswerFor(q); got != tt.want {
				t.Errorf("AnswerFor(%s) = %q, want %q", tt.typ, got, tt.want)
			}
		})
	}
}
