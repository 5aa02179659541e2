package exam

import "github.com/junhyuk/hanzam/internal/model"

// BuildAnswerKey derives the correct answer for every question and
// returns the key as a parallel array: key[i].QuestionIndex == i for all
// i. It also stamps each question's CorrectAnswer so the two stay
// aligned from the start. The key is built exactly once, before any
// enrichment; the only later writer is Session.SetCorrectAnswer, which
// updates question and key at the same index together.
func BuildAnswerKey(questions []model.ExamQuestion) []model.CorrectAnswerEntry {
	key := make([]model.CorrectAnswerEntry, len(questions))
	for i := range questions {
		answer := AnswerFor(questions[i])
		questions[i].CorrectAnswer = answer
		key[i] = model.CorrectAnswerEntry{
			QuestionIndex: i,
			Type:          questions[i].Type,
			Character:     questions[i].Character,
			CorrectAnswer: answer,
		}
	}
	return key
}

// AnswerFor returns the expected answer for a question based on its type
// and embedded hanzi data.
func AnswerFor(q model.ExamQuestion) string {
	switch q.Type {
	case model.QuestionSound:
		return q.Sound
	case model.QuestionMeaning, model.QuestionWordMeaning, model.QuestionBlankHanzi:
		return q.Character
	case model.QuestionWordReading:
		if q.RelatedWord != nil && q.RelatedWord.Korean != "" {
			return q.RelatedWord.Korean
		}
		return q.Sound
	case model.QuestionWordMeaningSelect:
		// The enrichment step may later replace this with the
		// AI-confirmed answer via Session.SetCorrectAnswer.
		if q.RelatedWord != nil && q.RelatedWord.Korean != "" {
			return q.RelatedWord.Korean
		}
		return q.Meaning
	case model.QuestionHanziWrite:
		return q.Meaning + " " + q.Sound
	case model.QuestionWordReadingWrite:
		if q.RelatedWord != nil && q.RelatedWord.Korean != "" {
			return q.RelatedWord.Korean
		}
		return q.Sound
	case model.QuestionSentenceReading:
		if q.RelatedWord != nil && q.RelatedWord.Korean != "" {
			return q.RelatedWord.Korean
		}
		return q.Sound
	}
	return ""
}
