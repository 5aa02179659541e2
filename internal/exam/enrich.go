package exam

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/junhyuk/hanzam/internal/model"
)

// maskGlyph replaces the target character inside generated sentences so
// the answer is not visible in the question text.
const maskGlyph = "○"

var (
	correctLineRegex = regexp.MustCompile(`^정답\s*:\s*(.+)$`)
	wrongLineRegex   = regexp.MustCompile(`^오답\d*\s*:\s*(.+)$`)
)

// TextGenerator produces generated sentence content for a batch of
// enrichment requests, keyed by question ID.
type TextGenerator interface {
	GenerateBatch(ctx context.Context, reqs []model.EnrichmentRequest) (map[string]string, error)
}

// Enrich collects every question with a non-empty AI prompt, sends them
// to the generator in a single batch, and writes the post-processed text
// back onto the matching questions. Enrichment is best effort: any
// transport or parse failure is logged and the exam proceeds with the
// affected questions unenriched.
func Enrich(ctx context.Context, sess *Session, gen TextGenerator) {
	var reqs []model.EnrichmentRequest
	for _, q := range sess.Questions {
		if q.AIText == "" {
			continue
		}
		reqs = append(reqs, model.EnrichmentRequest{
			ID:        q.ID,
			Type:      q.Type,
			AIPrompt:  q.AIText,
			Character: q.Character,
			Word:      q.RelatedWord,
		})
	}
	if len(reqs) == 0 {
		return
	}

	contents, err := gen.GenerateBatch(ctx, reqs)
	if err != nil {
		slog.Warn("enrichment failed, continuing without generated content",
			"session_id", sess.ID, "questions", len(reqs), "error", err)
		return
	}

	for id, text := range contents {
		idx, ok := sess.QuestionIndex(id)
		if !ok {
			slog.Warn("enrichment response for unknown question", "id", id)
			continue
		}
		applyEnrichment(sess, idx, text)
	}
}

// applyEnrichment post-processes generated text according to the
// question type and stores it on the question at idx.
func applyEnrichment(sess *Session, idx int, text string) {
	q := &sess.Questions[idx]
	text = strings.TrimSpace(text)

	switch q.Type {
	case model.QuestionBlankHanzi:
		q.AIGeneratedContent = maskSentence(text, q)
	case model.QuestionWordMeaningSelect:
		correct, wrong := parseChoiceMarkers(text)
		if correct == "" || len(wrong) < 3 {
			correct, wrong = fallbackChoices(q)
		}
		wrong = wrong[:3]
		q.WrongAnswers = wrong
		q.AIGeneratedContent = text
		q.AllOptions = shuffledOptions(sess.rng, correct, wrong)
		// The parsed answer supersedes the answer key's earlier guess.
		sess.SetCorrectAnswer(idx, correct)
	default:
		q.AIGeneratedContent = text
	}
}

// maskSentence rewrites the word's Korean spelling to its hanzi form and
// then masks every occurrence of the target character.
func maskSentence(text string, q *model.ExamQuestion) string {
	if q.RelatedWord != nil && q.RelatedWord.Korean != "" && q.RelatedWord.Hanzi != "" {
		text = strings.ReplaceAll(text, q.RelatedWord.Korean, q.RelatedWord.Hanzi)
	}
	return strings.ReplaceAll(text, q.Character, maskGlyph)
}

// parseChoiceMarkers extracts the correct answer and distractors from
// line-prefixed 정답:/오답N: markers in the generated text.
func parseChoiceMarkers(text string) (correct string, wrong []string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if m := correctLineRegex.FindStringSubmatch(line); m != nil {
			correct = strings.TrimSpace(m[1])
			continue
		}
		if m := wrongLineRegex.FindStringSubmatch(line); m != nil {
			wrong = append(wrong, strings.TrimSpace(m[1]))
		}
	}
	return correct, wrong
}

// fallbackChoices builds deterministic options when the generated text
// does not parse: the original gloss as the correct answer plus three
// templated distractors.
func fallbackChoices(q *model.ExamQuestion) (string, []string) {
	word := q.Character
	if q.RelatedWord != nil && q.RelatedWord.Korean != "" {
		word = q.RelatedWord.Korean
	}
	correct := q.Meaning
	if q.RelatedWord != nil && q.RelatedWord.Meaning != "" {
		correct = q.RelatedWord.Meaning
	}
	wrong := []string{
		word + "의 소리를 흉내 낸 말",
		word + "과(와) 반대되는 뜻의 말",
		word + "과(와) 관계없는 말",
	}
	return correct, wrong
}

func shuffledOptions(rng *rand.Rand, correct string, wrong []string) []string {
	options := append([]string{correct}, wrong...)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
