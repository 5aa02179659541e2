package exam

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/junhyuk/hanzam/internal/llm/prompts"
	"github.com/junhyuk/hanzam/internal/model"
	"github.com/junhyuk/hanzam/internal/pattern"
)

// optionCount is the number of choices presented for selectable questions.
const optionCount = 4

// BuildResult is the outcome of question generation. Shortfalls lists
// every pattern that yielded fewer questions than its blueprint asked
// for; callers decide whether a short exam is acceptable.
type BuildResult struct {
	Questions  []model.ExamQuestion
	Shortfalls []model.Shortfall
}

// Generator builds exam questions from a classified hanzi pool. The
// random source is injected so tests can drive deterministic shuffles.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator backed by the given random source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate walks the grade's pattern list in order and builds each
// pattern's questions, drawing hanzi round-robin from the matching
// subset with a cursor that wraps at the end. A hanzi may appear in more
// than one question within a session. Each build gets at most
// questionCount*3 attempts; a pattern that runs out of attempts yields
// fewer questions and is recorded as a shortfall, never an error.
func (g *Generator) Generate(patterns []model.PatternSpec, pool []model.HanziRecord) BuildResult {
	var textbookNeeded, normalNeeded int
	for _, p := range patterns {
		if p.IsTextBook {
			textbookNeeded += p.QuestionCount
		} else {
			normalNeeded += p.QuestionCount
		}
	}

	textbook, normal := SplitPool(pool, textbookNeeded, normalNeeded, g.rng)

	var questions []model.ExamQuestion
	var shortfalls []model.Shortfall
	textbookCursor, normalCursor := 0, 0

	for _, p := range patterns {
		subset, cursor := normal, &normalCursor
		if p.IsTextBook {
			subset, cursor = textbook, &textbookCursor
		}

		built := 0
		for attempts := 0; built < p.QuestionCount && attempts < p.QuestionCount*3; attempts++ {
			if len(subset) == 0 {
				break
			}
			h := subset[*cursor%len(subset)]
			*cursor++

			q := g.buildQuestion(p.Type, h, pool)
			if q == nil {
				continue
			}
			q.Index = len(questions)
			q.ID = fmt.Sprintf("q_%d", q.Index)
			questions = append(questions, *q)
			built++
		}

		if built < p.QuestionCount {
			shortfalls = append(shortfalls, model.Shortfall{
				Pattern:   p.Type,
				Requested: p.QuestionCount,
				Actual:    built,
			})
			slog.Debug("pattern under-filled",
				"pattern", p.Type, "requested", p.QuestionCount, "built", built)
		}
	}

	return BuildResult{Questions: questions, Shortfalls: shortfalls}
}

// buildQuestion constructs a single question of the given type, or nil
// when the hanzi cannot satisfy the type's requirements (the caller
// retries with a different hanzi).
func (g *Generator) buildQuestion(t model.QuestionType, h model.HanziRecord, pool []model.HanziRecord) *model.ExamQuestion {
	q := &model.ExamQuestion{
		Type:      t,
		Character: h.Character,
		Meaning:   h.Meaning,
		Sound:     h.Sound,
	}

	if t.RequiresTextBookWord() {
		word := h.TextBookWord()
		if word == nil {
			return nil
		}
		q.RelatedWord = word
	}

	switch t {
	case model.QuestionSound:
		q.Options = g.buildOptions(h.Sound, soundValues(pool))
	case model.QuestionMeaning:
		q.Options = g.buildOptions(h.Character, characterValues(pool))
	case model.QuestionWordReading:
		if len(h.RelatedWords) > 0 {
			q.RelatedWord = &h.RelatedWords[0]
		}
		answer := h.Sound
		if q.RelatedWord != nil && q.RelatedWord.Korean != "" {
			answer = q.RelatedWord.Korean
		}
		q.Options = g.buildOptions(answer, readingValues(pool))
	case model.QuestionWordMeaning:
		q.Meaning = pattern.NaturalMeaning(h.Meaning)
		q.Options = g.buildOptions(h.Character, characterValues(pool))
	case model.QuestionHanziWrite, model.QuestionWordReadingWrite:
		// Free-text answers, no options.
	case model.QuestionBlankHanzi, model.QuestionWordMeaningSelect, model.QuestionSentenceReading:
		q.AIText = enrichmentPrompt(t, h, q.RelatedWord)
	}

	return q
}

// buildOptions assembles optionCount shuffled choices containing the
// correct answer plus distinct distractors drawn from the pool. When the
// pool cannot supply enough distractors the option list is shorter.
func (g *Generator) buildOptions(correct string, candidates []string) []string {
	seen := map[string]bool{correct: true}
	var distractors []string
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		distractors = append(distractors, c)
	}
	g.rng.Shuffle(len(distractors), func(i, j int) {
		distractors[i], distractors[j] = distractors[j], distractors[i]
	})
	if len(distractors) > optionCount-1 {
		distractors = distractors[:optionCount-1]
	}

	options := append([]string{correct}, distractors...)
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

func enrichmentPrompt(t model.QuestionType, h model.HanziRecord, word *model.RelatedWord) string {
	data := prompts.QuestionData{
		Character: h.Character,
		Meaning:   h.Meaning,
		Sound:     h.Sound,
	}
	if word != nil {
		data.WordHanzi = word.Hanzi
		data.WordKorean = word.Korean
	}
	text, err := prompts.QuestionPrompt(t, data)
	if err != nil {
		// Without a prompt the question simply goes unenriched.
		slog.Warn("building enrichment prompt failed", "type", t, "error", err)
		return ""
	}
	return text
}

func soundValues(pool []model.HanziRecord) []string {
	values := make([]string, 0, len(pool))
	for _, h := range pool {
		values = append(values, h.Sound)
	}
	return values
}

func characterValues(pool []model.HanziRecord) []string {
	values := make([]string, 0, len(pool))
	for _, h := range pool {
		values = append(values, h.Character)
	}
	return values
}

func readingValues(pool []model.HanziRecord) []string {
	var values []string
	for _, h := range pool {
		for _, w := range h.RelatedWords {
			values = append(values, w.Korean)
		}
	}
	return values
}
