// Package exam implements the exam pipeline: classifying the hanzi pool,
// building pattern-driven questions, deriving the answer key, enriching
// sentence-based questions with generated text, and grading submissions.
package exam

import (
	"math/rand/v2"

	"github.com/junhyuk/hanzam/internal/model"
)

// SplitPool divides a grade-scoped hanzi pool into two disjoint shuffled
// subsets: hanzi with at least one textbook-tagged related word, and the
// rest. Each subset is truncated to the needed count; if the pool holds
// fewer qualifying hanzi than needed the shortfall is accepted silently
// and later stages cycle over the smaller subset.
func SplitPool(pool []model.HanziRecord, textbookNeeded, normalNeeded int, rng *rand.Rand) (textbook, normal []model.HanziRecord) {
	for _, h := range pool {
		if h.HasTextBookWord() {
			textbook = append(textbook, h)
		} else {
			normal = append(normal, h)
		}
	}

	rng.Shuffle(len(textbook), func(i, j int) {
		textbook[i], textbook[j] = textbook[j], textbook[i]
	})
	rng.Shuffle(len(normal), func(i, j int) {
		normal[i], normal[j] = normal[j], normal[i]
	})

	if textbookNeeded < 0 {
		textbookNeeded = 0
	}
	if normalNeeded < 0 {
		normalNeeded = 0
	}
	if len(textbook) > textbookNeeded {
		textbook = textbook[:textbookNeeded]
	}
	if len(normal) > normalNeeded {
		normal = normal[:normalNeeded]
	}
	return textbook, normal
}
