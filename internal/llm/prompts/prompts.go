// Package prompts builds the Korean prompt text sent to the sentence
// generation service. Templates are embedded and loaded once.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/junhyuk/hanzam/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

// maxPromptRunes bounds the per-question prompt length sent upstream.
const maxPromptRunes = 2000

var markupRegex = regexp.MustCompile(`(?i)</?\s*[a-z][a-z-]*\b[^>]*>`)

var questionTemplates = map[model.QuestionType]string{
	model.QuestionBlankHanzi:        "templates/blank_hanzi.txt",
	model.QuestionWordMeaningSelect: "templates/word_meaning_select.txt",
	model.QuestionSentenceReading:   "templates/sentence_reading.txt",
}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[model.QuestionType]*template.Template
	systemTxt string
)

// QuestionData holds template data for per-question prompts.
type QuestionData struct {
	Character  string
	Meaning    string
	Sound      string
	WordHanzi  string
	WordKorean string
}

func load() error {
	loadOnce.Do(func() {
		templates = make(map[model.QuestionType]*template.Template)
		for qt, path := range questionTemplates {
			content, err := templateFS.ReadFile(path)
			if err != nil {
				loadErr = fmt.Errorf("read prompt template %s: %w", path, err)
				return
			}
			tmpl, err := template.New(string(qt)).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", path, err)
				return
			}
			templates[qt] = tmpl
		}

		system, err := templateFS.ReadFile("templates/enrich_system.txt")
		if err != nil {
			loadErr = fmt.Errorf("read system prompt: %w", err)
			return
		}
		systemTxt = strings.TrimSpace(string(system))
	})
	return loadErr
}

// QuestionPrompt renders the per-question enrichment prompt for a
// question type. Types that need no enrichment return an error.
func QuestionPrompt(t model.QuestionType, data QuestionData) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	tmpl, ok := templates[t]
	if !ok {
		return "", errors.New("no prompt template for question type " + string(t))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return Sanitize(buf.String()), nil
}

// BatchSystemPrompt returns the system instructions for the batched
// enrichment call.
func BatchSystemPrompt() (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	return systemTxt, nil
}

// Sanitize strips markup-like fragments and bounds the prompt length.
func Sanitize(s string) string {
	s = markupRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxPromptRunes {
		runes := []rune(s)
		s = string(runes[:maxPromptRunes])
	}
	return s
}
