package model

import (
	"context"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleStudent is a student user role.
	UserRoleStudent UserRole = "student"
	// UserRoleTeacher is a teacher user role.
	UserRoleTeacher UserRole = "teacher"
	// UserRoleAdmin is an admin user role.
	UserRoleAdmin UserRole = "admin"
)

// User represents a system user.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

// RelatedWord is a compound word associated with a hanzi character.
// IsTextBook marks words that appear in the school textbook; several
// question types may only be built from textbook words.
type RelatedWord struct {
	Hanzi      string `json:"hanzi"`
	Korean     string `json:"korean"`
	IsTextBook bool   `json:"isTextBook"`
	Meaning    string `json:"meaning,omitempty"`
}

// HanziRecord is a single character entry in the study pool.
// Grade may be fractional: 5.5 denotes the intermediate half-grade
// between 6급 and 5급.
type HanziRecord struct {
	ID           int64         `json:"id"`
	Character    string        `json:"character"`
	Meaning      string        `json:"meaning"`
	Sound        string        `json:"sound"`
	Grade        float64       `json:"grade"`
	RelatedWords []RelatedWord `json:"relatedWords"`
}

// HasTextBookWord reports whether any related word is textbook-tagged.
func (h HanziRecord) HasTextBookWord() bool {
	return h.TextBookWord() != nil
}

// TextBookWord returns the first textbook-tagged related word, or nil.
func (h HanziRecord) TextBookWord() *RelatedWord {
	for i := range h.RelatedWords {
		if h.RelatedWords[i].IsTextBook {
			return &h.RelatedWords[i]
		}
	}
	return nil
}

// QuestionType identifies a question archetype.
type QuestionType string

const (
	// QuestionSound asks for the phonetic reading of a character.
	QuestionSound QuestionType = "sound"
	// QuestionMeaning asks which character has a given meaning.
	QuestionMeaning QuestionType = "meaning"
	// QuestionWordReading asks for the Korean reading of a compound word.
	QuestionWordReading QuestionType = "word_reading"
	// QuestionWordMeaning asks which character matches a natural-Korean gloss.
	QuestionWordMeaning QuestionType = "word_meaning"
	// QuestionBlankHanzi presents a sentence with the target character masked.
	QuestionBlankHanzi QuestionType = "blank_hanzi"
	// QuestionWordMeaningSelect is a multiple-choice word meaning question
	// whose options come from the enrichment service.
	QuestionWordMeaningSelect QuestionType = "word_meaning_select"
	// QuestionHanziWrite asks the student to write "<meaning> <sound>".
	QuestionHanziWrite QuestionType = "hanzi_write"
	// QuestionWordReadingWrite asks for the written reading of a textbook word.
	QuestionWordReadingWrite QuestionType = "word_reading_write"
	// QuestionSentenceReading asks for a word's reading inside a sentence.
	QuestionSentenceReading QuestionType = "sentence_reading"
)

// NeedsEnrichment reports whether the question type depends on
// externally generated sentence content.
func (t QuestionType) NeedsEnrichment() bool {
	switch t {
	case QuestionBlankHanzi, QuestionWordMeaningSelect, QuestionSentenceReading:
		return true
	}
	return false
}

// RequiresTextBookWord reports whether the type can only be built from a
// hanzi that has a textbook-tagged related word.
func (t QuestionType) RequiresTextBookWord() bool {
	switch t {
	case QuestionWordReadingWrite, QuestionBlankHanzi, QuestionWordMeaningSelect, QuestionSentenceReading:
		return true
	}
	return false
}

// PatternSpec is one entry in a grade's exam blueprint: how many
// questions of a given type to build, and from which subset.
type PatternSpec struct {
	Type          QuestionType `json:"type"`
	QuestionCount int          `json:"question_count"`
	IsTextBook    bool         `json:"is_textbook"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
}

// ExamQuestion is a generated exam question. Index is the question's
// position in the session's question array and never changes after
// construction; ID is the wire identifier "q_<index>" derived from it.
type ExamQuestion struct {
	ID                 string       `json:"id"`
	Index              int          `json:"index"`
	Type               QuestionType `json:"type"`
	Character          string       `json:"character"`
	Meaning            string       `json:"meaning"`
	Sound              string       `json:"sound"`
	RelatedWord        *RelatedWord `json:"relatedWord,omitempty"`
	AIText             string       `json:"aiText,omitempty"`
	AIGeneratedContent string       `json:"aiGeneratedContent,omitempty"`
	Options            []string     `json:"options,omitempty"`
	CorrectAnswer      string       `json:"correctAnswer,omitempty"`
	AllOptions         []string     `json:"allOptions,omitempty"`
	WrongAnswers       []string     `json:"wrongAnswers,omitempty"`
}

// DisplayOptions returns the options the student chooses from:
// enrichment-built AllOptions when present, else the builder's Options.
func (q ExamQuestion) DisplayOptions() []string {
	if len(q.AllOptions) > 0 {
		return q.AllOptions
	}
	return q.Options
}

// CorrectAnswerEntry is one row of the answer key, parallel to the
// question array: key[i].QuestionIndex == i always holds.
type CorrectAnswerEntry struct {
	QuestionIndex int          `json:"questionIndex"`
	Type          QuestionType `json:"type"`
	Character     string       `json:"character"`
	CorrectAnswer string       `json:"correctAnswer"`
}

// SessionStatus represents the lifecycle state of an exam session.
type SessionStatus string

const (
	StatusInProgress       SessionStatus = "in_progress"
	StatusSubmitting       SessionStatus = "submitting"
	StatusSubmitted        SessionStatus = "submitted"
	StatusSubmissionFailed SessionStatus = "submission_failed"
)

// Shortfall records a pattern that produced fewer questions than
// configured. Under-fill is an accepted condition, not an error.
type Shortfall struct {
	Pattern   QuestionType `json:"pattern"`
	Requested int          `json:"requested"`
	Actual    int          `json:"actual"`
}

// GradeResult is the outcome of grading a submitted exam.
type GradeResult struct {
	Score        int  `json:"score"`
	Passed       bool `json:"passed"`
	CorrectCount int  `json:"correct_count"`
	Total        int  `json:"total"`
	Experience   int  `json:"experience"`
}

// ExamResult is the finalized, persisted outcome of an exam session.
type ExamResult struct {
	ID           string     `json:"id"`
	UserID       int64      `json:"user_id"`
	Grade        float64    `json:"grade"`
	Score        int        `json:"score"`
	Passed       bool       `json:"passed"`
	CorrectCount int        `json:"correct_count"`
	Total        int        `json:"total"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

// GameKind identifies one of the practice game pages.
type GameKind string

const (
	GameMemoryMatch   GameKind = "memory_match"
	GameQuiz          GameKind = "quiz"
	GamePartialReveal GameKind = "partial_reveal"
)

// ValidGameKind reports whether s names a known game.
func ValidGameKind(s string) bool {
	switch GameKind(s) {
	case GameMemoryMatch, GameQuiz, GamePartialReveal:
		return true
	}
	return false
}

// GameResult is a recorded play of one of the practice games.
type GameResult struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Game      GameKind  `json:"game"`
	Grade     float64   `json:"grade"`
	Score     int       `json:"score"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ExperienceEntry is one experience award in a user's log.
type ExperienceEntry struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Amount          int       `json:"amount"`
	ActivityType    string    `json:"activity_type"`
	ActivityDetails string    `json:"activity_details,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// LeaderboardEntry is a user's aggregate experience standing.
type LeaderboardEntry struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Experience  int    `json:"experience"`
}

// AppConfig holds runtime server parameters set via CLI flags.
type AppConfig struct {
	SecureCookies bool // Set Secure flag on cookies (disable for local dev)
	EnrichEnabled bool // Send sentence-based questions to the LLM
}

// HanziImport is used for loading hanzi records from JSON files.
type HanziImport struct {
	Character    string        `json:"character"`
	Meaning      string        `json:"meaning"`
	Sound        string        `json:"sound"`
	Grade        float64       `json:"grade"`
	RelatedWords []RelatedWord `json:"relatedWords"`
}
