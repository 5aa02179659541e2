package exam

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/junhyuk/hanzam/internal/model"
)

var (
	// ErrNotInProgress is returned when answering a session that has
	// already entered submission.
	ErrNotInProgress = errors.New("exam session is not in progress")
	// ErrSubmitInProgress is returned when a submit races an ongoing one.
	ErrSubmitInProgress = errors.New("exam submission already in progress")
	// ErrAlreadySubmitted is returned for a second submit of a finished
	// session.
	ErrAlreadySubmitted = errors.New("exam already submitted")
	// ErrUnknownQuestion is returned for answers to question IDs that do
	// not exist in the session.
	ErrUnknownQuestion = errors.New("unknown question id")
)

// Session is one user's in-flight exam. It lives in memory only; the
// finalized result is persisted elsewhere once submission completes.
// Question order is fixed at construction and never changes; the answer
// key, submitted answers, and grading all rely on positional identity.
type Session struct {
	ID         string
	UserID     int64
	Grade      float64
	Questions  []model.ExamQuestion
	Key        []model.CorrectAnswerEntry
	Shortfalls []model.Shortfall
	StartedAt  time.Time

	mu      sync.Mutex
	status  model.SessionStatus
	answers map[string]string
	byID    map[string]int
	endedAt *time.Time
	result  *model.GradeResult
	rng     *rand.Rand
}

// NewSession runs the generation pipeline (classify, build, answer key)
// for a grade and returns a session ready for enrichment and answering.
func NewSession(userID int64, grade float64, patterns []model.PatternSpec, pool []model.HanziRecord, rng *rand.Rand) *Session {
	gen := NewGenerator(rng)
	built := gen.Generate(patterns, pool)
	key := BuildAnswerKey(built.Questions)

	byID := make(map[string]int, len(built.Questions))
	for i, q := range built.Questions {
		byID[q.ID] = i
	}

	return &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Grade:      grade,
		Questions:  built.Questions,
		Key:        key,
		Shortfalls: built.Shortfalls,
		StartedAt:  time.Now(),
		status:     model.StatusInProgress,
		answers:    make(map[string]string),
		byID:       byID,
		rng:        rng,
	}
}

// Status returns the session's lifecycle state.
func (s *Session) Status() model.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// EndedAt returns the submission time, or nil while in progress.
func (s *Session) EndedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// Result returns the grade result once submission has completed.
func (s *Session) Result() *model.GradeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// QuestionIndex resolves a question ID to its array index.
func (s *Session) QuestionIndex(id string) (int, bool) {
	i, ok := s.byID[id]
	return i, ok
}

// RecordAnswer stores or replaces the user's answer for a question.
func (s *Session) RecordAnswer(questionID, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != model.StatusInProgress {
		return ErrNotInProgress
	}
	if _, ok := s.byID[questionID]; !ok {
		return ErrUnknownQuestion
	}
	s.answers[questionID] = answer
	return nil
}

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// BeginSubmit moves the session into the Submitting state. A second
// submit is rejected while one is running or after one has succeeded; a
// failed submission may be retried.
func (s *Session) BeginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.status {
	case model.StatusInProgress, model.StatusSubmissionFailed:
		s.status = model.StatusSubmitting
		return nil
	case model.StatusSubmitting:
		return ErrSubmitInProgress
	default:
		return ErrAlreadySubmitted
	}
}

// CompleteSubmit finalizes the session with its grade result. Called
// exactly once, after the result has been persisted.
func (s *Session) CompleteSubmit(result model.GradeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.status = model.StatusSubmitted
	s.endedAt = &now
	s.result = &result
}

// FailSubmit records a failed submission attempt; the session may be
// submitted again.
func (s *Session) FailSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = model.StatusSubmissionFailed
}

// GradeNow scores the session against its answer key.
func (s *Session) GradeNow() model.GradeResult {
	return Grade(s.Questions, s.Answers(), s.Key)
}

// SetCorrectAnswer is the single writer for post-construction answer
// changes: it updates the question and the answer key entry at the same
// index so the two can never diverge.
func (s *Session) SetCorrectAnswer(index int, answer string) {
	if index < 0 || index >= len(s.Questions) {
		return
	}
	s.Questions[index].CorrectAnswer = answer
	s.Key[index].CorrectAnswer = answer
}
