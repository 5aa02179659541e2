package exam

import (
	"errors"
	"testing"

	"github.com/junhyuk/hanzam/internal/model"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	patterns := []model.PatternSpec{
		{Type: model.QuestionSound, QuestionCount: 3},
		{Type: model.QuestionMeaning, QuestionCount: 2},
	}
	sess := NewSession(1, 8, patterns, testPool(20), testRng(17))
	if len(sess.Questions) != 5 {
		t.Fatalf("session has %d questions, want 5", len(sess.Questions))
	}
	return sess
}

func TestNewSessionWiring(t *testing.T) {
	sess := newTestSession(t)

	if sess.ID == "" {
		t.Error("session has no ID")
	}
	if sess.Status() != model.StatusInProgress {
		t.Errorf("status = %s, want in_progress", sess.Status())
	}
	if len(sess.Key) != len(sess.Questions) {
		t.Fatalf("key length %d != question count %d", len(sess.Key), len(sess.Questions))
	}
	for i, q := range sess.Questions {
		idx, ok := sess.QuestionIndex(q.ID)
		if !ok || idx != i {
			t.Errorf("QuestionIndex(%q) = %d,%v, want %d,true", q.ID, idx, ok, i)
		}
	}
}

func TestRecordAnswer(t *testing.T) {
	sess := newTestSession(t)

	if err := sess.RecordAnswer("q_0", "답"); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	// Re-answering replaces the previous value.
	if err := sess.RecordAnswer("q_0", "바뀐 답"); err != nil {
		t.Fatalf("RecordAnswer replace: %v", err)
	}
	if got := sess.Answers()["q_0"]; got != "바뀐 답" {
		t.Errorf("answer = %q", got)
	}

	if err := sess.RecordAnswer("q_99", "x"); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("unknown question error = %v", err)
	}
}

func TestSubmitLifecycle(t *testing.T) {
	sess := newTestSession(t)

	if err := sess.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if sess.Status() != model.StatusSubmitting {
		t.Errorf("status = %s, want submitting", sess.Status())
	}

	// Answers are frozen while submitting.
	if err := sess.RecordAnswer("q_0", "늦은 답"); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("answer during submit error = %v", err)
	}

	// A concurrent second submit is rejected.
	if err := sess.BeginSubmit(); !errors.Is(err, ErrSubmitInProgress) {
		t.Errorf("second submit error = %v", err)
	}

	sess.CompleteSubmit(model.GradeResult{Score: 80, Passed: true})
	if sess.Status() != model.StatusSubmitted {
		t.Errorf("status = %s, want submitted", sess.Status())
	}
	if sess.EndedAt() == nil {
		t.Error("EndedAt not set after completion")
	}
	if r := sess.Result(); r == nil || r.Score != 80 {
		t.Errorf("result = %+v", r)
	}

	if err := sess.BeginSubmit(); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("resubmit error = %v", err)
	}
}

func TestSubmitRetryAfterFailure(t *testing.T) {
	sess := newTestSession(t)

	if err := sess.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	sess.FailSubmit()
	if sess.Status() != model.StatusSubmissionFailed {
		t.Errorf("status = %s, want submission_failed", sess.Status())
	}

	// A failed submission may be retried.
	if err := sess.BeginSubmit(); err != nil {
		t.Fatalf("retry BeginSubmit: %v", err)
	}
	sess.CompleteSubmit(sess.GradeNow())
	if sess.Status() != model.StatusSubmitted {
		t.Errorf("status = %s, want submitted", sess.Status())
	}
}

func TestSetCorrectAnswerKeepsKeyAligned(t *testing.T) {
	sess := newTestSession(t)

	sess.SetCorrectAnswer(2, "새 정답")
	if sess.Questions[2].CorrectAnswer != "새 정답" {
		t.Errorf("question answer = %q", sess.Questions[2].CorrectAnswer)
	}
	if sess.Key[2].CorrectAnswer != "새 정답" {
		t.Errorf("key answer = %q", sess.Key[2].CorrectAnswer)
	}

	// Out-of-range writes are ignored.
	sess.SetCorrectAnswer(-1, "x")
	sess.SetCorrectAnswer(len(sess.Questions), "x")
}

func TestGradeNowUsesRecordedAnswers(t *testing.T) {
	sess := newTestSession(t)
	for _, q := range sess.Questions {
		if err := sess.RecordAnswer(q.ID, q.CorrectAnswer); err != nil {
			t.Fatalf("RecordAnswer(%s): %v", q.ID, err)
		}
	}

	result := sess.GradeNow()
	if result.CorrectCount != len(sess.Questions) {
		t.Errorf("correct = %d, want %d", result.CorrectCount, len(sess.Questions))
	}
	if !result.Passed {
		t.Error("all-correct session should pass")
	}
}
