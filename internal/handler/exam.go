package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/junhyuk/hanzam/internal/exam"
	appI18n "github.com/junhyuk/hanzam/internal/i18n"
	"github.com/junhyuk/hanzam/internal/model"
	"github.com/junhyuk/hanzam/internal/pattern"
)

// questionView is the client-facing shape of a question. The correct
// answer and the distractor breakdown never leave the server.
type questionView struct {
	ID        string             `json:"id"`
	Index     int                `json:"index"`
	Type      model.QuestionType `json:"type"`
	Character string             `json:"character,omitempty"`
	Word      string             `json:"word,omitempty"`
	Prompt    string             `json:"prompt"`
	Options   []string           `json:"options,omitempty"`
}

type examView struct {
	SessionID  string              `json:"sessionId"`
	Grade      float64             `json:"grade"`
	Status     model.SessionStatus `json:"status"`
	Questions  []questionView      `json:"questions"`
	Shortfalls []model.Shortfall   `json:"shortfalls,omitempty"`
	StartedAt  time.Time           `json:"startedAt"`
	Result     *model.GradeResult  `json:"result,omitempty"`
}

func (h *Handler) examView(r *http.Request, sess *exam.Session) examView {
	view := examView{
		SessionID:  sess.ID,
		Grade:      sess.Grade,
		Status:     sess.Status(),
		Shortfalls: sess.Shortfalls,
		StartedAt:  sess.StartedAt,
		Result:     sess.Result(),
	}
	for _, q := range sess.Questions {
		view.Questions = append(view.Questions, h.questionView(r, q))
	}
	return view
}

func (h *Handler) questionView(r *http.Request, q model.ExamQuestion) questionView {
	v := questionView{
		ID:      q.ID,
		Index:   q.Index,
		Type:    q.Type,
		Options: q.DisplayOptions(),
	}

	switch q.Type {
	case model.QuestionSound:
		v.Character = q.Character
		v.Prompt = q.Character
	case model.QuestionMeaning:
		v.Prompt = q.Meaning + " " + q.Sound
	case model.QuestionWordReading:
		if q.RelatedWord != nil {
			v.Word = q.RelatedWord.Hanzi
		}
		v.Prompt = v.Word
	case model.QuestionWordMeaning:
		v.Prompt = pattern.NaturalMeaning(q.Meaning)
	case model.QuestionHanziWrite:
		v.Character = q.Character
		v.Prompt = q.Character
	case model.QuestionWordReadingWrite:
		if q.RelatedWord != nil {
			v.Word = q.RelatedWord.Hanzi
		}
		v.Prompt = v.Word
	case model.QuestionBlankHanzi, model.QuestionWordMeaningSelect, model.QuestionSentenceReading:
		if q.RelatedWord != nil {
			v.Word = q.RelatedWord.Hanzi
		}
		if q.AIGeneratedContent != "" {
			v.Prompt = q.AIGeneratedContent
		} else {
			v.Prompt = appI18n.T(r.Context(), "EnrichmentPending")
		}
	default:
		v.Prompt = q.Character
	}
	return v
}

func (h *Handler) handleStartExam(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	var req struct {
		Grade float64 `json:"grade"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}

	pool, err := h.store.ListHanziByGrade(req.Grade)
	if err != nil {
		slog.Error("failed to load hanzi pool", "grade", req.Grade, "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if len(pool) == 0 {
		h.errorJSON(w, r, http.StatusBadRequest, "NotEnoughHanzi")
		return
	}

	patterns := pattern.ForGrade(req.Grade)
	sess := exam.NewSession(user.ID, req.Grade, patterns, pool, h.newRand())
	if len(sess.Questions) == 0 {
		h.errorJSON(w, r, http.StatusBadRequest, "NotEnoughHanzi")
		return
	}

	if h.config.EnrichEnabled && h.gen != nil {
		exam.Enrich(r.Context(), sess, h.gen)
	}

	h.addSession(sess)
	slog.Info("exam started",
		"session", sess.ID,
		"user", user.Username,
		"grade", req.Grade,
		"questions", len(sess.Questions),
		"shortfalls", len(sess.Shortfalls))
	respondJSON(w, http.StatusOK, h.examView(r, sess))
}

func (h *Handler) handleGetExam(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.userSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.examView(r, sess))
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.userSession(w, r)
	if !ok {
		return
	}

	var req struct {
		QuestionID string `json:"questionId"`
		Answer     string `json:"answer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}

	if err := sess.RecordAnswer(req.QuestionID, req.Answer); err != nil {
		switch {
		case errors.Is(err, exam.ErrUnknownQuestion):
			h.errorJSON(w, r, http.StatusBadRequest, "UnknownQuestion")
		case errors.Is(err, exam.ErrNotInProgress):
			h.errorJSON(w, r, http.StatusConflict, "AlreadySubmitted")
		default:
			h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	sess, ok := h.userSession(w, r)
	if !ok {
		return
	}

	// Answers may arrive in the submit body as well; merge them before
	// the state transition so a one-shot client works too.
	var req struct {
		Answers map[string]string `json:"answers"`
	}
	if err := decodeJSON(r, &req); err == nil {
		for id, ans := range req.Answers {
			if err := sess.RecordAnswer(id, ans); err != nil && !errors.Is(err, exam.ErrUnknownQuestion) {
				break
			}
		}
	}

	if err := sess.BeginSubmit(); err != nil {
		switch {
		case errors.Is(err, exam.ErrSubmitInProgress):
			h.errorJSON(w, r, http.StatusConflict, "SubmitInProgress")
		default:
			h.errorJSON(w, r, http.StatusConflict, "AlreadySubmitted")
		}
		return
	}

	result := sess.GradeNow()
	now := time.Now()

	err := h.store.InsertExamResult(model.ExamResult{
		ID:           sess.ID,
		UserID:       user.ID,
		Grade:        sess.Grade,
		Score:        result.Score,
		Passed:       result.Passed,
		CorrectCount: result.CorrectCount,
		Total:        result.Total,
		StartedAt:    sess.StartedAt,
		EndedAt:      &now,
	})
	if err != nil {
		sess.FailSubmit()
		slog.Error("failed to persist exam result", "session", sess.ID, "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "SubmitFailed")
		return
	}

	if result.Experience > 0 {
		if err := h.store.AddExperience(model.ExperienceEntry{
			UserID:          user.ID,
			Amount:          result.Experience,
			ActivityType:    "exam",
			ActivityDetails: sess.ID,
		}); err != nil {
			slog.Error("failed to record experience", "session", sess.ID, "error", err)
		}
	}

	sess.CompleteSubmit(result)
	slog.Info("exam submitted",
		"session", sess.ID,
		"user", user.Username,
		"score", result.Score,
		"passed", result.Passed)
	respondJSON(w, http.StatusOK, result)
}

// userSession resolves the sessionID URL parameter to an in-flight
// session owned by the requesting user.
func (h *Handler) userSession(w http.ResponseWriter, r *http.Request) (*exam.Session, bool) {
	user := model.UserFromContext(r.Context())
	sess, ok := h.session(chi.URLParam(r, "sessionID"))
	if !ok || sess.UserID != user.ID {
		h.errorJSON(w, r, http.StatusNotFound, "ExamNotFound")
		return nil, false
	}
	return sess, true
}

// gradeParam parses an optional ?grade= query parameter; 0 means all.
func gradeParam(r *http.Request) float64 {
	raw := r.URL.Query().Get("grade")
	if raw == "" {
		return 0
	}
	g, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return g
}
