// Package handler exposes the JSON API consumed by the web client.
package handler

import (
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/junhyuk/hanzam/internal/exam"
	appI18n "github.com/junhyuk/hanzam/internal/i18n"
	"github.com/junhyuk/hanzam/internal/model"
	"github.com/junhyuk/hanzam/internal/store"
)

// Handler holds shared dependencies for HTTP handlers. In-flight exam
// sessions live in memory; only finalized results reach the store.
type Handler struct {
	store  *store.Store
	gen    exam.TextGenerator
	config model.AppConfig

	mu       sync.Mutex
	sessions map[string]*exam.Session

	// newRand supplies the shuffle source for each exam; tests swap in
	// a seeded one.
	newRand func() *rand.Rand
}

// New creates a new Handler. gen may be nil when enrichment is disabled.
func New(s *store.Store, gen exam.TextGenerator, cfg model.AppConfig) *Handler {
	return &Handler{
		store:    s,
		gen:      gen,
		config:   cfg,
		sessions: make(map[string]*exam.Session),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.csrfMiddleware)
	r.Post("/api/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Post("/api/logout", h.handleLogout)
		r.Get("/api/me", h.handleMe)
		r.Get("/api/hanzi", h.handleListHanzi)
		r.Get("/api/grades", h.handleListGrades)

		r.Post("/api/exam/start", h.handleStartExam)
		r.Get("/api/exam/{sessionID}", h.handleGetExam)
		r.Post("/api/exam/{sessionID}/answer", h.handleAnswer)
		r.Post("/api/exam/{sessionID}/submit", h.handleSubmit)

		r.Post("/api/games/{game}/result", h.handleGameResult)
		r.Get("/api/experience", h.handleExperience)
		r.Get("/api/leaderboard", h.handleLeaderboard)
		r.Get("/api/results", h.handleMyResults)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.UserRoleAdmin, model.UserRoleTeacher))
			r.Post("/api/admin/hanzi", h.handleCreateHanzi)
			r.Put("/api/admin/hanzi/{hanziID}", h.handleUpdateHanzi)
			r.Delete("/api/admin/hanzi/{hanziID}", h.handleDeleteHanzi)
			r.Post("/api/admin/hanzi/upload", h.handleUploadHanzi)
			r.Get("/api/admin/results", h.handleListResults)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.UserRoleAdmin))
			r.Get("/api/admin/users", h.handleListUsers)
			r.Post("/api/admin/users", h.handleCreateUser)
			r.Post("/api/admin/users/{userID}/toggle", h.handleToggleUserActive)
		})
	})
}

// session looks up an in-flight exam session.
func (h *Handler) session(id string) (*exam.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[id]
	return sess, ok
}

func (h *Handler) addSession(sess *exam.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[sess.ID] = sess
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// errorJSON writes a localized error message for a message ID.
func (h *Handler) errorJSON(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	respondJSON(w, status, map[string]string{"error": appI18n.T(r.Context(), msgID)})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
