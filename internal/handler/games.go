package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/junhyuk/hanzam/internal/model"
)

func (h *Handler) handleGameResult(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	game := chi.URLParam(r, "game")
	if !model.ValidGameKind(game) {
		h.errorJSON(w, r, http.StatusNotFound, "UnknownGame")
		return
	}

	var req struct {
		Grade      float64 `json:"grade"`
		Score      int     `json:"score"`
		Details    string  `json:"details"`
		Experience int     `json:"experience"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}

	id, err := h.store.InsertGameResult(model.GameResult{
		UserID:  user.ID,
		Game:    model.GameKind(game),
		Grade:   req.Grade,
		Score:   req.Score,
		Details: req.Details,
	})
	if err != nil {
		slog.Error("failed to store game result", "game", game, "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	if req.Experience > 0 {
		if err := h.store.AddExperience(model.ExperienceEntry{
			UserID:       user.ID,
			Amount:       req.Experience,
			ActivityType: "game_" + game,
		}); err != nil {
			slog.Error("failed to record experience", "game", game, "error", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handler) handleExperience(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	total, err := h.store.TotalExperience(user.ID)
	if err != nil {
		slog.Error("failed to total experience", "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"experience": total})
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.Leaderboard(20)
	if err != nil {
		slog.Error("failed to load leaderboard", "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleMyResults(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	exams, err := h.store.ListExamResultsByUser(user.ID)
	if err != nil {
		slog.Error("failed to list exam results", "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	games, err := h.store.ListGameResultsByUser(user.ID)
	if err != nil {
		slog.Error("failed to list game results", "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"exams": exams,
		"games": games,
	})
}
