package handler

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/junhyuk/hanzam/internal/model"
)

const maxUploadBytes = 10 << 20

func (h *Handler) handleListHanzi(w http.ResponseWriter, r *http.Request) {
	var (
		records []model.HanziRecord
		err     error
	)
	if grade := gradeParam(r); grade != 0 {
		records, err = h.store.ListHanziByGrade(grade)
	} else {
		records, err = h.store.ListHanzi()
	}
	if err != nil {
		slog.Error("failed to list hanzi", "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if records == nil {
		records = []model.HanziRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleListGrades(w http.ResponseWriter, r *http.Request) {
	grades, err := h.store.ListDistinctGrades()
	if err != nil {
		slog.Error("failed to list grades", "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if grades == nil {
		grades = []float64{}
	}
	respondJSON(w, http.StatusOK, grades)
}

func (h *Handler) handleCreateHanzi(w http.ResponseWriter, r *http.Request) {
	var req model.HanziImport
	if err := decodeJSON(r, &req); err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}
	if req.Character == "" || req.Meaning == "" || req.Sound == "" || req.Grade == 0 {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}

	id, err := h.store.InsertHanzi(model.HanziRecord{
		Character:    req.Character,
		Meaning:      req.Meaning,
		Sound:        req.Sound,
		Grade:        req.Grade,
		RelatedWords: req.RelatedWords,
	})
	if err != nil {
		slog.Error("failed to insert hanzi", "character", req.Character, "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleUpdateHanzi(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "hanziID"), 10, 64)
	if err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}

	var req model.HanziImport
	if err := decodeJSON(r, &req); err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}

	err = h.store.UpdateHanzi(model.HanziRecord{
		ID:           id,
		Character:    req.Character,
		Meaning:      req.Meaning,
		Sound:        req.Sound,
		Grade:        req.Grade,
		RelatedWords: req.RelatedWords,
	})
	if errors.Is(err, sql.ErrNoRows) {
		h.errorJSON(w, r, http.StatusNotFound, "HanziNotFound")
		return
	}
	if err != nil {
		slog.Error("failed to update hanzi", "id", id, "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleDeleteHanzi(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "hanziID"), 10, 64)
	if err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}
	if err := h.store.DeleteHanzi(id); err != nil {
		slog.Error("failed to delete hanzi", "id", id, "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleUploadHanzi imports a JSON file of hanzi records. Re-uploading a
// file with unchanged content is a no-op, detected by content hash.
func (h *Handler) handleUploadHanzi(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	prev, err := h.store.GetImportedFileHash(header.Filename)
	if err != nil {
		slog.Error("failed to check import hash", "file", header.Filename, "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if prev == hash {
		slog.Info("upload unchanged, skipping", "file", header.Filename)
		h.errorJSON(w, r, http.StatusConflict, "UploadDuplicate")
		return
	}

	var imports []model.HanziImport
	if err := json.Unmarshal(data, &imports); err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "UploadInvalid")
		return
	}

	var inserted int
	for _, imp := range imports {
		if imp.Character == "" {
			continue
		}
		if _, err := h.store.InsertHanzi(model.HanziRecord{
			Character:    imp.Character,
			Meaning:      imp.Meaning,
			Sound:        imp.Sound,
			Grade:        imp.Grade,
			RelatedWords: imp.RelatedWords,
		}); err != nil {
			slog.Error("failed to insert uploaded hanzi", "character", imp.Character, "error", err)
			continue
		}
		inserted++
	}

	if err := h.store.SetImportedFileHash(header.Filename, hash); err != nil {
		slog.Error("failed to record import hash", "file", header.Filename, "error", err)
	}

	slog.Info("hanzi uploaded", "file", header.Filename, "records", len(imports), "inserted", inserted)
	respondJSON(w, http.StatusOK, map[string]int{"imported": inserted})
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.ListExamResults(gradeParam(r))
	if err != nil {
		slog.Error("failed to list exam results", "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if results == nil {
		results = []model.ExamResult{}
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		slog.Error("failed to list users", "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
		Role        string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}
	if req.Username == "" || req.Password == "" {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}

	role := model.UserRole(req.Role)
	switch role {
	case model.UserRoleStudent, model.UserRoleTeacher, model.UserRoleAdmin:
	case "":
		role = model.UserRoleStudent
	default:
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}

	existing, err := h.store.GetUserByUsername(req.Username)
	if err != nil {
		slog.Error("failed to check username", "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if existing != nil {
		h.errorJSON(w, r, http.StatusConflict, "UsernameTaken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	id, err := h.store.CreateUser(model.User{
		Username:     req.Username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	})
	if err != nil {
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleToggleUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.errorJSON(w, r, http.StatusBadRequest, "BadRequest")
		return
	}
	if err := h.store.ToggleUserActive(id); err != nil {
		slog.Error("failed to toggle user", "id", id, "error", err)
		h.errorJSON(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
