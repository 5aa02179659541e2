package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	appI18n "github.com/junhyuk/hanzam/internal/i18n"
	"github.com/junhyuk/hanzam/internal/model"
	"github.com/junhyuk/hanzam/internal/store"
)

type testEnv struct {
	handler *Handler
	store   *store.Store
	server  *httptest.Server
	client  *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if err := appI18n.Init("ko"); err != nil {
		t.Fatalf("i18n init: %v", err)
	}

	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	seedUser(t, s, "admin", "adminpw", model.UserRoleAdmin)
	seedUser(t, s, "student", "studentpw", model.UserRoleStudent)
	for i := 0; i < 20; i++ {
		_, err := s.InsertHanzi(model.HanziRecord{
			Character: fmt.Sprintf("字%d", i),
			Meaning:   fmt.Sprintf("뜻%d", i),
			Sound:     fmt.Sprintf("음%d", i),
			Grade:     8,
		})
		if err != nil {
			t.Fatalf("seed hanzi: %v", err)
		}
	}

	h := New(s, nil, model.AppConfig{SecureCookies: false})
	h.newRand = func() *rand.Rand { return rand.New(rand.NewPCG(1, 1)) }

	r := chi.NewRouter()
	r.Use(appI18n.Middleware("ko"))
	h.Routes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}

	return &testEnv{
		handler: h,
		store:   s,
		server:  server,
		client:  &http.Client{Jar: jar},
	}
}

func seedUser(t *testing.T, s *store.Store, username, password string, role model.UserRole) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := s.CreateUser(model.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
}

// csrfToken returns the current CSRF cookie value, issuing one with a
// harmless GET if the jar is empty.
func (e *testEnv) csrfToken(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(e.server.URL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == csrfCookieName {
			return c.Value
		}
	}

	resp, err := e.client.Get(e.server.URL + "/api/me")
	if err != nil {
		t.Fatalf("prime CSRF cookie: %v", err)
	}
	resp.Body.Close()

	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == csrfCookieName {
			return c.Value
		}
	}
	t.Fatal("no CSRF cookie issued")
	return ""
}

func (e *testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(csrfHeaderName, e.csrfToken(t))
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (e *testEnv) login(t *testing.T, username, password string) {
	t.Helper()
	resp := e.post(t, "/api/login", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("login %s: status %d, body %s", username, resp.StatusCode, body)
	}
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/api/login", map[string]string{
		"username": "student",
		"password": "wrong",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	resp = env.get(t, "/api/hanzi")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated read status = %d, want 401", resp.StatusCode)
	}
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	env := newTestEnv(t)

	data, _ := json.Marshal(map[string]string{"username": "student", "password": "studentpw"})
	resp, err := env.client.Post(env.server.URL+"/api/login", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestExamFullFlow(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student", "studentpw")

	resp := env.post(t, "/api/exam/start", map[string]float64{"grade": 8})
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("start status = %d, body %s", resp.StatusCode, body)
	}

	var view struct {
		SessionID string `json:"sessionId"`
		Status    string `json:"status"`
		Questions []struct {
			ID      string   `json:"id"`
			Index   int      `json:"index"`
			Type    string   `json:"type"`
			Prompt  string   `json:"prompt"`
			Options []string `json:"options"`
		} `json:"questions"`
	}
	decodeBody(t, resp, &view)

	if view.SessionID == "" {
		t.Fatal("no session ID")
	}
	if view.Status != string(model.StatusInProgress) {
		t.Errorf("status = %s", view.Status)
	}
	// Grade 8 blueprint: 10 sound + 10 meaning.
	if len(view.Questions) != 20 {
		t.Fatalf("got %d questions, want 20", len(view.Questions))
	}

	sess, ok := env.handler.session(view.SessionID)
	if !ok {
		t.Fatal("session not registered")
	}

	// The client view must not leak answers.
	for i, q := range view.Questions {
		if q.Index != i {
			t.Errorf("question %d index = %d", i, q.Index)
		}
		if len(q.Options) == 0 {
			t.Errorf("question %s has no options", q.ID)
		}
	}

	// Answer every question correctly through the API.
	for _, q := range sess.Questions {
		resp := env.post(t, "/api/exam/"+sess.ID+"/answer", map[string]string{
			"questionId": q.ID,
			"answer":     q.CorrectAnswer,
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("answer %s status = %d", q.ID, resp.StatusCode)
		}
	}

	resp = env.post(t, "/api/exam/"+sess.ID+"/answer", map[string]string{
		"questionId": "q_999",
		"answer":     "x",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown question status = %d, want 400", resp.StatusCode)
	}

	resp = env.post(t, "/api/exam/"+sess.ID+"/submit", map[string]any{})
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("submit status = %d, body %s", resp.StatusCode, body)
	}
	var result model.GradeResult
	decodeBody(t, resp, &result)
	if result.Score != 100 || !result.Passed || result.CorrectCount != 20 {
		t.Errorf("result = %+v", result)
	}
	if result.Experience != 70 {
		t.Errorf("experience = %d, want 70", result.Experience)
	}

	// A second submit is rejected.
	resp = env.post(t, "/api/exam/"+sess.ID+"/submit", map[string]any{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("resubmit status = %d, want 409", resp.StatusCode)
	}

	// The result reached the store, along with the experience award.
	stored, err := env.store.ListExamResults(0)
	if err != nil {
		t.Fatalf("ListExamResults: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != sess.ID || stored[0].Score != 100 {
		t.Errorf("stored results = %+v", stored)
	}

	resp = env.get(t, "/api/experience")
	var xp map[string]int
	decodeBody(t, resp, &xp)
	if xp["experience"] != 70 {
		t.Errorf("experience = %d, want 70", xp["experience"])
	}
}

func TestStartExamWithoutHanzi(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student", "studentpw")

	resp := env.post(t, "/api/exam/start", map[string]float64{"grade": 5})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestExamIsOwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student", "studentpw")

	resp := env.post(t, "/api/exam/start", map[string]float64{"grade": 8})
	var view struct {
		SessionID string `json:"sessionId"`
	}
	decodeBody(t, resp, &view)

	// Another user cannot see the session.
	env.login(t, "admin", "adminpw")
	resp = env.get(t, "/api/exam/" + view.SessionID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGameResultAndLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student", "studentpw")

	resp := env.post(t, "/api/games/quiz/result", map[string]any{
		"grade":      8,
		"score":      15,
		"experience": 15,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("game result status = %d", resp.StatusCode)
	}

	resp = env.post(t, "/api/games/minesweeper/result", map[string]any{"score": 1})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown game status = %d, want 404", resp.StatusCode)
	}

	resp = env.get(t, "/api/leaderboard")
	var board []model.LeaderboardEntry
	decodeBody(t, resp, &board)
	if len(board) != 1 || board[0].Experience != 15 {
		t.Errorf("board = %+v", board)
	}
}

func TestAdminRoutesRequireRole(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student", "studentpw")

	resp := env.get(t, "/api/admin/users")
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("student admin access status = %d, want 403", resp.StatusCode)
	}

	resp = env.post(t, "/api/admin/hanzi", map[string]any{
		"character": "新", "meaning": "새", "sound": "신", "grade": 8,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("student hanzi create status = %d, want 403", resp.StatusCode)
	}
}

func TestAdminHanziCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "adminpw")

	resp := env.post(t, "/api/admin/hanzi", map[string]any{
		"character": "新", "meaning": "새", "sound": "신", "grade": 7,
	})
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}
	var created map[string]int64
	decodeBody(t, resp, &created)
	id := created["id"]

	req, _ := http.NewRequest(http.MethodPut,
		fmt.Sprintf("%s/api/admin/hanzi/%d", env.server.URL, id),
		bytes.NewReader([]byte(`{"character":"新","meaning":"새로울","sound":"신","grade":7}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(csrfHeaderName, env.csrfToken(t))
	putResp, err := env.client.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", putResp.StatusCode)
	}

	h, err := env.store.GetHanzi(id)
	if err != nil {
		t.Fatalf("GetHanzi: %v", err)
	}
	if h.Meaning != "새로울" {
		t.Errorf("meaning = %q", h.Meaning)
	}
}

func TestAdminUploadDeduplicates(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "adminpw")

	payload := `[{"character":"水","meaning":"물","sound":"수","grade":8,"relatedWords":[]}]`

	upload := func() *http.Response {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", "hanzi.json")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(payload)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
		w.Close()

		req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/admin/hanzi/upload", &buf)
		if err != nil {
			t.Fatalf("build upload: %v", err)
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set(csrfHeaderName, env.csrfToken(t))
		resp, err := env.client.Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		return resp
	}

	resp := upload()
	var res map[string]int
	decodeBody(t, resp, &res)
	if resp.StatusCode != http.StatusOK || res["imported"] != 1 {
		t.Fatalf("first upload: status %d, imported %d", resp.StatusCode, res["imported"])
	}

	// Same file content again: skipped.
	resp = upload()
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate upload status = %d, want 409", resp.StatusCode)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student", "studentpw")

	resp := env.post(t, "/api/logout", map[string]any{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	resp = env.get(t, "/api/me")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("post-logout status = %d, want 401", resp.StatusCode)
	}
}
