package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/ahcc-digital/oncoscreen/internal/auth"
	"github.com/ahcc-digital/oncoscreen/internal/config"
	"github.com/ahcc-digital/oncoscreen/internal/core"
	"github.com/ahcc-digital/oncoscreen/internal/limiter"
	"github.com/ahcc-digital/oncoscreen/internal/quiz"
	"github.com/ahcc-digital/oncoscreen/internal/store"
)

type fakeAnalysisGenerator struct{ err error }

func (f *fakeAnalysisGenerator) GenerateAnalysis(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return `{"riskLevel":"Rendah","summary":"Tidak ada faktor risiko berarti.","recommendations":["Jaga pola hidup sehat"],"medicalDisclaimer":"d"}`, nil
}

type fakeTurnGenerator struct{}

func (f *fakeTurnGenerator) GenerateTurn(ctx context.Context, history []*genai.Content, isFinalTurn bool) (string, error) {
	return `{"type":"chat","message":"Sudah berapa lama keluhannya?"}`, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	old := config.AppConfig
	hash, err := auth.HashPassword("rahasia-admin")
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}
	config.AppConfig = config.Config{
		JWTSecret:     "test-secret",
		AdminPassHash: hash,
		PublicBaseURL: "http://localhost:8080",
		FormMode:      "strict",
		AdvisorPhone:  "62822296600",
		AdvisorName:   "Anggi",
	}
	t.Cleanup(func() { config.AppConfig = old })

	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	lim := limiter.NewMemoryLimiter(2, 48*time.Hour)
	screening := core.NewScreeningService(db, core.NewAnalysisService(&fakeAnalysisGenerator{}), lim)
	chat := core.NewChatService(db, &fakeTurnGenerator{}, lim, 7)

	srv := httptest.NewServer(NewRouter(NewAPIHandler(screening, chat, db)))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func TestHealthAndSettings(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health: expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/settings/form-mode")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	settings := decode[struct {
		Mode        string   `json:"mode"`
		InfoSources []string `json:"infoSources"`
	}](t, resp)
	if settings.Mode != "strict" {
		t.Errorf("expected configured form mode, got %q", settings.Mode)
	}
	if len(settings.InfoSources) == 0 {
		t.Error("settings should list the lead-form info sources")
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/categories?gender=female")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	cats := decode[[]quiz.Category](t, resp)
	if len(cats) != 8 {
		t.Errorf("expected 8 categories for female, got %d", len(cats))
	}

	resp, err = http.Get(srv.URL + "/api/categories?gender=other")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown gender, got %d", resp.StatusCode)
	}
}

func TestQuizFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/sessions", StartSessionRequest{Gender: quiz.GenderMale, CancerID: "paru_pria"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	sess := decode[store.ScreeningSession](t, resp)
	if sess.ID == "" {
		t.Fatal("session has no ID")
	}

	resp = postJSON(t, srv.URL+"/api/sessions/"+sess.ID+"/answers", AnswerRequest{Value: "jawaban ngawur"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown option, got %d", resp.StatusCode)
	}

	// Walk the whole quiz picking first options.
	for sess.State.Step == quiz.StepQuiz {
		q := sess.State.Questions[sess.State.Index]
		var req AnswerRequest
		switch q.Type {
		case quiz.TypeMulti:
			req.Values = []string{q.Options[0].Value}
		case quiz.TypeText:
			req.Value = "Tidak ada"
		default:
			req.Value = q.Options[0].Value
		}

		resp = postJSON(t, srv.URL+"/api/sessions/"+sess.ID+"/answers", req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("answer to %s: expected 200, got %d", q.ID, resp.StatusCode)
		}
		sess = decode[store.ScreeningSession](t, resp)
	}

	// Result is still gated behind the contact form.
	resp, err := http.Get(srv.URL + "/api/sessions/" + sess.ID + "/result")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 before the profile is submitted, got %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/sessions/"+sess.ID+"/profile", map[string]string{"name": "Budi"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for an incomplete profile, got %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/sessions/"+sess.ID+"/profile", map[string]any{
		"name":       "Budi Santoso",
		"whatsapp":   "08123456789",
		"email":      "budi@example.com",
		"infoSource": "Instagram",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after a valid profile, got %d", resp.StatusCode)
	}
	done := decode[store.ScreeningSession](t, resp)
	if done.Result == nil || done.Result.RiskLevel != store.RiskLow {
		t.Fatalf("expected the analysis result, got %+v", done.Result)
	}

	history, err := http.Get(srv.URL + "/api/history")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	records := decode[[]store.HistoryRecord](t, history)
	if len(records) != 1 {
		t.Errorf("expected one history record, got %d", len(records))
	}
}

func TestChatEndpointValidatesProfile(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/chats", map[string]string{"name": "Bu"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for an invalid profile, got %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/chats", map[string]string{
		"name":           "Budi Santoso",
		"age":            "45",
		"gender":         "Laki-laki",
		"whatsapp":       "08123456789",
		"email":          "budi@example.com",
		"chiefComplaint": "Batuk berdarah",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decode[StartChatResponse](t, resp)
	if created.ID == "" || created.Turn == nil || created.Turn.Type != core.TurnChat {
		t.Errorf("unexpected chat creation response: %+v", created)
	}
}

func TestAdminEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/admin/login", AdminLoginRequest{Password: "salah"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for a wrong password, got %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/admin/login", AdminLoginRequest{Password: "rahasia-admin"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for the right password, got %d", resp.StatusCode)
	}
	token := decode[map[string]string](t, resp)["token"]
	if token == "" {
		t.Fatal("login response has no token")
	}

	// The dashboard is closed without a token.
	resp, err := http.Get(srv.URL + "/api/admin/submissions")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", resp.StatusCode)
	}

	get := func(path string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		if err != nil {
			t.Fatalf("failed to build request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		return resp
	}

	resp = get("/api/admin/submissions")
	subs := decode[[]store.Submission](t, resp)
	if len(subs) != 0 {
		t.Errorf("expected an empty submission list, got %d", len(subs))
	}

	resp = get("/api/admin/submissions.csv")
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected a CSV content type, got %q", ct)
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/admin/submissions", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 on delete, got %d", delResp.StatusCode)
	}
}

func TestReportNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/reports/does-not-exist")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
