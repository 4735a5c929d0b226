package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/ahcc-digital/oncoscreen/internal/limiter"
	"github.com/ahcc-digital/oncoscreen/internal/store"
	"github.com/ahcc-digital/oncoscreen/internal/validate"
)

// fakeTurnGenerator replays a scripted sequence of replies.
type fakeTurnGenerator struct {
	replies []string
	errs    []error
	calls   int
	finals  []bool
}

func (f *fakeTurnGenerator) GenerateTurn(ctx context.Context, history []*genai.Content, isFinalTurn bool) (string, error) {
	i := f.calls
	f.calls++
	f.finals = append(f.finals, isFinalTurn)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return `{"type":"chat","message":"Baik, ada lagi yang bisa saya bantu?"}`, nil
}

func testStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testProfile() validate.ChatProfile {
	return validate.ChatProfile{
		Name:           "Budi Santoso",
		Age:            "45",
		Gender:         "Laki-laki",
		WhatsApp:       "08123456789",
		Email:          "budi@example.com",
		ChiefComplaint: "Batuk berdarah sejak dua minggu",
	}
}

const finalReportReply = `{"type":"final_report","message":"Laporan Anda sudah siap.",` +
	`"report":{"risk_level":"Tinggi","risk_score":78,"summary":"Gejala mengarah pada kelainan paru.",` +
	`"anamnesis_reasoning":"Batuk berdarah dengan riwayat merokok.",` +
	`"suspected_conditions":["Tumor paru"],"recommendations":["Segera ke dokter paru"]}}`

func TestStartChatRejectsInvalidProfile(t *testing.T) {
	svc := NewChatService(testStore(t), &fakeTurnGenerator{}, limiter.NewMemoryLimiter(2, 48*time.Hour), 7)

	profile := testProfile()
	profile.WhatsApp = "12345"
	chat, _, errs, err := svc.StartChat(context.Background(), "10.0.0.1", profile, "strict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chat != nil {
		t.Error("no session should be created for an invalid profile")
	}
	if errs["whatsapp"] == "" {
		t.Errorf("expected a whatsapp field error, got %v", errs)
	}
}

func TestStartChatRunsOpeningTurn(t *testing.T) {
	gen := &fakeTurnGenerator{replies: []string{`{"type":"chat","message":"Sudah berapa lama keluhannya?"}`}}
	svc := NewChatService(testStore(t), gen, limiter.NewMemoryLimiter(2, 48*time.Hour), 7)

	chat, result, errs, err := svc.StartChat(context.Background(), "10.0.0.1", testProfile(), "strict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if result.Type != TurnChat || result.TurnCount != 1 {
		t.Errorf("expected first chat turn, got %+v", result)
	}

	msgs, err := svc.Messages(chat.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected user + model transcript, got %d messages", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[0].Content != "Keluhan awal saya: Batuk berdarah sejak dua minggu" {
		t.Errorf("unexpected opening message: %+v", msgs[0])
	}
	if msgs[1].Role != "model" {
		t.Errorf("expected model reply second, got %+v", msgs[1])
	}
}

func TestRejectedTurnClosesSession(t *testing.T) {
	gen := &fakeTurnGenerator{replies: []string{
		`{"type":"chat","message":"Sudah berapa lama keluhannya?"}`,
		`{"type":"rejected","message":"Sesi dihentikan karena di luar topik kesehatan."}`,
	}}
	svc := NewChatService(testStore(t), gen, limiter.NewMemoryLimiter(2, 48*time.Hour), 7)

	chat, _, _, err := svc.StartChat(context.Background(), "10.0.0.1", testProfile(), "strict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.PostTurn(context.Background(), chat.ID, "lirik lagu dong", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != TurnRejected || result.Status != store.ChatRejected {
		t.Errorf("expected a rejected closure, got %+v", result)
	}

	if _, err := svc.PostTurn(context.Background(), chat.ID, "halo?", nil); !errors.Is(err, ErrChatClosed) {
		t.Errorf("expected ErrChatClosed after rejection, got %v", err)
	}
}

func TestFinalReportLocksClient(t *testing.T) {
	gen := &fakeTurnGenerator{replies: []string{
		`{"type":"chat","message":"Sudah berapa lama keluhannya?"}`,
		finalReportReply,
	}}
	lim := limiter.NewMemoryLimiter(2, 48*time.Hour)
	svc := NewChatService(testStore(t), gen, lim, 7)

	chat, _, _, err := svc.StartChat(context.Background(), "10.0.0.1", testProfile(), "strict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.PostTurn(context.Background(), chat.ID, "Sekitar dua minggu, saya perokok.", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != TurnFinalReport || result.Status != store.ChatCompleted {
		t.Fatalf("expected completion with report, got %+v", result)
	}
	if result.ReportID == nil {
		t.Fatal("completed session must carry a report ID")
	}

	rep, err := svc.GetReport(*result.ReportID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep == nil || rep.Data.RiskLevel != store.RiskHigh || rep.Data.RiskScore != 78 {
		t.Errorf("stored report does not match model output: %+v", rep)
	}
	if rep.User.Name != "Budi Santoso" {
		t.Errorf("report should carry the intake profile, got %+v", rep.User)
	}

	if _, _, _, err := svc.StartChat(context.Background(), "10.0.0.1", testProfile(), "strict"); !errors.Is(err, ErrSessionLocked) {
		t.Errorf("expected ErrSessionLocked for a fresh session after completion, got %v", err)
	}
}

func TestTurnCeilingForcesFinalReport(t *testing.T) {
	// The model keeps chatting; with maxTurns=2 the second exchange
	// must close the session anyway.
	gen := &fakeTurnGenerator{replies: []string{
		`{"type":"chat","message":"Sudah berapa lama keluhannya?"}`,
		`{"type":"chat","message":"Ceritakan lebih banyak."}`,
	}}
	svc := NewChatService(testStore(t), gen, limiter.NewMemoryLimiter(2, 48*time.Hour), 2)

	chat, _, _, err := svc.StartChat(context.Background(), "10.0.0.1", testProfile(), "strict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.PostTurn(context.Background(), chat.ID, "dua minggu", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gen.finals[1] {
		t.Error("the model should have been told the second turn is final")
	}
	if result.Type != TurnFinalReport || result.Status != store.ChatCompleted || result.ReportID == nil {
		t.Fatalf("ceiling turn must close with a report, got %+v", result)
	}
	if result.Report == nil || len(result.Report.Recommendations) == 0 {
		t.Errorf("forced report must carry recommendations, got %+v", result.Report)
	}
}

func TestClassifierFailureKeepsSessionAlive(t *testing.T) {
	gen := &fakeTurnGenerator{
		replies: []string{`{"type":"chat","message":"Sudah berapa lama keluhannya?"}`},
		errs:    []error{nil, errors.New("upstream timeout")},
	}
	svc := NewChatService(testStore(t), gen, limiter.NewMemoryLimiter(2, 48*time.Hour), 7)

	chat, _, _, err := svc.StartChat(context.Background(), "10.0.0.1", testProfile(), "strict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.PostTurn(context.Background(), chat.ID, "dua minggu", nil)
	if err != nil {
		t.Fatalf("a classifier failure should not error the turn, got %v", err)
	}
	if result.Type != TurnChat || result.Status != store.ChatActive {
		t.Errorf("expected a holding chat reply, got %+v", result)
	}
	if result.Message == "" {
		t.Error("holding reply must carry text")
	}

	if _, err := svc.PostTurn(context.Background(), chat.ID, "masih ada?", nil); err != nil {
		t.Errorf("session should still accept turns, got %v", err)
	}
}

func TestPostTurnRejectsEmptyMessage(t *testing.T) {
	gen := &fakeTurnGenerator{replies: []string{`{"type":"chat","message":"Sudah berapa lama keluhannya?"}`}}
	svc := NewChatService(testStore(t), gen, limiter.NewMemoryLimiter(2, 48*time.Hour), 7)

	chat, _, _, err := svc.StartChat(context.Background(), "10.0.0.1", testProfile(), "strict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.PostTurn(context.Background(), chat.ID, "   ", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestUpdateContactValidatesHookForm(t *testing.T) {
	gen := &fakeTurnGenerator{replies: []string{`{"type":"chat","message":"Sudah berapa lama keluhannya?"}`}}
	svc := NewChatService(testStore(t), gen, limiter.NewMemoryLimiter(2, 48*time.Hour), 7)

	profile := testProfile()
	profile.WhatsApp = ""
	profile.Email = ""
	chat, _, _, err := svc.StartChat(context.Background(), "10.0.0.1", profile, "relaxed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	errs, err := svc.UpdateContact(context.Background(), chat.ID, "12345", "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errs["whatsapp"] == "" || errs["email"] == "" {
		t.Errorf("expected hook validation errors, got %v", errs)
	}

	errs, err = svc.UpdateContact(context.Background(), chat.ID, "08123456789", "budi@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}

	msgs, err := svc.Messages(chat.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) == 0 {
		t.Error("transcript should survive the contact update")
	}
}
