package core

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/ahcc-digital/oncoscreen/internal/limiter"
	"github.com/ahcc-digital/oncoscreen/internal/store"
	"github.com/ahcc-digital/oncoscreen/internal/validate"
)

// Turn types the model can emit. Every exchange resolves to exactly
// one of these.
const (
	TurnChat        = "chat"
	TurnAskImage    = "ask_image"
	TurnRejected    = "rejected"
	TurnFinalReport = "final_report"
)

var (
	ErrSessionLocked = errors.New("client is locked out of the chat flow")
	ErrChatNotFound  = errors.New("chat session not found")
	ErrChatClosed    = errors.New("chat session is no longer active")
	ErrEmptyMessage  = errors.New("message has no text and no images")
)

// turnGenerator is the slice of LLMService the chat flow needs.
type turnGenerator interface {
	GenerateTurn(ctx context.Context, history []*genai.Content, isFinalTurn bool) (string, error)
}

// TurnOutcome is the tagged shape every model reply is parsed into.
type TurnOutcome struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Report  *store.ReportData `json:"report,omitempty"`
}

// TurnResult is what one exchange returns to the transport layer.
type TurnResult struct {
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	TurnCount int               `json:"turnCount"`
	Status    string            `json:"status"`
	ReportID  *string           `json:"reportId,omitempty"`
	Report    *store.ReportData `json:"report,omitempty"`
}

// ChatService drives the conversational screening: profile intake,
// turn-by-turn anamnesis against the model, and the terminal report.
type ChatService struct {
	dbStore  *store.SQLiteStore
	llm      turnGenerator
	limiter  limiter.Limiter
	maxTurns int
}

func NewChatService(db *store.SQLiteStore, llm turnGenerator, lim limiter.Limiter, maxTurns int) *ChatService {
	return &ChatService{
		dbStore:  db,
		llm:      llm,
		limiter:  lim,
		maxTurns: maxTurns,
	}
}

// StartChat validates the intake profile, creates the session, and
// runs the opening turn seeded with the chief complaint. The returned
// map holds per-field validation errors; non-empty means no session
// was created.
func (s *ChatService) StartChat(ctx context.Context, clientIP string, profile validate.ChatProfile, mode string) (*store.ChatSession, *TurnResult, map[string]string, error) {
	locked, err := s.limiter.Locked(ctx, clientIP)
	if err != nil {
		log.Printf("Lock check failed for %s: %v. Allowing session.", clientIP, err)
		locked = false
	}
	if locked {
		return nil, nil, nil, ErrSessionLocked
	}

	if errs := validate.Chat(profile, mode); len(errs) > 0 {
		return nil, nil, errs, nil
	}

	chat, err := s.dbStore.CreateChatSession(clientIP, profile)
	if err != nil {
		return nil, nil, nil, err
	}

	opening := "Keluhan awal saya: " + profile.ChiefComplaint
	result, err := s.runTurn(ctx, chat, opening, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	chat.TurnCount = result.TurnCount
	chat.Status = result.Status
	chat.ReportID = result.ReportID
	return chat, result, nil, nil
}

// UpdateContact fills in contact fields collected mid-conversation in
// relaxed intake mode.
func (s *ChatService) UpdateContact(ctx context.Context, chatID, whatsapp, email string) (map[string]string, error) {
	chat, err := s.dbStore.GetChatSession(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	if errs := validate.Contact(whatsapp, email); len(errs) > 0 {
		return errs, nil
	}

	chat.Profile.WhatsApp = whatsapp
	chat.Profile.Email = email
	return nil, s.dbStore.UpdateChatProfile(chatID, chat.Profile)
}

// PostTurn runs one user exchange. Once the turn count reaches the
// ceiling the model is forced to close with a final report.
func (s *ChatService) PostTurn(ctx context.Context, chatID, text string, images []string) (*TurnResult, error) {
	chat, err := s.dbStore.GetChatSession(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	if chat.Status != store.ChatActive {
		return nil, ErrChatClosed
	}

	locked, err := s.limiter.Locked(ctx, chat.ClientIP)
	if err != nil {
		log.Printf("Lock check failed for %s: %v. Allowing turn.", chat.ClientIP, err)
		locked = false
	}
	if locked {
		return nil, ErrSessionLocked
	}

	if strings.TrimSpace(text) == "" && len(images) == 0 {
		return nil, ErrEmptyMessage
	}

	return s.runTurn(ctx, chat, text, images)
}

// Messages returns the full transcript, oldest first.
func (s *ChatService) Messages(chatID string) ([]store.ChatMessage, error) {
	chat, err := s.dbStore.GetChatSession(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return s.dbStore.GetMessagesByChatID(chatID)
}

func (s *ChatService) GetReport(reportID string) (*store.Report, error) {
	return s.dbStore.GetReportByID(reportID)
}

func (s *ChatService) runTurn(ctx context.Context, chat *store.ChatSession, text string, images []string) (*TurnResult, error) {
	turn := chat.TurnCount + 1
	isFinal := turn >= s.maxTurns

	if err := s.dbStore.CreateChatMessage(&store.ChatMessage{
		ChatID:  chat.ID,
		Role:    "user",
		Content: text,
		Images:  images,
	}); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	history, err := s.buildHistory(chat)
	if err != nil {
		return nil, err
	}

	outcome := s.classify(ctx, chat.ID, history, isFinal)

	if isFinal && outcome.Type != TurnFinalReport && outcome.Type != TurnRejected {
		log.Printf("Chat %s hit the turn ceiling without a final report (got %q). Forcing closure.", chat.ID, outcome.Type)
		outcome = forcedFinalOutcome(outcome, chat.Profile.Name)
	}
	if outcome.Type == TurnFinalReport && outcome.Report == nil {
		log.Printf("Chat %s returned final_report without report data. Forcing closure.", chat.ID)
		outcome = forcedFinalOutcome(outcome, chat.Profile.Name)
	}

	if err := s.dbStore.CreateChatMessage(&store.ChatMessage{
		ChatID:  chat.ID,
		Role:    "model",
		Content: outcome.Message,
	}); err != nil {
		return nil, fmt.Errorf("failed to store model message: %w", err)
	}

	result := &TurnResult{
		Type:      outcome.Type,
		Message:   outcome.Message,
		TurnCount: turn,
		Status:    store.ChatActive,
	}

	switch outcome.Type {
	case TurnRejected:
		result.Status = store.ChatRejected

	case TurnFinalReport:
		report, err := s.dbStore.CreateReport(chat.ID, *outcome.Report, chat.Profile)
		if err != nil {
			return nil, fmt.Errorf("failed to store final report: %w", err)
		}
		result.Status = store.ChatCompleted
		result.ReportID = &report.ID
		result.Report = outcome.Report

		if err := s.limiter.Lock(ctx, chat.ClientIP); err != nil {
			log.Printf("Failed to set lock for %s: %v", chat.ClientIP, err)
		}
	}

	if err := s.dbStore.UpdateChatTurn(chat.ID, turn, result.Status, result.ReportID); err != nil {
		return nil, fmt.Errorf("failed to update chat turn: %w", err)
	}
	chat.TurnCount = turn
	chat.Status = result.Status
	chat.ReportID = result.ReportID

	return result, nil
}

// classify calls the model and parses the tagged reply. Transport and
// parse failures degrade to a plain chat message so the session stays
// usable.
func (s *ChatService) classify(ctx context.Context, chatID string, history []*genai.Content, isFinal bool) TurnOutcome {
	raw, err := s.llm.GenerateTurn(ctx, history, isFinal)
	if err != nil {
		log.Printf("Chat turn failed for %s: %v. Returning holding reply.", chatID, err)
		return holdingOutcome()
	}

	var outcome TurnOutcome
	if err := json.Unmarshal([]byte(raw), &outcome); err != nil {
		log.Printf("Chat turn for %s was not valid JSON (%.80s...): %v. Returning holding reply.", chatID, raw, err)
		return holdingOutcome()
	}

	switch outcome.Type {
	case TurnChat, TurnAskImage, TurnRejected, TurnFinalReport:
	default:
		log.Printf("Chat turn for %s had unknown type %q. Treating as chat.", chatID, outcome.Type)
		outcome.Type = TurnChat
	}
	if strings.TrimSpace(outcome.Message) == "" {
		return holdingOutcome()
	}
	return outcome
}

func holdingOutcome() TurnOutcome {
	return TurnOutcome{
		Type:    TurnChat,
		Message: "Maaf, koneksi sedang terganggu. Silakan kirim ulang pesan Anda.",
	}
}

// forcedFinalOutcome closes a session when the model will not. The
// stand-in report keeps the invariant that a completed session always
// has one.
func forcedFinalOutcome(prev TurnOutcome, name string) TurnOutcome {
	msg := prev.Message
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("Terima kasih %s, sesi anamnesis telah selesai. Berikut ringkasan sementara kami.", name)
	}
	return TurnOutcome{
		Type:    TurnFinalReport,
		Message: msg,
		Report: &store.ReportData{
			RiskLevel:          store.RiskLow,
			RiskScore:          20,
			Summary:            "Sesi berakhir sebelum anamnesis lengkap. Berdasarkan informasi yang ada, belum ditemukan tanda bahaya yang jelas.",
			AnamnesisReasoning: "Data percakapan belum cukup untuk penilaian menyeluruh, sehingga laporan ini bersifat sementara.",
			Recommendations:    []string{"Silakan konsultasi langsung dengan dokter untuk pemeriksaan lebih lanjut."},
		},
	}
}

// buildHistory maps the stored transcript into model contents. The
// profile rides as a leading user message so the model always has the
// demographic context.
func (s *ChatService) buildHistory(chat *store.ChatSession) ([]*genai.Content, error) {
	messages, err := s.dbStore.GetMessagesByChatID(chat.ID)
	if err != nil {
		return nil, err
	}

	p := chat.Profile
	preamble := fmt.Sprintf("Data pasien: nama %s, usia %s, jenis kelamin %s. Keluhan utama: %s.",
		p.Name, p.Age, p.Gender, p.ChiefComplaint)

	history := []*genai.Content{
		{Role: "user", Parts: []genai.Part{genai.Text(preamble)}},
		{Role: "model", Parts: []genai.Part{genai.Text("Baik, data pasien sudah saya catat.")}},
	}

	for _, msg := range messages {
		parts := make([]genai.Part, 0, 1+len(msg.Images))
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
		for _, img := range msg.Images {
			part, err := imagePart(img)
			if err != nil {
				log.Printf("Skipping unreadable image on message %s: %v", msg.ID, err)
				continue
			}
			parts = append(parts, part)
		}
		if len(parts) == 0 {
			continue
		}
		history = append(history, &genai.Content{Role: msg.Role, Parts: parts})
	}
	return history, nil
}

// imagePart decodes a data-URL image ("data:image/jpeg;base64,...")
// into an inline model part.
func imagePart(dataURL string) (genai.Part, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:image/")
	if !ok {
		return nil, fmt.Errorf("not an image data URL")
	}
	format, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, fmt.Errorf("image data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return genai.ImageData(format, data), nil
}
