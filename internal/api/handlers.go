package api

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ahcc-digital/oncoscreen/internal/config"
	"github.com/ahcc-digital/oncoscreen/internal/core"
	"github.com/ahcc-digital/oncoscreen/internal/quiz"
	"github.com/ahcc-digital/oncoscreen/internal/report"
	"github.com/ahcc-digital/oncoscreen/internal/store"
	"github.com/ahcc-digital/oncoscreen/internal/validate"
)

type APIHandler struct {
	screening *core.ScreeningService
	chat      *core.ChatService
	dbStore   *store.SQLiteStore
}

func NewAPIHandler(screening *core.ScreeningService, chat *core.ChatService, dbStore *store.SQLiteStore) *APIHandler {
	return &APIHandler{
		screening: screening,
		chat:      chat,
		dbStore:   dbStore,
	}
}

// clientIP identifies the respondent for rate limiting and history.
// The first X-Forwarded-For hop wins when the service sits behind a
// proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeFieldErrors reports form validation failures without creating
// or changing anything server-side.
func writeFieldErrors(w http.ResponseWriter, errs map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
}

func (h *APIHandler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	gender := quiz.Gender(r.URL.Query().Get("gender"))
	if gender != quiz.GenderMale && gender != quiz.GenderFemale {
		http.Error(w, "gender must be 'male' or 'female'", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, quiz.CategoriesForGender(gender))
}

// FormModeHandler also ships the lead-form options so the client does
// not hardcode them.
func (h *APIHandler) FormModeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":        config.AppConfig.FormMode,
		"infoSources": quiz.InfoSources,
	})
}

type StartSessionRequest struct {
	Gender   quiz.Gender `json:"gender"`
	CancerID string      `json:"cancerId"`
}

func (h *APIHandler) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := h.screening.StartSession(r.Context(), clientIP(r), req.Gender, req.CancerID)
	switch {
	case errors.Is(err, core.ErrLimitReached):
		http.Error(w, "Batas percobaan screening telah tercapai", http.StatusTooManyRequests)
		return
	case errors.Is(err, core.ErrUnknownCategory):
		http.Error(w, "Unknown screening category", http.StatusBadRequest)
		return
	case err != nil:
		log.Printf("Error starting session for %s: %v", clientIP(r), err)
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (h *APIHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.screening.GetSession(sessionID)
	if err != nil {
		log.Printf("Error getting session %s: %v", sessionID, err)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	if sess == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type AnswerRequest struct {
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

func (h *APIHandler) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := h.screening.SubmitAnswer(sessionID, quiz.Submission{Value: req.Value, Values: req.Values})
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	case errors.Is(err, quiz.ErrQuizFinished),
		errors.Is(err, quiz.ErrEmptySelection),
		errors.Is(err, quiz.ErrEmptyText),
		errors.Is(err, quiz.ErrUnknownOption):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		log.Printf("Error submitting answer for session %s: %v", sessionID, err)
		http.Error(w, "Failed to submit answer", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (h *APIHandler) SubmitLeadHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req validate.LeadForm
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sess, fieldErrs, err := h.screening.SubmitLead(r.Context(), sessionID, req)
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	case errors.Is(err, core.ErrQuizNotFinished):
		http.Error(w, "Quiz is not finished yet", http.StatusConflict)
		return
	case errors.Is(err, core.ErrAlreadyCompleted):
		http.Error(w, "Session is already completed", http.StatusConflict)
		return
	case err != nil:
		log.Printf("Error submitting lead for session %s: %v", sessionID, err)
		http.Error(w, "Failed to submit profile", http.StatusInternalServerError)
		return
	}
	if len(fieldErrs) > 0 {
		writeFieldErrors(w, fieldErrs)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (h *APIHandler) GetResultHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.screening.GetSession(sessionID)
	if err != nil {
		log.Printf("Error getting session %s: %v", sessionID, err)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	if sess == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if sess.Result == nil {
		http.Error(w, "Session has no result yet", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, sess.Result)
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.screening.History(clientIP(r))
	if err != nil {
		log.Printf("Error listing history for %s: %v", clientIP(r), err)
		http.Error(w, "Failed to list history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []store.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

type StartChatRequest struct {
	validate.ChatProfile
}

type StartChatResponse struct {
	*store.ChatSession
	Turn *core.TurnResult `json:"turn"`
}

func (h *APIHandler) StartChatHandler(w http.ResponseWriter, r *http.Request) {
	var req StartChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	chat, turn, fieldErrs, err := h.chat.StartChat(r.Context(), clientIP(r), req.ChatProfile, config.AppConfig.FormMode)
	switch {
	case errors.Is(err, core.ErrSessionLocked):
		http.Error(w, "Anda baru saja menyelesaikan sesi. Silakan coba lagi nanti.", http.StatusTooManyRequests)
		return
	case err != nil:
		log.Printf("Error starting chat for %s: %v", clientIP(r), err)
		http.Error(w, "Failed to start chat", http.StatusInternalServerError)
		return
	}
	if len(fieldErrs) > 0 {
		writeFieldErrors(w, fieldErrs)
		return
	}

	writeJSON(w, http.StatusCreated, StartChatResponse{ChatSession: chat, Turn: turn})
}

type PostTurnRequest struct {
	Text   string   `json:"text"`
	Images []string `json:"images,omitempty"`
}

func (h *APIHandler) PostTurnHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var req PostTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.chat.PostTurn(r.Context(), chatID, req.Text, req.Images)
	switch {
	case errors.Is(err, core.ErrChatNotFound):
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	case errors.Is(err, core.ErrChatClosed):
		http.Error(w, "Chat session is closed", http.StatusConflict)
		return
	case errors.Is(err, core.ErrSessionLocked):
		http.Error(w, "Anda baru saja menyelesaikan sesi. Silakan coba lagi nanti.", http.StatusTooManyRequests)
		return
	case errors.Is(err, core.ErrEmptyMessage):
		http.Error(w, "Message cannot be empty", http.StatusBadRequest)
		return
	case err != nil:
		log.Printf("Error posting turn for chat %s: %v", chatID, err)
		http.Error(w, "Failed to post message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) ChatMessagesHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	messages, err := h.chat.Messages(chatID)
	if errors.Is(err, core.ErrChatNotFound) {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error listing messages for chat %s: %v", chatID, err)
		http.Error(w, "Failed to list messages", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []store.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}

type ContactRequest struct {
	WhatsApp string `json:"whatsapp"`
	Email    string `json:"email"`
}

func (h *APIHandler) UpdateContactHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	fieldErrs, err := h.chat.UpdateContact(r.Context(), chatID, req.WhatsApp, req.Email)
	if errors.Is(err, core.ErrChatNotFound) {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error updating contact for chat %s: %v", chatID, err)
		http.Error(w, "Failed to update contact", http.StatusInternalServerError)
		return
	}
	if len(fieldErrs) > 0 {
		writeFieldErrors(w, fieldErrs)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ReportResponse struct {
	*store.Report
	AdvisorLink string `json:"advisorLink"`
}

func (h *APIHandler) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	rep, err := h.chat.GetReport(reportID)
	if err != nil {
		log.Printf("Error getting report %s: %v", reportID, err)
		http.Error(w, "Failed to get report", http.StatusInternalServerError)
		return
	}
	if rep == nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{
		Report:      rep,
		AdvisorLink: report.AdvisorLink(rep.User, rep.Data, rep.ID),
	})
}

func (h *APIHandler) ReportQRHandler(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	rep, err := h.chat.GetReport(reportID)
	if err != nil {
		log.Printf("Error getting report %s: %v", reportID, err)
		http.Error(w, "Failed to get report", http.StatusInternalServerError)
		return
	}
	if rep == nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}

	png, err := report.QRPNG(rep.ID)
	if err != nil {
		log.Printf("Error rendering QR for report %s: %v", reportID, err)
		http.Error(w, "Failed to render QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *APIHandler) ReportPDFHandler(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	rep, err := h.chat.GetReport(reportID)
	if err != nil {
		log.Printf("Error getting report %s: %v", reportID, err)
		http.Error(w, "Failed to get report", http.StatusInternalServerError)
		return
	}
	if rep == nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="laporan-skrining.pdf"`)
	if err := report.PDF(w, rep); err != nil {
		log.Printf("Error rendering PDF for report %s: %v", reportID, err)
	}
}
