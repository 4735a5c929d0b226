package store

import (
	"time"

	"github.com/ahcc-digital/oncoscreen/internal/quiz"
	"github.com/ahcc-digital/oncoscreen/internal/validate"
)

// Risk tiers returned by the analysis step. The labels are the
// Indonesian strings shown to respondents.
const (
	RiskLow    = "Rendah"
	RiskMedium = "Sedang"
	RiskHigh   = "Tinggi"
)

// AnalysisResult is the structured output of the AI evaluation.
type AnalysisResult struct {
	RiskLevel         string   `json:"riskLevel"`
	Summary           string   `json:"summary"`
	Recommendations   []string `json:"recommendations"`
	MedicalDisclaimer string   `json:"medicalDisclaimer"`
}

// ScreeningSession is one quiz run. State carries the live question
// sequence and responses; Result is set once the analysis completes.
type ScreeningSession struct {
	ID          string            `json:"id"` // UUID
	ClientIP    string            `json:"-"`
	Gender      quiz.Gender       `json:"gender"`
	CancerID    string            `json:"cancerId"`
	CancerLabel string            `json:"cancerLabel"`
	State       quiz.State        `json:"state"`
	Lead        *validate.LeadForm `json:"lead,omitempty"`
	Result      *AnalysisResult   `json:"result,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// HistoryRecord is a respondent's own past result, listed newest first.
type HistoryRecord struct {
	ID              string    `json:"id"` // UUID
	ClientIP        string    `json:"-"`
	CancerLabel     string    `json:"cancerLabel"`
	RiskLevel       string    `json:"riskLevel"`
	Summary         string    `json:"summary"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"timestamp"`
}

// Submission is one row of the aggregate log behind the admin
// dashboard and the CSV export.
type Submission struct {
	ID             string    `json:"id"` // UUID
	Name           string    `json:"name"`
	WhatsApp       string    `json:"whatsapp"`
	Email          string    `json:"email"`
	InfoSource     string    `json:"infoSource"`
	MarketingOptIn bool      `json:"marketingOptIn"`
	CancerLabel    string    `json:"cancerType"`
	RiskLevel      string    `json:"riskLevel"`
	Summary        string    `json:"summary"`
	CreatedAt      time.Time `json:"timestamp"`
}

// Chat session status values.
const (
	ChatActive    = "active"
	ChatRejected  = "rejected"
	ChatCompleted = "completed"
)

// ChatSession is one conversational screening run.
type ChatSession struct {
	ID        string               `json:"id"` // UUID
	ClientIP  string               `json:"-"`
	Profile   validate.ChatProfile `json:"profile"`
	TurnCount int                  `json:"turnCount"`
	Status    string               `json:"status"`
	ReportID  *string              `json:"reportId,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// ChatMessage is one side of a turn. Images are data-URL strings the
// respondent attached, kept verbatim for the model.
type ChatMessage struct {
	ID        string    `json:"id"` // UUID
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"` // "user" or "model"
	Content   string    `json:"text"`
	Images    []string  `json:"images,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReportData is the final structured report of the conversational flow.
type ReportData struct {
	RiskLevel          string   `json:"risk_level"`
	RiskScore          int      `json:"risk_score"` // 0-100
	Summary            string   `json:"summary"`
	AnamnesisReasoning string   `json:"anamnesis_reasoning"`
	SuspectedConditions []string `json:"suspected_conditions"`
	Recommendations    []string `json:"recommendations"`
}

// Report is a shareable report page, reachable by opaque ID.
type Report struct {
	ID        string               `json:"id"` // UUID
	ChatID    string               `json:"chat_id"`
	Data      ReportData           `json:"report_data"`
	User      validate.ChatProfile `json:"user_data"`
	CreatedAt time.Time            `json:"created_at"`
}
