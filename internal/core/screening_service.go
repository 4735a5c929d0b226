package core

import (
	"context"
	"errors"
	"log"

	"github.com/ahcc-digital/oncoscreen/internal/limiter"
	"github.com/ahcc-digital/oncoscreen/internal/quiz"
	"github.com/ahcc-digital/oncoscreen/internal/store"
	"github.com/ahcc-digital/oncoscreen/internal/validate"
)

var (
	ErrLimitReached     = errors.New("screening limit reached for this client")
	ErrUnknownCategory  = errors.New("unknown screening category")
	ErrSessionNotFound  = errors.New("session not found")
	ErrQuizNotFinished  = errors.New("quiz is not finished yet")
	ErrAlreadyCompleted = errors.New("session already completed")
)

// ScreeningService drives the quiz flow: session creation, answer
// submission through the navigator, and the terminal lead-form ->
// analysis -> result transition.
type ScreeningService struct {
	dbStore  *store.SQLiteStore
	analysis *AnalysisService
	limiter  limiter.Limiter
}

func NewScreeningService(db *store.SQLiteStore, analysis *AnalysisService, lim limiter.Limiter) *ScreeningService {
	return &ScreeningService{
		dbStore:  db,
		analysis: analysis,
		limiter:  lim,
	}
}

// StartSession begins a quiz for a category. The limiter is consulted
// at entry; abandoned sessions never count against the threshold.
func (s *ScreeningService) StartSession(ctx context.Context, clientIP string, gender quiz.Gender, cancerID string) (*store.ScreeningSession, error) {
	allowed, err := s.limiter.Allowed(ctx, clientIP)
	if err != nil {
		// A broken limiter must not take the tool down; let the
		// attempt through and log.
		log.Printf("Limiter check failed for %s: %v. Allowing attempt.", clientIP, err)
		allowed = true
	}
	if !allowed {
		return nil, ErrLimitReached
	}

	cat := quiz.CategoryByID(cancerID)
	if cat == nil {
		return nil, ErrUnknownCategory
	}

	state := quiz.NewState(quiz.QuestionsForCancer(cancerID))
	sess, err := s.dbStore.CreateSession(clientIP, gender, cat.ID, cat.Label, state)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *ScreeningService) GetSession(sessionID string) (*store.ScreeningSession, error) {
	return s.dbStore.GetSession(sessionID)
}

// SubmitAnswer feeds one submission through the navigator and persists
// the resulting state. Navigator rejections (empty multi-select, blank
// text, unknown option) pass through unchanged.
func (s *ScreeningService) SubmitAnswer(sessionID string, sub quiz.Submission) (*store.ScreeningSession, error) {
	sess, err := s.dbStore.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	next, err := quiz.Answer(sess.State, sub)
	if err != nil {
		return nil, err
	}

	if err := s.dbStore.UpdateSessionState(sessionID, next); err != nil {
		return nil, err
	}
	sess.State = next
	return sess, nil
}

// SubmitLead validates the contact form and, when valid, runs the
// analysis and persists everything: the session result, the client's
// history record, the aggregate submission row, and the attempt count.
// The returned map holds per-field validation errors; a non-empty map
// means nothing was sent anywhere.
func (s *ScreeningService) SubmitLead(ctx context.Context, sessionID string, lead validate.LeadForm) (*store.ScreeningSession, map[string]string, error) {
	sess, err := s.dbStore.GetSession(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		return nil, nil, ErrSessionNotFound
	}
	if sess.Result != nil {
		return nil, nil, ErrAlreadyCompleted
	}
	if sess.State.Step != quiz.StepLeadForm {
		return nil, nil, ErrQuizNotFinished
	}

	if errs := validate.Lead(lead); len(errs) > 0 {
		return nil, errs, nil
	}

	cat := quiz.CategoryByID(sess.CancerID)
	if cat == nil {
		return nil, nil, ErrUnknownCategory
	}

	// Analyze never fails; the fallback result keeps the flow moving.
	result := s.analysis.Analyze(ctx, sess.State.Responses, lead.Name, *cat)

	if err := s.dbStore.CompleteSession(sessionID, lead, result); err != nil {
		return nil, nil, err
	}
	sess.Lead = &lead
	sess.Result = &result

	// Ancillary writes: log and continue, the respondent already has
	// their result.
	if err := s.dbStore.AppendHistory(&store.HistoryRecord{
		ClientIP:        sess.ClientIP,
		CancerLabel:     sess.CancerLabel,
		RiskLevel:       result.RiskLevel,
		Summary:         result.Summary,
		Recommendations: result.Recommendations,
	}); err != nil {
		log.Printf("Failed to append history for session %s: %v", sessionID, err)
	}

	if err := s.dbStore.CreateSubmission(&store.Submission{
		Name:           lead.Name,
		WhatsApp:       lead.WhatsApp,
		Email:          lead.Email,
		InfoSource:     lead.InfoSource,
		MarketingOptIn: lead.MarketingOptIn,
		CancerLabel:    sess.CancerLabel,
		RiskLevel:      result.RiskLevel,
		Summary:        result.Summary,
	}); err != nil {
		log.Printf("Failed to record submission for session %s: %v", sessionID, err)
	}

	if err := s.limiter.RecordCompletion(ctx, sess.ClientIP); err != nil {
		log.Printf("Failed to record completion for %s: %v", sess.ClientIP, err)
	}

	return sess, nil, nil
}

// History lists the client's completed screenings, newest first.
func (s *ScreeningService) History(clientIP string) ([]store.HistoryRecord, error) {
	return s.dbStore.GetHistoryByClient(clientIP)
}
