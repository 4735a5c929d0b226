package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/ahcc-digital/oncoscreen/internal/quiz"
	"github.com/ahcc-digital/oncoscreen/internal/validate"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY, -- UUID
        client_ip TEXT NOT NULL,
        gender TEXT NOT NULL,
        cancer_id TEXT NOT NULL,
        cancer_label TEXT NOT NULL,
        state_json TEXT NOT NULL,
        lead_json TEXT,
        result_json TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        completed_at DATETIME
    );

    CREATE TABLE IF NOT EXISTS history (
        id TEXT PRIMARY KEY, -- UUID
        client_ip TEXT NOT NULL,
        cancer_label TEXT NOT NULL,
        risk_level TEXT NOT NULL,
        summary TEXT NOT NULL,
        recommendations_json TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS submissions (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT NOT NULL,
        whatsapp TEXT NOT NULL,
        email TEXT NOT NULL,
        info_source TEXT NOT NULL,
        marketing_opt_in BOOLEAN DEFAULT TRUE,
        cancer_label TEXT NOT NULL,
        risk_level TEXT NOT NULL,
        summary TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS chats (
        id TEXT PRIMARY KEY, -- UUID
        client_ip TEXT NOT NULL,
        profile_json TEXT NOT NULL,
        turn_count INTEGER DEFAULT 0,
        status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'rejected', 'completed')),
        report_id TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS chat_messages (
        id TEXT PRIMARY KEY, -- UUID
        chat_id TEXT NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'model')),
        content TEXT NOT NULL,
        images_json TEXT,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (chat_id) REFERENCES chats (id)
    );

    CREATE TABLE IF NOT EXISTS reports (
        id TEXT PRIMARY KEY, -- UUID
        chat_id TEXT NOT NULL,
        report_json TEXT NOT NULL,
        user_json TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (chat_id) REFERENCES chats (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Screening session methods

func (s *SQLiteStore) CreateSession(clientIP string, gender quiz.Gender, cancerID, cancerLabel string, state quiz.State) (*ScreeningSession, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quiz state: %w", err)
	}

	sess := &ScreeningSession{
		ID:          uuid.NewString(),
		ClientIP:    clientIP,
		Gender:      gender,
		CancerID:    cancerID,
		CancerLabel: cancerLabel,
		State:       state,
		CreatedAt:   time.Now(),
	}

	_, err = s.db.Exec(
		"INSERT INTO sessions (id, client_ip, gender, cancer_id, cancer_label, state_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		sess.ID, sess.ClientIP, string(sess.Gender), sess.CancerID, sess.CancerLabel, string(stateJSON), sess.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) GetSession(sessionID string) (*ScreeningSession, error) {
	var sess ScreeningSession
	var gender, stateJSON string
	var leadJSON, resultJSON sql.NullString
	var completedAt sql.NullTime

	err := s.db.QueryRow(
		"SELECT id, client_ip, gender, cancer_id, cancer_label, state_json, lead_json, result_json, created_at, completed_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&sess.ID, &sess.ClientIP, &gender, &sess.CancerID, &sess.CancerLabel, &stateJSON, &leadJSON, &resultJSON, &sess.CreatedAt, &completedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	sess.Gender = quiz.Gender(gender)
	if err := json.Unmarshal([]byte(stateJSON), &sess.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quiz state for session %s: %w", sessionID, err)
	}
	if leadJSON.Valid {
		var lead validate.LeadForm
		if err := json.Unmarshal([]byte(leadJSON.String), &lead); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lead for session %s: %w", sessionID, err)
		}
		sess.Lead = &lead
	}
	if resultJSON.Valid {
		var result AnalysisResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result for session %s: %w", sessionID, err)
		}
		sess.Result = &result
	}
	if completedAt.Valid {
		sess.CompletedAt = &completedAt.Time
	}
	return &sess, nil
}

func (s *SQLiteStore) UpdateSessionState(sessionID string, state quiz.State) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz state: %w", err)
	}

	res, err := s.db.Exec("UPDATE sessions SET state_json = ? WHERE id = ?", string(stateJSON), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session state: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("session not found, state not updated")
	}
	return nil
}

func (s *SQLiteStore) CompleteSession(sessionID string, lead validate.LeadForm, result AnalysisResult) error {
	leadJSON, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	res, err := s.db.Exec(
		"UPDATE sessions SET lead_json = ?, result_json = ?, completed_at = ? WHERE id = ?",
		string(leadJSON), string(resultJSON), time.Now(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("session not found, result not saved")
	}
	return nil
}

// History methods

func (s *SQLiteStore) AppendHistory(rec *HistoryRecord) error {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()

	recsJSON, err := json.Marshal(rec.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO history (id, client_ip, cancer_label, risk_level, summary, recommendations_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.ClientIP, rec.CancerLabel, rec.RiskLevel, rec.Summary, string(recsJSON), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// GetHistoryByClient lists a client's completed screenings newest first.
func (s *SQLiteStore) GetHistoryByClient(clientIP string) ([]HistoryRecord, error) {
	rows, err := s.db.Query(
		"SELECT id, client_ip, cancer_label, risk_level, summary, recommendations_json, created_at FROM history WHERE client_ip = ? ORDER BY created_at DESC",
		clientIP,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		var recsJSON string
		if err := rows.Scan(&rec.ID, &rec.ClientIP, &rec.CancerLabel, &rec.RiskLevel, &rec.Summary, &recsJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(recsJSON), &rec.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommendations for record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Submission methods

func (s *SQLiteStore) CreateSubmission(sub *Submission) error {
	sub.ID = uuid.NewString()
	sub.CreatedAt = time.Now()

	_, err := s.db.Exec(
		"INSERT INTO submissions (id, name, whatsapp, email, info_source, marketing_opt_in, cancer_label, risk_level, summary, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		sub.ID, sub.Name, sub.WhatsApp, sub.Email, sub.InfoSource, sub.MarketingOptIn, sub.CancerLabel, sub.RiskLevel, sub.Summary, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSubmissions() ([]Submission, error) {
	rows, err := s.db.Query(
		"SELECT id, name, whatsapp, email, info_source, marketing_opt_in, cancer_label, risk_level, summary, created_at FROM submissions ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.WhatsApp, &sub.Email, &sub.InfoSource, &sub.MarketingOptIn, &sub.CancerLabel, &sub.RiskLevel, &sub.Summary, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (s *SQLiteStore) ClearSubmissions() error {
	if _, err := s.db.Exec("DELETE FROM submissions"); err != nil {
		return fmt.Errorf("failed to delete submissions: %w", err)
	}
	return nil
}

// Chat session methods

func (s *SQLiteStore) CreateChatSession(clientIP string, profile validate.ChatProfile) (*ChatSession, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat profile: %w", err)
	}

	chat := &ChatSession{
		ID:        uuid.NewString(),
		ClientIP:  clientIP,
		Profile:   profile,
		Status:    ChatActive,
		CreatedAt: time.Now(),
	}

	_, err = s.db.Exec(
		"INSERT INTO chats (id, client_ip, profile_json, turn_count, status, created_at) VALUES (?, ?, ?, 0, ?, ?)",
		chat.ID, chat.ClientIP, string(profileJSON), chat.Status, chat.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chat session: %w", err)
	}
	return chat, nil
}

func (s *SQLiteStore) GetChatSession(chatID string) (*ChatSession, error) {
	var chat ChatSession
	var profileJSON string
	var reportID sql.NullString

	err := s.db.QueryRow(
		"SELECT id, client_ip, profile_json, turn_count, status, report_id, created_at FROM chats WHERE id = ?",
		chatID,
	).Scan(&chat.ID, &chat.ClientIP, &profileJSON, &chat.TurnCount, &chat.Status, &reportID, &chat.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to query chat session: %w", err)
	}

	if err := json.Unmarshal([]byte(profileJSON), &chat.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat profile for %s: %w", chatID, err)
	}
	if reportID.Valid {
		chat.ReportID = &reportID.String
	}
	return &chat, nil
}

func (s *SQLiteStore) UpdateChatProfile(chatID string, profile validate.ChatProfile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal chat profile: %w", err)
	}
	res, err := s.db.Exec("UPDATE chats SET profile_json = ? WHERE id = ?", string(profileJSON), chatID)
	if err != nil {
		return fmt.Errorf("failed to update chat profile: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("chat not found, profile not updated")
	}
	return nil
}

func (s *SQLiteStore) UpdateChatTurn(chatID string, turnCount int, status string, reportID *string) error {
	res, err := s.db.Exec(
		"UPDATE chats SET turn_count = ?, status = ?, report_id = ? WHERE id = ?",
		turnCount, status, reportID, chatID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chat turn: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("chat not found, turn not updated")
	}
	return nil
}

func (s *SQLiteStore) CreateChatMessage(msg *ChatMessage) error {
	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now()

	var imagesJSON sql.NullString
	if len(msg.Images) > 0 {
		b, err := json.Marshal(msg.Images)
		if err != nil {
			return fmt.Errorf("failed to marshal message images: %w", err)
		}
		imagesJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.Exec(
		"INSERT INTO chat_messages (id, chat_id, role, content, images_json, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		msg.ID, msg.ChatID, msg.Role, msg.Content, imagesJSON, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMessagesByChatID(chatID string) ([]ChatMessage, error) {
	rows, err := s.db.Query(
		"SELECT id, chat_id, role, content, images_json, timestamp FROM chat_messages WHERE chat_id = ? ORDER BY timestamp ASC",
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		var imagesJSON sql.NullString
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &imagesJSON, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat message row: %w", err)
		}
		if imagesJSON.Valid && imagesJSON.String != "" {
			if err := json.Unmarshal([]byte(imagesJSON.String), &msg.Images); err != nil {
				return nil, fmt.Errorf("failed to unmarshal images for message %s: %w", msg.ID, err)
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Report methods

func (s *SQLiteStore) CreateReport(chatID string, data ReportData, user validate.ChatProfile) (*Report, error) {
	reportJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report data: %w", err)
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report user: %w", err)
	}

	rep := &Report{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Data:      data,
		User:      user,
		CreatedAt: time.Now(),
	}

	_, err = s.db.Exec(
		"INSERT INTO reports (id, chat_id, report_json, user_json, created_at) VALUES (?, ?, ?, ?, ?)",
		rep.ID, rep.ChatID, string(reportJSON), string(userJSON), rep.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}
	return rep, nil
}

func (s *SQLiteStore) GetReportByID(reportID string) (*Report, error) {
	var rep Report
	var reportJSON, userJSON string

	err := s.db.QueryRow(
		"SELECT id, chat_id, report_json, user_json, created_at FROM reports WHERE id = ?",
		reportID,
	).Scan(&rep.ID, &rep.ChatID, &reportJSON, &userJSON, &rep.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	if err := json.Unmarshal([]byte(reportJSON), &rep.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report data for %s: %w", reportID, err)
	}
	if err := json.Unmarshal([]byte(userJSON), &rep.User); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report user for %s: %w", reportID, err)
	}
	return &rep, nil
}
