package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avavoice/ava-server/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	chatMu sync.Mutex // serializes chat message appends to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		full_name TEXT,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS medications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		dosage TEXT NOT NULL,
		frequency TEXT NOT NULL,
		medication_time TEXT NOT NULL,
		notes TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		refill_reminder_days INTEGER NOT NULL DEFAULT 7,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_medications_user ON medications(user_id, is_active);

	CREATE TABLE IF NOT EXISTS medication_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		medication_id TEXT NOT NULL,
		scheduled_time TEXT NOT NULL,
		status TEXT NOT NULL,
		taken_at INTEGER,
		notes TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_medication_logs_user ON medication_logs(user_id, created_at);

	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		medication_id TEXT,
		title TEXT NOT NULL,
		description TEXT,
		reminder_time TEXT NOT NULL,
		is_recurring INTEGER NOT NULL DEFAULT 1,
		days_of_week TEXT,
		reminder_type TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		last_triggered INTEGER,
		snooze_until INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id, is_active);

	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_start INTEGER NOT NULL,
		session_end INTEGER,
		message_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_sessions_updated ON chat_sessions(updated_at);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		message_type TEXT NOT NULL,
		content TEXT NOT NULL,
		audio_url TEXT,
		voice_input INTEGER NOT NULL DEFAULT 0,
		processing_time_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT id, email, full_name, timezone, is_active, created_at, updated_at
		FROM users WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var user domain.User
	var fullName sql.NullString
	var isActive int
	var createdAt, updatedAt int64

	err := row.Scan(&user.ID, &user.Email, &fullName, &user.Timezone, &isActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.FullName = fullName.String
	user.IsActive = isActive != 0
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)
	return &user, nil
}

// UpsertUser creates or updates a user record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	now := time.Now().Unix()
	query := `
		INSERT INTO users (id, email, full_name, timezone, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			full_name = excluded.full_name,
			timezone = excluded.timezone,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, nullString(user.FullName), user.Timezone, boolInt(user.IsActive), now, now)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// CreateMedication inserts a medication row.
func (s *SQLiteStore) CreateMedication(ctx context.Context, med *domain.Medication) error {
	now := time.Now()
	med.CreatedAt = now
	med.UpdatedAt = now

	query := `
		INSERT INTO medications (id, user_id, name, dosage, frequency, medication_time,
			notes, is_active, refill_reminder_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		med.ID, med.UserID, med.Name, med.Dosage, med.Frequency, med.MedicationTime,
		nullString(med.Notes), boolInt(med.IsActive), med.RefillReminderDays,
		now.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("insert medication: %w", err)
	}
	return nil
}

// GetMedication retrieves a medication by ID.
func (s *SQLiteStore) GetMedication(ctx context.Context, medicationID string) (*domain.Medication, error) {
	query := `
		SELECT id, user_id, name, dosage, frequency, medication_time,
		       notes, is_active, refill_reminder_days, created_at, updated_at
		FROM medications WHERE id = ?`

	med, err := scanMedication(s.db.QueryRowContext(ctx, query, medicationID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan medication row: %w", err)
	}
	return med, nil
}

// ListMedications returns a user's medications, newest first.
func (s *SQLiteStore) ListMedications(ctx context.Context, userID string, activeOnly bool) ([]*domain.Medication, error) {
	query := `
		SELECT id, user_id, name, dosage, frequency, medication_time,
		       notes, is_active, refill_reminder_days, created_at, updated_at
		FROM medications WHERE user_id = ?`
	args := []interface{}{userID}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query medications: %w", err)
	}
	defer rows.Close()

	var meds []*domain.Medication
	for rows.Next() {
		med, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medication row: %w", err)
		}
		meds = append(meds, med)
	}
	return meds, rows.Err()
}

// UpdateMedication rewrites a medication row.
func (s *SQLiteStore) UpdateMedication(ctx context.Context, med *domain.Medication) error {
	med.UpdatedAt = time.Now()
	query := `
		UPDATE medications SET name = ?, dosage = ?, frequency = ?, medication_time = ?,
			notes = ?, is_active = ?, refill_reminder_days = ?, updated_at = ?
		WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query,
		med.Name, med.Dosage, med.Frequency, med.MedicationTime,
		nullString(med.Notes), boolInt(med.IsActive), med.RefillReminderDays,
		med.UpdatedAt.Unix(), med.ID)
	if err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	return requireRow(res, "medication", med.ID)
}

// DeactivateMedication soft-deletes a medication.
func (s *SQLiteStore) DeactivateMedication(ctx context.Context, medicationID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE medications SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().Unix(), medicationID)
	if err != nil {
		return fmt.Errorf("deactivate medication: %w", err)
	}
	return requireRow(res, "medication", medicationID)
}

// CreateMedicationLog records a dose outcome.
func (s *SQLiteStore) CreateMedicationLog(ctx context.Context, log *domain.MedicationLog) error {
	log.CreatedAt = time.Now()
	query := `
		INSERT INTO medication_logs (id, user_id, medication_id, scheduled_time, status, taken_at, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		log.ID, log.UserID, log.MedicationID, log.ScheduledTime, log.Status,
		nullTime(log.TakenAt), nullString(log.Notes), log.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert medication log: %w", err)
	}
	return nil
}

// ListMedicationLogs returns dose outcomes since a cutoff, newest first.
func (s *SQLiteStore) ListMedicationLogs(ctx context.Context, userID, medicationID string, since time.Time) ([]*domain.MedicationLog, error) {
	query := `
		SELECT id, user_id, medication_id, scheduled_time, status, taken_at, notes, created_at
		FROM medication_logs WHERE user_id = ? AND created_at >= ?`
	args := []interface{}{userID, since.Unix()}
	if medicationID != "" {
		query += ` AND medication_id = ?`
		args = append(args, medicationID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query medication logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.MedicationLog
	for rows.Next() {
		var log domain.MedicationLog
		var takenAt sql.NullInt64
		var notes sql.NullString
		var createdAt int64

		if err := rows.Scan(&log.ID, &log.UserID, &log.MedicationID, &log.ScheduledTime,
			&log.Status, &takenAt, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan medication log row: %w", err)
		}
		if takenAt.Valid {
			t := time.Unix(takenAt.Int64, 0)
			log.TakenAt = &t
		}
		log.Notes = notes.String
		log.CreatedAt = time.Unix(createdAt, 0)
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}

// CreateReminder inserts a reminder row.
func (s *SQLiteStore) CreateReminder(ctx context.Context, rem *domain.Reminder) error {
	now := time.Now()
	rem.CreatedAt = now
	rem.UpdatedAt = now

	days, err := marshalDays(rem.DaysOfWeek)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO reminders (id, user_id, medication_id, title, description, reminder_time,
			is_recurring, days_of_week, reminder_type, is_active, last_triggered, snooze_until,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		rem.ID, rem.UserID, nullString(rem.MedicationID), rem.Title, nullString(rem.Description),
		rem.ReminderTime, boolInt(rem.IsRecurring), days, nullString(rem.ReminderType),
		boolInt(rem.IsActive), nullTime(rem.LastTriggered), nullTime(rem.SnoozeUntil),
		now.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	return nil
}

// GetReminder retrieves a reminder by ID.
func (s *SQLiteStore) GetReminder(ctx context.Context, reminderID string) (*domain.Reminder, error) {
	query := reminderSelect + ` WHERE id = ?`
	rem, err := scanReminder(s.db.QueryRowContext(ctx, query, reminderID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan reminder row: %w", err)
	}
	return rem, nil
}

// ListReminders returns a user's reminders.
func (s *SQLiteStore) ListReminders(ctx context.Context, userID string, activeOnly bool) ([]*domain.Reminder, error) {
	query := reminderSelect + ` WHERE user_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY reminder_time`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var rems []*domain.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder row: %w", err)
		}
		rems = append(rems, rem)
	}
	return rems, rows.Err()
}

// UpdateReminder rewrites a reminder row.
func (s *SQLiteStore) UpdateReminder(ctx context.Context, rem *domain.Reminder) error {
	rem.UpdatedAt = time.Now()
	days, err := marshalDays(rem.DaysOfWeek)
	if err != nil {
		return err
	}

	query := `
		UPDATE reminders SET medication_id = ?, title = ?, description = ?, reminder_time = ?,
			is_recurring = ?, days_of_week = ?, reminder_type = ?, is_active = ?,
			last_triggered = ?, snooze_until = ?, updated_at = ?
		WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query,
		nullString(rem.MedicationID), rem.Title, nullString(rem.Description), rem.ReminderTime,
		boolInt(rem.IsRecurring), days, nullString(rem.ReminderType), boolInt(rem.IsActive),
		nullTime(rem.LastTriggered), nullTime(rem.SnoozeUntil), rem.UpdatedAt.Unix(), rem.ID)
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	return requireRow(res, "reminder", rem.ID)
}

// DeactivateReminder soft-deletes a reminder.
func (s *SQLiteStore) DeactivateReminder(ctx context.Context, reminderID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().Unix(), reminderID)
	if err != nil {
		return fmt.Errorf("deactivate reminder: %w", err)
	}
	return requireRow(res, "reminder", reminderID)
}

// CreateChatSession opens a chat session.
func (s *SQLiteStore) CreateChatSession(ctx context.Context, session *domain.ChatSession) error {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.SessionStart.IsZero() {
		session.SessionStart = now
	}

	// OR IGNORE makes this an idempotent "ensure": the reply pipeline
	// calls it on every exchange.
	query := `
		INSERT OR IGNORE INTO chat_sessions (id, user_id, session_start, message_count, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.SessionStart.Unix(), now.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("insert chat session: %w", err)
	}
	return nil
}

// EndChatSession stamps session_end and the final message count.
func (s *SQLiteStore) EndChatSession(ctx context.Context, sessionID string) error {
	now := time.Now().Unix()
	query := `
		UPDATE chat_sessions SET
			session_end = ?,
			message_count = (SELECT COUNT(*) FROM chat_messages WHERE session_id = ?),
			updated_at = ?
		WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, now, sessionID, now, sessionID)
	if err != nil {
		return fmt.Errorf("end chat session: %w", err)
	}
	return requireRow(res, "chat session", sessionID)
}

// AppendChatMessage persists one chat message and bumps the session's
// message count. A retry handles SQLITE_BUSY under concurrent appends.
func (s *SQLiteStore) AppendChatMessage(ctx context.Context, msg *domain.ChatMessage) error {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()

	msg.CreatedAt = time.Now()
	query := `
		INSERT INTO chat_messages (id, session_id, user_id, message_type, content,
			audio_url, voice_input, processing_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		_, err = s.db.ExecContext(ctx, query,
			msg.ID, msg.SessionID, msg.UserID, msg.MessageType, msg.Content,
			nullString(msg.AudioURL), boolInt(msg.VoiceInput), msg.ProcessingTimeMs,
			msg.CreatedAt.Unix())
		if err == nil || !isSQLiteConflict(err) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET message_count = message_count + 1, updated_at = ? WHERE id = ?`,
		msg.CreatedAt.Unix(), msg.SessionID)
	if err != nil {
		return fmt.Errorf("bump session message count: %w", err)
	}
	return nil
}

// ListChatMessages returns a session's messages in insertion order.
func (s *SQLiteStore) ListChatMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, user_id, message_type, content, audio_url,
		       voice_input, processing_time_ms, created_at
		FROM chat_messages WHERE session_id = ? ORDER BY rowid`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var audioURL sql.NullString
		var voiceInput int
		var processingMs sql.NullInt64
		var createdAt int64

		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.UserID, &msg.MessageType,
			&msg.Content, &audioURL, &voiceInput, &processingMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat message row: %w", err)
		}
		msg.AudioURL = audioURL.String
		msg.VoiceInput = voiceInput != 0
		msg.ProcessingTimeMs = processingMs.Int64
		msg.CreatedAt = time.Unix(createdAt, 0)
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// CleanupEndedSessions deletes ended sessions older than ttl.
func (s *SQLiteStore) CleanupEndedSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl).Unix()

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM chat_messages WHERE session_id IN (
			SELECT id FROM chat_sessions WHERE session_end IS NOT NULL AND session_end < ?
		)`, cutoff); err != nil {
		return 0, fmt.Errorf("delete expired chat messages: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM chat_sessions WHERE session_end IS NOT NULL AND session_end < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired chat sessions: %w", err)
	}
	return res.RowsAffected()
}

const reminderSelect = `
	SELECT id, user_id, medication_id, title, description, reminder_time,
	       is_recurring, days_of_week, reminder_type, is_active,
	       last_triggered, snooze_until, created_at, updated_at
	FROM reminders`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMedication(row rowScanner) (*domain.Medication, error) {
	var med domain.Medication
	var notes sql.NullString
	var isActive int
	var createdAt, updatedAt int64

	err := row.Scan(&med.ID, &med.UserID, &med.Name, &med.Dosage, &med.Frequency,
		&med.MedicationTime, &notes, &isActive, &med.RefillReminderDays, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	med.Notes = notes.String
	med.IsActive = isActive != 0
	med.CreatedAt = time.Unix(createdAt, 0)
	med.UpdatedAt = time.Unix(updatedAt, 0)
	return &med, nil
}

func scanReminder(row rowScanner) (*domain.Reminder, error) {
	var rem domain.Reminder
	var medicationID, description, days, remType sql.NullString
	var isRecurring, isActive int
	var lastTriggered, snoozeUntil sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(&rem.ID, &rem.UserID, &medicationID, &rem.Title, &description,
		&rem.ReminderTime, &isRecurring, &days, &remType, &isActive,
		&lastTriggered, &snoozeUntil, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rem.MedicationID = medicationID.String
	rem.Description = description.String
	rem.ReminderType = remType.String
	rem.IsRecurring = isRecurring != 0
	rem.IsActive = isActive != 0
	if days.Valid && days.String != "" {
		if err := json.Unmarshal([]byte(days.String), &rem.DaysOfWeek); err != nil {
			return nil, fmt.Errorf("decode days_of_week: %w", err)
		}
	}
	if lastTriggered.Valid {
		t := time.Unix(lastTriggered.Int64, 0)
		rem.LastTriggered = &t
	}
	if snoozeUntil.Valid {
		t := time.Unix(snoozeUntil.Int64, 0)
		rem.SnoozeUntil = &t
	}
	rem.CreatedAt = time.Unix(createdAt, 0)
	rem.UpdatedAt = time.Unix(updatedAt, 0)
	return &rem, nil
}

func marshalDays(days []string) (sql.NullString, error) {
	if len(days) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(days)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode days_of_week: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isSQLiteConflict reports whether err is a SQLite concurrency failure
// (SQLITE_BUSY or "database is locked") worth one short retry. The driver
// exposes these only through the error text.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
