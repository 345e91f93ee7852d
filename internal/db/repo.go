package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"symptom-triage/pkg"
)

// Repository wraps database operations for symptom and conversation records.
// The core never touches it directly; the HTTP layer hands it finalized
// records and reads them back for the clinician views.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a Repository from an existing sql.DB. The caller
// is responsible for the connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// CreateSymptom inserts a new symptom record, assigning its ID and
// timestamps.
func (r *Repository) CreateSymptom(ctx context.Context, rec *pkg.SymptomRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return r.DB.QueryRowContext(ctx,
		`INSERT INTO symptoms (id, user_id, symptom_name, body_location, duration, description, severity)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING created_at, updated_at`,
		rec.ID, rec.UserID, rec.SymptomName, rec.BodyLocation, rec.Duration, rec.Description, rec.Severity,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

// GetSymptom loads one symptom record by ID.
func (r *Repository) GetSymptom(ctx context.Context, id string) (*pkg.SymptomRecord, error) {
	var rec pkg.SymptomRecord
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, symptom_name, body_location, duration, description, severity, created_at, updated_at
         FROM symptoms
         WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.UserID, &rec.SymptomName, &rec.BodyLocation, &rec.Duration,
		&rec.Description, &rec.Severity, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("symptom %s not found", id)
		}
		return nil, err
	}
	return &rec, nil
}

// UpdateSymptom rewrites the mutable fields of an existing symptom record.
func (r *Repository) UpdateSymptom(ctx context.Context, rec *pkg.SymptomRecord) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE symptoms
         SET symptom_name = $1, body_location = $2, duration = $3, description = $4, severity = $5,
             updated_at = NOW()
         WHERE id = $6`,
		rec.SymptomName, rec.BodyLocation, rec.Duration, rec.Description, rec.Severity, rec.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("symptom %s not found", rec.ID)
	}
	return nil
}

// ListSymptomSnapshots returns the user's most recent symptoms in the compact
// form the related-insight generator consumes, newest first.
func (r *Repository) ListSymptomSnapshots(ctx context.Context, userID string, limit int) ([]pkg.SymptomSnapshot, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, symptom_name, COALESCE(body_location, ''), COALESCE(duration, ''), created_at
         FROM symptoms
         WHERE user_id = $1
         ORDER BY created_at DESC
         LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []pkg.SymptomSnapshot
	for rows.Next() {
		var s pkg.SymptomSnapshot
		if err := rows.Scan(&s.ID, &s.Name, &s.BodyLocation, &s.Duration, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateConversation inserts a finalized conversation record with its full
// transcript and triage outcome.
func (r *Repository) CreateConversation(ctx context.Context, rec *pkg.ConversationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	messages, err := json.Marshal(rec.Messages)
	if err != nil {
		return err
	}
	return r.DB.QueryRowContext(ctx,
		`INSERT INTO conversations (id, user_id, symptom_id, messages, summary, recommendation, urgency_level, completed_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING created_at, updated_at`,
		rec.ID, rec.UserID, rec.SymptomID, messages, rec.Summary, rec.Recommendation, rec.UrgencyLevel, rec.CompletedAt,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

// GetConversation loads one conversation record by ID.
func (r *Repository) GetConversation(ctx context.Context, id string) (*pkg.ConversationRecord, error) {
	var rec pkg.ConversationRecord
	var messages []byte
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, symptom_id, messages, summary, recommendation, urgency_level, completed_at, created_at, updated_at
         FROM conversations
         WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.UserID, &rec.SymptomID, &messages, &rec.Summary,
		&rec.Recommendation, &rec.UrgencyLevel, &rec.CompletedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s not found", id)
		}
		return nil, err
	}
	if err := json.Unmarshal(messages, &rec.Messages); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListCompletedConversations returns the most recently completed intakes for
// the clinician dashboard, newest first. Transcripts are omitted; use
// GetConversation for the detail view.
func (r *Repository) ListCompletedConversations(ctx context.Context, limit int) ([]pkg.ConversationRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, symptom_id, summary, recommendation, urgency_level, completed_at, created_at, updated_at
         FROM conversations
         WHERE completed_at IS NOT NULL
         ORDER BY completed_at DESC
         LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []pkg.ConversationRecord
	for rows.Next() {
		var rec pkg.ConversationRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SymptomID, &rec.Summary,
			&rec.Recommendation, &rec.UrgencyLevel, &rec.CompletedAt, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
