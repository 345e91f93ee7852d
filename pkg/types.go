package pkg

import "time"

// UrgencyLevel is one of the triage tiers, ordered by how quickly the
// patient should seek clinical attention.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
	UrgencyUrgent UrgencyLevel = "urgent"
)

// Valid reports whether l is one of the four known tiers.
func (l UrgencyLevel) Valid() bool {
	switch l {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

// SeverityLevel is the banded severity of a single symptom, derived from the
// patient's free-text or numeric severity answer.
type SeverityLevel string

const (
	SeverityLow    SeverityLevel = "low"
	SeverityMedium SeverityLevel = "medium"
	SeverityHigh   SeverityLevel = "high"
)

// RecommendationResult is the output of one triage classification pass. It is
// immutable; editing a captured field produces a fresh result.
type RecommendationResult struct {
	Recommendation string       `json:"recommendation"`
	UrgencyLevel   UrgencyLevel `json:"urgency_level"`
	Advice         string       `json:"advice"`
}

// SummaryResult is the clinician-readable write-up of a completed intake,
// with up to three self-care tips for the patient.
type SummaryResult struct {
	Text string   `json:"text"`
	Tips []string `json:"tips"`
}

// RelatedSymptomInsight judges whether the current symptom plausibly shares a
// pathology with previously logged symptoms.
type RelatedSymptomInsight struct {
	Summary          string   `json:"summary"`
	Recommendation   string   `json:"recommendation"`
	LinkedSymptomIDs []string `json:"linked_symptom_ids"`
}

// SymptomSnapshot is a prior symptom record in the compact form passed to the
// related-symptom insight generator.
type SymptomSnapshot struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BodyLocation string    `json:"body_location,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// MessageRole describes who authored a message.
type MessageRole string

const (
	RolePatient   MessageRole = "patient"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single turn in the intake conversation.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// SymptomRecord is the persisted shape of one captured symptom.
type SymptomRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SymptomName  string    `json:"symptom_name"`
	BodyLocation *string   `json:"body_location,omitempty"`
	Duration     *string   `json:"duration,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Severity     *string   `json:"severity,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConversationRecord is the persisted shape of one finalized intake
// conversation, including the full transcript and the triage outcome.
type ConversationRecord struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	SymptomID      string       `json:"symptom_id"`
	Messages       []Message    `json:"messages"`
	Summary        string       `json:"summary"`
	Recommendation string       `json:"recommendation"`
	UrgencyLevel   UrgencyLevel `json:"urgency_level"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
