package core

// Phase is a discrete step in the guided intake dialogue. Each phase asks for
// exactly one piece of information; progression is forward-only.
type Phase string

const (
	PhaseInitial  Phase = "initial"
	PhaseSymptom  Phase = "symptom"
	PhaseLocation Phase = "location"
	PhaseDuration Phase = "duration"
	PhaseContext  Phase = "context"
	PhaseSeverity Phase = "severity"
	PhaseSummary  Phase = "summary"
)

// ConversationState carries everything captured so far in one intake session.
// Fields are pointers so "not yet asked" stays distinct from "answered with
// an empty edit" after the summary phase; Phase is the authority on progress,
// never field presence.
type ConversationState struct {
	Symptom        *string `json:"symptom,omitempty"`
	BodyLocation   *string `json:"body_location,omitempty"`
	Duration       *string `json:"duration,omitempty"`
	ContextualInfo *string `json:"contextual_info,omitempty"`
	Severity       *string `json:"severity,omitempty"`

	Phase Phase `json:"phase"`

	// RequiresLocation is derived exactly once, when the symptom is stored.
	RequiresLocation bool `json:"requires_location"`
}

// NewConversationState starts a session at the symptom phase.
func NewConversationState() ConversationState {
	return ConversationState{Phase: PhaseSymptom}
}

// Clone deep-copies the state. Every transition works on a clone so the
// caller's previous states stay usable as a history trail.
func (s ConversationState) Clone() ConversationState {
	out := s
	out.Symptom = cloneStr(s.Symptom)
	out.BodyLocation = cloneStr(s.BodyLocation)
	out.Duration = cloneStr(s.Duration)
	out.ContextualInfo = cloneStr(s.ContextualInfo)
	out.Severity = cloneStr(s.Severity)
	return out
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// deref returns the value of p or "" when unset.
func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
