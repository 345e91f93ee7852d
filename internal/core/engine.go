package core

import "strings"

// TurnResult is the outcome of one engine turn: the message to show the
// patient, the updated state, and the phase that state is now in.
type TurnResult struct {
	Message string            `json:"message"`
	State   ConversationState `json:"state"`
	Phase   Phase             `json:"phase"`
}

// Fixed question text per phase, used verbatim whenever the AI question
// generator is unavailable or fails.
var phaseQuestions = map[Phase]string{
	PhaseSymptom:  "Hello! I'm here to help you describe your symptoms. What's bothering you today?",
	PhaseLocation: "I'm sorry to hear that. Where on your body are you experiencing this?",
	PhaseDuration: "How long have you been experiencing this?",
	PhaseContext:  "Is there anything that makes it better or worse, or anything else that was going on when it started?",
	PhaseSeverity: "How severe is it right now? You can describe it in words or rate it from 0 to 10.",
	PhaseSummary:  "Thank you, I have everything I need. I'm preparing a summary for you to review; feel free to add anything else you'd like included.",
}

// Symptom vocabulary that implies the complaint is tied to a body site. The
// location phase is only visited when one of these appears in the symptom
// text (case-insensitive substring).
var locationKeywords = []string{
	"pain", "ache", "hurt", "sore", "swelling", "swollen",
	"numb", "tingling", "rash", "itch", "burning", "stiff",
	"cramp", "bruis", "lump", "tender",
}

// QuestionFor returns the fixed question the engine asks on entering phase.
func QuestionFor(phase Phase) string {
	if q, ok := phaseQuestions[phase]; ok {
		return q
	}
	return phaseQuestions[PhaseSymptom]
}

// NeedsLocation reports whether the symptom text names a localized complaint.
func NeedsLocation(symptom string) bool {
	low := strings.ToLower(symptom)
	for _, kw := range locationKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// Advance runs one deterministic turn of the intake machine. The user's
// message answers the question the current phase asked, so it is stored into
// the field that phase owns; then the machine moves forward and the next
// phase's question is emitted. Advance cannot fail.
//
// Once the summary phase is reached it is terminal: further messages are
// additional info for finalization and leave the state untouched (the caller
// collects them).
func Advance(state ConversationState, userMessage string) TurnResult {
	s := state.Clone()
	msg := strings.TrimSpace(userMessage)

	var next Phase
	switch s.Phase {
	case PhaseInitial:
		// Nothing was asked yet; the greeting owns no field.
		next = PhaseSymptom
	case PhaseSymptom:
		s.Symptom = &msg
		s.RequiresLocation = NeedsLocation(msg)
		if s.RequiresLocation {
			next = PhaseLocation
		} else {
			next = PhaseDuration
		}
	case PhaseLocation:
		s.BodyLocation = &msg
		next = PhaseDuration
	case PhaseDuration:
		s.Duration = &msg
		next = PhaseContext
	case PhaseContext:
		s.ContextualInfo = &msg
		next = PhaseSeverity
	case PhaseSeverity:
		s.Severity = &msg
		next = PhaseSummary
	case PhaseSummary:
		next = PhaseSummary
	default:
		next = PhaseSymptom
	}

	s.Phase = next
	return TurnResult{Message: QuestionFor(next), State: s, Phase: next}
}
