package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symptom-triage/pkg"
)

func TestAdvance_LocalizedSymptomVisitsLocation(t *testing.T) {
	for _, symptom := range []string{"dull ache in my side", "itchy rash", "knee pain", "swelling after a fall"} {
		res := Advance(NewConversationState(), symptom)
		assert.True(t, res.State.RequiresLocation, "symptom %q", symptom)
		assert.Equal(t, PhaseLocation, res.Phase, "symptom %q", symptom)
	}
}

func TestAdvance_GeneralSymptomSkipsLocation(t *testing.T) {
	for _, symptom := range []string{"fatigue", "fever", "dizziness"} {
		res := Advance(NewConversationState(), symptom)
		assert.False(t, res.State.RequiresLocation, "symptom %q", symptom)
		assert.Equal(t, PhaseDuration, res.Phase, "symptom %q", symptom)
	}
}

func TestAdvance_FullWalkWithLocation(t *testing.T) {
	state := NewConversationState()

	res := Advance(state, "sharp pain in my knee")
	require.Equal(t, PhaseLocation, res.Phase)
	require.NotNil(t, res.State.Symptom)
	assert.Equal(t, "sharp pain in my knee", *res.State.Symptom)

	res = Advance(res.State, "left knee, inner side")
	require.Equal(t, PhaseDuration, res.Phase)
	assert.Equal(t, "left knee, inner side", *res.State.BodyLocation)

	res = Advance(res.State, "about 3 days")
	require.Equal(t, PhaseContext, res.Phase)
	assert.Equal(t, "about 3 days", *res.State.Duration)

	res = Advance(res.State, "worse when climbing stairs")
	require.Equal(t, PhaseSeverity, res.Phase)
	assert.Equal(t, "worse when climbing stairs", *res.State.ContextualInfo)

	res = Advance(res.State, "6/10")
	require.Equal(t, PhaseSummary, res.Phase)
	assert.Equal(t, "6/10", *res.State.Severity)
}

func TestAdvance_SummaryIsTerminal(t *testing.T) {
	state := NewConversationState()
	state.Phase = PhaseSummary
	sym := "fatigue"
	state.Symptom = &sym

	res := Advance(state, "also, I slept badly all week")
	assert.Equal(t, PhaseSummary, res.Phase)
	// Additional info is the caller's to collect; the captured fields are
	// untouched.
	assert.Equal(t, "fatigue", *res.State.Symptom)
	assert.Nil(t, res.State.ContextualInfo)
}

func TestAdvance_InitialAsksForSymptom(t *testing.T) {
	state := ConversationState{Phase: PhaseInitial}
	res := Advance(state, "hi")
	assert.Equal(t, PhaseSymptom, res.Phase)
	assert.Nil(t, res.State.Symptom)
	assert.Equal(t, QuestionFor(PhaseSymptom), res.Message)
}

func TestAdvance_EmitsFixedQuestionForNextPhase(t *testing.T) {
	res := Advance(NewConversationState(), "fatigue")
	assert.Equal(t, QuestionFor(PhaseDuration), res.Message)
}

func TestAdvance_DoesNotAliasState(t *testing.T) {
	state := NewConversationState()
	res := Advance(state, "knee pain")
	require.NotNil(t, res.State.Symptom)

	// Mutating the result must not leak into the input state.
	*res.State.Symptom = "changed"
	assert.Nil(t, state.Symptom)

	next := Advance(res.State, "left knee")
	*next.State.BodyLocation = "changed too"
	assert.Equal(t, "changed", *res.State.Symptom)
	assert.Nil(t, res.State.BodyLocation)
}

// The sudden-onset headache walk: after the context answer the classifier on
// the accumulated state must land on urgent.
func TestAdvance_SuddenHeadacheScenario(t *testing.T) {
	state := NewConversationState()
	res := Advance(state, "bad headache")
	require.Equal(t, PhaseLocation, res.Phase) // "ache" is a localized keyword

	res = Advance(res.State, "behind my eyes")
	res = Advance(res.State, "an hour")
	require.Equal(t, PhaseContext, res.Phase)

	res = Advance(res.State, "it started suddenly and is the worst I've ever had")
	require.NotNil(t, res.State.ContextualInfo)

	got := Classify(*res.State.Symptom, *res.State.Duration, *res.State.ContextualInfo)
	assert.Equal(t, pkg.UrgencyUrgent, got.UrgencyLevel)

	res = Advance(res.State, "8/10")
	assert.Equal(t, PhaseSummary, res.Phase)
}

func TestNeedsLocation_CaseInsensitive(t *testing.T) {
	assert.True(t, NeedsLocation("TERRIBLE BACK PAIN"))
	assert.False(t, NeedsLocation("Fatigue"))
}
