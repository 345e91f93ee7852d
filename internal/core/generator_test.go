package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symptom-triage/internal/llm"
	"symptom-triage/pkg"
)

// fakeClient scripts the gateway: a fixed response or a fixed error.
type fakeClient struct {
	resp  string
	err   error
	calls int
}

func (f *fakeClient) Send(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	return f.resp, f.err
}

func strp(s string) *string { return &s }

func summaryReadyState() ConversationState {
	return ConversationState{
		Phase:            PhaseSummary,
		Symptom:          strp("sharp pain in my knee"),
		BodyLocation:     strp("left knee"),
		Duration:         strp("3 days"),
		ContextualInfo:   strp("worse on stairs"),
		Severity:         strp("6/10"),
		RequiresLocation: true,
	}
}

func TestGenerateNextQuestion_UsesAIMessage(t *testing.T) {
	fake := &fakeClient{resp: `{"message":"That sounds uncomfortable. Whereabouts is the pain?"}`}
	gen := NewGenerator(fake)

	res := gen.GenerateNextQuestion(context.Background(), NewConversationState(), "knee pain")
	assert.Equal(t, PhaseLocation, res.Phase)
	assert.Equal(t, "That sounds uncomfortable. Whereabouts is the pain?", res.Message)
	require.NotNil(t, res.State.Symptom)
	assert.Equal(t, "knee pain", *res.State.Symptom)
	assert.Equal(t, 1, fake.calls)
}

func TestGenerateNextQuestion_ProviderFailureStillAdvances(t *testing.T) {
	fake := &fakeClient{err: &llm.ProviderError{Provider: "openai", Status: 500, Message: "boom"}}
	gen := NewGenerator(fake)

	res := gen.GenerateNextQuestion(context.Background(), NewConversationState(), "knee pain")
	assert.Equal(t, PhaseLocation, res.Phase)
	assert.Equal(t, QuestionFor(PhaseLocation), res.Message)
	require.NotNil(t, res.State.Symptom)
}

func TestGenerateNextQuestion_MalformedJSONFallsBack(t *testing.T) {
	fake := &fakeClient{resp: "sorry, I can't produce JSON today"}
	gen := NewGenerator(fake)

	res := gen.GenerateNextQuestion(context.Background(), NewConversationState(), "fatigue")
	assert.Equal(t, PhaseDuration, res.Phase)
	assert.Equal(t, QuestionFor(PhaseDuration), res.Message)
}

func TestGenerateNextQuestion_MissingFieldFallsBack(t *testing.T) {
	fake := &fakeClient{resp: `{"note":"no message field here"}`}
	gen := NewGenerator(fake)

	res := gen.GenerateNextQuestion(context.Background(), NewConversationState(), "fatigue")
	assert.Equal(t, QuestionFor(PhaseDuration), res.Message)
}

func TestGenerateNextQuestion_NilClientIsPermanentFallback(t *testing.T) {
	gen := NewGenerator(nil)
	res := gen.GenerateNextQuestion(context.Background(), NewConversationState(), "knee pain")
	assert.Equal(t, PhaseLocation, res.Phase)
	assert.Equal(t, QuestionFor(PhaseLocation), res.Message)
}

func TestGenerateSummary_AIPathClampsTips(t *testing.T) {
	fake := &fakeClient{resp: `{"text":"# Symptom Summary\n...","tips":["a","b","c","d","e"]}`}
	gen := NewGenerator(fake)

	got := gen.GenerateSummary(context.Background(), summaryReadyState(), "")
	assert.Len(t, got.Tips, 3)
}

func TestGenerateSummary_FallbackSectionsInOrder(t *testing.T) {
	fake := &fakeClient{err: &llm.ProviderError{Provider: "gemini", Message: "unreachable"}}
	gen := NewGenerator(fake)

	got := gen.GenerateSummary(context.Background(), summaryReadyState(), "also slept badly")
	text := got.Text
	assert.Contains(t, text, "# Symptom Summary")

	order := []string{
		"**Chief Complaint:** sharp pain in my knee",
		"**Location:** left knee",
		"**Duration:** 3 days",
		"**Severity:** 6/10",
		"**Additional Details:** worse on stairs",
		"**Further Information:** also slept badly",
	}
	last := -1
	for _, section := range order {
		idx := strings.Index(text, section)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}
	assert.NotEmpty(t, got.Tips)
	assert.LessOrEqual(t, len(got.Tips), 2)
}

func TestGenerateSummary_FallbackOmitsAbsentSections(t *testing.T) {
	gen := NewGenerator(nil)
	state := ConversationState{
		Phase:    PhaseSummary,
		Symptom:  strp("fatigue"),
		Duration: strp("2 weeks"),
	}
	got := gen.GenerateSummary(context.Background(), state, "")
	assert.NotContains(t, got.Text, "**Location:**")
	assert.NotContains(t, got.Text, "**Severity:**")
	assert.NotContains(t, got.Text, "**Further Information:**")
}

func TestGenerateRecommendation_AIPath(t *testing.T) {
	fake := &fakeClient{resp: `{"recommendation":"Book a GP appointment","urgency_level":"medium","advice":"See your GP this week."}`}
	gen := NewGenerator(fake)

	got := gen.GenerateRecommendation(context.Background(), summaryReadyState(), "")
	assert.Equal(t, pkg.UrgencyMedium, got.UrgencyLevel)
	assert.Equal(t, "Book a GP appointment", got.Recommendation)
}

func TestGenerateRecommendation_InvalidUrgencyFallsBackToClassifier(t *testing.T) {
	fake := &fakeClient{resp: `{"recommendation":"do something","urgency_level":"catastrophic","advice":"..."}`}
	gen := NewGenerator(fake)

	state := ConversationState{Phase: PhaseSummary, Symptom: strp("chest pain"), Duration: strp("an hour")}
	got := gen.GenerateRecommendation(context.Background(), state, "")
	assert.Equal(t, pkg.UrgencyUrgent, got.UrgencyLevel)
}

func TestGenerateRecommendation_ProviderFailureMatchesClassifier(t *testing.T) {
	fake := &fakeClient{err: &llm.ProviderError{Provider: "openai", Message: "timeout"}}
	gen := NewGenerator(fake)

	state := ConversationState{Phase: PhaseSummary, Symptom: strp("mild cough"), Duration: strp("3 days")}
	got := gen.GenerateRecommendation(context.Background(), state, "")
	want := Classify("mild cough", "3 days", "")
	assert.Equal(t, want, got)
}

func TestGenerateRelatedSymptomInsight_NilWithoutHistory(t *testing.T) {
	fake := &fakeClient{resp: `{"summary":"should not be called"}`}
	gen := NewGenerator(fake)

	got := gen.GenerateRelatedSymptomInsight(context.Background(), summaryReadyState(), nil)
	assert.Nil(t, got)
	assert.Zero(t, fake.calls)
}

func TestGenerateRelatedSymptomInsight_Success(t *testing.T) {
	fake := &fakeClient{resp: `{"summary":"Your knee pain may relate to last month's ankle sprain.","recommendation":"Mention both to your GP.","linked_symptom_ids":["abc"]}`}
	gen := NewGenerator(fake)

	prior := []pkg.SymptomSnapshot{{ID: "abc", Name: "ankle sprain", CreatedAt: time.Now()}}
	got := gen.GenerateRelatedSymptomInsight(context.Background(), summaryReadyState(), prior)
	require.NotNil(t, got)
	assert.Equal(t, []string{"abc"}, got.LinkedSymptomIDs)
}

func TestGenerateRelatedSymptomInsight_FailureYieldsPlaceholder(t *testing.T) {
	fake := &fakeClient{err: &llm.ProviderError{Provider: "gemini", Message: "quota"}}
	gen := NewGenerator(fake)

	prior := []pkg.SymptomSnapshot{{ID: "abc", Name: "ankle sprain"}}
	got := gen.GenerateRelatedSymptomInsight(context.Background(), summaryReadyState(), prior)
	require.NotNil(t, got)
	assert.Contains(t, got.Summary, "No confirmed link")
	assert.Empty(t, got.LinkedSymptomIDs)
}
