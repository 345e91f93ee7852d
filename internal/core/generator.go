package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"symptom-triage/internal/jsonutil"
	"symptom-triage/internal/llm"
	"symptom-triage/pkg"
)

// Prior symptoms passed to the related-insight prompt are bounded to keep
// the context small and the judgement focused on recent history.
const maxInsightHistory = 10

// Generator runs the three AI-backed generation operations. Every operation
// follows the same shape: build prompt, call the gateway, parse, validate,
// and on any failure log and substitute the deterministic fallback. A nil
// client is valid and means permanent fallback mode.
type Generator struct {
	LLM llm.Client
}

func NewGenerator(client llm.Client) *Generator {
	return &Generator{LLM: client}
}

type questionPayload struct {
	Message string `json:"message"`
}

// What each phase's question asks for, phrased for the model.
var phaseAsks = map[Phase]string{
	PhaseSymptom:  "the patient's main symptom or complaint",
	PhaseLocation: "where on the body the symptom is",
	PhaseDuration: "how long the symptom has been present",
	PhaseContext:  "what makes the symptom better or worse, and the circumstances around its start",
	PhaseSeverity: "how severe the symptom feels, in words or on a 0-10 scale",
	PhaseSummary:  "nothing; let the patient know the summary is being prepared and invite any final details",
}

// GenerateNextQuestion advances the phase machine and phrases the next
// question. The transition itself is always the deterministic one, so the AI
// and fallback paths can never disagree on which phase comes next; only the
// wording of the question is generated.
func (g *Generator) GenerateNextQuestion(ctx context.Context, state ConversationState, userMessage string) TurnResult {
	det := Advance(state, userMessage)
	if g.LLM == nil {
		return det
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "The patient just said: %q\n", strings.TrimSpace(userMessage))
	sb.WriteString(describeState(det.State))
	fmt.Fprintf(&sb, "Ask next for: %s\n", phaseAsks[det.Phase])

	raw, err := g.LLM.Send(ctx, questionSystemPrompt, sb.String())
	if err != nil {
		log.Printf("next-question generation failed, using fixed question: %v", err)
		return det
	}
	parsed, err := jsonutil.ExtractStructured[questionPayload](raw)
	if err != nil || strings.TrimSpace(parsed.Message) == "" {
		log.Printf("next-question response unusable, using fixed question: %v", err)
		return det
	}
	return TurnResult{Message: strings.TrimSpace(parsed.Message), State: det.State, Phase: det.Phase}
}

// GenerateSummary produces the clinician-readable write-up. additionalInfo
// carries anything the patient added after reaching the summary phase.
func (g *Generator) GenerateSummary(ctx context.Context, state ConversationState, additionalInfo string) pkg.SummaryResult {
	if g.LLM != nil {
		var sb strings.Builder
		sb.WriteString(describeState(state))
		if strings.TrimSpace(additionalInfo) != "" {
			fmt.Fprintf(&sb, "Further information: %s\n", strings.TrimSpace(additionalInfo))
		}
		raw, err := g.LLM.Send(ctx, summarySystemPrompt, sb.String())
		if err == nil {
			parsed, perr := jsonutil.ExtractStructured[pkg.SummaryResult](raw)
			if perr == nil && strings.TrimSpace(parsed.Text) != "" {
				if len(parsed.Tips) > 3 {
					parsed.Tips = parsed.Tips[:3]
				}
				return parsed
			}
			err = perr
		}
		log.Printf("summary generation failed, using deterministic summary: %v", err)
	}
	return fallbackSummary(state, additionalInfo)
}

// fallbackSummary concatenates labelled markdown sections in fixed order.
func fallbackSummary(state ConversationState, additionalInfo string) pkg.SummaryResult {
	var sb strings.Builder
	sb.WriteString("# Symptom Summary\n\n")
	fmt.Fprintf(&sb, "**Chief Complaint:** %s\n\n", orUnspecified(deref(state.Symptom)))
	if state.BodyLocation != nil && *state.BodyLocation != "" {
		fmt.Fprintf(&sb, "**Location:** %s\n\n", *state.BodyLocation)
	}
	fmt.Fprintf(&sb, "**Duration:** %s\n\n", orUnspecified(deref(state.Duration)))
	if state.Severity != nil && *state.Severity != "" {
		level := DeriveSeverityLevel(deref(state.Symptom), *state.Severity)
		fmt.Fprintf(&sb, "**Severity:** %s (%s)\n\n", *state.Severity, level)
	}
	fmt.Fprintf(&sb, "**Additional Details:** %s\n", orUnspecified(deref(state.ContextualInfo)))
	if strings.TrimSpace(additionalInfo) != "" {
		fmt.Fprintf(&sb, "\n**Further Information:** %s\n", strings.TrimSpace(additionalInfo))
	}
	return pkg.SummaryResult{
		Text: sb.String(),
		Tips: []string{
			"Rest and stay hydrated while your symptoms settle.",
			"Keep a note of any changes so you can share them with your clinician.",
		},
	}
}

// GenerateRecommendation classifies the captured symptoms into an urgency
// tier with a next-step recommendation. contextText carries any information
// added after the summary phase.
func (g *Generator) GenerateRecommendation(ctx context.Context, state ConversationState, contextText string) pkg.RecommendationResult {
	if g.LLM != nil {
		var sb strings.Builder
		sb.WriteString(describeState(state))
		if strings.TrimSpace(contextText) != "" {
			fmt.Fprintf(&sb, "Further information: %s\n", strings.TrimSpace(contextText))
		}
		raw, err := g.LLM.Send(ctx, recommendationSystemPrompt, sb.String())
		if err == nil {
			parsed, perr := jsonutil.ExtractStructured[pkg.RecommendationResult](raw)
			if perr == nil && parsed.Recommendation != "" && parsed.Advice != "" && parsed.UrgencyLevel.Valid() {
				return parsed
			}
			err = perr
		}
		log.Printf("recommendation generation failed, using rule-based triage: %v", err)
	}
	combined := strings.TrimSpace(deref(state.ContextualInfo) + " " + contextText)
	return Classify(deref(state.Symptom), deref(state.Duration), combined)
}

// GenerateRelatedSymptomInsight judges plausible shared pathology between the
// current symptom and prior ones. Returns nil when there is no history to
// compare against; on any generation failure it returns a safe "no confirmed
// linkage" placeholder instead of propagating the error.
func (g *Generator) GenerateRelatedSymptomInsight(ctx context.Context, state ConversationState, prior []pkg.SymptomSnapshot) *pkg.RelatedSymptomInsight {
	if len(prior) == 0 {
		return nil
	}
	if len(prior) > maxInsightHistory {
		prior = prior[:maxInsightHistory]
	}
	if g.LLM != nil {
		history, _ := json.Marshal(prior)
		var sb strings.Builder
		sb.WriteString(describeState(state))
		fmt.Fprintf(&sb, "Previously logged symptoms: %s\n", history)
		raw, err := g.LLM.Send(ctx, insightSystemPrompt, sb.String())
		if err == nil {
			parsed, perr := jsonutil.ExtractStructured[pkg.RelatedSymptomInsight](raw)
			if perr == nil && strings.TrimSpace(parsed.Summary) != "" {
				return &parsed
			}
			err = perr
		}
		log.Printf("related-symptom insight failed, using placeholder: %v", err)
	}
	return &pkg.RelatedSymptomInsight{
		Summary:        "No confirmed link between your current symptom and your previous ones.",
		Recommendation: "Continue to monitor and log your symptoms, and mention your history to your clinician.",
	}
}

// describeState renders the captured fields as labelled lines, skipping the
// ones not reached yet.
func describeState(state ConversationState) string {
	var sb strings.Builder
	if state.Symptom != nil {
		fmt.Fprintf(&sb, "Chief complaint: %s\n", *state.Symptom)
	}
	if state.BodyLocation != nil {
		fmt.Fprintf(&sb, "Location: %s\n", *state.BodyLocation)
	}
	if state.Duration != nil {
		fmt.Fprintf(&sb, "Duration: %s\n", *state.Duration)
	}
	if state.ContextualInfo != nil {
		fmt.Fprintf(&sb, "Context: %s\n", *state.ContextualInfo)
	}
	if state.Severity != nil {
		fmt.Fprintf(&sb, "Severity: %s\n", *state.Severity)
	}
	return sb.String()
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
