package core

import (
	"regexp"
	"strconv"
	"strings"

	"symptom-triage/pkg"
)

// The keyword sets and tier ordering below are the clinically reviewed
// contract. First matching tier wins; do not reorder or extend without
// clinical sign-off.

var emergencyKeywords = []string{
	"chest pain", "difficulty breathing", "severe bleeding",
	"loss of consciousness", "seizure",
}

var highKeywords = []string{"high fever", "persistent vomiting", "severe pain"}

// Self-care advice per symptom keyword for the low tier.
var selfCareAdvice = []struct {
	keyword string
	advice  string
}{
	{"headache", "Rest in a quiet, dark room, stay hydrated, and consider an over-the-counter pain reliever such as paracetamol."},
	{"cough", "Drink warm fluids with honey, rest your voice, and avoid smoke or other irritants."},
	{"sore throat", "Gargle with warm salt water, drink warm fluids, and suck on throat lozenges."},
	{"leg", "Rest the affected leg, apply ice for 15-20 minutes at a time, and elevate it when sitting."},
	{"muscle", "Rest the affected muscle, apply a warm compress, and stretch gently once the soreness eases."},
	{"fatigue", "Prioritise regular sleep, eat balanced meals, and take short walks to keep your energy steady."},
}

const genericAdvice = "Rest, stay hydrated, and give your body time to recover."
const monitorReminder = " Keep monitoring your symptoms and log any changes; seek help if they worsen."

// Classify maps the captured symptom text to an urgency tier using an ordered
// decision list. It is a pure function: identical inputs always produce
// identical output, which is why it doubles as the recommendation fallback
// and as a sanity baseline for the AI path.
func Classify(symptomText, durationText, contextText string) pkg.RecommendationResult {
	symptom := strings.ToLower(symptomText)
	duration := strings.ToLower(durationText)
	context := strings.ToLower(contextText)

	// Tier 1: emergency.
	if containsAny(symptom, emergencyKeywords...) ||
		(strings.Contains(symptom, "headache") && containsAny(context, "sudden", "worst ever")) {
		return pkg.RecommendationResult{
			Recommendation: "Seek emergency care now",
			UrgencyLevel:   pkg.UrgencyUrgent,
			Advice:         "Call 999 or go to your nearest A&E department immediately. Do not drive yourself if you feel unwell.",
		}
	}

	// Tier 2: same-day clinical contact.
	if containsAny(symptom, highKeywords...) ||
		(strings.Contains(symptom, "pain") && strings.Contains(context, "severe")) ||
		containsAny(duration, "week", "month") {
		return pkg.RecommendationResult{
			Recommendation: "Contact your GP or NHS 111 today",
			UrgencyLevel:   pkg.UrgencyHigh,
			Advice:         "These symptoms should be assessed by a clinician soon. Call your GP practice or NHS 111 for urgent advice today.",
		}
	}

	// Tier 3: routine appointment.
	if containsAny(symptom, "persistent", "recurring") ||
		(strings.Contains(symptom, "cough") && strings.Contains(duration, "week")) {
		return pkg.RecommendationResult{
			Recommendation: "Book a routine GP appointment",
			UrgencyLevel:   pkg.UrgencyMedium,
			Advice:         "This is worth discussing with your GP at a routine appointment within the next few days.",
		}
	}

	// Tier 4: self-care.
	advice := genericAdvice
	for _, entry := range selfCareAdvice {
		if strings.Contains(symptom, entry.keyword) {
			advice = entry.advice
			break
		}
	}
	return pkg.RecommendationResult{
		Recommendation: "Self-care at home",
		UrgencyLevel:   pkg.UrgencyLow,
		Advice:         advice + monitorReminder,
	}
}

// Critical symptom keywords escalate the derived severity by one band.
var criticalSeverityKeywords = []string{"chest", "breath", "vision", "speech", "numb arm"}

// Low-priority symptoms de-escalate medium to low.
var lowPrioritySymptoms = []string{"headache", "migraine", "tension headache"}

var severityScoreRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// DeriveSeverityLevel bands a free-text or numeric severity answer.
// Descriptor words win over a numeric scale; the numeric scale wins over
// looser phrase heuristics; medium is the default.
func DeriveSeverityLevel(symptomText, severityText string) pkg.SeverityLevel {
	symptom := strings.ToLower(symptomText)
	sev := strings.ToLower(severityText)

	level := pkg.SeverityMedium
	switch {
	case containsAny(sev, "severe", "intense"):
		// "moderate to severe" lands here via the "severe" substring.
		level = pkg.SeverityHigh
	case strings.Contains(sev, "moderate"):
		level = pkg.SeverityMedium
	case containsAny(sev, "mild", "light"):
		level = pkg.SeverityLow
	case severityScoreRe.MatchString(sev):
		score, _ := strconv.ParseFloat(severityScoreRe.FindString(sev), 64)
		if score < 0 {
			score = 0
		}
		if score > 10 {
			score = 10
		}
		switch {
		case score <= 3:
			level = pkg.SeverityLow
		case score <= 6:
			level = pkg.SeverityMedium
		default:
			level = pkg.SeverityHigh
		}
	case containsAny(sev, "worse", "can't cope", "cant cope"):
		level = pkg.SeverityHigh
	case strings.Contains(sev, "manageable"):
		level = pkg.SeverityLow
	}

	if level != pkg.SeverityHigh && containsAny(symptom, criticalSeverityKeywords...) {
		if level == pkg.SeverityLow {
			level = pkg.SeverityMedium
		} else {
			level = pkg.SeverityHigh
		}
	}
	if level == pkg.SeverityMedium && containsAny(symptom, lowPrioritySymptoms...) {
		level = pkg.SeverityLow
	}
	return level
}

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
