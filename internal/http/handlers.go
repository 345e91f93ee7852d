package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"symptom-triage/internal/core"
	"symptom-triage/pkg"
)

// Store is the persistence collaborator the handlers write finalized intakes
// to and read clinician views from. *db.Repository implements it; the
// interface lives here so handler tests can substitute an in-memory store.
type Store interface {
	CreateSymptom(ctx context.Context, rec *pkg.SymptomRecord) error
	GetSymptom(ctx context.Context, id string) (*pkg.SymptomRecord, error)
	UpdateSymptom(ctx context.Context, rec *pkg.SymptomRecord) error
	ListSymptomSnapshots(ctx context.Context, userID string, limit int) ([]pkg.SymptomSnapshot, error)
	CreateConversation(ctx context.Context, rec *pkg.ConversationRecord) error
	GetConversation(ctx context.Context, id string) (*pkg.ConversationRecord, error)
	ListCompletedConversations(ctx context.Context, limit int) ([]pkg.ConversationRecord, error)
}

// Notifier publishes and subscribes to conversation finalization events.
// *db.Notifier implements it over Postgres LISTEN/NOTIFY.
type Notifier interface {
	Notify(ctx context.Context, conversationID string) error
	Listen(ctx context.Context) (<-chan string, error)
}

const (
	relatedHistoryLimit   = 10
	conversationListLimit = 50
)

// session is one active intake conversation. Its mutex gives each session
// single-flight semantics: a new message cannot mutate the state while a
// generation call for the previous one is in flight.
type session struct {
	mu sync.Mutex

	id     string
	userID string
	state  core.ConversationState

	// Previous states, one per turn. The engine clones on every transition,
	// so these stay valid as an undo/history trail.
	history []core.ConversationState

	messages   []pkg.Message
	additional []string

	summary        *pkg.SummaryResult
	recommendation *pkg.RecommendationResult
}

// Server bundles the dependencies required by the HTTP handlers. It
// implements http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Store    Store
	Notifier Notifier
	Gen      *core.Generator

	mu       sync.Mutex
	sessions map[string]*session
}

// NewServer constructs a Server.
func NewServer(store Store, notifier Notifier, gen *core.Generator) *Server {
	return &Server{
		Store:    store,
		Notifier: notifier,
		Gen:      gen,
		sessions: make(map[string]*session),
	}
}

// ServeHTTP dispatches incoming requests based on the URL path. Minimal
// routing logic is implemented here to keep dependencies light.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/sessions" && r.Method == http.MethodPost:
		s.handleCreateSession(w, r)
	case strings.HasPrefix(path, "/api/sessions/"):
		parts := strings.Split(path, "/")
		if len(parts) < 4 {
			http.NotFound(w, r)
			return
		}
		sessionID := parts[3]
		var action string
		if len(parts) >= 5 {
			action = parts[4]
		}
		switch {
		case action == "messages" && r.Method == http.MethodPost:
			s.handlePostMessage(w, r, sessionID)
		case action == "summary" && r.Method == http.MethodGet:
			s.handleGetSummary(w, r, sessionID)
		case action == "fields" && r.Method == http.MethodPost:
			s.handleEditField(w, r, sessionID)
		case action == "related" && r.Method == http.MethodGet:
			s.handleRelated(w, r, sessionID)
		case action == "confirm" && r.Method == http.MethodPost:
			s.handleConfirm(w, r, sessionID)
		default:
			http.NotFound(w, r)
		}
	case path == "/api/symptoms" || strings.HasPrefix(path, "/api/symptoms/"):
		parts := strings.Split(path, "/")
		if len(parts) < 4 || parts[3] == "" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		s.handleEditSymptom(w, r, parts[3])
	case path == "/api/conversations" && r.Method == http.MethodGet:
		s.handleListConversations(w, r)
	case path == "/api/conversations/stream" && r.Method == http.MethodGet:
		s.handleConversationStream(w, r)
	case strings.HasPrefix(path, "/api/conversations/") && r.Method == http.MethodGet:
		parts := strings.Split(path, "/")
		if len(parts) < 4 || parts[3] == "" {
			http.NotFound(w, r)
			return
		}
		s.handleGetConversation(w, r, parts[3])
	default:
		http.NotFound(w, r)
	}
}

// handleCreateSession starts a new intake session and returns the greeting
// question for the symptom phase.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	sess := &session{
		id:     uuid.NewString(),
		userID: req.UserID,
		state:  core.NewConversationState(),
	}
	greeting := core.QuestionFor(core.PhaseSymptom)
	sess.messages = append(sess.messages, pkg.Message{Role: pkg.RoleAssistant, Content: greeting, CreatedAt: time.Now()})

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.id,
		"message":    greeting,
		"phase":      sess.state.Phase,
	})
}

// handlePostMessage runs one engine turn. Messages arriving after the summary
// phase are collected as additional info and trigger regeneration.
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := s.getSession(sessionID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	content := strings.TrimSpace(req.Content)
	ctx := r.Context()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.messages = append(sess.messages, pkg.Message{Role: pkg.RolePatient, Content: content, CreatedAt: time.Now()})
	sess.history = append(sess.history, sess.state)

	var reply string
	if sess.state.Phase == core.PhaseSummary {
		sess.additional = append(sess.additional, content)
		s.regenerate(ctx, sess)
		reply = "Thank you, I've added that to your summary."
	} else {
		res := s.Gen.GenerateNextQuestion(ctx, sess.state, content)
		sess.state = res.State
		reply = res.Message
		if res.Phase == core.PhaseSummary {
			s.regenerate(ctx, sess)
		}
	}
	sess.messages = append(sess.messages, pkg.Message{Role: pkg.RoleAssistant, Content: reply, CreatedAt: time.Now()})

	resp := map[string]any{
		"message": reply,
		"phase":   sess.state.Phase,
	}
	if sess.state.Phase == core.PhaseSummary {
		resp["summary"] = sess.summary
		resp["recommendation"] = sess.recommendation
	}
	writeJSON(w, http.StatusOK, resp)
}

// regenerate recomputes the summary and recommendation from the current
// state. Called on entering the summary phase and again after every
// post-summary addition or field edit. Both generators fall back internally,
// so this cannot fail. Caller holds sess.mu.
func (s *Server) regenerate(ctx context.Context, sess *session) {
	info := strings.Join(sess.additional, "\n")
	summary := s.Gen.GenerateSummary(ctx, sess.state, info)
	recommendation := s.Gen.GenerateRecommendation(ctx, sess.state, info)
	sess.summary = &summary
	sess.recommendation = &recommendation
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := s.getSession(sessionID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.summary == nil {
		http.Error(w, "summary not ready", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":        sess.summary,
		"recommendation": sess.recommendation,
		"state":          sess.state,
	})
}

// handleEditField lets the patient correct a captured field while reviewing
// the summary. Edits are only possible once the summary phase is reached, and
// always trigger regeneration of the summary and recommendation.
func (s *Server) handleEditField(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := s.getSession(sessionID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	value := strings.TrimSpace(req.Value)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state.Phase != core.PhaseSummary {
		http.Error(w, "fields can only be edited while reviewing the summary", http.StatusConflict)
		return
	}
	sess.history = append(sess.history, sess.state)
	state := sess.state.Clone()
	switch req.Field {
	case "symptom":
		state.Symptom = &value
	case "body_location":
		state.BodyLocation = &value
	case "duration":
		state.Duration = &value
	case "contextual_info":
		state.ContextualInfo = &value
	case "severity":
		state.Severity = &value
	default:
		http.Error(w, "unknown field "+req.Field, http.StatusBadRequest)
		return
	}
	sess.state = state
	s.regenerate(r.Context(), sess)
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":        sess.summary,
		"recommendation": sess.recommendation,
		"state":          sess.state,
	})
}

// handleRelated checks the patient's prior symptoms for a plausible link with
// the current one. The lookup is read-only and idempotent; failures surface
// as an inline advisory, never as an error status.
func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := s.getSession(sessionID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess.mu.Lock()
	userID := sess.userID
	state := sess.state.Clone()
	sess.mu.Unlock()

	prior, err := s.Store.ListSymptomSnapshots(r.Context(), userID, relatedHistoryLimit)
	if err != nil {
		log.Println("related-symptom lookup failed:", err)
		writeJSON(w, http.StatusOK, map[string]any{
			"insight":  nil,
			"advisory": "We couldn't check your previous symptoms just now. This doesn't affect your current summary.",
		})
		return
	}
	insight := s.Gen.GenerateRelatedSymptomInsight(r.Context(), state, prior)
	writeJSON(w, http.StatusOK, map[string]any{"insight": insight})
}

// handleConfirm persists the finalized intake as a symptom record plus a
// conversation record, notifies listeners, and discards the session.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := s.getSession(sessionID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state.Phase != core.PhaseSummary {
		http.Error(w, "intake is not complete yet", http.StatusConflict)
		return
	}
	if sess.summary == nil || sess.recommendation == nil {
		s.regenerate(ctx, sess)
	}

	symptom := &pkg.SymptomRecord{
		UserID:       sess.userID,
		SymptomName:  strValue(sess.state.Symptom),
		BodyLocation: sess.state.BodyLocation,
		Duration:     sess.state.Duration,
		Description:  sess.state.ContextualInfo,
		Severity:     sess.state.Severity,
	}
	if err := s.Store.CreateSymptom(ctx, symptom); err != nil {
		http.Error(w, "failed to save symptom: "+err.Error(), http.StatusInternalServerError)
		return
	}
	now := time.Now()
	conversation := &pkg.ConversationRecord{
		UserID:         sess.userID,
		SymptomID:      symptom.ID,
		Messages:       sess.messages,
		Summary:        sess.summary.Text,
		Recommendation: sess.recommendation.Recommendation + ": " + sess.recommendation.Advice,
		UrgencyLevel:   sess.recommendation.UrgencyLevel,
		CompletedAt:    &now,
	}
	if err := s.Store.CreateConversation(ctx, conversation); err != nil {
		http.Error(w, "failed to save conversation: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.Notifier.Notify(ctx, conversation.ID); err != nil {
		log.Println("finalization notify failed:", err)
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"symptom":      symptom,
		"conversation": conversation,
	})
}

// handleEditSymptom corrects a field on an already-confirmed symptom record
// and recomputes the recommendation from the updated record. The stored
// conversation keeps its original transcript; the fresh recommendation is
// returned for the clinician view.
func (s *Server) handleEditSymptom(w http.ResponseWriter, r *http.Request, symptomID string) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	value := strings.TrimSpace(req.Value)
	ctx := r.Context()

	rec, err := s.Store.GetSymptom(ctx, symptomID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	switch req.Field {
	case "symptom":
		rec.SymptomName = value
	case "body_location":
		rec.BodyLocation = &value
	case "duration":
		rec.Duration = &value
	case "contextual_info":
		rec.Description = &value
	case "severity":
		rec.Severity = &value
	default:
		http.Error(w, "unknown field "+req.Field, http.StatusBadRequest)
		return
	}
	if err := s.Store.UpdateSymptom(ctx, rec); err != nil {
		http.Error(w, "failed to update symptom: "+err.Error(), http.StatusInternalServerError)
		return
	}
	recommendation := s.Gen.GenerateRecommendation(ctx, stateFromRecord(rec), "")
	writeJSON(w, http.StatusOK, map[string]any{
		"symptom":        rec,
		"recommendation": recommendation,
	})
}

// stateFromRecord rebuilds a summary-phase conversation state from a persisted
// symptom record so the generators can run against it.
func stateFromRecord(rec *pkg.SymptomRecord) core.ConversationState {
	name := rec.SymptomName
	state := core.ConversationState{
		Phase:            core.PhaseSummary,
		Symptom:          &name,
		BodyLocation:     rec.BodyLocation,
		Duration:         rec.Duration,
		ContextualInfo:   rec.Description,
		Severity:         rec.Severity,
		RequiresLocation: rec.BodyLocation != nil,
	}
	return state.Clone()
}

// handleConversationStream pushes finalization events to clinician dashboards
// over SSE, one JSON event per confirmed intake, until the client disconnects.
func (s *Server) handleConversationStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	events, err := s.Notifier.Listen(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for id := range events {
		payload, err := json.Marshal(map[string]string{
			"type":            "conversation_finalized",
			"conversation_id": id,
		})
		if err != nil {
			log.Println("failed to encode stream event:", err)
			continue
		}
		if _, err := io.WriteString(w, "data: "+string(payload)+"\n\n"); err != nil {
			return
		}
		flusher.Flush()
	}
}

// handleListConversations returns recently completed intakes for the
// clinician dashboard.
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.Store.ListCompletedConversations(r.Context(), conversationListLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request, id string) {
	conversation, err := s.Store.GetConversation(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, conversation)
}

func (s *Server) getSession(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("failed to encode response:", err)
	}
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
