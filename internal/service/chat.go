// Package service orchestrates chat turns between the session store and the
// upstream analysis service.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RowanMueller/ai-production/internal/models"
	"github.com/RowanMueller/ai-production/internal/session"
	"github.com/RowanMueller/ai-production/internal/upstream"
	"github.com/RowanMueller/ai-production/pkg/logger"
	"github.com/RowanMueller/ai-production/pkg/metrics"

	"github.com/google/uuid"
)

// Greeting returned when a session starts. Generated locally, never from
// the analysis service.
const Greeting = "Hello! I'm your AI financial assistant. I can help you with stock analysis, price predictions, market sentiment and portfolio insights. What would you like to know?"

// StarterSuggestions seed a fresh or unfocused conversation
var StarterSuggestions = []string{
	"Tell me about AAPL",
	"Predict TSLA price",
	"Analyze MSFT",
	"Check GOOGL sentiment",
}

const maxSuggestions = 6

// ChatService drives the session lifecycle: NoSession -> Created -> Active.
// Sending to an unknown identifier is the documented fallback branch that
// creates a session rather than failing.
type ChatService struct {
	store      *session.Store
	ai         upstream.AnalysisService
	metrics    *metrics.Metrics
	log        *logger.Logger
	maxHistory int
}

// NewChatService creates a chat service
func NewChatService(store *session.Store, ai upstream.AnalysisService, m *metrics.Metrics, log *logger.Logger, maxHistory int) *ChatService {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	svc := &ChatService{
		store:      store,
		ai:         ai,
		metrics:    m,
		log:        log.WithComponent("chat"),
		maxHistory: maxHistory,
	}
	if m != nil {
		store.OnDelete(m.SessionDeleted)
	}
	return svc
}

// StartResult is returned when a session is created explicitly
type StartResult struct {
	SessionID   string   `json:"session_id"`
	Greeting    string   `json:"greeting"`
	Suggestions []string `json:"suggestions"`
}

// Start creates a fresh session and returns its identifier with a local greeting
func (s *ChatService) Start() (*StartResult, error) {
	sess, err := s.store.Create()
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SessionCreated()
	}
	s.log.Info("Session started", "session_id", sess.ID)

	return &StartResult{
		SessionID:   sess.ID,
		Greeting:    Greeting,
		Suggestions: StarterSuggestions,
	}, nil
}

// SendResult is the outcome of one chat turn
type SendResult struct {
	SessionID string         `json:"session_id"`
	Message   models.Message `json:"message"`
	Context   models.Context `json:"context"`
}

// Send runs one chat turn: resolve or lazily create the session, append the
// user message, call the upstream chat completion with the session context
// and recent history, append the reply, and adopt the upstream's updated
// context when one is returned.
func (s *ChatService) Send(ctx context.Context, req models.ChatSendRequest) (*SendResult, error) {
	sess, err := s.resolveSession(req.SessionID)
	if err != nil {
		return nil, err
	}

	if len(req.Context) > 0 {
		if _, err := s.store.MergeContext(sess.ID, req.Context); err != nil {
			return nil, err
		}
		sess.Context = sess.Context.Merge(req.Context)
	}

	// History passed upstream excludes the message being sent
	history := make([]upstream.ChatHistoryEntry, 0, s.maxHistory)
	for _, msg := range sess.LastMessages(s.maxHistory) {
		history = append(history, upstream.ChatHistoryEntry{Role: msg.Role, Content: msg.Content})
	}

	userMsg := models.Message{
		ID:        newMessageID(),
		Role:      models.RoleUser,
		Content:   req.Message,
		Timestamp: time.Now(),
	}
	if err := s.store.AppendMessage(sess.ID, userMsg); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.MessageAppended()
	}

	resp, err := s.ai.Chat(ctx, upstream.ChatRequest{
		Message:   req.Message,
		SessionID: sess.ID,
		Context:   sess.Context,
		History:   history,
	})
	if err != nil {
		return nil, err
	}

	confidence := resp.Confidence
	botMsg := models.Message{
		ID:          newMessageID(),
		Role:        models.RoleAssistant,
		Content:     resp.Response,
		Confidence:  &confidence,
		Suggestions: resp.Suggestions,
		Timestamp:   time.Now(),
	}
	if err := s.store.AppendMessage(sess.ID, botMsg); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.MessageAppended()
	}

	finalContext := sess.Context
	if resp.UpdatedContext != nil {
		if err := s.store.ReplaceContext(sess.ID, resp.UpdatedContext); err != nil {
			return nil, err
		}
		finalContext = resp.UpdatedContext
	}

	return &SendResult{
		SessionID: sess.ID,
		Message:   botMsg,
		Context:   finalContext.Clone(),
	}, nil
}

// History returns the full transcript and context for a session
func (s *ChatService) History(id string) (*models.Session, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

// Suggestions derives follow-up prompts from the session's tracked stock
// interests, falling back to the starter list.
func (s *ChatService) Suggestions(id string) ([]string, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return nil, session.ErrNotFound
	}

	interests := stockInterests(sess.Context)
	if len(interests) == 0 {
		return StarterSuggestions, nil
	}
	if len(interests) > 3 {
		interests = interests[len(interests)-3:]
	}

	suggestions := make([]string, 0, maxSuggestions)
	for _, symbol := range interests {
		suggestions = append(suggestions,
			fmt.Sprintf("Get %s price prediction", symbol),
			fmt.Sprintf("Analyze %s performance", symbol),
			fmt.Sprintf("Check %s market sentiment", symbol),
		)
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}

// UpdateContext shallow-merges client-supplied fields into the session context
func (s *ChatService) UpdateContext(id string, partial models.Context) (models.Context, error) {
	return s.store.MergeContext(id, partial)
}

// Delete removes a session, reporting whether it existed
func (s *ChatService) Delete(id string) bool {
	return s.store.Delete(id)
}

// resolveSession looks up the session, creating one when the identifier is
// empty or unknown.
func (s *ChatService) resolveSession(id string) (*models.Session, error) {
	if id != "" {
		if sess, ok := s.store.Get(id); ok {
			return sess, nil
		}
		s.log.Info("Unknown session on send, creating new", "session_id", id)
	}

	sess, err := s.store.Create()
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SessionCreated()
	}
	return sess, nil
}

// stockInterests extracts the tracked symbols from a context, tolerating the
// JSON-decoded []any shape.
func stockInterests(ctx models.Context) []string {
	raw, ok := ctx["stock_interests"]
	if !ok {
		return nil
	}

	switch values := raw.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, v := range values {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func newMessageID() string {
	return uuid.New().String()
}
