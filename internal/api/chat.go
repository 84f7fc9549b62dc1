package api

import (
	"errors"
	"net/http"

	"github.com/RowanMueller/ai-production/internal/models"
	"github.com/RowanMueller/ai-production/internal/service"
	"github.com/RowanMueller/ai-production/internal/session"
	apperrors "github.com/RowanMueller/ai-production/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the chat session endpoints
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a chat handler
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// RegisterRoutes registers the chat routes on the given group
func (h *ChatHandler) RegisterRoutes(rg *gin.RouterGroup) {
	chat := rg.Group("/chat")
	{
		chat.POST("/start", h.Start)
		chat.POST("/send", h.Send)
		chat.GET("/history/:sessionId", h.History)
		chat.GET("/suggestions/:sessionId", h.Suggestions)
		chat.PUT("/context/:sessionId", h.UpdateContext)
		chat.DELETE("/session/:sessionId", h.DeleteSession)
	}
}

// Start creates a new session and returns its identifier with a greeting
func (h *ChatHandler) Start(c *gin.Context) {
	result, err := h.chat.Start()
	if err != nil {
		c.Error(mapSessionError(err, ""))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Send processes one chat turn
func (h *ChatHandler) Send(c *gin.Context) {
	var req models.ChatSendRequest
	if appErr := bindJSON(c, &req); appErr != nil {
		c.Error(appErr)
		return
	}

	result, err := h.chat.Send(c.Request.Context(), req)
	if err != nil {
		c.Error(mapSessionError(err, req.SessionID))
		return
	}
	c.JSON(http.StatusOK, result)
}

// History returns the full transcript and context for a session
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Param("sessionId")
	sess, err := h.chat.History(sessionID)
	if err != nil {
		c.Error(mapSessionError(err, sessionID))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"created_at": sess.CreatedAt,
		"messages":   sess.Messages,
		"context":    sess.Context,
	})
}

// Suggestions returns follow-up prompts for a session
func (h *ChatHandler) Suggestions(c *gin.Context) {
	sessionID := c.Param("sessionId")
	suggestions, err := h.chat.Suggestions(sessionID)
	if err != nil {
		c.Error(mapSessionError(err, sessionID))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":  sessionID,
		"suggestions": suggestions,
	})
}

// UpdateContext shallow-merges the request body into the session context
func (h *ChatHandler) UpdateContext(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var partial models.Context
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.Error(apperrors.NewValidationError("body", "context update must be a JSON object"))
		return
	}

	merged, err := h.chat.UpdateContext(sessionID, partial)
	if err != nil {
		c.Error(mapSessionError(err, sessionID))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"context":    merged,
	})
}

// DeleteSession removes a session; a second delete reports not-found
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if !h.chat.Delete(sessionID) {
		c.Error(apperrors.NewSessionNotFoundError(sessionID))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"deleted":    true,
	})
}

// mapSessionError converts store errors into the HTTP error taxonomy.
// Errors already carrying a status pass through untouched.
func mapSessionError(err error, sessionID string) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return apperrors.NewSessionNotFoundError(sessionID)
	case errors.Is(err, session.ErrStoreFull):
		return apperrors.NewError(http.StatusServiceUnavailable, "SESSION_LIMIT", "Too many live sessions, try again later")
	default:
		return err
	}
}
