package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/epigraph/internal/api/middleware"
	"github.com/timmy/epigraph/internal/domain"
)

// ChatHandler serves the session's conversation with the domain assistant.
type ChatHandler struct{}

// NewChatHandler creates a new chat handler.
func NewChatHandler() *ChatHandler {
	return &ChatHandler{}
}

// ChatRequest is the body of POST /api/v1/chat/messages.
type ChatRequest struct {
	Message string `json:"message"`
}

// List handles GET /api/v1/chat/messages.
func (h *ChatHandler) List(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	c.JSON(http.StatusOK, gin.H{"messages": sess.Chat.Messages()})
}

// Send handles POST /api/v1/chat/messages.
func (h *ChatHandler) Send(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &domain.ValidationError{Field: "message", Reason: "invalid request body"}, "")
		return
	}

	sess := middleware.CurrentSession(c)
	reply, err := sess.Chat.Send(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reply":    reply,
		"messages": sess.Chat.Messages(),
	})
}
