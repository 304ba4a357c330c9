package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/epigraph/internal/api/middleware"
	"github.com/timmy/epigraph/internal/domain"
)

const feedFailedMessage = "Could not load the community feed."

// CommunityHandler serves the public translation feed and its comments.
type CommunityHandler struct{}

// NewCommunityHandler creates a new community handler.
func NewCommunityHandler() *CommunityHandler {
	return &CommunityHandler{}
}

// CommentRequest is the body of POST /api/v1/community/comments.
type CommentRequest struct {
	Content string `json:"content"`
}

// Get handles GET /api/v1/community. The feed is loaded on first use.
func (h *CommunityHandler) Get(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	snap, err := sess.Feed.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err, feedFailedMessage)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Reload handles POST /api/v1/community/reload.
func (h *CommunityHandler) Reload(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := sess.Feed.Load(c.Request.Context()); err != nil {
		respondError(c, err, feedFailedMessage)
		return
	}
	h.Get(c)
}

// Toggle handles POST /api/v1/community/translations/:id/toggle.
func (h *CommunityHandler) Toggle(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := sess.Feed.ToggleComments(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Could not load comments.")
		return
	}
	h.Get(c)
}

// PostComment handles POST /api/v1/community/comments.
func (h *CommunityHandler) PostComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &domain.ValidationError{Field: "content", Reason: "invalid request body"}, "")
		return
	}

	sess := middleware.CurrentSession(c)
	if err := sess.Feed.PostComment(c.Request.Context(), req.Content); err != nil {
		respondError(c, err, "")
		return
	}
	h.Get(c)
}
