package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/epigraph/internal/api/middleware"
	"github.com/timmy/epigraph/internal/domain"
	"github.com/timmy/epigraph/internal/service"
)

// AnalysisHandler handles the upload and analysis flow of a session.
type AnalysisHandler struct {
	maxImageBytes int64
}

// NewAnalysisHandler creates a new analysis handler.
// Parameters:
//   - maxImageBytes: upload limit; reads stop one byte past it.
//
// Returns:
//   - *AnalysisHandler: initialized handler.
func NewAnalysisHandler(maxImageBytes int64) *AnalysisHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = service.DefaultMaxImageBytes
	}
	return &AnalysisHandler{maxImageBytes: maxImageBytes}
}

// ShareRequest toggles public sharing of the next result.
type ShareRequest struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}

// Get handles GET /api/v1/analysis.
func (h *AnalysisHandler) Get(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	c.JSON(http.StatusOK, sess.Analysis.Snapshot())
}

// SelectFile handles POST /api/v1/analysis/file.
func (h *AnalysisHandler) SelectFile(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, &domain.ValidationError{Field: "file", Reason: "multipart field \"file\" is required"}, "")
		return
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, &domain.ValidationError{Field: "file", Reason: "upload could not be read"}, "")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
	if err != nil {
		respondError(c, &domain.ValidationError{Field: "file", Reason: "upload could not be read"}, "")
		return
	}

	if raw := c.PostForm("is_public"); raw != "" {
		public, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, &domain.ValidationError{Field: "is_public", Reason: "must be a boolean"}, "")
			return
		}
		sess.Analysis.SetSharePublic(public)
	}

	if err := sess.Analysis.SelectFile(header.Filename, data); err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, sess.Analysis.Snapshot())
}

// SetShare handles PUT /api/v1/analysis/share.
func (h *AnalysisHandler) SetShare(c *gin.Context) {
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &domain.ValidationError{Field: "is_public", Reason: "boolean is_public is required"}, "")
		return
	}
	sess := middleware.CurrentSession(c)
	sess.Analysis.SetSharePublic(*req.IsPublic)
	c.JSON(http.StatusOK, sess.Analysis.Snapshot())
}

// Analyze handles POST /api/v1/analysis.
// On success the client is pointed at the community feed.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if _, err := sess.Analysis.Analyze(c.Request.Context()); err != nil {
		respondError(c, err, service.AnalysisFailedMessage)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"analysis":  sess.Analysis.Snapshot(),
		"next_view": "community",
	})
}

// Reset handles DELETE /api/v1/analysis.
func (h *AnalysisHandler) Reset(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := sess.Analysis.Reset(); err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, sess.Analysis.Snapshot())
}
