package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/epigraph/internal/logger"
	"github.com/timmy/epigraph/internal/session"
)

// SessionHeader identifies a visitor's in-memory session.
const SessionHeader = "X-Session-ID"

const sessionKey = "session"

// Session resolves the caller's session, creating one when the header is
// missing or unknown, and echoes its id in the response.
func Session(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, created := manager.GetOrCreate(c.GetHeader(SessionHeader))
		c.Header(SessionHeader, sess.ID)
		c.Set(sessionKey, sess)

		ctx := logger.SetSessionID(c.Request.Context(), sess.ID)
		c.Request = c.Request.WithContext(ctx)
		if created {
			logger.CtxDebug(ctx, "Session created")
		}

		c.Next()
	}
}

// CurrentSession returns the session stored by the Session middleware.
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}
