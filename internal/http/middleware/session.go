package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"pressroom.app/pressroom/common/logger"
)

const (
	SessionHeader = "X-Session-Id"
	SessionCookie = "press_session"

	sessionKey = "press_session_id"
)

// Session resolves the caller's press session id from the X-Session-Id
// header, falling back to the press_session cookie, and tags the request
// context so every log line below carries it.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(SessionHeader))
		if sid == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				sid = strings.TrimSpace(cookie)
			}
		}

		if sid != "" {
			c.Set(sessionKey, sid)
			ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
				SessionID: logger.Ptr(sid),
				Component: "pressroom.http",
			})
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// SessionID returns the id resolved by Session, or "".
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
