package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/veldshoe/storefront_api/internal/utils"
)

const (
	sessionContextKey = "session_id"
	sessionHeader     = "X-Session-Token"
	sessionCookie     = "storefront_session"
	cookieMaxAge      = 30 * 24 * 60 * 60
)

// SessionMiddleware resolves the anonymous browsing session. A valid JWT
// session token (header or cookie) is accepted as-is; otherwise a fresh
// session is minted and the signed token returned via header and cookie.
// The cart and catalog accumulation are keyed by this session id.
type SessionMiddleware struct{}

// NewSessionMiddleware constructs a SessionMiddleware.
func NewSessionMiddleware() *SessionMiddleware {
	return &SessionMiddleware{}
}

// Handle returns a Gin middleware function that establishes the session.
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(sessionHeader)
		if token == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				token = cookie
			}
		}

		if token != "" {
			if claims, err := utils.ValidateSessionToken(token); err == nil {
				c.Set(sessionContextKey, claims.SessionID)
				c.Next()
				return
			}
			// Expired or tampered token: fall through and mint a new one.
		}

		sessionID := uuid.New().String()
		signed, err := utils.GenerateSessionToken(sessionID)
		if err != nil {
			log.Error().Err(err).Msg("failed to sign session token")
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to establish session")
			c.Abort()
			return
		}

		c.Set(sessionContextKey, sessionID)
		c.Header(sessionHeader, signed)
		c.SetCookie(sessionCookie, signed, cookieMaxAge, "/", "", false, true)
		c.Next()
	}
}

// GetSessionID returns the session id established by the middleware.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}
