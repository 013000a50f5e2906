package middleware

import (
	"github.com/chordquest/chordquest-api/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionCookieName = "chordquest_session"
const sessionPlayerKey = "player_id"

// NewSessionStore builds the cookie store anonymous play identifies players
// with — no password, no persisted profile, just a stable id so a
// reconnecting websocket can be matched back to its in-flight run.
func NewSessionStore(cfg *config.Config) sessions.Store {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days
		HttpOnly: true,
		Secure:   cfg.Environment == "production",
	}
	return store
}

// PlayerSession assigns (or reads) an anonymous player id cookie on every
// request, the same request-scoped-id-via-context idiom RequestTracking
// uses for request ids, but for a longer-lived identity instead of a
// per-request one.
func PlayerSession(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := store.Get(c.Request, sessionCookieName)

		playerID, ok := sess.Values[sessionPlayerKey].(string)
		if !ok || playerID == "" {
			playerID = uuid.New().String()
			sess.Values[sessionPlayerKey] = playerID
			_ = sess.Save(c.Request, c.Writer)
		}

		c.Set("player_id", playerID)
		c.Next()
	}
}

// GetPlayerID retrieves the anonymous player id set by PlayerSession.
func GetPlayerID(c *gin.Context) (string, bool) {
	val, exists := c.Get("player_id")
	if !exists {
		return "", false
	}
	id, ok := val.(string)
	return id, ok
}
