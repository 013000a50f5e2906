package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chordquest/chordquest-api/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	bearerPrefix     = "Bearer"
	runTokenLifetime = 2 * time.Hour
	runTokenIssuer   = "chordquest-api"
)

// RunClaims identifies which anonymous player session a websocket
// connection belongs to. There is no persistent account behind it — this
// token only routes a browser tab's websocket back to the run it started.
type RunClaims struct {
	SessionID string `json:"session_id"`
	RunID     string `json:"run_id"`
	jwt.RegisteredClaims
}

// IssueRunToken signs a short-lived token for a freshly started run,
// returned to the browser alongside the run's websocket URL.
func IssueRunToken(cfg *config.Config, sessionID, runID string) (string, error) {
	claims := RunClaims{
		SessionID: sessionID,
		RunID:     runID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    runTokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(runTokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// RunAuth validates a run-session token from the Authorization header or
// access_token cookie and attaches RunClaims to the context. Used only on
// the websocket upgrade route; the CRUD routes for chords/stages use the
// gateway/none auth selected by AuthMode instead.
func RunAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "run token required"})
			c.Abort()
			return
		}

		claims := &RunClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired run token"})
			c.Abort()
			return
		}

		c.Set("run_claims", claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == bearerPrefix {
			return parts[1]
		}
	}
	token, _ := c.Cookie("access_token")
	return token
}

// GetRunClaims retrieves the validated RunClaims from context.
func GetRunClaims(c *gin.Context) (*RunClaims, bool) {
	val, exists := c.Get("run_claims")
	if !exists {
		return nil, false
	}
	claims, ok := val.(*RunClaims)
	return claims, ok
}
