package middleware

import (
	"net/http"

	"github.com/chordquest/chordquest-api/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

// SetupOAuth configures goth's Google provider for optional host login. It
// is a Non-goal-compatible side door: nothing it produces reaches
// internal/rhythm, which only ever sees an anonymous player id.
func SetupOAuth(cfg *config.Config, store sessions.Store) {
	gothic.Store = store
	if cfg.GoogleClientID == "" {
		return
	}
	goth.UseProviders(
		google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.BaseURL+"/api/auth/google/callback",
			"email", "profile",
		),
	)
}

// BeginOAuth starts the provider redirect handshake.
func BeginOAuth(c *gin.Context) {
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CompleteOAuth finishes the handshake and returns the goth identity
// (provider, email, name) as JSON. It does not store that identity in the
// anonymous player session, and it mints no account — there is no user
// table to mint one into.
func CompleteOAuth(c *gin.Context) {
	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"provider": gothUser.Provider,
		"email":    gothUser.Email,
		"name":     gothUser.Name,
	})
}
