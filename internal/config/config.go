package config

import "os"

// Config holds the application configuration.
type Config struct {
	// Environment
	Environment string
	Port        string
	BaseURL     string

	// Persistence (the stage/chord library, never run state or scores)
	DatabaseURL string

	// LLM API Keys, used by internal/composer to draft chord progressions
	OpenAIAPIKey string
	GeminiAPIKey string

	// Observability
	SentryDSN         string
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseHost      string
	LangfuseEnabled   bool

	// AWS CloudWatch metrics
	AWSRegion           string
	CloudWatchNamespace string

	// Session / token secrets
	SessionSecret string
	JWTSecret     string

	// Auth mode
	// - "none": no auth (self-hosted, local dev, anonymous play)
	// - "gateway": trust X-User-* headers from an upstream gateway
	AuthMode string

	// OAuth (optional host login; the Google routes are enabled whenever
	// GoogleClientID is set, in any AuthMode)
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	CorsAllowedOrigins string
}

func Load() *Config {
	return &Config{
		Environment:         getEnv("ENVIRONMENT", "development"),
		Port:                getEnv("PORT", "8080"),
		BaseURL:             getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		LangfusePublicKey:   getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:   getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:        getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:     getEnv("LANGFUSE_ENABLED", "false") == "true",
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "Chordquest/API"),
		SessionSecret:       getEnv("SESSION_SECRET", "dev-session-secret-change-me"),
		JWTSecret:           getEnv("JWT_SECRET", "dev-jwt-secret-change-me"),
		AuthMode:            getEnv("AUTH_MODE", "none"),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GitHubClientID:      getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret:  getEnv("GITHUB_CLIENT_SECRET", ""),
		CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind an auth gateway.
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}
