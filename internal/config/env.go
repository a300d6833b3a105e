package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"vacai/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr   string
	GinMode   string
	LogLevel  string
	LogPretty bool

	DBDSN string

	JWTSecret         string
	TokenTTL          time.Duration
	MinPasswordLength int
	FederatedIssuer   string
	FederatedSecret   string

	CORSAllowedOrigins []string

	ProfileBackend string
	MongoURI       string
	MongoDB        string

	AgentName   string
	AgentAPIKey string
	ViewIdleTTL time.Duration

	NodeWidth       float64
	NodeHeight      float64
	LayoutDirection string
	LayoutConnector string
}

// DefaultJWTSecret is for local development only.
const DefaultJWTSecret = "super-secret-key-change-me"

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// LoadEnv reads an optional .env file and then the process environment.
// Variables already set in the process win over the file.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr:   getEnvWithDefault("APP_ADDR", ":8080"),
		GinMode:   strings.TrimSpace(os.Getenv("GIN_MODE")),
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),

		DBDSN: getEnvWithDefault("DB_DSN", "root:@tcp(127.0.0.1:3306)/vacai?parseTime=true&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"),

		JWTSecret:         getEnvWithDefault("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:          getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		MinPasswordLength: getEnvAsInt("MIN_PASSWORD_LENGTH", 6),
		FederatedIssuer:   strings.TrimSpace(os.Getenv("FEDERATED_ISSUER")),
		FederatedSecret:   os.Getenv("FEDERATED_SECRET"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),

		ProfileBackend: strings.ToLower(getEnvWithDefault("PROFILE_BACKEND", "mysql")),
		MongoURI:       getEnvWithDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnvWithDefault("MONGO_DB", "vacai"),

		AgentName:   getEnvWithDefault("AGENT_NAME", "my_agent"),
		AgentAPIKey: os.Getenv("AGENT_API_KEY"),
		ViewIdleTTL: getEnvAsDuration("VIEW_IDLE_TTL", 30*time.Minute),

		NodeWidth:       getEnvAsFloat("NODE_WIDTH", 170),
		NodeHeight:      getEnvAsFloat("NODE_HEIGHT", 160),
		LayoutDirection: strings.ToLower(getEnvWithDefault("LAYOUT_DIRECTION", "serpentine")),
		LayoutConnector: strings.ToLower(getEnvWithDefault("LAYOUT_CONNECTOR", "curved")),
	}
}

// CheckSecrets rejects the built-in JWT secret in release mode. Elsewhere it
// only warns.
func (e Env) CheckSecrets() error {
	if e.JWTSecret != DefaultJWTSecret {
		return nil
	}
	if e.GinMode == gin.ReleaseMode {
		return errors.New("JWT_SECRET must be set when GIN_MODE=release")
	}
	logging.Warn().Msg("JWT_SECRET is not set; using the built-in development secret")
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
