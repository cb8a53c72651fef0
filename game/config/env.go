package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Session store backends
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// ServerSettings holds the environment-driven settings of the server.
// Command-line flags override the matching fields in main.
type ServerSettings struct {
	Port      int
	Host      string
	ConfigDir string

	SessionsDir   string
	SessionStore  string
	SessionMaxAge time.Duration

	RedisURL      string
	RedisPassword string

	KafkaBrokers []string
	KafkaTopic   string

	DatabaseURL  string
	ResultsLimit int

	NgrokEnabled   bool
	NgrokAuthToken string
	NgrokDomain    string
}

// LoadServerSettings reads ServerSettings from the environment
func LoadServerSettings() *ServerSettings {
	s := &ServerSettings{
		Port:      GetEnvAsInt("PORT", 8080),
		Host:      GetEnv("HOST", "localhost"),
		ConfigDir: GetEnv("CONFIG_DIR", "configs"),

		SessionsDir:   GetEnv("SESSIONS_DIR", "sessions"),
		SessionStore:  strings.ToLower(GetEnv("SESSION_STORE", StoreFile)),
		SessionMaxAge: time.Duration(GetEnvAsInt("SESSION_MAX_AGE_HOURS", 24)) * time.Hour,

		RedisURL:      GetEnv("REDIS_URL", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),

		KafkaTopic: GetEnv("KAFKA_TOPIC", "connectn.events"),

		DatabaseURL:  GetEnv("DATABASE_URL", ""),
		ResultsLimit: GetEnvAsInt("RESULTS_MEMORY_LIMIT", 500),

		NgrokEnabled:   GetEnvAsBool("NGROK_ENABLED", false),
		NgrokAuthToken: GetEnv("NGROK_AUTHTOKEN", GetEnv("NGROK_AUTH_TOKEN", "")),
		NgrokDomain:    GetEnv("NGROK_DOMAIN", ""),
	}

	for _, broker := range strings.Split(GetEnv("KAFKA_BROKERS", ""), ",") {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			s.KafkaBrokers = append(s.KafkaBrokers, trimmed)
		}
	}

	switch s.SessionStore {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		s.SessionStore = StoreFile
	}

	return s
}

// GetEnv returns the value of key or fallback when it is unset or empty
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt parses key as an integer, falling back on parse errors
func GetEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

// GetEnvAsBool accepts the forms understood by strconv.ParseBool
func GetEnvAsBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}
