package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Push / realtime
	FirebaseCredentials string
	GoogleProjectID     string
	PubSubTopic         string

	// Event store snapshots
	SnapshotDir string

	// Ordered fallback chain for notification inserts: rpc, insert, raw
	NotificationInsertStrategies []string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	strategies := []string{"rpc", "insert", "raw"}
	if raw := os.Getenv("NOTIFICATION_INSERT_STRATEGIES"); raw != "" {
		strategies = nil
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				strategies = append(strategies, s)
			}
		}
	}

	return &Config{
		Port:                         getEnv("PORT", "8080"),
		DatabaseURL:                  getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=moments port=5432 sslmode=disable"),
		JWTSecret:                    getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:              accessExpiry,
		JWTRefreshExpiry:             refreshExpiry,
		FirebaseCredentials:          getEnv("FIREBASE_CREDENTIALS", ""),
		GoogleProjectID:              getEnv("GOOGLE_PROJECT_ID", ""),
		PubSubTopic:                  getEnv("PUBSUB_TOPIC", "moment-updates"),
		SnapshotDir:                  getEnv("SNAPSHOT_DIR", "./data/snapshots"),
		NotificationInsertStrategies: strategies,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
