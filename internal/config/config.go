package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort          string
	AppEnv           string
	AWSRegion        string
	AWSEndpointURL   string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID   string
	AWSSecretKey     string
	DynamoTables     DynamoTables
	JWTPublicKeyPath string
	Push             PushConfig
	DefaultRadiusKm  float64
	SNSRegion        string
	SNSDispatchTopic string // optional; dispatch summaries are published here when set
	AllowedOrigins   []string
	NotifyRateLimit  float64 // requests/second per IP on the notify trigger
	NotifyRateBurst  int
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Notifications     string
	PushSubscriptions string
}

// PushConfig holds the Web Push (VAPID) settings.
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subject         string // mailto: URI, bare e-mail address or https: URL identifying the sender
	TTLSeconds      int
	MaxConcurrency  int
	SendTimeout     time.Duration
	DispatchBudget  time.Duration // selection plus fan-out for one trigger call
}

// Enabled reports whether both VAPID keys are present. Missing keys is a
// supported mode, not an error: notifications are recorded but not pushed.
func (p PushConfig) Enabled() bool {
	return p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != ""
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Notifications:     getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			PushSubscriptions: getEnv("DYNAMO_TABLE_PUSH_SUBSCRIPTIONS", "push_subscriptions"),
		},
		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		Push: PushConfig{
			VAPIDPublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
			VAPIDPrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
			Subject:         getEnv("VAPID_SUBJECT", "mailto:notifications@example.com"),
			TTLSeconds:      getEnvInt("PUSH_TTL_SECONDS", 60*60*24),
			MaxConcurrency:  getEnvInt("PUSH_MAX_CONCURRENCY", 10),
			SendTimeout:     time.Duration(getEnvInt("PUSH_SEND_TIMEOUT_SECONDS", 10)) * time.Second,
			DispatchBudget:  time.Duration(getEnvInt("PUSH_DISPATCH_BUDGET_SECONDS", 20)) * time.Second,
		},
		DefaultRadiusKm:  getEnvFloat("DEFAULT_RADIUS_KM", 5),
		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),
		SNSDispatchTopic: getEnv("SNS_DISPATCH_TOPIC_ARN", ""),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		NotifyRateLimit:  getEnvFloat("NOTIFY_RATE_LIMIT", 20),
		NotifyRateBurst:  getEnvInt("NOTIFY_RATE_BURST", 40),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
