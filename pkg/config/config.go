package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	StoreDriver     string
	StoreTimeout    time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration

	FirebaseProject            string
	FirebaseServiceAccountPath string
	FirebaseServiceAccountJSON string
	StorageBucket              string

	MongoURI      string
	MongoDatabase string

	RedisURL    string
	NotifyQueue string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AdminEmail   string

	AnonymousReporting bool
	AnonymousUser      AnonymousUser

	StrictTransitions bool
	DepartmentRouting bool
	UpvoteRatePerMin  int

	TelegramBotToken string
	OTLPEndpoint     string
}

// AnonymousUser is the profile complaints are attributed to when no identity is present.
type AnonymousUser struct {
	Name      string
	Email     string
	Phone     string
	CitizenID string
	Location  string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),

		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", "firestore")),
		StoreTimeout:    getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		BreakerFailures: getEnvAsInt("BREAKER_FAILURES", 5),
		BreakerCooldown: getEnvAsDuration("BREAKER_COOLDOWN", 30*time.Second),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		StorageBucket:              getEnv("STORAGE_BUCKET", ""),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "civicsolve"),

		RedisURL:    getEnv("REDIS_URL", ""),
		NotifyQueue: getEnv("NOTIFY_QUEUE", "civicsolve:notifications"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@civicsolve.local"),
		AdminEmail:   getEnv("ADMIN_EMAIL", ""),

		AnonymousReporting: getEnvAsBool("ANONYMOUS_REPORTING", true),
		AnonymousUser: AnonymousUser{
			Name:      getEnv("ANONYMOUS_USER_NAME", "Anonymous Citizen"),
			Email:     getEnv("ANONYMOUS_USER_EMAIL", "anonymous@civicsolve.local"),
			Phone:     getEnv("ANONYMOUS_USER_PHONE", "0000000000"),
			CitizenID: getEnv("ANONYMOUS_USER_CITIZEN_ID", "ANONYMOUS"),
			Location:  getEnv("ANONYMOUS_USER_LOCATION", "Unknown"),
		},

		StrictTransitions: getEnvAsBool("LIFECYCLE_STRICT_TRANSITIONS", true),
		DepartmentRouting: getEnvAsBool("DEPARTMENT_ROUTING", true),
		UpvoteRatePerMin:  getEnvAsInt("UPVOTE_RATE_PER_MIN", 30),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
