package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Kafka      KafkaConfig
	Notify     NotificationConfig
	Engine     EngineConfig
	Escalation EscalationConfig
	RateLimit  RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	GeoKeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
	Service     string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	BootstrapAdminEmail   string
	BootstrapAdminPass    string
}

// KafkaConfig configures the complaint event stream. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// EngineConfig tunes scoring, SLA and duplicate detection.
type EngineConfig struct {
	PriorityBanding        string
	SLAFloorHours          int
	SLACeilingHours        int
	DuplicateRadiusMeters  float64
	DuplicateWindowDays    int
	DuplicateMaxCandidates int
}

// EscalationConfig drives the escalation monitor.
type EscalationConfig struct {
	Enabled         bool
	IntervalMinutes int
	GraceMinutes    int
	MaxOpenDays     int
	BatchSize       int
	OnRead          bool
}

// RateLimitConfig caps complaint submissions per citizen per day. Zero disables.
type RateLimitConfig struct {
	ComplaintsPerDay int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	radius, err := strconv.ParseFloat(getEnv("DUPLICATE_RADIUS_METERS", "150"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DUPLICATE_RADIUS_METERS: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "complaint-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:         os.Getenv("REDIS_ADDR"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           redisDB,
			GeoKeyPrefix: getEnv("REDIS_GEO_KEY_PREFIX", "complaints:geo"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnv("APP_ENV", "development") == "development",
			Service:     getEnv("APP_NAME", "complaint-service"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			BootstrapAdminEmail:   os.Getenv("AUTH_BOOTSTRAP_ADMIN_EMAIL"),
			BootstrapAdminPass:    os.Getenv("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),
		},
		Kafka: KafkaConfig{
			Brokers: ParseList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC_COMPLAINTS", "complaint-events"),
		},
		Notify: NotificationConfig{
			EmailFrom:  os.Getenv("NOTIFY_EMAIL_FROM"),
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		Engine: EngineConfig{
			PriorityBanding:        getEnv("PRIORITY_BANDING", "four"),
			SLAFloorHours:          getEnvAsInt("SLA_FLOOR_HOURS", 4),
			SLACeilingHours:        getEnvAsInt("SLA_CEILING_HOURS", 120),
			DuplicateRadiusMeters:  radius,
			DuplicateWindowDays:    getEnvAsInt("DUPLICATE_WINDOW_DAYS", 30),
			DuplicateMaxCandidates: getEnvAsInt("DUPLICATE_MAX_CANDIDATES", 5),
		},
		Escalation: EscalationConfig{
			Enabled:         getEnvAsBool("ESCALATION_ENABLED", true),
			IntervalMinutes: getEnvAsInt("ESCALATION_INTERVAL_MINUTES", 15),
			GraceMinutes:    getEnvAsInt("ESCALATION_GRACE_MINUTES", 0),
			MaxOpenDays:     getEnvAsInt("ESCALATION_MAX_OPEN_DAYS", 3),
			BatchSize:       getEnvAsInt("ESCALATION_BATCH_SIZE", 200),
			OnRead:          getEnvAsBool("ESCALATION_ON_READ", true),
		},
		RateLimit: RateLimitConfig{
			ComplaintsPerDay: getEnvAsInt("RATE_LIMIT_COMPLAINTS_PER_DAY", 20),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Interval returns the monitor tick period.
func (e EscalationConfig) Interval() time.Duration {
	if e.IntervalMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(e.IntervalMinutes) * time.Minute
}

// Grace is how long past the SLA deadline before escalation.
func (e EscalationConfig) Grace() time.Duration {
	if e.GraceMinutes < 0 {
		return 0
	}
	return time.Duration(e.GraceMinutes) * time.Minute
}

// MaxOpenAge is the age after which an open complaint escalates regardless of SLA.
func (e EscalationConfig) MaxOpenAge() time.Duration {
	if e.MaxOpenDays <= 0 {
		return 0
	}
	return time.Duration(e.MaxOpenDays) * 24 * time.Hour
}

// DuplicateWindow returns the recency window for duplicate lookups.
func (e EngineConfig) DuplicateWindow() time.Duration {
	return time.Duration(e.DuplicateWindowDays) * 24 * time.Hour
}

// ParseList splits "a, b,c" into trimmed non-empty items.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
