package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all settings read from the environment
type Config struct {
	AppName  string
	Port     string
	LogLevel string

	UseMemoryStore bool
	DB             DBConfig

	SendGridAPIKey  string
	SendGridSandbox bool
	EmailFrom       string
	EmailFromName   string
	StaffEmail      string

	ServiceableCodes []string
	OTPTTL           time.Duration

	AdminEmail    string
	AdminPassword string
	JWTSecret     string
	JWTTTL        time.Duration

	ReminderDailySpec  string
	ReminderHourlySpec string

	NotifyTimeout time.Duration
	StoreTimeout  time.Duration
}

// DBConfig holds the PostgreSQL connection parts
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the gorm/pgx connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

const defaultServiceableCodes = "560001,560002,560003,400001,400002"

// LoadDotEnv loads .env files if present. Missing files are not an error.
func LoadDotEnv(files ...string) bool {
	if len(files) == 0 {
		files = []string{".env"}
	}
	loaded := false
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			loaded = true
		}
	}
	return loaded
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		AppName:  getEnvOrDefault("APP_NAME", "servicebook-backend"),
		Port:     getEnvOrDefault("PORT", "8080"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		UseMemoryStore: getBool("USE_MEMORY_STORE", false, &errs),
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnvOrDefault("DB_NAME", "servicebook"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},

		SendGridAPIKey:  strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
		SendGridSandbox: getBool("SENDGRID_SANDBOX", false, &errs),
		EmailFrom:       getEnvOrDefault("EMAIL_FROM", "noreply@example.com"),
		EmailFromName:   getEnvOrDefault("EMAIL_FROM_NAME", "Home Services"),
		StaffEmail:      strings.TrimSpace(os.Getenv("STAFF_EMAIL")),

		ServiceableCodes: splitList(getEnvOrDefault("SERVICEABLE_CODES", defaultServiceableCodes)),
		OTPTTL:           getDuration("OTP_TTL", 5*time.Minute, &errs),

		AdminEmail:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword: os.Getenv("ADMIN_PASS"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        getDuration("JWT_TTL", 8*time.Hour, &errs),

		ReminderDailySpec:  getEnvOrDefault("REMINDER_DAILY_SPEC", "0 7 * * *"),
		ReminderHourlySpec: lookupOrDefault("REMINDER_HOURLY_SPEC", "0 * * * *"),

		NotifyTimeout: getDuration("NOTIFY_TIMEOUT", 15*time.Second, &errs),
		StoreTimeout:  getDuration("STORE_TIMEOUT", 10*time.Second, &errs),
	}

	if cfg.StaffLoginEnabled() && cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when ADMIN_EMAIL and ADMIN_PASS are set"))
	}
	if len(cfg.ServiceableCodes) == 0 {
		errs = append(errs, errors.New("SERVICEABLE_CODES must list at least one code"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// StaffLoginEnabled reports whether a staff account is configured.
func (c *Config) StaffLoginEnabled() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// lookupOrDefault keeps an explicitly empty value, so it can switch a feature off.
func lookupOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func getBool(key string, def bool, errs *[]error) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	if d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s must be positive", key))
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
