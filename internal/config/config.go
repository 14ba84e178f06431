package config

import (
	"fmt"
	"os"
	"route-itinerary-service/internal/domain"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	BackendURL   string
	BackendToken string
	CivilOffset  domain.CivilOffset

	DraftStore    string // memory|redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DraftTTL      time.Duration

	JournalDriver string // sqlite|postgres|memory
	SqlitePath    string
	DatabaseURL   string

	// Empty NATSURL disables commit events.
	NATSURL         string
	NATSSubject     string
	LogNATSSubjects bool

	// Empty MetricsAddr serves /metrics on the API listener.
	MetricsAddr string
	CORSOrigins []string
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          Get("PORT", "8080"),
		BackendURL:    strings.TrimSpace(os.Getenv("BACKEND_URL")),
		BackendToken:  strings.TrimSpace(os.Getenv("BACKEND_TOKEN")),
		RedisAddr:     Get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SqlitePath:    Get("SQLITE_PATH", "data/journal.db"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		NATSURL:       strings.TrimSpace(os.Getenv("NATS_URL")),
		NATSSubject:   Get("NATS_SUBJECT_PREFIX", "itinerary.commit"),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
	}

	offset, err := domain.ParseCivilOffset(Get("CIVIL_OFFSET", domain.DefaultCivilOffset.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid CIVIL_OFFSET: %w", err)
	}
	cfg.CivilOffset = offset

	cfg.DraftStore = strings.ToLower(Get("DRAFT_STORE", "memory"))
	switch cfg.DraftStore {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("invalid DRAFT_STORE: %q", cfg.DraftStore)
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid REDIS_DB: %q", v)
		}
		cfg.RedisDB = n
	}

	// Draft lifetime; an abandoned authoring session expires after this.
	if v := os.Getenv("DRAFT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid DRAFT_TTL: %q", v)
		}
		cfg.DraftTTL = d
	} else {
		cfg.DraftTTL = 12 * time.Hour
	}

	cfg.JournalDriver = strings.ToLower(Get("JOURNAL_DRIVER", "sqlite"))
	switch cfg.JournalDriver {
	case "sqlite", "memory":
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when JOURNAL_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("invalid JOURNAL_DRIVER: %q", cfg.JournalDriver)
	}

	if v := os.Getenv("LOG_NATS_SUBJECTS"); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			cfg.LogNATSSubjects = true
		}
	}

	for _, o := range strings.Split(Get("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg, nil
}

// Get returns the environment value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
