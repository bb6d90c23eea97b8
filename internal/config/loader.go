package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration for the conference service.
type Config struct {
	HTTPPort   int
	SQLiteDSN  string
	UploadRoot string
	BaseURL    string

	SessionTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	AllowedOrigins []string
}

// Load parses configuration from the process environment. A .env file in the
// working directory is merged in first when present; real environment
// variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:conference.db?_foreign_keys=on",
		UploadRoot: "uploads",
		BaseURL:    "http://localhost:3000",
		SessionTTL: 24 * time.Hour,
		SMTPPort:   587,
		MailFrom:   "no-reply@conference.local",
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CONFERENCE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CONFERENCE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CONFERENCE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if root := strings.TrimSpace(os.Getenv("CONFERENCE_UPLOAD_ROOT")); root != "" {
		cfg.UploadRoot = root
	}

	if base := strings.TrimSpace(os.Getenv("CONFERENCE_BASE_URL")); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CONFERENCE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CONFERENCE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	cfg.SMTPHost = strings.TrimSpace(os.Getenv("CONFERENCE_SMTP_HOST"))
	if portValue := strings.TrimSpace(os.Getenv("CONFERENCE_SMTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CONFERENCE_SMTP_PORT")
		} else {
			cfg.SMTPPort = port
		}
	}
	cfg.SMTPUsername = strings.TrimSpace(os.Getenv("CONFERENCE_SMTP_USERNAME"))
	cfg.SMTPPassword = os.Getenv("CONFERENCE_SMTP_PASSWORD")
	if from := strings.TrimSpace(os.Getenv("CONFERENCE_MAIL_FROM")); from != "" {
		cfg.MailFrom = from
	}

	if origins := strings.TrimSpace(os.Getenv("CONFERENCE_ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
