// Package config resolves server settings from flags, the environment and an
// optional .env file. Flags win over the environment, which wins over defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/abrezinsky/councilvote/internal/repository"
)

// Config holds everything needed to start the server
type Config struct {
	Port          int
	Driver        string
	DatabaseURL   string
	LogLevel      string
	LogFormat     string
	AdminUsername string
	AdminPassword string
	KafkaBrokers  []string
	KafkaTopic    string
	BaseURL       string
	UploadDir     string
	ElectionTitle string
	SchoolName    string
	NoKeyboard    bool
	OpenBrowser   bool
	ShowVersion   bool
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Port:          8080,
		Driver:        repository.DriverSQLite,
		DatabaseURL:   "councilvote.db",
		LogLevel:      "info",
		LogFormat:     "text",
		AdminUsername: "admin",
		KafkaTopic:    "councilvote.audit",
		UploadDir:     "uploads",
		ElectionTitle: "Student Council Election",
		SchoolName:    "School",
	}
}

// Load reads .env (if present), then the environment, then args
func Load(args []string, output io.Writer) (Config, error) {
	// a missing .env is normal
	_ = godotenv.Load()
	return Parse(args, os.Getenv, output)
}

// Parse builds a Config from args with getenv supplying fallbacks
func Parse(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	cfg := Default()
	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}

	brokers := strings.Join(cfg.KafkaBrokers, ",")

	fs := flag.NewFlagSet("councilvote", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.Driver, "driver", cfg.Driver, "Database driver: sqlite3 or pgx")
	fs.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "SQLite path or Postgres connection URL")
	fs.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "logformat", cfg.LogFormat, "Log format (text, json)")
	fs.StringVar(&cfg.AdminPassword, "adminpw", cfg.AdminPassword, "Initial admin password (auto-generated if not set)")
	fs.StringVar(&brokers, "kafka-brokers", brokers, "Comma-separated Kafka brokers for the audit stream")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for audit events")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Public base URL for QR codes (detected if not set)")
	fs.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "Directory for evidence photos")
	fs.BoolVar(&cfg.NoKeyboard, "nokeyboard", cfg.NoKeyboard, "Disable keyboard shortcuts")
	fs.BoolVar(&cfg.OpenBrowser, "open", cfg.OpenBrowser, "Open the admin page in a browser on start")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.KafkaBrokers = splitList(brokers)

	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail late at startup
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Driver {
	case repository.DriverSQLite, repository.DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver %q (want %s or %s)", c.Driver, repository.DriverSQLite, repository.DriverPostgres)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database path or URL is required")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}
	return nil
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			cfg.Driver = repository.DriverPostgres
		}
	}
	setString(&cfg.Driver, getenv("DATABASE_DRIVER"))
	setString(&cfg.LogLevel, getenv("LOG_LEVEL"))
	setString(&cfg.LogFormat, getenv("LOG_FORMAT"))
	setString(&cfg.AdminUsername, getenv("ADMIN_USERNAME"))
	setString(&cfg.AdminPassword, getenv("ADMIN_PASSWORD"))
	setString(&cfg.KafkaTopic, getenv("KAFKA_TOPIC"))
	setString(&cfg.BaseURL, getenv("BASE_URL"))
	setString(&cfg.UploadDir, getenv("UPLOAD_DIR"))
	setString(&cfg.ElectionTitle, getenv("ELECTION_TITLE"))
	setString(&cfg.SchoolName, getenv("SCHOOL_NAME"))
	if v := getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = splitList(v)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
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
