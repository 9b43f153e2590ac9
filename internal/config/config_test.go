package config

import (
	"io"
	"strings"
	"testing"

	"github.com/abrezinsky/councilvote/internal/repository"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil, env(nil), io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8080 || cfg.Driver != repository.DriverSQLite || cfg.DatabaseURL != "councilvote.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("expected no brokers by default, got %v", cfg.KafkaBrokers)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Addr())
	}
}

func TestParse_EnvFallbacks(t *testing.T) {
	cfg, err := Parse(nil, env(map[string]string{
		"PORT":           "9090",
		"DATABASE_URL":   "postgres://u:p@localhost/council",
		"LOG_LEVEL":      "debug",
		"LOG_FORMAT":     "json",
		"ADMIN_PASSWORD": "pw",
		"KAFKA_BROKERS":  "k1:9092, k2:9092,",
		"UPLOAD_DIR":     "/srv/evidence",
	}), io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.Driver != repository.DriverPostgres {
		t.Errorf("expected postgres driver inferred from URL, got %s", cfg.Driver)
	}
	if cfg.LogFormat != "json" || cfg.LogLevel != "debug" || cfg.AdminPassword != "pw" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.UploadDir != "/srv/evidence" {
		t.Errorf("unexpected upload dir %s", cfg.UploadDir)
	}
}

func TestParse_FlagsOverrideEnv(t *testing.T) {
	cfg, err := Parse(
		[]string{"-port", "7000", "-kafka-brokers", "flag:9092", "-open"},
		env(map[string]string{"PORT": "9090", "KAFKA_BROKERS": "env:9092"}),
		io.Discard,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("expected flag port 7000, got %d", cfg.Port)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "flag:9092" {
		t.Errorf("expected flag brokers, got %v", cfg.KafkaBrokers)
	}
	if !cfg.OpenBrowser {
		t.Error("expected -open to be set")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"bad env port", nil, map[string]string{"PORT": "eighty"}, "PORT"},
		{"port out of range", []string{"-port", "70000"}, nil, "invalid port"},
		{"unknown driver", []string{"-driver", "mysql"}, nil, "unknown database driver"},
		{"unknown log format", []string{"-logformat", "xml"}, nil, "unknown log format"},
		{"empty db", []string{"-db", ""}, nil, "database path"},
		{"brokers without topic", []string{"-kafka-brokers", "k:9092", "-kafka-topic", ""}, nil, "kafka topic"},
		{"unknown flag", []string{"-nope"}, nil, "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, env(tt.env), io.Discard)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}
