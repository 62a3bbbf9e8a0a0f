package postgres_test

import (
	"strings"
	"testing"

	"github.com/mhagander/check-pgbackrest/internal/postgres"
)

func TestConfig_DSN(t *testing.T) {
	cfg := postgres.Config{
		Host:     "db.example.com",
		Port:     5433,
		User:     "monitor",
		Database: "postgres",
		SSLMode:  "require",
	}
	dsn := cfg.DSN("secret")
	for _, want := range []string{"db.example.com", "5433", "monitor", "require", "secret"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN %q should contain %q", dsn, want)
		}
	}
}

func TestConfig_DSN_EmptyPassword(t *testing.T) {
	cfg := postgres.Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Database: "postgres",
		SSLMode:  "prefer",
	}
	// An empty password is valid (trust auth); DSN must still be non-empty.
	if cfg.DSN("") == "" {
		t.Error("DSN with empty password must still be non-empty")
	}
}

func TestPassword_FromEnv(t *testing.T) {
	t.Setenv("PGBRCHECK_PG_PASSWORD", "s3cr3t")
	if got := postgres.Password(); got != "s3cr3t" {
		t.Errorf("Password() = %q, want s3cr3t", got)
	}
}
