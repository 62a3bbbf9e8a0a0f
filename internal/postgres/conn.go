package postgres

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
)

// Config holds PostgreSQL connection parameters for the optional live-server
// cross-check. No Password field — passwords are read exclusively from the
// PGBRCHECK_PG_PASSWORD environment variable to prevent accidental secret
// leakage through config files or logs.
type Config struct {
	Host     string
	Port     int
	User     string
	Database string
	SSLMode  string
}

// DSN returns a libpq-style connection string with the supplied password.
// Callers should obtain the password via Password() rather than hardcoding it.
func (c Config) DSN(password string) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, password, c.Database, c.SSLMode,
	)
}

// Password reads the PostgreSQL password from the environment variable
// PGBRCHECK_PG_PASSWORD. It never returns a hardcoded fallback.
func Password() string {
	return os.Getenv("PGBRCHECK_PG_PASSWORD")
}

// Connect opens a new PostgreSQL connection. The password is read from the
// PGBRCHECK_PG_PASSWORD environment variable.
func Connect(ctx context.Context, cfg Config) (*pgx.Conn, error) {
	dsn := cfg.DSN(Password())
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return conn, nil
}

// WALSegmentSize reports the server's wal_segment_size in bytes. The archive
// was produced with whatever size the cluster was initialized with, so the
// live setting is authoritative over any configured value.
func WALSegmentSize(ctx context.Context, conn *pgx.Conn) (uint64, error) {
	var size uint64
	err := conn.QueryRow(ctx,
		"SELECT pg_size_bytes(current_setting('wal_segment_size'))").Scan(&size)
	if err != nil {
		return 0, fmt.Errorf("query wal_segment_size: %w", err)
	}
	return size, nil
}

// CurrentWALFile reports the name of the segment the server is currently
// writing, for comparison against the newest archived segment.
func CurrentWALFile(ctx context.Context, conn *pgx.Conn) (string, error) {
	var name string
	err := conn.QueryRow(ctx,
		"SELECT pg_walfile_name(pg_current_wal_lsn())").Scan(&name)
	if err != nil {
		return "", fmt.Errorf("query current wal file: %w", err)
	}
	return name, nil
}
