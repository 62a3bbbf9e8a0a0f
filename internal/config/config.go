package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all probe-wide configuration. The PostgreSQL password is
// intentionally absent; it is read exclusively from the PGBRCHECK_PG_PASSWORD
// environment variable at connection time.
type Config struct {
	Stanza    string          `yaml:"stanza"    mapstructure:"stanza"`
	Repo      RepoConfig      `yaml:"repo"      mapstructure:"repo"`
	Backrest  BackrestConfig  `yaml:"backrest"  mapstructure:"backrest"`
	WAL       WALConfig       `yaml:"wal"       mapstructure:"wal"`
	Retention RetentionConfig `yaml:"retention" mapstructure:"retention"`
	PG        PGConfig        `yaml:"pg"        mapstructure:"pg"`
}

// RepoConfig locates the pgBackRest repository on disk.
type RepoConfig struct {
	Path   string `yaml:"path"   mapstructure:"path"`
	Suffix string `yaml:"suffix" mapstructure:"suffix"`
}

// BackrestConfig controls how the pgBackRest binary is invoked.
type BackrestConfig struct {
	Binary string `yaml:"binary" mapstructure:"binary"`
}

// WALConfig holds WAL arithmetic parameters.
type WALConfig struct {
	// SegSize is the WAL segment size as a human-readable size ("16MB").
	SegSize string `yaml:"segsize" mapstructure:"segsize"`
}

// RetentionConfig holds thresholds for the retention check.
type RetentionConfig struct {
	Full   int           `yaml:"full"    mapstructure:"full"`
	MaxAge time.Duration `yaml:"max_age" mapstructure:"max_age"`
}

// PGConfig holds optional PostgreSQL connection parameters for the
// live-server cross-check. An empty Host disables the cross-check.
type PGConfig struct {
	Host     string `yaml:"host"     mapstructure:"host"`
	Port     int    `yaml:"port"     mapstructure:"port"`
	User     string `yaml:"user"     mapstructure:"user"`
	Database string `yaml:"database" mapstructure:"database"`
	SSLMode  string `yaml:"sslmode"  mapstructure:"sslmode"`
}

// Load reads configuration from an optional file and environment variables.
// When cfgFile is empty, only defaults and environment variables are used.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set default values.
	v.SetDefault("repo.suffix", DefaultSuffix)
	v.SetDefault("backrest.binary", DefaultBackrestBinary)
	v.SetDefault("wal.segsize", DefaultWALSegSize)
	v.SetDefault("retention.full", DefaultRetentionFull)
	v.SetDefault("pg.port", DefaultPGPort)
	v.SetDefault("pg.sslmode", DefaultSSLMode)
	v.SetDefault("pg.user", DefaultPGUser)
	v.SetDefault("pg.database", DefaultPGDatabase)

	// Support environment variables with PGBRCHECK_ prefix
	// (e.g. PGBRCHECK_REPO_PATH → repo.path).
	v.SetEnvPrefix("PGBRCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit bindings ensure nested keys map correctly to environment variables.
	envBindings := map[string]string{
		"stanza":            "PGBRCHECK_STANZA",
		"repo.path":         "PGBRCHECK_REPO_PATH",
		"repo.suffix":       "PGBRCHECK_REPO_SUFFIX",
		"backrest.binary":   "PGBRCHECK_BACKREST_BINARY",
		"wal.segsize":       "PGBRCHECK_WAL_SEGSIZE",
		"retention.full":    "PGBRCHECK_RETENTION_FULL",
		"retention.max_age": "PGBRCHECK_RETENTION_MAX_AGE",
		"pg.host":           "PGBRCHECK_PG_HOST",
		"pg.port":           "PGBRCHECK_PG_PORT",
		"pg.user":           "PGBRCHECK_PG_USER",
		"pg.database":       "PGBRCHECK_PG_DATABASE",
		"pg.sslmode":        "PGBRCHECK_PG_SSLMODE",
	}
	for key, envVar := range envBindings {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", envVar, err)
		}
	}

	// Optional config file.
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration is semantically correct.
func (c *Config) Validate() error {
	if _, err := ParseSize(c.WAL.SegSize); err != nil {
		return fmt.Errorf("invalid wal.segsize %q: %w", c.WAL.SegSize, err)
	}
	if c.Retention.Full < 0 {
		return fmt.Errorf("invalid retention.full %d: must not be negative", c.Retention.Full)
	}
	if c.PG.Host != "" && (c.PG.Port <= 0 || c.PG.Port > 65535) {
		return fmt.Errorf("invalid pg.port %d: must be between 1 and 65535", c.PG.Port)
	}
	return nil
}

// ParseSize converts a human-readable size such as "16MB", "64kB" or a bare
// byte count into bytes. Only binary multiples are accepted, matching how the
// server sizes WAL segments.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	multiplier := uint64(1)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "B"):
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("size must be positive")
	}
	return n * multiplier, nil
}
