package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mhagander/check-pgbackrest/internal/check"
	"github.com/mhagander/check-pgbackrest/internal/config"
	"github.com/mhagander/check-pgbackrest/internal/output"
	"github.com/mhagander/check-pgbackrest/internal/pgbackrest"
	"github.com/mhagander/check-pgbackrest/internal/postgres"
	"github.com/mhagander/check-pgbackrest/internal/wal"
)

func newWALArchivesCmd(cfg *config.Config, format *output.Format, exitCode *int) *cobra.Command {
	return &cobra.Command{
		Use:   "wal-archives",
		Short: "Check that archived WAL segments form an unbroken sequence",
		Long: "wal-archives compares the catalog-reported min/max archived segments " +
			"against the segment files actually present in the repository, walking the " +
			"expected sequence across timeline switches recorded in history files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := runWALArchives(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return emit("WAL_ARCHIVES", v, *format, exitCode)
		},
	}
}

func runWALArchives(ctx context.Context, cfg *config.Config) (check.Verdict, error) {
	if cfg.Stanza == "" {
		return check.Verdict{}, errors.New("stanza is required")
	}
	if cfg.Repo.Path == "" {
		return check.Verdict{}, errors.New("repo-path is required")
	}
	st, err := os.Stat(cfg.Repo.Path)
	if err != nil {
		return check.Verdict{}, fmt.Errorf("repo-path %s: %w", cfg.Repo.Path, err)
	}
	if !st.IsDir() {
		return check.Verdict{}, fmt.Errorf("repo-path %s: not a directory", cfg.Repo.Path)
	}

	report, err := pgbackrest.Info(ctx, cfg.Backrest.Binary, cfg.Stanza)
	if err != nil {
		return check.Verdict{}, err
	}
	if report.Status.Code != 0 {
		return check.Critical(report.Status.Message), nil
	}
	if len(report.Archive) == 0 || len(report.DB) == 0 {
		return check.Verdict{}, errors.New("catalog report carries no archive information")
	}

	arch := report.Archive[0]
	if arch.Min == "" || arch.Max == "" {
		// Healthy catalog, nothing archived yet.
		return check.Unknown("no archived WAL found"), nil
	}
	minID, err := wal.ParseSegmentID(arch.Min)
	if err != nil {
		return check.Verdict{}, fmt.Errorf("catalog min: %w", err)
	}
	maxID, err := wal.ParseSegmentID(arch.Max)
	if err != nil {
		return check.Verdict{}, fmt.Errorf("catalog max: %w", err)
	}
	versionNum, err := pgbackrest.VersionNum(report.DB[0].Version)
	if err != nil {
		return check.Verdict{}, err
	}
	segSize, err := resolveSegmentSize(ctx, cfg)
	if err != nil {
		return check.Verdict{}, err
	}

	archive := wal.Archive{
		Dir:    filepath.Join(cfg.Repo.Path, cfg.Stanza, arch.ID),
		Suffix: cfg.Repo.Suffix,
	}
	files, err := archive.Scan()
	if err != nil {
		return check.Verdict{}, err
	}

	r := wal.Range{
		Min:              minID,
		Max:              maxID,
		SegSizeBytes:     segSize,
		ServerVersionNum: versionNum,
	}
	return wal.Check(r, files, archive, time.Now())
}

// resolveSegmentSize returns the WAL segment size to use for the sequence
// arithmetic. With pg.host configured the live server's wal_segment_size wins
// over the configured value, since the archive was produced with whatever the
// cluster was initialized with.
func resolveSegmentSize(ctx context.Context, cfg *config.Config) (uint64, error) {
	configured, err := config.ParseSize(cfg.WAL.SegSize)
	if err != nil {
		return 0, fmt.Errorf("invalid wal.segsize %q: %w", cfg.WAL.SegSize, err)
	}
	if cfg.PG.Host == "" {
		return configured, nil
	}

	conn, err := postgres.Connect(ctx, postgres.Config{
		Host:     cfg.PG.Host,
		Port:     cfg.PG.Port,
		User:     cfg.PG.User,
		Database: cfg.PG.Database,
		SSLMode:  cfg.PG.SSLMode,
	})
	if err != nil {
		return 0, err
	}
	defer conn.Close(ctx)

	size, err := postgres.WALSegmentSize(ctx, conn)
	if err != nil {
		return 0, err
	}
	if size != configured {
		log.Debug().
			Uint64("configured", configured).
			Uint64("server", size).
			Msg("server wal_segment_size overrides configured value")
	}
	if name, err := postgres.CurrentWALFile(ctx, conn); err == nil {
		log.Debug().Str("current_wal", name).Msg("server write position")
	}
	return size, nil
}
