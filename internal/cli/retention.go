package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhagander/check-pgbackrest/internal/check"
	"github.com/mhagander/check-pgbackrest/internal/config"
	"github.com/mhagander/check-pgbackrest/internal/output"
	"github.com/mhagander/check-pgbackrest/internal/pgbackrest"
	"github.com/mhagander/check-pgbackrest/internal/retention"
)

func newRetentionCmd(cfg *config.Config, format *output.Format, exitCode *int) *cobra.Command {
	var (
		minFull int
		maxAge  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "retention",
		Short: "Check the backup inventory against count and age thresholds",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("retention-full") {
				cfg.Retention.Full = minFull
			}
			if cmd.Flags().Changed("retention-age") {
				cfg.Retention.MaxAge = maxAge
			}
			v, err := runRetention(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return emit("RETENTION", v, *format, exitCode)
		},
	}

	cmd.Flags().IntVar(&minFull, "retention-full", config.DefaultRetentionFull, "Minimum number of full backups")
	cmd.Flags().DurationVar(&maxAge, "retention-age", 0, "Maximum age of the newest backup (0 disables)")

	return cmd
}

func runRetention(ctx context.Context, cfg *config.Config) (check.Verdict, error) {
	if cfg.Stanza == "" {
		return check.Verdict{}, errors.New("stanza is required")
	}

	report, err := pgbackrest.Info(ctx, cfg.Backrest.Binary, cfg.Stanza)
	if err != nil {
		return check.Verdict{}, err
	}
	if report.Status.Code != 0 {
		return check.Critical(report.Status.Message), nil
	}

	policy := retention.Policy{
		MinFull: cfg.Retention.Full,
		MaxAge:  cfg.Retention.MaxAge,
	}
	return retention.Check(policy, report.Backup, time.Now()), nil
}
