package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhagander/check-pgbackrest/internal/check"
	"github.com/mhagander/check-pgbackrest/internal/config"
	"github.com/mhagander/check-pgbackrest/internal/logging"
	"github.com/mhagander/check-pgbackrest/internal/output"
)

// fatalExitCode is used for fatal precondition failures (misconfigured probe,
// unreadable catalog). It sits outside the 0-3 plugin range so schedulers can
// tell a broken probe apart from any health verdict.
const fatalExitCode = 5

// NewRootCmd builds and returns the root cobra.Command. Each check command
// prints one rendered verdict on stdout and records the plugin exit code in
// *exitCode; Execute applies it after the command tree returns.
func NewRootCmd(exitCode *int) *cobra.Command {
	var (
		cfgFile  string
		format   output.Format
		verbose  bool
		stanza   string
		repoPath string
	)

	// cfg is a shared pointer populated in PersistentPreRunE before any
	// subcommand runs, ensuring environment variables and config file are loaded.
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:   "check_pgbackrest",
		Short: "Monitoring probe for pgBackRest backup repositories",
		Long: "check_pgbackrest inspects a pgBackRest repository and reports its health " +
			"in monitoring-plugin terms: WAL archive continuity across timeline switches, " +
			"and backup retention against count and age thresholds.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case output.FormatNagios, output.FormatJSON, output.FormatYAML:
			default:
				return fmt.Errorf(
					"invalid format %q: must be nagios, json, or yaml", format,
				)
			}
			logging.Setup(verbose)
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			*cfg = *loaded
			if cmd.Flags().Changed("stanza") {
				cfg.Stanza = stanza
			}
			if cmd.Flags().Changed("repo-path") {
				cfg.Repo.Path = repoPath
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("validate config: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path")
	root.PersistentFlags().StringVar((*string)(&format), "format", "nagios", "Output format: nagios|json|yaml")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging on stderr")
	root.PersistentFlags().StringVar(&stanza, "stanza", "", "Stanza name identifying the backup set")
	root.PersistentFlags().StringVar(&repoPath, "repo-path", "", "Base directory of the pgBackRest repository")

	root.AddCommand(newWALArchivesCmd(cfg, &format, exitCode))
	root.AddCommand(newRetentionCmd(cfg, &format, exitCode))

	return root
}

// emit renders the verdict on stdout and records its plugin exit code.
func emit(service string, v check.Verdict, format output.Format, exitCode *int) error {
	out, err := output.Render(service, v, format)
	if err != nil {
		return err
	}
	fmt.Println(out)
	*exitCode = v.Status.ExitCode()
	return nil
}

// Execute runs the root command. Fatal precondition failures exit with
// fatalExitCode; otherwise the process exits with the verdict's plugin code.
func Execute() {
	exitCode := 0
	if err := NewRootCmd(&exitCode).Execute(); err != nil {
		os.Exit(fatalExitCode)
	}
	os.Exit(exitCode)
}
