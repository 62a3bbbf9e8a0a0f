// Package logging configures the global zerolog logger. All diagnostic output
// goes to stderr: stdout is reserved for the rendered verdict the monitoring
// system consumes.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global logger. Verbose enables debug-level output;
// the default level only surfaces warnings from the probe's own plumbing.
func Setup(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}
