package pgbackrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultBinary is the pgBackRest executable looked up on PATH when no
// explicit binary is configured.
const DefaultBinary = "pgbackrest"

// ParseInfo decodes the JSON emitted by "pgbackrest info --output=json" and
// returns the report for the requested stanza. A stanza missing from the
// output is an error: the probe was pointed at the wrong repository.
func ParseInfo(data []byte, stanza string) (*Report, error) {
	var reports []Report
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("parse pgbackrest info output: %w", err)
	}
	for i := range reports {
		if reports[i].Name == stanza {
			return &reports[i], nil
		}
	}
	return nil, fmt.Errorf("stanza %q not found in pgbackrest info output", stanza)
}

// Info invokes the pgBackRest binary and returns the parsed report for the
// stanza. Invocation failures are fatal preconditions, never verdicts.
func Info(ctx context.Context, binary, stanza string) (*Report, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	args := []string{"info", "--output=json", "--stanza=" + stanza}
	log.Debug().Str("binary", binary).Strs("args", args).Msg("invoking pgbackrest")

	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("pgbackrest info: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("pgbackrest info: %w", err)
	}
	return ParseInfo(out, stanza)
}

// VersionNum converts a server version string as reported by the catalog
// ("9.6", "14") into the server's numeric version form (90600, 140000).
// Minor digits only matter before version 10, matching how the server
// numbered releases.
func VersionNum(version string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(version), ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil || major <= 0 {
		return 0, fmt.Errorf("invalid server version %q", version)
	}
	minor := 0
	if major < 10 && len(parts) > 1 {
		minor, err = strconv.Atoi(parts[1])
		if err != nil || minor < 0 {
			return 0, fmt.Errorf("invalid server version %q", version)
		}
	}
	return major*10000 + minor*100, nil
}
