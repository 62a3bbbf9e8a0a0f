package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mhagander/check-pgbackrest/internal/check"
)

// Render serializes a verdict for the monitoring system. The nagios format is
// the conventional plugin layout: "SERVICE STATUS - summary" on the first
// line, detail lines after it. Exit-code mapping stays on check.Status; this
// package never terminates the process.
func Render(service string, v check.Verdict, format Format) (string, error) {
	switch format {
	case FormatNagios:
		return renderNagios(service, v), nil
	case FormatJSON:
		b, err := json.MarshalIndent(newReport(service, v), "", "  ")
		if err != nil {
			return "", fmt.Errorf("json marshal: %w", err)
		}
		return string(b), nil
	case FormatYAML:
		b, err := yaml.Marshal(newReport(service, v))
		if err != nil {
			return "", fmt.Errorf("yaml marshal: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported format: %q", format)
	}
}

func newReport(service string, v check.Verdict) Report {
	return Report{
		Service:   service,
		Status:    v.Status.String(),
		Summary:   v.Summary,
		Details:   v.Details,
		Timestamp: time.Now().UTC(),
	}
}

func renderNagios(service string, v check.Verdict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s - %s", service, v.Status, v.Summary)
	for _, d := range v.Details {
		b.WriteString("\n")
		b.WriteString(d)
	}
	return b.String()
}
