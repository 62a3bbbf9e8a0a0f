package output_test

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mhagander/check-pgbackrest/internal/check"
	"github.com/mhagander/check-pgbackrest/internal/output"
)

func sampleVerdict() check.Verdict {
	return check.Verdict{
		Status:  check.StatusWarning,
		Summary: "min WAL 000000010000000000000001 is not the oldest archive",
		Details: []string{"num_archives=5", "latest_archive_age=3m0s"},
	}
}

func TestRender_Nagios(t *testing.T) {
	out, err := output.Render("WAL_ARCHIVES", sampleVerdict(), output.FormatNagios)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(out, "\n")
	if lines[0] != "WAL_ARCHIVES WARNING - min WAL 000000010000000000000001 is not the oldest archive" {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[1] != "num_archives=5" || lines[2] != "latest_archive_age=3m0s" {
		t.Errorf("unexpected detail lines %q", lines[1:])
	}
}

func TestRender_JSON(t *testing.T) {
	out, err := output.Render("WAL_ARCHIVES", sampleVerdict(), output.FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if report.Service != "WAL_ARCHIVES" || report.Status != "WARNING" {
		t.Errorf("unexpected envelope %+v", report)
	}
	if len(report.Details) != 2 {
		t.Errorf("got %d details, want 2", len(report.Details))
	}
	if report.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestRender_YAML(t *testing.T) {
	out, err := output.Render("RETENTION", sampleVerdict(), output.FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var report output.Report
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if report.Service != "RETENTION" || report.Status != "WARNING" {
		t.Errorf("unexpected envelope %+v", report)
	}
}

func TestRender_UnsupportedFormat(t *testing.T) {
	if _, err := output.Render("WAL_ARCHIVES", sampleVerdict(), output.Format("xml")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
