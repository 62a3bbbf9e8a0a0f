package wal_test

import (
	"strings"
	"testing"
	"time"

	"github.com/mhagander/check-pgbackrest/internal/check"
	"github.com/mhagander/check-pgbackrest/internal/wal"
)

// fakeHistory implements wal.HistoryReader for testing.
type fakeHistory struct {
	entries map[string][]wal.HistoryEntry
	err     error
}

func (f fakeHistory) History(timelineHex string) ([]wal.HistoryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[timelineHex], nil
}

var testNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

// archivedFiles builds a file list with mtimes ascending in argument order.
func archivedFiles(t *testing.T, names ...string) []wal.ArchivedFile {
	t.Helper()
	files := make([]wal.ArchivedFile, 0, len(names))
	for i, name := range names {
		id, err := wal.ParseSegmentID(name)
		if err != nil {
			t.Fatalf("bad test fixture %q: %v", name, err)
		}
		files = append(files, wal.ArchivedFile{
			ID:      id,
			ModTime: testNow.Add(time.Duration(i-len(names)) * time.Minute),
			Path:    name + ".gz",
		})
	}
	return files
}

func mustRange(t *testing.T, min, max string) wal.Range {
	t.Helper()
	minID, err := wal.ParseSegmentID(min)
	if err != nil {
		t.Fatalf("bad min %q: %v", min, err)
	}
	maxID, err := wal.ParseSegmentID(max)
	if err != nil {
		t.Fatalf("bad max %q: %v", max, err)
	}
	return wal.Range{
		Min:              minID,
		Max:              maxID,
		SegSizeBytes:     16 * 1024 * 1024,
		ServerVersionNum: 140000,
	}
}

func TestCheck_EmptyArchiveIsUnknown(t *testing.T) {
	r := mustRange(t, "000000010000000000000001", "000000010000000000000001")
	v, err := wal.Check(r, nil, fakeHistory{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != check.StatusUnknown {
		t.Errorf("status = %s, want UNKNOWN", v.Status)
	}
}

func TestCheck_ContiguousSequenceIsOK(t *testing.T) {
	files := archivedFiles(t,
		"000000010000000000000001",
		"000000010000000000000002",
		"000000010000000000000003",
		"000000010000000000000004",
		"000000010000000000000005",
	)
	r := mustRange(t, "000000010000000000000001", "000000010000000000000005")
	v, err := wal.Check(r, files, fakeHistory{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != check.StatusOK {
		t.Fatalf("status = %s (%s), want OK", v.Status, v.Summary)
	}
	if !strings.Contains(v.Summary, "5 WAL archived") {
		t.Errorf("summary %q should report the file count", v.Summary)
	}
}

func TestCheck_SingleFileIsOK(t *testing.T) {
	files := archivedFiles(t, "000000010000000000000007")
	r := mustRange(t, "000000010000000000000007", "000000010000000000000007")
	v, err := wal.Check(r, files, fakeHistory{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != check.StatusOK {
		t.Errorf("status = %s (%s), want OK", v.Status, v.Summary)
	}
}

func TestCheck_SequenceCrossesLogFileBoundary(t *testing.T) {
	files := archivedFiles(t,
		"0000000100000000000000FE",
		"0000000100000000000000FF",
		"000000010000000100000000",
	)
	r := mustRange(t, "0000000100000000000000FE", "000000010000000100000000")
	v, err := wal.Check(r, files, fakeHistory{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != check.StatusOK {
		t.Errorf("status = %s (%s), want OK", v.Status, v.Summary)
	}
}

func TestCheck_GapIsCriticalAndStopsAtFirstBreak(t *testing.T) {
	// 000000010000000000000003 was deleted from the archive.
	files := archivedFiles(t,
		"000000010000000000000001",
		"000000010000000000000002",
		"000000010000000000000004",
		"000000010000000000000005",
	)
	r := mustRange(t, "000000010000000000000001", "000000010000000000000005")
	v, err := wal.Check(r, files, fakeHistory{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != check.StatusCritical {
		t.Fatalf("status = %s, want CRITICAL", v.Status)
	}
	if !strings.Contains(v.Summary, "wrong sequence or missing file @ 000000010000000000000003") {
		t.Errorf("summary %q should name the first missing segment", v.Summary)
	}
	for _, d := range v.Details {
		if strings.Contains(d, "000000010000000000000004") || strings.Contains(d, "000000010000000000000005") {
			t.Errorf("detail %q references a file beyond the gap", d)
		}
	}
}

func TestCheck_MissingBoundariesAreCritical(t *testing.T) {
	files := archivedFiles(t,
		"000000010000000000000002",
		"000000010000000000000003",
	)
	r := mustRange(t, "000000010000000000000001", "000000010000000000000004")
	v, err := wal.Check(r, files, fakeHistory{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != check.StatusCritical {
		t.Fatalf("status = %s, want CRITICAL", v.Status)
	}
	joined := strings.Join(v.Details, "\n")
	if !strings.Contains(joined, "min WAL not found: 000000010000000000000001") {
		t.Errorf("details %q should name the missing min boundary", joined)
	}
	if !strings.Contains(joined, "max WAL not found: 000000010000000000000004") {
		t.Errorf("details %q should name the missing max boundary", joined)
	}
}

func TestCheck_MinNotOldestIsWarning(t *testing.T) {
	// All segments are present, but the min boundary's file was re-archived
	// and now carries the newest mtime.
	files := archivedFiles(t,
		"000000010000000000000002",
		"000000010000000000000003",
		"000000010000000000000001",
	)
	r := mustRange(t, "000000010000000000000001", "000000010000000000000003")
	v, err := wal.Check(r, files, fakeHistory{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != check.StatusWarning {
		t.Fatalf("status = %s (%s), want WARNING", v.Status, v.Summary)
	}
	if !strings.Contains(v.Summary, "min WAL 000000010000000000000001 is not the oldest archive") {
		t.Errorf("unexpected summary %q", v.Summary)
	}
}

func TestCheck_TimelineSwitchIsNotAGap(t *testing.T) {
	// Timeline 2 branched off in segment 3; the old timeline's copy of that
	// segment never completed, so it was never archived.
	files := archivedFiles(t,
		"000000010000000000000001",
		"000000010000000000000002",
		"000000020000000000000003",
		"000000020000000000000004",
	)
	histories := fakeHistory{entries: map[string][]wal.HistoryEntry{
		"00000002": {
			{ParentTimeline: 1, SwitchLogFile: 0, SwitchOffset: 0x03000000},
		},
	}}
	r := mustRange(t, "000000010000000000000001", "000000020000000000000004")
	v, err := wal.Check(r, files, histories, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != check.StatusOK {
		t.Errorf("status = %s (%s), want OK", v.Status, v.Summary)
	}
}

func TestCheck_TwoTimelineSwitches(t *testing.T) {
	files := archivedFiles(t,
		"000000010000000000000001",
		"000000020000000000000002",
		"000000020000000000000003",
		"000000030000000000000004",
	)
	histories := fakeHistory{entries: map[string][]wal.HistoryEntry{
		"00000003": {
			{ParentTimeline: 1, SwitchLogFile: 0, SwitchOffset: 0x02000000},
			{ParentTimeline: 2, SwitchLogFile: 0, SwitchOffset: 0x04000000},
		},
	}}
	r := mustRange(t, "000000010000000000000001", "000000030000000000000004")
	v, err := wal.Check(r, files, histories, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != check.StatusOK {
		t.Errorf("status = %s (%s), want OK", v.Status, v.Summary)
	}
}

func TestCheck_NonDivisibleSegmentSizeIsFatal(t *testing.T) {
	files := archivedFiles(t, "000000010000000000000001")
	r := mustRange(t, "000000010000000000000001", "000000010000000000000001")
	r.SegSizeBytes = 3 * 1024 * 1024
	if _, err := wal.Check(r, files, fakeHistory{}, testNow); err == nil {
		t.Fatal("expected configuration error for non-divisible segment size")
	}
}
