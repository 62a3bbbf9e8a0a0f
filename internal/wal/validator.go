package wal

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mhagander/check-pgbackrest/internal/check"
)

// Range describes the archive boundaries the backup catalog reports for one
// stanza, plus the parameters that drive segment arithmetic.
type Range struct {
	Min              SegmentID
	Max              SegmentID
	SegSizeBytes     uint64
	ServerVersionNum int
}

// HistoryReader loads the timeline history entries for one timeline,
// identified by its 8-hex-digit rendering. Archive implements it against the
// filesystem; tests substitute fakes.
type HistoryReader interface {
	History(timelineHex string) ([]HistoryEntry, error)
}

// Check verifies that the archived segment files form an unbroken sequence
// covering the catalog-reported range, crossing timeline switches recorded in
// the ending timeline's history file. files must be in the scanner's order
// (ascending mtime). The returned error carries fatal preconditions only
// (non-divisible segment size, unreadable history); archive health is always
// expressed through the Verdict.
func Check(r Range, files []ArchivedFile, histories HistoryReader, now time.Time) (check.Verdict, error) {
	if len(files) == 0 {
		return check.Unknown("no archived WAL found"), nil
	}

	segmentsPerFile, err := SegmentsPerWALFile(r.SegSizeBytes, r.ServerVersionNum)
	if err != nil {
		return check.Verdict{}, err
	}

	present := make(map[SegmentID]struct{}, len(files))
	for _, f := range files {
		present[f.ID] = struct{}{}
	}

	// The catalog's declared boundaries must physically exist as files.
	var criticals []string
	if _, ok := present[r.Min]; !ok {
		criticals = append(criticals, fmt.Sprintf("min WAL not found: %s", r.Min))
	}
	if _, ok := present[r.Max]; !ok {
		criticals = append(criticals, fmt.Sprintf("max WAL not found: %s", r.Max))
	}
	if len(criticals) > 0 {
		return check.Critical(criticals[0], criticals...), nil
	}

	// Files outside the reported range suggest stale or orphaned archives.
	// Worth surfacing, but they do not block the sequence check.
	var warnings []string
	if files[0].ID != r.Min {
		warnings = append(warnings, fmt.Sprintf("min WAL %s is not the oldest archive", r.Min))
	}
	if files[len(files)-1].ID != r.Max {
		warnings = append(warnings, fmt.Sprintf("max WAL %s is not the latest archive", r.Max))
	}

	branchPoints := make(map[SegmentID]struct{})
	if r.Min.Timeline != r.Max.Timeline {
		entries, err := histories.History(r.Max.TimelineHex())
		if err != nil {
			return check.Verdict{}, err
		}
		for _, e := range entries {
			branchPoints[e.SwitchSegment()] = struct{}{}
		}
		log.Debug().Int("branch_points", len(branchPoints)).Msg("timeline switch inside check window")
	}

	// Walk the expected sequence from the min boundary, consuming one archived
	// file per expected segment. Hitting a branch point moves the cursor to the
	// next timeline at the same segment position without consuming a file, so
	// the walk continues where the server restarted numbering. The first gap
	// stops the walk; files past it are never examined.
	cur := r.Min
	for consumed := 0; consumed < len(files); {
		if _, ok := branchPoints[cur]; ok {
			delete(branchPoints, cur)
			cur.Timeline++
			continue
		}
		if _, ok := present[cur]; !ok {
			criticals = append(criticals, fmt.Sprintf("wrong sequence or missing file @ %s", cur))
			break
		}
		consumed++
		cur = cur.Next(segmentsPerFile)
	}

	latest := files[len(files)-1]
	age := now.Sub(latest.ModTime).Truncate(time.Second)
	stats := []string{
		fmt.Sprintf("num_archives=%d", len(files)),
		fmt.Sprintf("latest_archive_age=%s", age),
	}

	switch {
	case len(criticals) > 0:
		return check.Verdict{
			Status:  check.StatusCritical,
			Summary: criticals[0],
			Details: append(criticals, warnings...),
		}, nil
	case len(warnings) > 0:
		return check.Verdict{
			Status:  check.StatusWarning,
			Summary: warnings[0],
			Details: append(warnings, stats...),
		}, nil
	}
	return check.Verdict{
		Status:  check.StatusOK,
		Summary: fmt.Sprintf("%d WAL archived, latest archived %s ago", len(files), age),
		Details: stats,
	}, nil
}
