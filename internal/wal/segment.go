package wal

import (
	"fmt"
	"regexp"
	"strconv"
)

// walFileSizeBytes is the amount of WAL covered by one logical log file.
// The server numbers segments within 4 GiB units regardless of the
// configured segment size.
const walFileSizeBytes uint64 = 4 * 1024 * 1024 * 1024

var segmentNameRE = regexp.MustCompile(`^[0-9A-F]{24}$`)

// SegmentID identifies a single WAL segment: the timeline it belongs to, the
// logical log file and the segment number within that file. On disk it is the
// 24-character uppercase hexadecimal prefix of the archived file name, three
// zero-padded 8-digit fields.
type SegmentID struct {
	Timeline uint32
	LogFile  uint32
	Segment  uint32
}

// ParseSegmentID decodes the first 24 characters of an archived file name.
// Callers with arbitrary names are expected to have filtered through the
// scanner's file pattern first; the segment field is not range-checked here.
func ParseSegmentID(name string) (SegmentID, error) {
	if len(name) < 24 {
		return SegmentID{}, fmt.Errorf("malformed WAL segment name %q: too short", name)
	}
	prefix := name[:24]
	if !segmentNameRE.MatchString(prefix) {
		return SegmentID{}, fmt.Errorf("malformed WAL segment name %q", name)
	}
	tl, err := strconv.ParseUint(prefix[0:8], 16, 32)
	if err != nil {
		return SegmentID{}, fmt.Errorf("parse timeline of %q: %w", name, err)
	}
	logFile, err := strconv.ParseUint(prefix[8:16], 16, 32)
	if err != nil {
		return SegmentID{}, fmt.Errorf("parse log file of %q: %w", name, err)
	}
	seg, err := strconv.ParseUint(prefix[16:24], 16, 32)
	if err != nil {
		return SegmentID{}, fmt.Errorf("parse segment of %q: %w", name, err)
	}
	return SegmentID{Timeline: uint32(tl), LogFile: uint32(logFile), Segment: uint32(seg)}, nil
}

// String renders the identifier in its on-disk form.
func (id SegmentID) String() string {
	return fmt.Sprintf("%08X%08X%08X", id.Timeline, id.LogFile, id.Segment)
}

// TimelineHex renders only the timeline field, as used for history file names.
func (id SegmentID) TimelineHex() string {
	return fmt.Sprintf("%08X", id.Timeline)
}

// SegmentsPerWALFile returns how many segments of the given size make up one
// logical WAL file. Servers up to 9.2 never use the last segment of each file,
// so for serverVersionNum <= 90200 the count is one lower. A segment size that
// is zero or does not evenly divide the file size is a configuration error.
func SegmentsPerWALFile(segSizeBytes uint64, serverVersionNum int) (uint32, error) {
	if segSizeBytes == 0 || walFileSizeBytes%segSizeBytes != 0 {
		return 0, fmt.Errorf("wal segment size %d does not evenly divide %d", segSizeBytes, walFileSizeBytes)
	}
	n := walFileSizeBytes / segSizeBytes
	if serverVersionNum <= 90200 {
		n--
	}
	return uint32(n), nil
}

// Next returns the identifier that follows id in archival order: the segment
// number is incremented and wraps into the next log file when it reaches
// segmentsPerFile. The timeline never changes here; timeline switches are
// driven by history entries during validation.
func (id SegmentID) Next(segmentsPerFile uint32) SegmentID {
	id.Segment++
	if id.Segment >= segmentsPerFile {
		id.Segment = 0
		id.LogFile++
	}
	return id
}
