package wal

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// ArchivedFile is one segment file found in the archive directory.
type ArchivedFile struct {
	ID      SegmentID
	ModTime time.Time
	Path    string
}

// HistoryEntry is one parsed line of a timeline history file: the parent
// timeline and the location at which the child timeline took over.
type HistoryEntry struct {
	ParentTimeline uint32
	SwitchLogFile  uint32
	SwitchOffset   uint32
}

// SwitchSegment returns the identifier of the segment, on the parent
// timeline, in which the switch happened. Only the high byte of the offset
// selects a segment; the rest is a sub-segment byte offset.
func (h HistoryEntry) SwitchSegment() SegmentID {
	return SegmentID{
		Timeline: h.ParentTimeline,
		LogFile:  h.SwitchLogFile,
		Segment:  h.SwitchOffset >> 24,
	}
}

var historyLineRE = regexp.MustCompile(`^\s*(\d+)\t([0-9A-F]+)/([0-9A-F]+)\t`)

// Archive is one per-timeline archive directory of a pgBackRest repository.
// Suffix is the literal file suffix archived segments carry, typically ".gz".
type Archive struct {
	Dir    string
	Suffix string
}

// Scan walks the archive directory tree and returns every regular file whose
// basename is a 24-hex-digit segment identifier followed by the configured
// suffix. Non-matching files are skipped. The result is sorted ascending by
// modification time, ties broken by file name, which approximates archival
// order and is deliberately distinct from identifier order.
//
// A missing directory is a fatal precondition error, not a verdict: callers
// must validate the repository path before scanning.
func (a Archive) Scan() ([]ArchivedFile, error) {
	info, err := os.Stat(a.Dir)
	if err != nil {
		return nil, fmt.Errorf("archive directory %s: %w", a.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("archive directory %s: not a directory", a.Dir)
	}

	nameRE := regexp.MustCompile(`^[0-9A-F]{24}.*` + regexp.QuoteMeta(a.Suffix) + `$`)

	var files []ArchivedFile
	err = filepath.WalkDir(a.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		if !nameRE.MatchString(name) {
			return nil
		}
		id, err := ParseSegmentID(name)
		if err != nil {
			// The pattern gate guarantees a parseable prefix.
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		files = append(files, ArchivedFile{ID: id, ModTime: fi.ModTime(), Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", a.Dir, err)
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.Before(files[j].ModTime)
		}
		return filepath.Base(files[i].Path) < filepath.Base(files[j].Path)
	})

	log.Debug().Str("dir", a.Dir).Int("files", len(files)).Msg("scanned archive directory")
	return files, nil
}

// History parses the history file of the given timeline, named
// <timelineHex>.history at the archive root. An absent file yields an empty
// result. Malformed lines are skipped, not fatal; history files carry free
// text after the tab-separated fields and occasionally comments.
func (a Archive) History(timelineHex string) ([]HistoryEntry, error) {
	path := filepath.Join(a.Dir, timelineHex+".history")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	defer f.Close()

	var entries []HistoryEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m := historyLineRE.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		parent, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}
		logFile, err := strconv.ParseUint(m[2], 16, 32)
		if err != nil {
			continue
		}
		offset, err := strconv.ParseUint(m[3], 16, 32)
		if err != nil {
			continue
		}
		entries = append(entries, HistoryEntry{
			ParentTimeline: uint32(parent),
			SwitchLogFile:  uint32(logFile),
			SwitchOffset:   uint32(offset),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}

	log.Debug().Str("timeline", timelineHex).Int("entries", len(entries)).Msg("parsed timeline history")
	return entries, nil
}
