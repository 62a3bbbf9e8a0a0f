// Package retention evaluates the backup inventory against a retention
// policy: how many full backups must exist and how recent the newest backup
// of any type must be.
package retention

import (
	"fmt"
	"time"

	"github.com/mhagander/check-pgbackrest/internal/check"
	"github.com/mhagander/check-pgbackrest/internal/pgbackrest"
)

// Policy holds the retention thresholds.
type Policy struct {
	// MinFull is the minimum number of full backups expected in the catalog.
	MinFull int
	// MaxAge is how old the newest backup may be. Zero disables the age clause.
	MaxAge time.Duration
}

// Check evaluates the stanza's backup inventory against the policy.
func Check(p Policy, backups []pgbackrest.Backup, now time.Time) check.Verdict {
	if len(backups) == 0 {
		return check.Critical("no backups found")
	}

	full := 0
	var newest time.Time
	var newestLabel string
	for _, b := range backups {
		if b.Type == "full" {
			full++
		}
		stop := time.Unix(b.Timestamp.Stop, 0)
		if stop.After(newest) {
			newest = stop
			newestLabel = b.Label
		}
	}
	age := now.Sub(newest).Truncate(time.Second)

	var criticals []string
	if full < p.MinFull {
		criticals = append(criticals, fmt.Sprintf("only %d full backup(s), %d required", full, p.MinFull))
	}
	if p.MaxAge > 0 && age > p.MaxAge {
		criticals = append(criticals, fmt.Sprintf("newest backup %s is %s old, threshold %s", newestLabel, age, p.MaxAge))
	}

	stats := []string{
		fmt.Sprintf("num_backups=%d", len(backups)),
		fmt.Sprintf("num_full_backups=%d", full),
		fmt.Sprintf("latest_backup_age=%s", age),
	}

	if len(criticals) > 0 {
		return check.Verdict{
			Status:  check.StatusCritical,
			Summary: criticals[0],
			Details: append(criticals, stats...),
		}
	}
	return check.Verdict{
		Status:  check.StatusOK,
		Summary: fmt.Sprintf("%d full backup(s), newest backup %s ago", full, age),
		Details: stats,
	}
}
