package pgbackrest

// Report is the parsed "pgbackrest info --output=json" entry for one stanza.
type Report struct {
	Name    string    `json:"name"`
	Status  Status    `json:"status"`
	Archive []Archive `json:"archive"`
	Backup  []Backup  `json:"backup"`
	DB      []DB      `json:"db"`
}

// Status is the stanza-level health reported by pgBackRest. Code 0 means the
// catalog itself is healthy; any other code carries an explanatory message.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Archive describes one per-timeline archive set: the subdirectory name under
// the repository and the min/max archived segment identifiers, as 24-character
// hexadecimal strings.
type Archive struct {
	ID  string `json:"id"`
	Min string `json:"min"`
	Max string `json:"max"`
}

// Backup is one backup in the stanza's inventory.
type Backup struct {
	Label     string          `json:"label"`
	Type      string          `json:"type"`
	Timestamp BackupTimestamp `json:"timestamp"`
}

// BackupTimestamp holds the backup's start/stop times as unix seconds.
type BackupTimestamp struct {
	Start int64 `json:"start"`
	Stop  int64 `json:"stop"`
}

// DB identifies the database cluster the stanza backs up.
type DB struct {
	ID       int    `json:"id"`
	SystemID uint64 `json:"system-id"`
	Version  string `json:"version"`
}
