package check

// Status classifies the outcome of a single probe run using the four
// monitoring plugin states.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
	StatusUnknown
)

// String returns the conventional uppercase plugin state name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode maps the status to the monitoring-system exit code.
func (s Status) ExitCode() int {
	switch s {
	case StatusOK:
		return 0
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	default:
		return 3
	}
}

// Verdict is the result of one check: a status, a one-line summary and
// optional long-form diagnostic lines. Producers guarantee that a CRITICAL
// condition always wins over WARNING, and that WARNING is only reported when
// no CRITICAL condition exists.
type Verdict struct {
	Status  Status
	Summary string
	Details []string
}

// Critical builds a CRITICAL verdict with the given summary.
func Critical(summary string, details ...string) Verdict {
	return Verdict{Status: StatusCritical, Summary: summary, Details: details}
}

// Unknown builds an UNKNOWN verdict with the given summary.
func Unknown(summary string) Verdict {
	return Verdict{Status: StatusUnknown, Summary: summary}
}
