package output

import "time"

// Format represents the output serialization format.
type Format string

const (
	FormatNagios Format = "nagios"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

// Report is the envelope serialized for structured formats. The nagios
// format flattens the same fields into plugin text output.
type Report struct {
	Service   string    `json:"service"           yaml:"service"`
	Status    string    `json:"status"            yaml:"status"`
	Summary   string    `json:"summary"           yaml:"summary"`
	Details   []string  `json:"details,omitempty" yaml:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"         yaml:"timestamp"`
}
