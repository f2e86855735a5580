package diagram

import "fmt"

// Status is the coarse lifecycle state of a generation call.
type Status int

const (
	StatusIdle Status = iota
	StatusGenerating
	StatusSucceeded
	StatusFailed
)

var statusNames = map[Status]string{
	StatusIdle:       "idle",
	StatusGenerating: "generating",
	StatusSucceeded:  "succeeded",
	StatusFailed:     "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText encodes the status as its lower-case name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a lower-case status name.
func (s *Status) UnmarshalText(b []byte) error {
	for status, name := range statusNames {
		if name == string(b) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(b))
}
