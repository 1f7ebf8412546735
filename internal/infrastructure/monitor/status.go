package monitor

import "time"

type Status struct {
	Services   map[string]bool `json:"services"`
	Online     bool            `json:"online"`
	BufferSize int             `json:"buffer_size"`
	LastCheck  time.Time       `json:"last_check"`
}

// Healthy reports whether the named dependency passed its last probe.
func (s Status) Healthy(name string) bool {
	return s.Services[name]
}
