package service

import "time"

// LogFilter supports history filtering by device, time range and type.
type LogFilter struct {
	DeviceID string    // "" means every device
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Type     string    // "", "ROLLOVER", "EVICT", "ERROR"
}

// DeviceInfo is the listing entry of one emulated device.
type DeviceInfo struct {
	UUID          string   `json:"uuid"`
	Type          string   `json:"type"`
	Timezone      string   `json:"timezone,omitempty"`
	BugCompatible bool     `json:"bug_compatible"`
	Namespaces    []string `json:"namespaces"`
}
