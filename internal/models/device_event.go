package models

import "time"

// Device event types.
const (
	EventRollover = "ROLLOVER"
	EventEvict    = "EVICT"
	EventError    = "ERROR"
)

// DeviceEvent is a single log entry about an emulated device.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	DeviceID    string    `json:"device_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // ROLLOVER | EVICT | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
