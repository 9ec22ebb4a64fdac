package models

import "encoding/json"

// Electricity is the instantaneous reading of one metering channel.
type Electricity struct {
	Channel int             `json:"channel"`
	Current int             `json:"current"`          // mA
	Voltage int             `json:"voltage"`          // 0.1 V
	Power   int             `json:"power"`            // mW
	Config  json.RawMessage `json:"config,omitempty"` // calibration ratios, passthrough
}

// ElectricityPayload is the Appliance.Control.Electricity payload.
type ElectricityPayload struct {
	Electricity Electricity `json:"electricity"`
}
