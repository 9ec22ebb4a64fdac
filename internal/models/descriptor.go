package models

import "encoding/json"

// Namespaces holds the per-namespace payloads a device answers with.
// A nil entry means the device does not expose that namespace.
type Namespaces struct {
	Electricity  *ElectricityPayload  `json:"Appliance.Control.Electricity,omitempty"`
	ConsumptionX *ConsumptionXPayload `json:"Appliance.Control.ConsumptionX,omitempty"`
}

// Descriptor is the structured record of one emulated device.
// The emulator mutates the namespace payloads in place.
type Descriptor struct {
	UUID          string     `json:"uuid"`
	Type          string     `json:"type"`
	Key           string     `json:"-"`
	Timezone      string     `json:"timezone,omitempty"`
	BugCompatible bool       `json:"bug_compatible"`
	Namespaces    Namespaces `json:"namespaces"`
}

// Clone returns a deep copy, detached from the live record.
func (d *Descriptor) Clone() (Descriptor, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return Descriptor{}, err
	}
	var out Descriptor
	if err := json.Unmarshal(b, &out); err != nil {
		return Descriptor{}, err
	}
	out.Key = d.Key
	return out, nil
}
