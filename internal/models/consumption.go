package models

// EnergyRecord is one day bucket of the consumption ledger.
type EnergyRecord struct {
	Date  string `json:"date"`  // YYYY-MM-DD, device local
	Time  int64  `json:"time"`  // epoch seconds of the last update
	Value int64  `json:"value"` // Wh
}

// ConsumptionXPayload is the Appliance.Control.ConsumptionX payload.
type ConsumptionXPayload struct {
	ConsumptionX []EnergyRecord `json:"consumptionx"`
}
