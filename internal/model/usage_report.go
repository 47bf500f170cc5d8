package model

// UsageReport is the triggering event payload: a vehicle-occupancy report
// with a photo, created externally by the client. Immutable once the
// pipeline begins.
type UsageReport struct {
	ID         string `json:"id,omitempty"`
	ImageURL   string `json:"image_url"`
	ChargerID  string `json:"charger_id,omitempty"`
	Location   string `json:"location,omitempty"`
	ReportedBy string `json:"reported_by,omitempty"`
}

// DetectionResult pairs the best plate candidate with its confidence score.
// Derived per run, never persisted on its own.
type DetectionResult struct {
	Plate      string  `json:"plate"`
	Confidence float64 `json:"confidence"`
}
