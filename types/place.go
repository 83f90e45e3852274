package types

// PlaceCandidate is one ranked place result returned by the geocoder for a
// query. Candidates are immutable and scoped to a single search response.
type PlaceCandidate struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Type         string  `json:"type,omitempty"`
	ContextLabel string  `json:"context,omitempty"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
