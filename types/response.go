package types

// PlaceSearchResponse wraps geocoder results for the search proxy endpoint.
type PlaceSearchResponse struct {
	Results []PlaceCandidate `json:"results"`
}
