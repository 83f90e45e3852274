package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/types"
)

const nominatimAPIBaseURL = "https://nominatim.openstreetmap.org"

// Nominatim usage policy requires an identifying User-Agent.
const nominatimUserAgent = "wanderplan-backend/1.0"

// NominatimClient performs forward geocoding against OpenStreetMap Nominatim.
// It needs no credential and serves as the fallback provider when no Mapbox
// token is configured.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

type nominatimResult struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}

func NewNominatimClient() *NominatimClient {
	return &NominatimClient{
		baseURL:    nominatimAPIBaseURL,
		httpClient: &http.Client{},
	}
}

// NewNominatimClientWithBaseURL allows tests to point the client at a stub server.
func NewNominatimClientWithBaseURL(baseURL string) *NominatimClient {
	c := NewNominatimClient()
	c.baseURL = baseURL
	return c
}

func (c *NominatimClient) Search(ctx context.Context, query string, limit int) ([]types.PlaceCandidate, error) {
	log := logger.GetLogger()
	log.Debugw("Starting Nominatim place search", "query", query, "limit", limit)

	endpoint := fmt.Sprintf("%s/search", c.baseURL)

	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "jsonv2")
	params.Add("limit", strconv.Itoa(limit))

	finalURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		log.Errorw("Failed to create Nominatim request", "error", err)
		return nil, &LookupError{Provider: "nominatim", Message: "could not reach the place search service", Err: err}
	}
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorw("Failed to execute Nominatim HTTP request", "error", err)
		return nil, &LookupError{Provider: "nominatim", Message: "could not reach the place search service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnw("Nominatim API returned non-OK status", "statusCode", resp.StatusCode)
		return nil, &LookupError{
			Provider: "nominatim",
			Message:  "the place search service returned an error",
			Err:      fmt.Errorf("nominatim API returned status: %d", resp.StatusCode),
		}
	}

	var items []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		log.Errorw("Failed to decode Nominatim response", "error", err)
		return nil, &LookupError{Provider: "nominatim", Message: "the place search service returned an unreadable response", Err: err}
	}

	results := make([]types.PlaceCandidate, 0, len(items))
	for _, item := range items {
		lat, latErr := strconv.ParseFloat(item.Lat, 64)
		lon, lonErr := strconv.ParseFloat(item.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		name := item.Name
		if name == "" {
			name = item.DisplayName
		}
		results = append(results, types.PlaceCandidate{
			ID:        strconv.FormatInt(item.PlaceID, 10),
			Name:      name,
			Address:   item.DisplayName,
			Latitude:  lat,
			Longitude: lon,
			Type:      item.Type,
		})
	}

	log.Debugw("Nominatim response decoded", "resultsReturned", len(results))
	return results, nil
}
