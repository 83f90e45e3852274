package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/types"
)

const mapboxAPIBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// MapboxClient performs forward geocoding against the Mapbox Places API.
type MapboxClient struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

type mapboxResponse struct {
	Features []mapboxFeature `json:"features"`
}

type mapboxFeature struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	PlaceName string          `json:"place_name"`
	PlaceType []string        `json:"place_type"`
	Center    []float64       `json:"center"`
	Context   []mapboxContext `json:"context"`
}

type mapboxContext struct {
	Text string `json:"text"`
}

func NewMapboxClient(accessToken string) *MapboxClient {
	return &MapboxClient{
		accessToken: accessToken,
		baseURL:     mapboxAPIBaseURL,
		httpClient:  &http.Client{},
	}
}

// NewMapboxClientWithBaseURL allows tests to point the client at a stub server.
func NewMapboxClientWithBaseURL(accessToken, baseURL string) *MapboxClient {
	c := NewMapboxClient(accessToken)
	c.baseURL = baseURL
	return c
}

func (c *MapboxClient) Search(ctx context.Context, query string, limit int) ([]types.PlaceCandidate, error) {
	log := logger.GetLogger()
	log.Debugw("Starting Mapbox place search", "query", query, "limit", limit)

	endpoint := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))

	params := url.Values{}
	params.Add("access_token", c.accessToken)
	params.Add("limit", fmt.Sprintf("%d", limit))
	params.Add("types", "place,locality,neighborhood,address,poi")

	finalURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		log.Errorw("Failed to create Mapbox request", "error", err)
		return nil, &LookupError{Provider: "mapbox", Message: "could not reach the place search service", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorw("Failed to execute Mapbox HTTP request", "error", err)
		return nil, &LookupError{Provider: "mapbox", Message: "could not reach the place search service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnw("Mapbox API returned non-OK status", "statusCode", resp.StatusCode)
		return nil, &LookupError{
			Provider: "mapbox",
			Message:  "the place search service returned an error",
			Err:      fmt.Errorf("mapbox API returned status: %d", resp.StatusCode),
		}
	}

	var searchResp mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		log.Errorw("Failed to decode Mapbox response", "error", err)
		return nil, &LookupError{Provider: "mapbox", Message: "the place search service returned an unreadable response", Err: err}
	}

	results := make([]types.PlaceCandidate, 0, len(searchResp.Features))
	for _, f := range searchResp.Features {
		if len(f.Center) < 2 {
			continue
		}
		results = append(results, types.PlaceCandidate{
			ID:           f.ID,
			Name:         f.Text,
			Address:      f.PlaceName,
			Latitude:     f.Center[1],
			Longitude:    f.Center[0],
			Type:         firstPlaceType(f.PlaceType),
			ContextLabel: joinContext(f.Context),
		})
	}

	log.Debugw("Mapbox response decoded", "resultsReturned", len(results))
	return results, nil
}

func firstPlaceType(placeTypes []string) string {
	if len(placeTypes) == 0 {
		return ""
	}
	return placeTypes[0]
}

func joinContext(ctx []mapboxContext) string {
	parts := make([]string, 0, len(ctx))
	for _, c := range ctx {
		if c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, ", ")
}
