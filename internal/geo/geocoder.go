// Package geo provides address geocoding and distance helpers.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"campdir/internal/models"
	"campdir/internal/observability"
)

// EarthRadiusMiles is used for haversine distance and radius search.
const EarthRadiusMiles = 3963.2

// Result is one geocoded address.
type Result struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	Street           string
	City             string
	State            string
	Zipcode          string
	Country          string
}

// Geocoder resolves free-text addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Client is a Geocoder backed by a MapQuest-style geocoding HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a Client for the given API base URL and key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeResponse struct {
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			City       string `json:"adminArea5"`
			State      string `json:"adminArea3"`
			Zipcode    string `json:"postalCode"`
			Country    string `json:"adminArea1"`
			DragPoint  bool   `json:"dragPoint"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

// Geocode resolves the address to its best match.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	u := fmt.Sprintf("%s/address?key=%s&location=%s&maxResults=1",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		observability.GeocoderRequests.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(fmt.Errorf("geocoder request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.GeocoderRequests.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(fmt.Errorf("geocoder returned status %d", resp.StatusCode))
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		observability.GeocoderRequests.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(fmt.Errorf("geocoder response decode failed: %w", err))
	}

	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		observability.GeocoderRequests.WithLabelValues("no_match").Inc()
		return nil, models.NewValidationError("Address could not be geocoded")
	}

	loc := body.Results[0].Locations[0]
	observability.GeocoderRequests.WithLabelValues("ok").Inc()

	return &Result{
		Lat:              loc.LatLng.Lat,
		Lng:              loc.LatLng.Lng,
		FormattedAddress: formatAddress(loc.Street, loc.City, loc.State, loc.Zipcode, loc.Country),
		Street:           loc.Street,
		City:             loc.City,
		State:            loc.State,
		Zipcode:          loc.Zipcode,
		Country:          loc.Country,
	}, nil
}

func formatAddress(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}

// Haversine returns the great-circle distance in miles between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(a))
}

// BoundingBox returns the lat/lng bounds of a circle of radius miles around
// a point. Used to pre-filter in SQL before haversine refinement; the SQLite
// test driver has no trig functions, so the exact check runs application-side.
func BoundingBox(lat, lng, radiusMiles float64) (minLat, maxLat, minLng, maxLng float64) {
	latDelta := radiusMiles / 69.0 // ~69 miles per degree latitude
	lngDelta := latDelta
	if cos := math.Cos(lat * math.Pi / 180); cos > 0.01 {
		lngDelta = latDelta / cos
	}
	return lat - latDelta, lat + latDelta, lng - lngDelta, lng + lngDelta
}
