package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/raushankrgupta/media-muse/models"
)

const (
	NominatimReverseURL = "https://nominatim.openstreetmap.org/reverse"
	// Nominatim's usage policy requires an identifying User-Agent.
	userAgent = "MediaMuse/1.0"
)

// Geocoder resolves coordinates to an address with Nominatim.
type Geocoder struct {
	Client  *http.Client
	BaseURL string
}

// NewGeocoder creates a Geocoder against the public Nominatim endpoint.
func NewGeocoder() *Geocoder {
	return &Geocoder{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: NominatimReverseURL,
	}
}

// ValidCoordinates reports whether lat/lon is a real point on the globe.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ReverseGeocode looks up the address at lat/lon.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Address, error) {
	if !ValidCoordinates(lat, lon) {
		return nil, fmt.Errorf("coordinates out of range: %f,%f", lat, lon)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("zoom", "10")
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocoding returned status %d", resp.StatusCode)
	}

	var payload struct {
		Error   string         `json:"error"`
		Address models.Address `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("reverse geocoding: %s", payload.Error)
	}
	return &payload.Address, nil
}
