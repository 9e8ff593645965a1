package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Coordinates is a resolved location.
type Coordinates struct {
	Latitude  float64
	Longitude float64
	Source    string // "static" or "remote"
}

// staticLocations resolves common Tanzanian cities and districts without a
// network call.
var staticLocations = map[string]Coordinates{
	"dar es salaam": {Latitude: -6.7924, Longitude: 39.2083},
	"dodoma":        {Latitude: -6.1630, Longitude: 35.7516},
	"arusha":        {Latitude: -3.3869, Longitude: 36.6830},
	"mwanza":        {Latitude: -2.5164, Longitude: 32.9175},
	"mbeya":         {Latitude: -8.9094, Longitude: 33.4608},
	"morogoro":      {Latitude: -6.8278, Longitude: 37.6591},
	"tanga":         {Latitude: -5.0689, Longitude: 39.0988},
	"zanzibar":      {Latitude: -6.1659, Longitude: 39.2026},
	"kigoma":        {Latitude: -4.8769, Longitude: 29.6267},
	"moshi":         {Latitude: -3.3349, Longitude: 37.3404},
	"iringa":        {Latitude: -7.7700, Longitude: 35.6900},
	"tabora":        {Latitude: -5.0167, Longitude: 32.8000},
	"mikocheni":     {Latitude: -6.7629, Longitude: 39.2408},
	"masaki":        {Latitude: -6.7466, Longitude: 39.2824},
	"kariakoo":      {Latitude: -6.8196, Longitude: 39.2713},
	"mbezi beach":   {Latitude: -6.7089, Longitude: 39.2119},
	"sinza":         {Latitude: -6.7790, Longitude: 39.2222},
	"tegeta":        {Latitude: -6.6180, Longitude: 39.1369},
}

// Geocoder resolves a free-text location to coordinates: static table first,
// then a forward-geocoding HTTP call. With no access token configured it
// runs in static-only mode.
type Geocoder struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]Coordinates
}

func NewGeocoder(baseURL, token string, logger *zap.Logger) *Geocoder {
	return &Geocoder{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
		cache:  make(map[string]Coordinates),
	}
}

// ErrNotFound is returned when neither the static table nor the remote
// service can resolve the location.
var ErrNotFound = fmt.Errorf("location not found")

func (g *Geocoder) Resolve(ctx context.Context, location string) (Coordinates, error) {
	normalized := strings.ToLower(strings.TrimSpace(location))
	if normalized == "" {
		return Coordinates{}, fmt.Errorf("location is empty")
	}

	if coords, ok := staticLocations[normalized]; ok {
		coords.Source = "static"
		return coords, nil
	}

	// Substring match covers inputs like "Mikocheni, Dar es Salaam".
	for name, coords := range staticLocations {
		if strings.Contains(normalized, name) {
			coords.Source = "static"
			return coords, nil
		}
	}

	g.mu.Lock()
	cached, ok := g.cache[normalized]
	g.mu.Unlock()
	if ok {
		return cached, nil
	}

	if g.token == "" {
		return Coordinates{}, ErrNotFound
	}

	coords, err := g.resolveRemote(ctx, normalized)
	if err != nil {
		return Coordinates{}, err
	}

	g.mu.Lock()
	g.cache[normalized] = coords
	g.mu.Unlock()

	return coords, nil
}

type geocodingResponse struct {
	Features []struct {
		Center [2]float64 `json:"center"` // [lng, lat]
	} `json:"features"`
}

func (g *Geocoder) resolveRemote(ctx context.Context, location string) (Coordinates, error) {
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?access_token=%s&country=tz&limit=1",
		g.baseURL, url.PathEscape(location), url.QueryEscape(g.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Coordinates{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geocoding failed: status %d", resp.StatusCode)
	}

	var result geocodingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Coordinates{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Features) == 0 {
		return Coordinates{}, ErrNotFound
	}

	center := result.Features[0].Center
	g.logger.Debug("resolved location remotely",
		zap.String("location", location),
		zap.Float64("lat", center[1]),
		zap.Float64("lng", center[0]),
	)

	return Coordinates{
		Latitude:  center[1],
		Longitude: center[0],
		Source:    "remote",
	}, nil
}
