package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nyumba-backend/internal/geocode"
)

func TestGeocoder_StaticLookup(t *testing.T) {
	g := geocode.NewGeocoder("https://api.example.com", "", zap.NewNop())

	coords, err := g.Resolve(context.Background(), "Dar es Salaam")
	require.NoError(t, err)

	assert.Equal(t, "static", coords.Source)
	assert.InDelta(t, -6.7924, coords.Latitude, 0.001)
	assert.InDelta(t, 39.2083, coords.Longitude, 0.001)
}

func TestGeocoder_StaticSubstringMatch(t *testing.T) {
	g := geocode.NewGeocoder("https://api.example.com", "", zap.NewNop())

	coords, err := g.Resolve(context.Background(), "Apartment in Mikocheni area")
	require.NoError(t, err)
	assert.Equal(t, "static", coords.Source)
}

func TestGeocoder_StaticOnlyModeMiss(t *testing.T) {
	// No token configured: unknown locations are not resolvable.
	g := geocode.NewGeocoder("https://api.example.com", "", zap.NewNop())

	_, err := g.Resolve(context.Background(), "somewhere unknown")
	assert.ErrorIs(t, err, geocode.ErrNotFound)
}

func TestGeocoder_RemoteResolution(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Contains(t, r.URL.Path, "/geocoding/v5/mapbox.places/")
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
		w.Write([]byte(`{"features":[{"center":[33.5,-4.25]}]}`))
	}))
	defer server.Close()

	g := geocode.NewGeocoder(server.URL, "test-token", zap.NewNop())

	coords, err := g.Resolve(context.Background(), "Nzega")
	require.NoError(t, err)
	assert.Equal(t, "remote", coords.Source)
	assert.InDelta(t, -4.25, coords.Latitude, 0.001)
	assert.InDelta(t, 33.5, coords.Longitude, 0.001)

	// Second resolve is served from the cache.
	_, err = g.Resolve(context.Background(), "Nzega")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestGeocoder_RemoteNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[]}`))
	}))
	defer server.Close()

	g := geocode.NewGeocoder(server.URL, "test-token", zap.NewNop())
	_, err := g.Resolve(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, geocode.ErrNotFound)
}

func TestGeocoder_EmptyInput(t *testing.T) {
	g := geocode.NewGeocoder("https://api.example.com", "", zap.NewNop())
	_, err := g.Resolve(context.Background(), "   ")
	assert.Error(t, err)
}
