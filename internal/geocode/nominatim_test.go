package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redesperanza/web/internal/config"
	"redesperanza/web/internal/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cache Cache) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.GeocoderConfig{
		BaseURL:     srv.URL,
		UserAgent:   "red-esperanza-test",
		CountryCode: "co",
		Limit:       10,
		CacheTTL:    time.Hour,
	}, srv.Client(), cache, zerolog.Nop())
}

func TestSearchShortQuerySkipsRequest(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, nil)

	got, err := client.Search(context.Background(), "Bo")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, calls.Load())
}

func TestSearch(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Calle 10, Colombia", q.Get("q"))
		assert.Equal(t, "co", q.Get("countrycodes"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "red-esperanza-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[
			{"display_name":"Calle 10, Bogotá","lat":"4.6","lon":"-74.08","type":"road","address":{"city":"Bogotá"}},
			{"display_name":"broken","lat":"x","lon":"y"}
		]`))
	}, session.NewMemoryStore())

	got, err := client.Search(context.Background(), "Calle 10")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Calle 10, Bogotá", got[0].DisplayName)
	assert.Equal(t, 4.6, got[0].Lat)
	assert.Equal(t, -74.08, got[0].Lon)
	assert.Equal(t, "Bogotá", got[0].Address["city"])

	again, err := client.Search(context.Background(), "calle 10")
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchKeepsExplicitCountry(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Medellín, Colombia", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[]`))
	}, nil)

	got, err := client.Search(context.Background(), "Medellín, Colombia")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	_, err := client.Search(context.Background(), "Cali centro")
	assert.Error(t, err)
}

func TestReverse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "4.6097", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"display_name":"Plaza de Bolívar, Bogotá","address":{"city":"Bogotá"}}`))
	}, nil)

	place := client.Reverse(context.Background(), 4.6097, -74.0817)
	assert.Equal(t, "Plaza de Bolívar, Bogotá", place.Address)
	assert.Equal(t, 4.6097, place.Latitude)
	assert.Equal(t, "Bogotá", place.Details["city"])
}

func TestReverseFallsBackToCoordinates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, nil)

	place := client.Reverse(context.Background(), 4.6097, -74.0817)
	assert.Equal(t, "Ubicación GPS: 4.609700, -74.081700", place.Address)
	assert.Equal(t, -74.0817, place.Longitude)
}

func TestRequestsAreSpacedOneSecondApart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, nil)

	start := time.Now()
	_, err := client.Search(context.Background(), "Pasto")
	require.NoError(t, err)
	_, err = client.Search(context.Background(), "Tunja")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestWaitHonoursCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, nil)
	client.lastCall = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, "Ibagué")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
