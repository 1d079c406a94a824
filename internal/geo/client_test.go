package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/config"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/logger"
)

func newTestClient(baseURL string, maxFailures int) *Client {
	return NewClient(config.GeoConfig{
		BaseURL:     baseURL,
		TimeoutMS:   500,
		MaxFailures: maxFailures,
	}, &logger.Logger{ZL: zerolog.Nop()})
}

func TestDistanceKmParsesRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/route/v1/driving/")
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":12500.0}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 5)
	km, err := client.DistanceKm(context.Background(),
		model.Location{Lat: 10.0, Lng: 106.0},
		model.Location{Lat: 10.1, Lng: 106.1})
	require.NoError(t, err)
	assert.InDelta(t, 12.5, km, 0.001)
}

func TestDistanceKmNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 5)
	_, err := client.DistanceKm(context.Background(), model.Location{}, model.Location{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDistanceKmServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 5)
	_, err := client.DistanceKm(context.Background(), model.Location{}, model.Location{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDistanceKmBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.DistanceKm(ctx, model.Location{}, model.Location{})
		assert.ErrorIs(t, err, ErrUnavailable)
	}

	// Once open, the breaker short-circuits without hitting the server.
	assert.Equal(t, 2, calls)
}
