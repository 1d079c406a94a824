package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/config"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/circuitbreaker"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/logger"
)

// Client calls an OSRM-compatible routing service. Every call carries
// its own timeout; repeated failures trip a circuit breaker so a dead
// service does not burn the whole timeout budget per candidate.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

func NewClient(cfg config.GeoConfig, logger *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout: cfg.Timeout(),
		},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "distance-oracle",
			MaxFailures: cfg.MaxFailures,
			Timeout:     cfg.BreakerReset(),
		}),
		logger: logger,
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
	} `json:"routes"`
}

func (c *Client) DistanceKm(ctx context.Context, origin, dest model.Location) (float64, error) {
	var km float64

	err := c.cb.Execute(func() error {
		url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
			c.baseURL, origin.Lng, origin.Lat, dest.Lng, dest.Lat)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("routing service returned %d", resp.StatusCode)
		}

		var body routeResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("failed to decode route response: %w", err)
		}

		if body.Code != "Ok" || len(body.Routes) == 0 {
			return fmt.Errorf("no route found (code=%s)", body.Code)
		}

		km = body.Routes[0].Distance / 1000.0
		c.logger.Debug("distance resolved",
			"km", km, "took_ms", time.Since(start).Milliseconds())
		return nil
	})
	if err != nil {
		c.logger.Warn("distance lookup failed", "error", err.Error())
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return km, nil
}
