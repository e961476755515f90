package ors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanqian/astro-profile/internal/domain/geo"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org"
	providerName   = "openrouteservice"
)

// Config controls the OpenRouteService geocoding client.
type Config struct {
	BaseURL string
	APIKey  string
	Country string
	Timeout time.Duration
}

// Client resolves place names with the OpenRouteService /geocode/search API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	group      singleflight.Group
	logger     *slog.Logger
}

// NewClient builds a geocoding client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "geocoding.ors"),
	}
}

// Geocode returns at most one candidate. Identical in-flight queries share a
// single upstream call.
func (c *Client) Geocode(ctx context.Context, query string) ([]geo.Candidate, error) {
	text := strings.TrimSpace(query)
	if text == "" {
		return nil, nil
	}
	ch := c.group.DoChan(text, func() (any, error) {
		// The shared call outlives any single caller; the http client timeout bounds it.
		return c.search(context.WithoutCancel(ctx), text)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]geo.Candidate), nil
	}
}

type searchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

func (c *Client) search(ctx context.Context, text string) ([]geo.Candidate, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("size", "1")
	if c.cfg.Country != "" {
		params.Set("boundary.country", c.cfg.Country)
	}
	endpoint := c.cfg.BaseURL + "/geocode/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("geocode request error: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	out := make([]geo.Candidate, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		coords := f.Geometry.Coordinates
		if len(coords) != 2 {
			return nil, fmt.Errorf("invalid coordinate format for %q", text)
		}
		out = append(out, geo.Candidate{
			Coordinates: geo.Coordinates{Latitude: coords[1], Longitude: coords[0]},
			Label:       f.Properties.Label,
			Provider:    providerName,
		})
	}
	c.logger.Debug("geocode search finished", "query", text, "results", len(out))
	return out, nil
}

var _ geo.Geocoder = (*Client)(nil)
