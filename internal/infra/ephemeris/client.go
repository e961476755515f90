package ephemeris

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yanqian/astro-profile/internal/domain/natal"
)

const (
	defaultBaseURL     = "https://json.astrologyapi.com/v1"
	defaultMaxAttempts = 2
	defaultBackoff     = 200 * time.Millisecond
	chartPath          = "/western_horoscope"
	maxChartBody       = 1 << 20
)

var errChartTooLarge = fmt.Errorf("chart response exceeds %d bytes", maxChartBody)

// Config controls the ephemeris HTTP client.
type Config struct {
	BaseURL           string
	UserID            string
	APIKey            string
	Timeout           time.Duration
	MaxAttempts       int
	RequestsPerSecond float64
}

// Archiver keeps raw provider payloads for later inspection.
type Archiver interface {
	Archive(ctx context.Context, key string, payload []byte) error
}

// Client talks to the western_horoscope endpoint of the ephemeris provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	archiver   Archiver
	backoff    time.Duration
	logger     *slog.Logger
}

// NewClient builds the provider client. archiver may be nil.
func NewClient(cfg Config, archiver Archiver, logger *slog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}
	httpClient := &http.Client{}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		archiver:   archiver,
		backoff:    defaultBackoff,
		logger:     logger.With("component", "ephemeris.client"),
	}
}

// FetchChart requests planets, houses and elements for one birth moment.
func (c *Client) FetchChart(ctx context.Context, req natal.ChartRequest) (natal.ChartReading, error) {
	payload, err := json.Marshal(newChartPayload(req))
	if err != nil {
		return natal.ChartReading{}, fmt.Errorf("encode chart request: %w", err)
	}

	body, err := c.postWithRetry(ctx, c.cfg.BaseURL+chartPath, payload)
	if err != nil {
		return natal.ChartReading{}, err
	}
	c.archive(ctx, req, body)

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return natal.ChartReading{}, fmt.Errorf("%w: decode chart response: %v", natal.ErrProviderMalformed, err)
	}
	return resp.reading()
}

type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func (e *statusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// postWithRetry retries network errors, 429 and 5xx with doubling backoff
// and never waits past the context deadline.
func (c *Client) postWithRetry(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", natal.ErrProviderUnavailable, contextErr(ctx, err))
		}
		body, err := c.post(ctx, endpoint, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) || attempt == c.cfg.MaxAttempts {
			break
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < backoff {
			break
		}
		c.logger.Debug("retrying chart request", "attempt", attempt, "error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", natal.ErrProviderUnavailable, ctx.Err())
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("%w: %w", natal.ErrProviderUnavailable, lastErr)
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.UserID, c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxChartBody+1))
	if err != nil {
		return nil, fmt.Errorf("read chart response: %w", err)
	}
	if len(body) > maxChartBody {
		return nil, errChartTooLarge
	}
	return body, nil
}

func (c *Client) archive(ctx context.Context, req natal.ChartRequest, body []byte) {
	if c.archiver == nil {
		return
	}
	key := fmt.Sprintf("charts/%s/%s_%.4f_%.4f.json",
		req.Date.Format("2006/01/02"),
		time.Now().UTC().Format("150405.000000"),
		req.Coordinates.Latitude,
		req.Coordinates.Longitude,
	)
	if err := c.archiver.Archive(ctx, key, body); err != nil {
		c.logger.Warn("failed to archive chart payload", "key", key, "error", err)
	}
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
