package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/astro-profile/internal/domain/geo"
)

const defaultTTL = 30 * 24 * time.Hour

// ValkeyGeocoder caches non-empty geocoder answers in Valkey. Cache failures
// are logged and never fail the lookup.
type ValkeyGeocoder struct {
	next   geo.Geocoder
	client valkey.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewValkeyGeocoder wraps next with a read-through cache.
func NewValkeyGeocoder(next geo.Geocoder, client valkey.Client, prefix string, ttl time.Duration, logger *slog.Logger) *ValkeyGeocoder {
	if prefix == "" {
		prefix = "geocode"
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ValkeyGeocoder{
		next:   next,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("component", "geocoding.cache"),
	}
}

func (g *ValkeyGeocoder) Geocode(ctx context.Context, query string) ([]geo.Candidate, error) {
	key := cacheKey(g.prefix, query)
	if cached, ok := g.lookup(ctx, key); ok {
		return cached, nil
	}

	candidates, err := g.next.Geocode(ctx, query)
	if err != nil || len(candidates) == 0 {
		return candidates, err
	}
	g.store(ctx, key, candidates)
	return candidates, nil
}

func (g *ValkeyGeocoder) lookup(ctx context.Context, key string) ([]geo.Candidate, bool) {
	payload, err := g.client.Do(ctx, g.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			g.logger.Warn("geocode cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	candidates, err := decodeCandidates(payload)
	if err != nil {
		g.logger.Warn("geocode cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	return candidates, true
}

func (g *ValkeyGeocoder) store(ctx context.Context, key string, candidates []geo.Candidate) {
	payload, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	cmd := g.client.B().Set().Key(key).Value(string(payload)).Ex(g.ttl).Build()
	if err := g.client.Do(ctx, cmd).Error(); err != nil {
		g.logger.Warn("geocode cache write failed", "key", key, "error", err)
	}
}

func cacheKey(prefix, query string) string {
	return prefix + ":" + geo.Normalize(query)
}

func decodeCandidates(payload string) ([]geo.Candidate, error) {
	var candidates []geo.Candidate
	if err := json.Unmarshal([]byte(payload), &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

var _ geo.Geocoder = (*ValkeyGeocoder)(nil)
