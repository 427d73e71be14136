// Package search implements the place search gateway: a cached,
// rate-limited front for the upstream geocoder that tags each hit with a
// display category.
package search

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/runnerr0/travelpins/internal/category"
	"github.com/runnerr0/travelpins/internal/geocoder"
	"github.com/runnerr0/travelpins/internal/logging"
	"github.com/runnerr0/travelpins/internal/metrics"
)

// MinQueryLength is the shortest trimmed query sent upstream.
const MinQueryLength = 2

// Result is one search hit as returned to clients.
type Result struct {
	Provider        string  `json:"provider"`
	ProviderPlaceID string  `json:"providerPlaceId"`
	DisplayName     string  `json:"displayName"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	NominatimClass  string  `json:"nominatimClass,omitempty"`
	NominatimType   string  `json:"nominatimType,omitempty"`
	CategoryKey     string  `json:"categoryKey"`
	CategoryEmoji   string  `json:"categoryEmoji"`
}

// Upstream is the geocoder the gateway fronts.
type Upstream interface {
	Search(ctx context.Context, query string) ([]geocoder.Place, error)
}

// Gateway serves place searches.
type Gateway struct {
	upstream Upstream
	cache    ResultCache
	gate     *Gate
}

// NewGateway wires a Gateway from its parts.
func NewGateway(upstream Upstream, cache ResultCache, gate *Gate) *Gateway {
	return &Gateway{upstream: upstream, cache: cache, gate: gate}
}

// NormalizeQuery returns the cache key for a trimmed query.
func NormalizeQuery(q string) string {
	return strings.ToLower(q)
}

// Search returns the results for query in upstream order. Queries shorter
// than MinQueryLength yield an empty slice without touching the cache or
// the upstream. Upstream failures are returned as *geocoder.UpstreamError.
func (g *Gateway) Search(ctx context.Context, query string) ([]Result, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		metrics.RecordSearch("short")
		return []Result{}, nil
	}

	key := NormalizeQuery(q)
	if cached, ok := g.cache.GetFresh(key); ok {
		metrics.RecordSearch("cache_hit")
		logging.Ctx(ctx).Debug().Str("query", key).Int("results", len(cached)).Msg("search cache hit")
		return cached, nil
	}

	waitStart := time.Now()
	if err := g.gate.Wait(ctx); err != nil {
		metrics.RecordSearch("error")
		return nil, err
	}
	if waited := time.Since(waitStart); waited > time.Millisecond {
		metrics.RecordGateWait(waited)
		logging.Ctx(ctx).Debug().Dur("waited", waited).Msg("geocoder rate gate")
	}

	places, err := g.upstream.Search(ctx, q)
	if err != nil {
		metrics.RecordSearch("error")
		logging.Ctx(ctx).Warn().Err(err).Str("query", key).Msg("geocoder search failed")
		return nil, err
	}

	results := make([]Result, 0, len(places))
	for _, p := range places {
		c := category.Infer(p.Class, p.Type)
		results = append(results, Result{
			Provider:        geocoder.Provider,
			ProviderPlaceID: p.PlaceID,
			DisplayName:     p.DisplayName,
			Lat:             p.Lat,
			Lon:             p.Lon,
			NominatimClass:  p.Class,
			NominatimType:   p.Type,
			CategoryKey:     c.Key,
			CategoryEmoji:   c.Emoji,
		})
	}

	g.cache.Put(key, results)
	metrics.RecordSearch("upstream")

	return results, nil
}
