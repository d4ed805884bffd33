package geocode

import (
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/platform/metrics"
	"delivery-route-console/internal/platform/obs"
	"delivery-route-console/internal/ports"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoMatch is returned when the geocoder has no result for an address.
var ErrNoMatch = errors.New("no geocode match")

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder resolves addresses with the OpenRouteService search API.
//
// Results are kept in a persistent cache keyed by the normalized address, so
// an address is sent to ORS at most once. The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	country string
	cache   ports.GeocodeCache
}

type Option func(*ORSGeocoder)

func WithBaseURL(u string) Option {
	return func(o *ORSGeocoder) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithCountry restricts results to one ISO country code.
func WithCountry(code string) Option {
	return func(o *ORSGeocoder) { o.country = code }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *ORSGeocoder) { o.session = hc }
}

// NewORSGeocoder builds a geocoder. cache may be nil to disable caching.
func NewORSGeocoder(apiKey string, cache ports.GeocodeCache, opts ...Option) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	g := &ORSGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		country: "UA",
		cache:   cache,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

var _ ports.Geocoder = (*ORSGeocoder)(nil)

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if o.cache != nil {
		hits, err := o.cache.GetMany(ctx, []string{norm})
		if err != nil {
			// A broken cache should not block geocoding.
			slog.Warn("geocode cache read failed", "err", err)
		} else if c, ok := hits[norm]; ok {
			metrics.GeocodeCacheHits.Inc()
			return c, nil
		}
	}
	metrics.GeocodeCacheMisses.Inc()

	c, err := o.search(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}

	if o.cache != nil {
		if err := o.cache.PutMany(ctx, map[string]domain.Coordinates{norm: c}); err != nil {
			slog.Warn("geocode cache write failed", "err", err)
		}
	}

	return c, nil
}

func (o *ORSGeocoder) search(ctx context.Context, text string) (domain.Coordinates, error) {
	q := url.Values{}
	q.Set("text", text)
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}
	q.Set("size", "1")

	var decoded geocodeResponse
	if err := o.getJSON(ctx, "/geocode/search", q, &decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("search: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, ErrNoMatch
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, errors.New("invalid coordinate format")
	}

	// ORS returns GeoJSON order: [lon, lat].
	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}
