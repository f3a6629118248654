package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"etlcli/internal/config"
	"etlcli/internal/errors"
	"etlcli/pkg/contracts/domain"
)

const userAgent = "order-analytics-etl/0.3 (data pipeline)"

// defaultCity is the city whose neighborhoods the bulk query covers.
const defaultCity = "الرياض"

// Riyadh city center used by the bulk Overpass query.
const (
	centerLat    = 24.7136
	centerLon    = 46.6753
	searchRadius = 50000
)

// Client fetches neighborhood coordinates from Overpass with a Nominatim
// last resort. All requests pass through the rate limiter and results are
// memoized in the file cache.
type Client struct {
	httpClient *http.Client
	cfg        config.GeodataConfig
	limiter    *rate.Limiter
	cache      *FileCache
}

// NewClient creates a geodata client caching under cacheDir.
func NewClient(cfg config.GeodataConfig, cacheDir string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		cache:      NewFileCache(cacheDir, cfg.CacheTTL),
	}
}

// overpassResponse is the subset of the Overpass JSON output we read.
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.NewNetworkError("rate limiter wait interrupted", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.NewNetworkError("failed to create request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError("failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewNetworkError(
			fmt.Sprintf("endpoint returned status %d", resp.StatusCode), nil)
	}

	slog.Debug("Geodata request completed",
		slog.String("endpoint", endpoint),
		slog.Duration("duration", time.Since(start)))
	return body, nil
}

func parseElements(data []byte) ([]domain.Neighborhood, error) {
	var parsed overpassResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, errors.NewParsingError("failed to parse overpass response", err)
	}

	var out []domain.Neighborhood
	for _, el := range parsed.Elements {
		name, ok := el.Tags["name"]
		if !ok {
			continue
		}

		n := domain.Neighborhood{Name: name, OSMID: el.ID, OSMType: el.Type}
		switch {
		case el.Type == "node":
			n.Lat, n.Lon = el.Lat, el.Lon
		case el.Center != nil:
			n.Lat, n.Lon = el.Center.Lat, el.Center.Lon
		}
		out = append(out, n)
	}
	return out, nil
}

// AllNeighborhoods fetches every neighbourhood and suburb within the search
// radius of the city center from the primary Overpass endpoint.
func (c *Client) AllNeighborhoods(ctx context.Context) ([]domain.Neighborhood, error) {
	cacheKey := "all_neighborhoods:" + defaultCity

	var cached []domain.Neighborhood
	if c.cache.Get(cacheKey, &cached) {
		slog.Info("Using cached neighborhood list", slog.Int("count", len(cached)))
		return cached, nil
	}

	query := fmt.Sprintf(`
	[out:json][timeout:180];
	(
	  node["place"~"neighbourhood|suburb"](around:%d, %s, %s);
	  way["place"~"neighbourhood|suburb"](around:%d, %s, %s);
	  relation["place"~"neighbourhood|suburb"](around:%d, %s, %s);
	);
	out center;
	`,
		searchRadius, formatCoord(centerLat), formatCoord(centerLon),
		searchRadius, formatCoord(centerLat), formatCoord(centerLon),
		searchRadius, formatCoord(centerLat), formatCoord(centerLon))

	body, err := c.get(ctx, c.cfg.OverpassURL, url.Values{"data": {query}})
	if err != nil {
		return nil, err
	}

	neighborhoods, err := parseElements(body)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(cacheKey, neighborhoods); err != nil {
		slog.Warn("Failed to cache neighborhood list", slog.String("error", err.Error()))
	}

	slog.Info("Fetched neighborhoods from Overpass", slog.Int("count", len(neighborhoods)))
	return neighborhoods, nil
}

// LookupNeighborhood queries the fallback Overpass endpoint for a single
// neighborhood by exact name. A nil result with nil error means not found;
// negative results are cached too.
func (c *Client) LookupNeighborhood(ctx context.Context, name string) (*domain.Neighborhood, error) {
	cacheKey := "lookup:" + name

	var cached *domain.Neighborhood
	if c.cache.Get(cacheKey, &cached) {
		return cached, nil
	}

	query := fmt.Sprintf(`
	[out:json][timeout:180];
	(
	  node["place"~"neighbourhood|suburb"]["name"=%q];
	  way["place"~"neighbourhood|suburb"]["name"=%q];
	  relation["place"~"neighbourhood|suburb"]["name"=%q];
	);
	out center;
	`, name, name, name)

	body, err := c.get(ctx, c.cfg.FallbackURL, url.Values{"data": {query}})
	if err != nil {
		return nil, err
	}

	neighborhoods, err := parseElements(body)
	if err != nil {
		return nil, err
	}

	var result *domain.Neighborhood
	if len(neighborhoods) > 0 {
		result = &neighborhoods[0]
	}

	if err := c.cache.Put(cacheKey, result); err != nil {
		slog.Warn("Failed to cache lookup result",
			slog.String("neighborhood", name),
			slog.String("error", err.Error()))
	}
	return result, nil
}

// nominatimResult is one hit from the Nominatim search API.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// SearchNominatim resolves a free-text query through Nominatim as a last
// resort. A nil result with nil error means no hit.
func (c *Client) SearchNominatim(ctx context.Context, query string) (*domain.Neighborhood, error) {
	cacheKey := "nominatim:" + query

	var cached *domain.Neighborhood
	if c.cache.Get(cacheKey, &cached) {
		return cached, nil
	}

	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"addressdetails": {"1"},
		"limit":          {"1"},
	}

	body, err := c.get(ctx, c.cfg.NominatimURL, params)
	if err != nil {
		return nil, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, errors.NewParsingError("failed to parse nominatim response", err)
	}

	var result *domain.Neighborhood
	if len(results) > 0 {
		lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
		lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
		if latErr == nil && lonErr == nil {
			result = &domain.Neighborhood{Name: query, Lat: lat, Lon: lon}
		}
	}

	if err := c.cache.Put(cacheKey, result); err != nil {
		slog.Warn("Failed to cache nominatim result",
			slog.String("query", query),
			slog.String("error", err.Error()))
	}
	return result, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
