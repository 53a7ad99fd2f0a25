// File: internal/location/geocoder.go
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"educycle_backend/internal/config"
	"educycle_backend/internal/shared"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// NominatimGeocoder resolves places through the OpenStreetMap Nominatim API.
// Answers, including misses, are cached.
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      *gocache.Cache
	logger     *zap.Logger
}

var _ shared.Geocoder = (*NominatimGeocoder)(nil)

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type nominatimReverse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

func NewNominatimGeocoder(cfg *config.Config, logger *zap.Logger) *NominatimGeocoder {
	ttl := cfg.GeocoderCacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	timeout := cfg.GeocoderTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NominatimGeocoder{
		baseURL:    strings.TrimRight(cfg.GeocoderBaseURL, "/"),
		userAgent:  cfg.GeocoderUserAgent,
		httpClient: &http.Client{Timeout: timeout},
		cache:      gocache.New(ttl, ttl/2),
		logger:     logger.Named("geocoder"),
	}
}

// Geocode returns the best match for query, or nil when nothing matches.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (*shared.GeoPoint, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	key := "q:" + strings.ToLower(query)
	if v, ok := g.cache.Get(key); ok {
		return v.(*shared.GeoPoint), nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	var places []nominatimPlace
	if err := g.get(ctx, "/search", params, &places); err != nil {
		return nil, err
	}

	var point *shared.GeoPoint
	if len(places) > 0 {
		lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
		lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
		if errLat != nil || errLon != nil {
			return nil, fmt.Errorf("geocoder returned invalid coordinates %q,%q", places[0].Lat, places[0].Lon)
		}
		point = &shared.GeoPoint{Lat: lat, Lon: lon, DisplayName: places[0].DisplayName}
	}
	g.cache.SetDefault(key, point)
	return point, nil
}

// Reverse names the city and area around a coordinate.
func (g *NominatimGeocoder) Reverse(ctx context.Context, lat, lon float64) (*shared.Address, error) {
	key := fmt.Sprintf("r:%.5f,%.5f", lat, lon)
	if v, ok := g.cache.Get(key); ok {
		return v.(*shared.Address), nil
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	var res nominatimReverse
	if err := g.get(ctx, "/reverse", params, &res); err != nil {
		return nil, err
	}
	if res.Error != "" {
		g.cache.SetDefault(key, (*shared.Address)(nil))
		return nil, nil
	}
	addr := &shared.Address{
		City:        firstNonEmpty(res.Address, "city", "town", "village", "county", "state_district"),
		Area:        firstNonEmpty(res.Address, "suburb", "neighbourhood", "quarter", "city_district"),
		DisplayName: res.DisplayName,
	}
	g.cache.SetDefault(key, addr)
	return addr, nil
}

func (g *NominatimGeocoder) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build geocoder request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn("Geocoder request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("geocoder request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoder returned status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	return nil
}

func firstNonEmpty(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(m[k]); v != "" {
			return v
		}
	}
	return ""
}
