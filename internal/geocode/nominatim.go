// Package geocode resolves Colombian addresses through Nominatim.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"redesperanza/web/internal/config"
)

const (
	minQueryLength = 3
	minInterval    = time.Second
	searchSuffix   = ", Colombia"
)

// Cache is satisfied by session.Store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Suggestion struct {
	DisplayName string            `json:"display_name"`
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	Address     map[string]string `json:"address,omitempty"`
	Type        string            `json:"type,omitempty"`
	Importance  float64           `json:"importance,omitempty"`
}

type Place struct {
	Address   string            `json:"address"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Details   map[string]string `json:"details,omitempty"`
}

type nominatimItem struct {
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Address     map[string]string `json:"address"`
	Type        string            `json:"type"`
	Importance  float64           `json:"importance"`
}

type Client struct {
	baseURL   string
	userAgent string
	country   string
	limit     int
	http      *http.Client
	cache     Cache
	cacheTTL  time.Duration
	log       zerolog.Logger

	mu       sync.Mutex
	lastCall time.Time
}

func New(cfg config.GeocoderConfig, httpClient *http.Client, cache Cache, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		country:   cfg.CountryCode,
		limit:     cfg.Limit,
		http:      httpClient,
		cache:     cache,
		cacheTTL:  cfg.CacheTTL,
		log:       log,
	}
}

// Search returns address suggestions. Queries shorter than three characters
// return nothing without contacting Nominatim.
func (c *Client) Search(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLength {
		return []Suggestion{}, nil
	}
	if !strings.Contains(strings.ToLower(query), "colombia") {
		query += searchSuffix
	}

	cacheKey := "geocode:search:" + strings.ToLower(query)
	var cached []Suggestion
	if c.fromCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("countrycodes", c.country)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("accept-language", "es")

	var items []nominatimItem
	if err := c.get(ctx, "/search", params, &items); err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(items))
	for _, item := range items {
		lat, errLat := strconv.ParseFloat(item.Lat, 64)
		lon, errLon := strconv.ParseFloat(item.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		out = append(out, Suggestion{
			DisplayName: item.DisplayName,
			Lat:         lat,
			Lon:         lon,
			Address:     item.Address,
			Type:        item.Type,
			Importance:  item.Importance,
		})
	}

	c.toCache(ctx, cacheKey, out)
	return out, nil
}

// Reverse names the place at lat/lon. When Nominatim fails or has no address
// the coordinates themselves are used as the label.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) Place {
	place := Place{Latitude: lat, Longitude: lon}

	cacheKey := fmt.Sprintf("geocode:reverse:%.6f,%.6f", lat, lon)
	if c.fromCache(ctx, cacheKey, &place) {
		return place
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("accept-language", "es")

	var item nominatimItem
	if err := c.get(ctx, "/reverse", params, &item); err != nil || item.DisplayName == "" {
		if err != nil {
			c.log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("reverse geocode failed")
		}
		place.Address = FallbackLabel(lat, lon)
		return place
	}

	place.Address = item.DisplayName
	place.Details = item.Address
	c.toCache(ctx, cacheKey, place)
	return place
}

func FallbackLabel(lat, lon float64) string {
	return fmt.Sprintf("Ubicación GPS: %.6f, %.6f", lat, lon)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("nominatim error (%d): %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// wait spaces requests at least one second apart.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elapsed := time.Since(c.lastCall); elapsed < minInterval {
		timer := time.NewTimer(minInterval - elapsed)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastCall = time.Now()
	return nil
}

func (c *Client) fromCache(ctx context.Context, key string, out any) bool {
	if c.cache == nil || c.cacheTTL <= 0 {
		return false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *Client) toCache(ctx context.Context, key string, value any) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Put(ctx, key, raw, c.cacheTTL); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Debug().Err(err).Str("key", key).Msg("geocode cache write failed")
	}
}
