// Package geo wraps the two best-effort location collaborators: an
// IP-geolocation endpoint for a single-shot position fix and a
// Nominatim-style reverse geocoder for turning that fix into a city name.
// Both are strictly bounded and both degrade silently — no user action ever
// blocks on location.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"platefinder/internal/types"
)

// cityCandidates are tried in order against the reverse-geocode address
// breakdown; the first present field wins.
var cityCandidates = []string{
	"city", "town", "village", "hamlet", "district",
	"county", "state", "region", "municipality", "locality",
}

// Locator performs position and reverse-geocode lookups.
type Locator struct {
	locateURL  string
	reverseURL string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Locator. timeout bounds every lookup.
func New(locateURL, reverseURL string, timeout time.Duration, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		locateURL:  locateURL,
		reverseURL: reverseURL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Locate performs the single-shot position request. On any failure the
// caller proceeds without a position.
func (l *Locator) Locate(ctx context.Context) (*types.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var resp struct {
		Status string  `json:"status"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
	}
	if err := l.getJSON(ctx, l.locateURL, &resp); err != nil {
		l.logger.Debug("geolocation lookup failed", zap.Error(err))
		return nil, err
	}
	if resp.Status != "" && resp.Status != "success" {
		l.logger.Debug("geolocation denied", zap.String("status", resp.Status))
		return nil, fmt.Errorf("geolocation lookup returned status %q", resp.Status)
	}
	if resp.Lat == 0 && resp.Lon == 0 {
		return nil, fmt.Errorf("geolocation lookup returned no coordinates")
	}
	return &types.Position{Latitude: resp.Lat, Longitude: resp.Lon}, nil
}

// ReverseCity resolves coordinates to a city name, best effort.
func (l *Locator) ReverseCity(ctx context.Context, pos types.Position) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(pos.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(pos.Longitude, 'f', -1, 64))

	var resp struct {
		Address map[string]string `json:"address"`
	}
	if err := l.getJSON(ctx, l.reverseURL+"?"+query.Encode(), &resp); err != nil {
		l.logger.Debug("reverse geocode failed", zap.Error(err))
		return "", err
	}

	city := CityFromAddress(resp.Address)
	if city == "" {
		return "", fmt.Errorf("no usable locality in reverse geocode response")
	}
	return city, nil
}

// CityFromAddress extracts a city name from an address breakdown, trying
// the documented candidate fields in order.
func CityFromAddress(address map[string]string) string {
	for _, key := range cityCandidates {
		if v := address[key]; v != "" {
			return v
		}
	}
	return ""
}

func (l *Locator) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", "platefinder/1.0")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lookup failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read lookup response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed lookup response: %w", err)
	}
	return nil
}
