package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hustlr/metrics"

	"go.uber.org/zap"
)

// ReverseGeocoder turns coordinates into a human-readable place label.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// Nominatim queries an OpenStreetMap Nominatim reverse endpoint.
type Nominatim struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func NewNominatim(baseURL, userAgent string, timeout time.Duration) *Nominatim {
	return &Nominatim{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (n *Nominatim) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("zoom", "14")
	q.Set("addressdetails", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocoding returned status %d", resp.StatusCode)
	}
	var data reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocoding response: %w", err)
	}
	if data.Error != "" {
		return "", fmt.Errorf("reverse geocoding: %s", data.Error)
	}
	return strings.TrimSpace(data.DisplayName), nil
}

// CoordinateLabel formats a coordinate pair the way it is shown when no place name is known.
func CoordinateLabel(lat, lng float64) string {
	return fmt.Sprintf("%.5f, %.5f", lat, lng)
}

// Label resolves a place label and never fails. Lookup errors and empty
// answers degrade to the raw coordinate pair.
func Label(ctx context.Context, g ReverseGeocoder, lat, lng float64, logger *zap.Logger) string {
	if g != nil {
		label, err := g.Reverse(ctx, lat, lng)
		if err == nil && label != "" {
			return label
		}
		metrics.GeocodeFailures.Inc()
		if logger != nil {
			logger.Debug("reverse geocoding fell back to coordinates",
				zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Error(err))
		}
	}
	return CoordinateLabel(lat, lng)
}
