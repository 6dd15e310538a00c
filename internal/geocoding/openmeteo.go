package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"resty.dev/v3"
)

// OpenMeteo talks to the Open-Meteo geocoding API. No key is required.
type OpenMeteo struct {
	searchURL  string
	reverseURL string
	httpClient *resty.Client
}

// NewOpenMeteo creates a client with the given per-request timeout and no
// automatic retries.
func NewOpenMeteo(searchURL, reverseURL, userAgent string, timeout time.Duration) *OpenMeteo {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if userAgent != "" {
		httpClient.SetHeader("User-Agent", userAgent)
	}
	return &OpenMeteo{
		searchURL:  searchURL,
		reverseURL: reverseURL,
		httpClient: httpClient,
	}
}

// Close releases the underlying resty client.
func (g *OpenMeteo) Close() error {
	return g.httpClient.Close()
}

type searchResponse struct {
	Results []Place `json:"results"`
}

func (g *OpenMeteo) query(ctx context.Context, endpoint string, params map[string]string) ([]Place, error) {
	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParams(map[string]string{
			"count":    "1",
			"language": "en",
			"format":   "json",
		}).
		Get(endpoint)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("geocoding returned status %d", resp.StatusCode())
	}

	var sr searchResponse
	if err := json.Unmarshal(resp.Bytes(), &sr); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}
	return sr.Results, nil
}

func (g *OpenMeteo) Resolve(ctx context.Context, name string) Resolution {
	results, err := g.query(ctx, g.searchURL, map[string]string{"name": name})
	if err != nil {
		slog.Warn("geocoding failed", slog.String("query", name), slog.String("error", err.Error()))
		return failed(err)
	}
	if len(results) == 0 {
		return Resolution{Outcome: NotFound}
	}
	return Resolution{Outcome: Found, Place: results[0]}
}

func (g *OpenMeteo) Reverse(ctx context.Context, lat, lon float64) string {
	results, err := g.query(ctx, g.reverseURL, map[string]string{
		"latitude":  strconv.FormatFloat(lat, 'f', -1, 64),
		"longitude": strconv.FormatFloat(lon, 'f', -1, 64),
	})
	if err != nil {
		slog.Warn("reverse geocoding failed",
			slog.Float64("lat", lat),
			slog.Float64("lon", lon),
			slog.String("error", err.Error()))
		return FormatCoordinates(lat, lon)
	}
	if len(results) == 0 {
		return FormatCoordinates(lat, lon)
	}
	p := results[0]
	if name := joinParts(p.Name, p.Admin1, p.Country); name != "" {
		return name
	}
	return FormatCoordinates(lat, lon)
}
