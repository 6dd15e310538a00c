// Package geocoding resolves free-text place names to coordinates and
// coordinates back to display names. Upstream failures never escape this
// package: forward lookups report Failed, reverse lookups fall back to the
// formatted coordinates.
package geocoding

import (
	"context"
	"fmt"
	"strings"
)

// Place is the best match returned by a forward lookup.
type Place struct {
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DisplayName is the place name, or fallback when the upstream gave none.
func (p Place) DisplayName(fallback string) string {
	if p.Name != "" {
		return p.Name
	}
	return fallback
}

// Outcome tags a forward lookup.
type Outcome int

const (
	NotFound Outcome = iota
	Found
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Failed:
		return "failed"
	default:
		return "not_found"
	}
}

// Resolution is the result of Resolve. Err is only set for Failed and is
// informational; callers treat Failed the same as NotFound.
type Resolution struct {
	Outcome Outcome
	Place   Place
	Err     error
}

// OK reports whether a place was found.
func (r Resolution) OK() bool { return r.Outcome == Found }

// Geocoder is implemented by every backend.
type Geocoder interface {
	Resolve(ctx context.Context, name string) Resolution
	Reverse(ctx context.Context, lat, lon float64) string
}

// FormatCoordinates is the reverse-lookup fallback, fixed to two decimals.
func FormatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

func joinParts(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func failed(err error) Resolution {
	return Resolution{Outcome: Failed, Err: err}
}
