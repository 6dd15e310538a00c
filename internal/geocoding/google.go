package geocoding

import (
	"context"
	"log/slog"
	"time"

	"github.com/kelvins/geocoder"
)

// Google resolves places through the Google Geocoding API. The upstream
// library keeps its key in a package variable and takes no context, so
// calls run in a goroutine bounded by timeout.
type Google struct {
	timeout time.Duration
}

func NewGoogle(apiKey string, timeout time.Duration) *Google {
	geocoder.ApiKey = apiKey
	return &Google{timeout: timeout}
}

func (g *Google) Resolve(ctx context.Context, name string) Resolution {
	type outcome struct {
		loc geocoder.Location
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		loc, err := geocoder.Geocoding(geocoder.Address{City: name})
		ch <- outcome{loc: loc, err: err}
	}()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		slog.Warn("google geocoding timed out", slog.String("query", name))
		return failed(ctx.Err())
	case out := <-ch:
		if out.err != nil {
			slog.Warn("google geocoding failed", slog.String("query", name), slog.String("error", out.err.Error()))
			return failed(out.err)
		}
		// Google's forward call yields coordinates only; the query is the name.
		return Resolution{
			Outcome: Found,
			Place: Place{
				Name:      name,
				Latitude:  out.loc.Latitude,
				Longitude: out.loc.Longitude,
			},
		}
	}
}

func (g *Google) Reverse(ctx context.Context, lat, lon float64) string {
	ch := make(chan []geocoder.Address, 1)
	go func() {
		addrs, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
		if err != nil {
			slog.Warn("google reverse geocoding failed", slog.String("error", err.Error()))
		}
		ch <- addrs
	}()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		return FormatCoordinates(lat, lon)
	case addrs := <-ch:
		if len(addrs) == 0 {
			return FormatCoordinates(lat, lon)
		}
		a := addrs[0]
		if name := joinParts(a.City, a.State, a.Country); name != "" {
			return name
		}
		return FormatCoordinates(lat, lon)
	}
}
