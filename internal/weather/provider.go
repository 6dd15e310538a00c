package weather

import (
	"context"
)

// Provider abstracts an hourly forecast source. Providers do not take a date
// range; they return "now plus the upcoming horizon" for a coordinate.
type Provider interface {
	Name() string
	FetchSeries(ctx context.Context, lat, lon float64) ([]HourlySample, error)
}
