package weather

import (
	"context"
	"log/slog"
	"time"
)

// Service fetches a provider series and aggregates it into a Result.
type Service struct {
	provider Provider
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(provider Provider) *Service {
	return &Service{
		provider: provider,
		now:      time.Now,
	}
}

// Fetch never returns an error: an upstream failure is carried in Result.Err
// and an empty series yields an empty Result.
func (s *Service) Fetch(ctx context.Context, lat, lon float64, win Window) Result {
	series, err := s.provider.FetchSeries(ctx, lat, lon)
	if err != nil {
		slog.Warn("weather fetch failed",
			slog.String("provider", s.provider.Name()),
			slog.Float64("lat", lat),
			slog.Float64("lon", lon),
			slog.String("error", err.Error()))
		return Result{Err: err.Error()}
	}

	res := Aggregate(series, win, s.now())
	if !res.Empty() {
		res.Provider = s.provider.Name()
	}
	slog.Debug("weather fetched",
		slog.String("provider", s.provider.Name()),
		slog.Int("samples", len(series)))
	return res
}
