package records

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-records/internal/geocoding"
	"github.com/i474232898/weather-records/internal/weather"
)

// WeatherFetcher is satisfied by *weather.Service.
type WeatherFetcher interface {
	Fetch(ctx context.Context, lat, lon float64, win weather.Window) weather.Result
}

// Service runs the validate, geocode, fetch and persist sequence shared by
// the form page and the JSON endpoints.
type Service struct {
	store    Store
	geocoder geocoding.Geocoder
	weather  WeatherFetcher
}

// NewService creates a new Service.
func NewService(store Store, geocoder geocoding.Geocoder, weather WeatherFetcher) *Service {
	return &Service{
		store:    store,
		geocoder: geocoder,
		weather:  weather,
	}
}

// Store exposes the underlying store for plain retrieval and deletion.
func (s *Service) Store() Store { return s.store }

// prepare validates in, resolves its location and fetches weather for the
// exact range. Nothing is persisted.
func (s *Service) prepare(ctx context.Context, in RangeInput) (WeatherRecord, error) {
	in.Location = strings.TrimSpace(in.Location)

	start, end, err := validateInput(in)
	if err != nil {
		return WeatherRecord{}, err
	}

	res := s.geocoder.Resolve(ctx, in.Location)
	if !res.OK() {
		return WeatherRecord{}, fmt.Errorf("%w: %q (%s)", ErrLocationNotFound, in.Location, res.Outcome)
	}

	lat, lon := res.Place.Latitude, res.Place.Longitude
	data := s.weather.Fetch(ctx, lat, lon, weather.Window{Start: in.StartDate, End: in.EndDate})

	return WeatherRecord{
		LocationInput: in.Location,
		ResolvedName:  res.Place.DisplayName(in.Location),
		Latitude:      lat,
		Longitude:     lon,
		StartDate:     start,
		EndDate:       end,
		Weather:       data,
	}, nil
}

// CreateRecord validates, resolves, fetches and persists a range record.
func (s *Service) CreateRecord(ctx context.Context, in RangeInput) (WeatherRecord, error) {
	rec, err := s.prepare(ctx, in)
	if err != nil {
		return WeatherRecord{}, err
	}
	if err := s.store.CreateRecord(ctx, &rec); err != nil {
		return WeatherRecord{}, fmt.Errorf("create record: %w", err)
	}
	slog.Info("weather record created",
		slog.Uint64("id", uint64(rec.ID)),
		slog.String("location", rec.ResolvedName),
		slog.Int("days", len(rec.Weather.Daily.Days())))
	return rec, nil
}

// UpdateInput holds optional overrides; nil or empty keeps the stored value.
type UpdateInput struct {
	Location  *string
	StartDate *string
	EndDate   *string
}

func override(v *string, prior string) string {
	if v != nil && *v != "" {
		return *v
	}
	return prior
}

// UpdateRecord merges overrides onto the stored record, then re-resolves and
// re-fetches everything. Only the final field assignment is atomic; the
// upstream calls run before the store is touched.
func (s *Service) UpdateRecord(ctx context.Context, id uint, in UpdateInput) (WeatherRecord, error) {
	cur, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return WeatherRecord{}, err
	}

	merged := RangeInput{
		Location:  override(in.Location, cur.LocationInput),
		StartDate: override(in.StartDate, cur.StartDate.Format(DateLayout)),
		EndDate:   override(in.EndDate, cur.EndDate.Format(DateLayout)),
	}

	next, err := s.prepare(ctx, merged)
	if err != nil {
		return WeatherRecord{}, err
	}

	updated, err := s.store.UpdateRecord(ctx, id, func(r *WeatherRecord) {
		r.LocationInput = next.LocationInput
		r.ResolvedName = next.ResolvedName
		r.Latitude = next.Latitude
		r.Longitude = next.Longitude
		r.StartDate = next.StartDate
		r.EndDate = next.EndDate
		r.Weather = next.Weather
	})
	if err != nil {
		return WeatherRecord{}, err
	}
	slog.Info("weather record updated", slog.Uint64("id", uint64(id)))
	return updated, nil
}

// PointQuery is either a free-text query or a coordinate pair. Coordinates
// win when both are given.
type PointQuery struct {
	Query string
	Lat   *float64
	Lon   *float64
}

// Lookup is the outcome of a point query.
type Lookup struct {
	Location  string
	Latitude  float64
	Longitude float64
	Weather   weather.Result
	Search    SimpleSearch
}

// Lookup resolves the query, fetches the default forecast window and always
// logs a SimpleSearch, even when no current conditions came back.
func (s *Service) Lookup(ctx context.Context, q PointQuery) (Lookup, error) {
	var (
		lat, lon  float64
		name      string
		queryText string
	)

	switch {
	case q.Lat != nil && q.Lon != nil:
		lat, lon = *q.Lat, *q.Lon
		name = s.geocoder.Reverse(ctx, lat, lon)
		queryText = strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
	case strings.TrimSpace(q.Query) != "":
		queryText = strings.TrimSpace(q.Query)
		res := s.geocoder.Resolve(ctx, queryText)
		if !res.OK() {
			return Lookup{}, fmt.Errorf("%w: %q (%s)", ErrLocationNotFound, queryText, res.Outcome)
		}
		lat, lon = res.Place.Latitude, res.Place.Longitude
		name = res.Place.DisplayName(queryText)
	default:
		return Lookup{}, ErrMissingQuery
	}

	data := s.weather.Fetch(ctx, lat, lon, weather.Window{})

	search := SimpleSearch{
		QueryText:    queryText,
		ResolvedName: name,
		Latitude:     lat,
		Longitude:    lon,
	}
	if data.Current != nil {
		search.Temperature = data.Current.Temperature
		search.WeatherCode = data.Current.WeatherCode
	}
	if err := s.store.CreateSearch(ctx, &search); err != nil {
		return Lookup{}, fmt.Errorf("create search: %w", err)
	}

	return Lookup{
		Location:  name,
		Latitude:  lat,
		Longitude: lon,
		Weather:   data,
		Search:    search,
	}, nil
}

// Forecast fetches fresh weather for a coordinate using the default window.
func (s *Service) Forecast(ctx context.Context, lat, lon float64) weather.Result {
	return s.weather.Fetch(ctx, lat, lon, weather.Window{})
}

// PruneSearches removes searches older than retention.
func (s *Service) PruneSearches(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.PruneSearches(ctx, time.Now().UTC().Add(-retention))
}
