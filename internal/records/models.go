package records

import (
	"context"
	"time"

	"github.com/i474232898/weather-records/internal/weather"
)

// WeatherRecord is a saved range query together with its aggregated payload.
type WeatherRecord struct {
	ID            uint
	LocationInput string
	ResolvedName  string
	Latitude      float64
	Longitude     float64
	StartDate     time.Time
	EndDate       time.Time
	Weather       weather.Result
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SimpleSearch logs a single-point lookup. Temperature and WeatherCode are
// nil when the weather fetch produced no current conditions.
type SimpleSearch struct {
	ID           uint
	QueryText    string
	ResolvedName string
	Latitude     float64
	Longitude    float64
	Temperature  *float64
	WeatherCode  *string
	SearchedAt   time.Time
}

// Store persists both record kinds. Listings are newest-first by ID; a
// non-positive limit means no limit. Lookups of unknown IDs return an error
// wrapping store.ErrNotFound.
type Store interface {
	CreateRecord(ctx context.Context, rec *WeatherRecord) error
	GetRecord(ctx context.Context, id uint) (WeatherRecord, error)
	ListRecords(ctx context.Context, limit int) ([]WeatherRecord, error)
	// UpdateRecord applies mutate to the current row and saves it atomically.
	UpdateRecord(ctx context.Context, id uint, mutate func(*WeatherRecord)) (WeatherRecord, error)
	DeleteRecord(ctx context.Context, id uint) error

	CreateSearch(ctx context.Context, s *SimpleSearch) error
	GetSearch(ctx context.Context, id uint) (SimpleSearch, error)
	ListSearches(ctx context.Context, limit int) ([]SimpleSearch, error)
	DeleteSearch(ctx context.Context, id uint) error
	// PruneSearches deletes searches made before the cutoff.
	PruneSearches(ctx context.Context, before time.Time) (int64, error)
}
