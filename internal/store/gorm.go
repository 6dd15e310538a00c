package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/i474232898/weather-records/internal/records"
	"github.com/i474232898/weather-records/internal/weather"
)

type weatherRecordRow struct {
	ID            uint           `gorm:"primaryKey"`
	LocationInput string         `gorm:"size:120;not null"`
	ResolvedName  string         `gorm:"size:160;not null"`
	Latitude      float64        `gorm:"not null"`
	Longitude     float64        `gorm:"not null"`
	StartDate     time.Time      `gorm:"type:date;not null"`
	EndDate       time.Time      `gorm:"type:date;not null"`
	WeatherJSON   datatypes.JSON `gorm:"column:weather_json;not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (weatherRecordRow) TableName() string {
	return "weather_records"
}

type simpleSearchRow struct {
	ID           uint      `gorm:"primaryKey"`
	QueryText    string    `gorm:"size:120;not null"`
	ResolvedName string    `gorm:"size:160;not null"`
	Latitude     float64   `gorm:"not null"`
	Longitude    float64   `gorm:"not null"`
	Temperature  *float64
	WeatherCode  *string   `gorm:"size:40"`
	SearchedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (simpleSearchRow) TableName() string {
	return "simple_searches"
}

func recordRowFrom(rec records.WeatherRecord) (weatherRecordRow, error) {
	payload, err := json.Marshal(rec.Weather)
	if err != nil {
		return weatherRecordRow{}, fmt.Errorf("encode weather payload: %w", err)
	}
	return weatherRecordRow{
		ID:            rec.ID,
		LocationInput: rec.LocationInput,
		ResolvedName:  rec.ResolvedName,
		Latitude:      rec.Latitude,
		Longitude:     rec.Longitude,
		StartDate:     rec.StartDate,
		EndDate:       rec.EndDate,
		WeatherJSON:   datatypes.JSON(payload),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}, nil
}

func (r weatherRecordRow) toRecord() (records.WeatherRecord, error) {
	var data weather.Result
	if len(r.WeatherJSON) > 0 {
		if err := json.Unmarshal(r.WeatherJSON, &data); err != nil {
			return records.WeatherRecord{}, fmt.Errorf("decode weather payload of record %d: %w", r.ID, err)
		}
	}
	return records.WeatherRecord{
		ID:            r.ID,
		LocationInput: r.LocationInput,
		ResolvedName:  r.ResolvedName,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Weather:       data,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func searchRowFrom(s records.SimpleSearch) simpleSearchRow {
	return simpleSearchRow{
		ID:           s.ID,
		QueryText:    s.QueryText,
		ResolvedName: s.ResolvedName,
		Latitude:     s.Latitude,
		Longitude:    s.Longitude,
		Temperature:  s.Temperature,
		WeatherCode:  s.WeatherCode,
		SearchedAt:   s.SearchedAt,
	}
}

func (r simpleSearchRow) toSearch() records.SimpleSearch {
	return records.SimpleSearch{
		ID:           r.ID,
		QueryText:    r.QueryText,
		ResolvedName: r.ResolvedName,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Temperature:  r.Temperature,
		WeatherCode:  r.WeatherCode,
		SearchedAt:   r.SearchedAt,
	}
}

// GormStore implements records.Store on top of gorm.
type GormStore struct {
	db *gorm.DB
	// lockRows enables SELECT ... FOR UPDATE inside UpdateRecord. SQLite has
	// no row locks; its transactions already serialize writers.
	lockRows bool
}

var _ records.Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:       db,
		lockRows: db.Dialector.Name() == "postgres",
	}
}

// Migrate creates or updates both tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&weatherRecordRow{}, &simpleSearchRow{})
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %d: %w", what, id, err)
}

func (s *GormStore) CreateRecord(ctx context.Context, rec *records.WeatherRecord) error {
	row, err := recordRowFrom(*rec)
	if err != nil {
		return err
	}
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert weather record: %w", err)
	}
	rec.ID = row.ID
	rec.CreatedAt = row.CreatedAt
	rec.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *GormStore) GetRecord(ctx context.Context, id uint) (records.WeatherRecord, error) {
	var row weatherRecordRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return records.WeatherRecord{}, notFound(err, "weather record", id)
	}
	return row.toRecord()
}

func (s *GormStore) ListRecords(ctx context.Context, limit int) ([]records.WeatherRecord, error) {
	q := s.db.WithContext(ctx).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []weatherRecordRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list weather records: %w", err)
	}

	out := make([]records.WeatherRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// UpdateRecord loads, mutates and saves the row in one transaction.
func (s *GormStore) UpdateRecord(ctx context.Context, id uint, mutate func(*records.WeatherRecord)) (records.WeatherRecord, error) {
	var updated records.WeatherRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if s.lockRows {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var row weatherRecordRow
		if err := q.First(&row, id).Error; err != nil {
			return notFound(err, "weather record", id)
		}

		rec, err := row.toRecord()
		if err != nil {
			return err
		}
		mutate(&rec)
		rec.ID = id

		next, err := recordRowFrom(rec)
		if err != nil {
			return err
		}
		if err := tx.Save(&next).Error; err != nil {
			return fmt.Errorf("save weather record %d: %w", id, err)
		}

		rec.UpdatedAt = next.UpdatedAt
		updated = rec
		return nil
	})
	if err != nil {
		return records.WeatherRecord{}, err
	}
	return updated, nil
}

func (s *GormStore) DeleteRecord(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&weatherRecordRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete weather record %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("weather record %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) CreateSearch(ctx context.Context, search *records.SimpleSearch) error {
	row := searchRowFrom(*search)
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	search.ID = row.ID
	search.SearchedAt = row.SearchedAt
	return nil
}

func (s *GormStore) GetSearch(ctx context.Context, id uint) (records.SimpleSearch, error) {
	var row simpleSearchRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return records.SimpleSearch{}, notFound(err, "search", id)
	}
	return row.toSearch(), nil
}

func (s *GormStore) ListSearches(ctx context.Context, limit int) ([]records.SimpleSearch, error) {
	q := s.db.WithContext(ctx).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []simpleSearchRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}

	out := make([]records.SimpleSearch, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toSearch())
	}
	return out, nil
}

func (s *GormStore) DeleteSearch(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&simpleSearchRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete search %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("search %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) PruneSearches(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("searched_at < ?", before).Delete(&simpleSearchRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune searches: %w", res.Error)
	}
	return res.RowsAffected, nil
}
