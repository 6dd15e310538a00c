package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-records/internal/records"
)

var (
	// ErrNotFound is returned when no row exists for a given identity.
	ErrNotFound = errors.New("not found")
)

// MemoryStore is a concurrency-safe in-memory implementation of records.Store.
// It is used when no database is configured and in tests.
type MemoryStore struct {
	mu sync.RWMutex

	weatherRecords map[uint]records.WeatherRecord
	searches       map[uint]records.SimpleSearch

	lastRecordID uint
	lastSearchID uint

	now func() time.Time
}

var _ records.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		weatherRecords: make(map[uint]records.WeatherRecord),
		searches:       make(map[uint]records.SimpleSearch),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) CreateRecord(_ context.Context, rec *records.WeatherRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRecordID++
	now := s.now()
	rec.ID = s.lastRecordID
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.weatherRecords[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) GetRecord(_ context.Context, id uint) (records.WeatherRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.weatherRecords[id]
	if !ok {
		return records.WeatherRecord{}, fmt.Errorf("weather record %d: %w", id, ErrNotFound)
	}
	return rec, nil
}

func (s *MemoryStore) ListRecords(_ context.Context, limit int) ([]records.WeatherRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]records.WeatherRecord, 0, len(s.weatherRecords))
	for _, rec := range s.weatherRecords {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateRecord holds the write lock across read, mutate and write.
func (s *MemoryStore) UpdateRecord(_ context.Context, id uint, mutate func(*records.WeatherRecord)) (records.WeatherRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.weatherRecords[id]
	if !ok {
		return records.WeatherRecord{}, fmt.Errorf("weather record %d: %w", id, ErrNotFound)
	}
	mutate(&rec)
	rec.ID = id
	rec.UpdatedAt = s.now()
	s.weatherRecords[id] = rec
	return rec, nil
}

func (s *MemoryStore) DeleteRecord(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.weatherRecords[id]; !ok {
		return fmt.Errorf("weather record %d: %w", id, ErrNotFound)
	}
	delete(s.weatherRecords, id)
	return nil
}

func (s *MemoryStore) CreateSearch(_ context.Context, search *records.SimpleSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSearchID++
	search.ID = s.lastSearchID
	search.SearchedAt = s.now()
	s.searches[search.ID] = *search
	return nil
}

func (s *MemoryStore) GetSearch(_ context.Context, id uint) (records.SimpleSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search, ok := s.searches[id]
	if !ok {
		return records.SimpleSearch{}, fmt.Errorf("search %d: %w", id, ErrNotFound)
	}
	return search, nil
}

func (s *MemoryStore) ListSearches(_ context.Context, limit int) ([]records.SimpleSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]records.SimpleSearch, 0, len(s.searches))
	for _, search := range s.searches {
		out = append(out, search)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) DeleteSearch(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.searches[id]; !ok {
		return fmt.Errorf("search %d: %w", id, ErrNotFound)
	}
	delete(s.searches, id)
	return nil
}

func (s *MemoryStore) PruneSearches(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, search := range s.searches {
		if search.SearchedAt.Before(before) {
			delete(s.searches, id)
			n++
		}
	}
	return n, nil
}
