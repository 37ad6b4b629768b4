package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ErrNotFound is returned when a coordinate has no records in the requested window.
var ErrNotFound = errors.New("no weather records for coordinate")

// timeline is the per-coordinate history, ordered by FetchedAt.
type timeline []weather.WeatherRecord

// insert keeps the timeline ordered even if records arrive out of order.
func (t timeline) insert(rec weather.WeatherRecord) timeline {
	i := sort.Search(len(t), func(i int) bool { return t[i].FetchedAt.After(rec.FetchedAt) })
	t = append(t, weather.WeatherRecord{})
	copy(t[i+1:], t[i:])
	t[i] = rec
	return t
}

// retain drops records beyond maxLen or older than cutoff. The newest record
// always survives.
func (t timeline) retain(maxLen int, cutoff time.Time) timeline {
	if maxLen > 0 && len(t) > maxLen {
		t = t[len(t)-maxLen:]
	}
	if !cutoff.IsZero() {
		keepFrom := sort.Search(len(t)-1, func(i int) bool { return !t[i].FetchedAt.Before(cutoff) })
		t = t[keepFrom:]
	}
	return append(timeline(nil), t...)
}

// between returns a copy of the records with from <= FetchedAt <= to.
func (t timeline) between(from, to time.Time) []weather.WeatherRecord {
	lo := sort.Search(len(t), func(i int) bool { return !t[i].FetchedAt.Before(from) })
	hi := sort.Search(len(t), func(i int) bool { return t[i].FetchedAt.After(to) })
	if lo >= hi {
		return nil
	}
	return append([]weather.WeatherRecord(nil), t[lo:hi]...)
}

// MemoryStore keeps recent successful fetches per coordinate key. It is safe
// for concurrent use; the dashboard session writes and the HTTP layer reads.
type MemoryStore struct {
	mu        sync.RWMutex
	timelines map[string]timeline

	maxHistory int           // <= 0: unlimited
	maxAge     time.Duration // <= 0: unlimited
	now        func() time.Time
}

func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		timelines:  make(map[string]timeline),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveRecord files rec under its coordinate and applies retention.
func (s *MemoryStore) SaveRecord(rec weather.WeatherRecord) {
	var cutoff time.Time
	if s.maxAge > 0 {
		cutoff = s.now().Add(-s.maxAge)
	}

	key := rec.Coordinate.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timelines[key] = s.timelines[key].insert(rec).retain(s.maxHistory, cutoff)
}

// GetLatest returns the most recent record for a coordinate.
func (s *MemoryStore) GetLatest(c weather.Coordinate) (weather.WeatherRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.timelines[c.Key()]
	if len(t) == 0 {
		return weather.WeatherRecord{}, ErrNotFound
	}
	return t[len(t)-1], nil
}

// GetRange returns the records fetched within [from, to].
func (s *MemoryStore) GetRange(c weather.Coordinate, from, to time.Time) ([]weather.WeatherRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.timelines[c.Key()].between(from, to)
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}
