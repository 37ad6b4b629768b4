package location

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// MaxCandidates is how many search matches are kept.
const MaxCandidates = 5

// Candidate is a single forward-geocoding match.
type Candidate struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Coordinate returns the candidate's position.
func (c Candidate) Coordinate() weather.Coordinate {
	return weather.Coordinate{Lat: c.Lat, Lon: c.Lon}
}

// Searcher resolves free text to candidate places (forward geocoding).
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// SearchBox holds the query text and the current candidate list.
type SearchBox struct {
	mu       sync.RWMutex
	searcher Searcher
	onSelect func(weather.Coordinate)
	logger   *zap.Logger

	query   string
	results []Candidate
}

// NewSearchBox creates a SearchBox. onSelect is called with the chosen coordinate.
func NewSearchBox(searcher Searcher, onSelect func(weather.Coordinate), logger *zap.Logger) *SearchBox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchBox{
		searcher: searcher,
		onSelect: onSelect,
		logger:   logger,
	}
}

// Submit runs a search. Failures are logged and otherwise ignored: the previous
// results are kept and nothing is surfaced to the user.
func (b *SearchBox) Submit(ctx context.Context, query string) []Candidate {
	b.mu.Lock()
	b.query = query
	b.mu.Unlock()

	found, err := b.searcher.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		b.logger.Error("location search failed", zap.String("query", query), zap.Error(err))
		return b.Results()
	}
	if len(found) > MaxCandidates {
		found = found[:MaxCandidates]
	}

	b.mu.Lock()
	b.results = append([]Candidate(nil), found...)
	b.mu.Unlock()

	return b.Results()
}

// Select picks a candidate by id, hands its coordinate to the selection callback
// and clears both the candidate list and the query text.
func (b *SearchBox) Select(id string) (Candidate, bool) {
	b.mu.Lock()
	var (
		picked Candidate
		found  bool
	)
	for _, c := range b.results {
		if c.ID == id {
			picked, found = c, true
			break
		}
	}
	if found {
		b.results = nil
		b.query = ""
	}
	b.mu.Unlock()

	if !found {
		return Candidate{}, false
	}
	if b.onSelect != nil {
		b.onSelect(picked.Coordinate())
	}
	return picked, true
}

// Query returns the current query text.
func (b *SearchBox) Query() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.query
}

// Results returns a copy of the current candidates.
func (b *SearchBox) Results() []Candidate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Candidate{}, b.results...)
}
