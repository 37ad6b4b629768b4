package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/i18n"
)

// StorageKey is the single key holding the serialized settings.
const StorageKey = "weather-settings"

var (
	// ErrNotFound is returned by a Backend when the key has never been written.
	ErrNotFound = errors.New("settings not found")
	// ErrInvalid wraps validation failures of a mutation.
	ErrInvalid = errors.New("invalid settings")
)

var validate = validator.New()

// SavedLocation is a user-saved place.
type SavedLocation struct {
	ID   string  `json:"id"`
	Name string  `json:"name" validate:"required"`
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Settings is the whole persisted user state.
type Settings struct {
	Language  i18n.Language   `json:"language" validate:"oneof=es en de"`
	Locations []SavedLocation `json:"locations" validate:"dive"`
}

// Defaults is what a fresh install (or an unreadable blob) starts with.
func Defaults() Settings {
	return Settings{
		Language:  i18n.Default,
		Locations: []SavedLocation{},
	}
}

func (s Settings) clone() Settings {
	out := s
	out.Locations = append([]SavedLocation{}, s.Locations...)
	return out
}

// Backend is durable key/value storage for the serialized settings.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Store owns the single settings instance. It loads once on construction and
// writes the whole instance back on every mutation.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	current Settings
	logger  *zap.Logger
}

// NewStore reads the persisted blob. Absent or malformed data falls back to
// Defaults; a readable blob is used as-is without validation.
func NewStore(ctx context.Context, backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		backend: backend,
		current: Defaults(),
		logger:  logger,
	}

	data, err := backend.Load(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Debug("settings unreadable, using defaults", zap.Error(err))
		}
		return s
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Debug("settings malformed, using defaults", zap.Error(err))
		return s
	}
	if loaded.Locations == nil {
		loaded.Locations = []SavedLocation{}
	}
	s.current = loaded
	return s
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Language is a shortcut for Get().Language.
func (s *Store) Language() i18n.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Language
}

// Replace swaps in a whole new settings value and persists it. Locations
// without an id get a fresh one.
func (s *Store) Replace(ctx context.Context, next Settings) error {
	next = next.clone()
	for i := range next.Locations {
		if next.Locations[i].ID == "" {
			next.Locations[i].ID = uuid.NewString()
		}
	}
	if err := validate.Struct(next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return s.mutate(ctx, func(Settings) Settings { return next })
}

// SetLanguage changes the UI language.
func (s *Store) SetLanguage(ctx context.Context, lang i18n.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("%w: unsupported language %q", ErrInvalid, lang)
	}
	return s.mutate(ctx, func(cur Settings) Settings {
		cur.Language = lang
		return cur
	})
}

// AddLocation saves a new place and returns it with its generated id.
func (s *Store) AddLocation(ctx context.Context, name string, lat, lon float64) (SavedLocation, error) {
	loc := SavedLocation{
		ID:   uuid.NewString(),
		Name: name,
		Lat:  lat,
		Lon:  lon,
	}
	if err := validate.Struct(loc); err != nil {
		return SavedLocation{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	err := s.mutate(ctx, func(cur Settings) Settings {
		cur.Locations = append(cur.Locations, loc)
		return cur
	})
	if err != nil {
		return SavedLocation{}, err
	}
	return loc, nil
}

// RemoveLocation drops the saved place with the given id. Unknown ids are not an error.
func (s *Store) RemoveLocation(ctx context.Context, id string) error {
	return s.mutate(ctx, func(cur Settings) Settings {
		kept := make([]SavedLocation, 0, len(cur.Locations))
		for _, loc := range cur.Locations {
			if loc.ID != id {
				kept = append(kept, loc)
			}
		}
		cur.Locations = kept
		return cur
	})
}

// Location looks up a saved place by id.
func (s *Store) Location(id string) (SavedLocation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, loc := range s.current.Locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return SavedLocation{}, false
}

// mutate replaces the instance and synchronously writes the full object back.
// The in-memory value is replaced even if the write fails.
func (s *Store) mutate(ctx context.Context, fn func(Settings) Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.current.clone())
	s.current = next

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.backend.Save(ctx, StorageKey, data); err != nil {
		s.logger.Error("failed to persist settings", zap.Error(err))
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}
