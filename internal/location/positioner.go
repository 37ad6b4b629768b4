package location

import (
	"context"
	"errors"
	"time"

	"github.com/i474232898/weather-dashboard/internal/i18n"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Positioning failure kinds. None of them is retried automatically.
// ErrFailed covers timeouts and any other error of a supported capability; it
// shares the denial message.
var (
	ErrUnsupported      = errors.New("positioning not supported")
	ErrPermissionDenied = errors.New("positioning denied")
	ErrUnavailable      = errors.New("position unavailable")
	ErrFailed           = errors.New("positioning failed")
)

// Options mirrors the one-shot positioning request options.
type Options struct {
	Timeout      time.Duration
	MaximumAge   time.Duration // 0 means never reuse a previous fix
	HighAccuracy bool
}

// DefaultOptions is what the dashboard requests at startup.
func DefaultOptions() Options {
	return Options{
		Timeout:      10 * time.Second,
		MaximumAge:   0,
		HighAccuracy: true,
	}
}

// Positioner obtains the device's current coordinate.
type Positioner interface {
	Position(ctx context.Context, opts Options) (weather.Coordinate, error)
}

// MessageKey returns the i18n key describing a positioning error.
func MessageKey(err error) i18n.Key {
	switch {
	case errors.Is(err, ErrUnsupported):
		return i18n.KeyLocationNotSupported
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrFailed):
		return i18n.KeyEnableLocation
	case errors.Is(err, ErrUnavailable):
		return i18n.KeyLocationUnavailable
	default:
		return i18n.KeyEnableLocation
	}
}

// StaticPositioner returns a fixed, configured coordinate.
type StaticPositioner struct {
	fix *weather.Coordinate
}

// NewStaticPositioner creates a positioner. A nil fix behaves like a device
// without positioning support.
func NewStaticPositioner(fix *weather.Coordinate) *StaticPositioner {
	return &StaticPositioner{fix: fix}
}

func (p *StaticPositioner) Position(ctx context.Context, _ Options) (weather.Coordinate, error) {
	if p.fix == nil {
		return weather.Coordinate{}, ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return weather.Coordinate{}, errors.Join(ErrFailed, err)
	}
	return *p.fix, nil
}
