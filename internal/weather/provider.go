package weather

import (
	"context"
	"time"
)

// Geocoder resolves a coordinate to an address (reverse geocoding).
type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, c Coordinate) (Address, error)
}

// Forecaster fetches current conditions and the hourly forecast for a coordinate.
type Forecaster interface {
	Name() string
	Forecast(ctx context.Context, c Coordinate) (Forecast, error)
}

// Store is the contract the in-memory record history must satisfy.
type Store interface {
	SaveRecord(rec WeatherRecord)
	GetLatest(c Coordinate) (WeatherRecord, error)
	GetRange(c Coordinate, from, to time.Time) ([]WeatherRecord, error)
}
