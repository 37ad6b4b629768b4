package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrFetch marks a failed combined fetch. Either upstream failing is enough.
var ErrFetch = errors.New("weather fetch failed")

// DefaultCallTimeout bounds each upstream call.
const DefaultCallTimeout = 10 * time.Second

// Fetcher combines reverse geocoding and the forecast into a WeatherRecord.
type Fetcher struct {
	geocoder   Geocoder
	forecaster Forecaster
	timeout    time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewFetcher creates a new Fetcher. A non-positive timeout falls back to DefaultCallTimeout.
func NewFetcher(geocoder Geocoder, forecaster Forecaster, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		geocoder:   geocoder,
		forecaster: forecaster,
		timeout:    timeout,
		now:        time.Now,
		logger:     logger,
	}
}

// Fetch calls both upstreams concurrently and waits for both to settle.
// There is no partial success: if either call fails the whole fetch fails.
func (f *Fetcher) Fetch(ctx context.Context, c Coordinate) (WeatherRecord, error) {
	if f.geocoder == nil || f.forecaster == nil {
		return WeatherRecord{}, fmt.Errorf("%w: no upstreams configured", ErrFetch)
	}

	var (
		wg          sync.WaitGroup
		addr        Address
		forecast    Forecast
		geoErr      error
		forecastErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		addr, geoErr = f.geocoder.Reverse(callCtx, c)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		forecast, forecastErr = f.forecaster.Forecast(callCtx, c)
	}()

	wg.Wait()

	if geoErr != nil {
		f.logger.Warn("reverse geocoding failed",
			zap.String("provider", f.geocoder.Name()),
			zap.String("coordinate", c.Key()),
			zap.Error(geoErr))
		geoErr = fmt.Errorf("%s: %w", f.geocoder.Name(), geoErr)
	}
	if forecastErr != nil {
		f.logger.Warn("forecast failed",
			zap.String("provider", f.forecaster.Name()),
			zap.String("coordinate", c.Key()),
			zap.Error(forecastErr))
		forecastErr = fmt.Errorf("%s: %w", f.forecaster.Name(), forecastErr)
	}
	if err := errors.Join(geoErr, forecastErr); err != nil {
		return WeatherRecord{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	return NewRecord(c, addr, forecast, f.now()), nil
}
