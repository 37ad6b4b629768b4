package providers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/location"
)

// GoogleSearchProvider implements location.Searcher with the Google Geocoding API.
// Google resolves free text to a single best match, so at most one candidate is returned.
type GoogleSearchProvider struct {
	name string
}

// NewGoogleSearchProvider configures the geocoder package with apiKey.
// The key is package-global in kelvins/geocoder, so only one instance should exist.
func NewGoogleSearchProvider(apiKey string) *GoogleSearchProvider {
	geocoder.ApiKey = apiKey
	return &GoogleSearchProvider{name: "google"}
}

func (p *GoogleSearchProvider) Name() string {
	return p.name
}

func (p *GoogleSearchProvider) Search(ctx context.Context, query string) ([]location.Candidate, error) {
	if query == "" {
		return nil, nil
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)

	// geocoder has no context support; the goroutine is abandoned on cancellation.
	go func() {
		loc, err := geocoder.Geocoding(geocoder.Address{City: query})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("google geocoding: %w", r.err)
		}
		return []location.Candidate{{
			ID:   "google:" + strconv.FormatFloat(r.loc.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(r.loc.Longitude, 'f', 6, 64),
			Name: query,
			Lat:  r.loc.Latitude,
			Lon:  r.loc.Longitude,
		}}, nil
	}
}
