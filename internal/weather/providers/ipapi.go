package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/location"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultIPAPIURL asks ip-api.com for just the fields we read.
const DefaultIPAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// ipLookupRetries bounds extra attempts within the positioning timeout.
const ipLookupRetries = 2

// IPPositioner implements location.Positioner using IP geolocation.
// HighAccuracy is accepted but has no effect: IP lookups have one precision.
type IPPositioner struct {
	name    string
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time

	mu      sync.Mutex
	last    *weather.Coordinate
	lastFix time.Time
}

func NewIPPositioner(client *http.Client, rawURL string) *IPPositioner {
	if rawURL == "" {
		rawURL = DefaultIPAPIURL
	}
	return &IPPositioner{
		name:    "ipapi",
		url:     rawURL,
		httpCfg: withBackoff(client, ipLookupRetries),
		circuit: newCircuit("ipapi"),
		now:     time.Now,
	}
}

func (p *IPPositioner) Position(ctx context.Context, opts location.Options) (weather.Coordinate, error) {
	if c, ok := p.cached(opts.MaximumAge); ok {
		return c, nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.url, &payload); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden) {
			return weather.Coordinate{}, fmt.Errorf("%w: %v", location.ErrPermissionDenied, err)
		}
		return weather.Coordinate{}, fmt.Errorf("%w: %v", location.ErrFailed, err)
	}
	// The lookup itself worked but has no position for this address.
	if payload.Status != "success" {
		return weather.Coordinate{}, fmt.Errorf("%w: %s", location.ErrUnavailable, payload.Message)
	}

	c := weather.Coordinate{Lat: payload.Lat, Lon: payload.Lon}

	p.mu.Lock()
	p.last = &c
	p.lastFix = p.now()
	p.mu.Unlock()

	return c, nil
}

// cached returns the previous fix if it is younger than maxAge.
func (p *IPPositioner) cached(maxAge time.Duration) (weather.Coordinate, bool) {
	if maxAge <= 0 {
		return weather.Coordinate{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil || p.now().Sub(p.lastFix) > maxAge {
		return weather.Coordinate{}, false
	}
	return *p.last, true
}
