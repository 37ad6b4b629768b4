package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-dashboard/internal/location"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultMapsCoURL is the geocode.maps.co API root.
const DefaultMapsCoURL = "https://geocode.maps.co"

// MapsCoProvider implements weather.Geocoder (reverse) and location.Searcher
// (forward) against geocode.maps.co. Both directions share one rate limiter.
type MapsCoProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	limiter *rate.Limiter

	// Separate breakers so a failing search cannot block weather fetches.
	reverseCircuit *gobreaker.CircuitBreaker
	searchCircuit  *gobreaker.CircuitBreaker
}

// NewMapsCoProvider creates the geocoding client. rps is the sustained request
// rate allowed against the API; a non-positive value disables limiting.
func NewMapsCoProvider(client *http.Client, baseURL, apiKey string, rps float64) *MapsCoProvider {
	if baseURL == "" {
		baseURL = DefaultMapsCoURL
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &MapsCoProvider{
		name:    "mapsco",
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: singleShot(client),
		limiter: rate.NewLimiter(limit, 1),

		reverseCircuit: newCircuit("mapsco-reverse"),
		searchCircuit:  newCircuit("mapsco-search"),
	}
}

func (p *MapsCoProvider) Name() string {
	return p.name
}

func (p *MapsCoProvider) endpoint(path string, values url.Values) string {
	if p.apiKey != "" {
		values.Set("api_key", p.apiKey)
	}
	return fmt.Sprintf("%s/%s?%s", p.baseURL, path, values.Encode())
}

func (p *MapsCoProvider) wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return nil
}

func (p *MapsCoProvider) Reverse(ctx context.Context, c weather.Coordinate) (weather.Address, error) {
	if err := p.wait(ctx); err != nil {
		return weather.Address{}, err
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))

	var payload struct {
		Address struct {
			City        string `json:"city"`
			Town        string `json:"town"`
			Village     string `json:"village"`
			CountryCode string `json:"country_code"`
		} `json:"address"`
	}
	if err := getJSON(ctx, p.httpCfg, p.reverseCircuit, p.endpoint("reverse", values), &payload); err != nil {
		return weather.Address{}, err
	}

	return weather.Address{
		City:        payload.Address.City,
		Town:        payload.Address.Town,
		Village:     payload.Address.Village,
		CountryCode: payload.Address.CountryCode,
	}, nil
}

type mapsCoSearchResult struct {
	PlaceID     any    `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (p *MapsCoProvider) Search(ctx context.Context, query string) ([]location.Candidate, error) {
	if query == "" {
		return nil, nil
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("q", query)

	var payload []mapsCoSearchResult
	if err := getJSON(ctx, p.httpCfg, p.searchCircuit, p.endpoint("search", values), &payload); err != nil {
		return nil, err
	}

	candidates := make([]location.Candidate, 0, min(len(payload), location.MaxCandidates))
	for _, r := range payload {
		if len(candidates) == location.MaxCandidates {
			break
		}
		// Entries without usable coordinates are skipped, not fatal.
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			continue
		}
		candidates = append(candidates, location.Candidate{
			ID:   placeID(r.PlaceID),
			Name: r.DisplayName,
			Lat:  lat,
			Lon:  lon,
		})
	}
	return candidates, nil
}

// placeID normalizes place_id, which the API serves as a number or a string.
func placeID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
