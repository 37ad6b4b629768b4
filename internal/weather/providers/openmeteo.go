package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultOpenMeteoURL is the public forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

const (
	openMeteoCurrentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,wind_speed_10m,weather_code"
	openMeteoHourlyFields  = "temperature_2m,precipitation_probability"
)

// OpenMeteoProvider implements weather.Forecaster for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: singleShot(client),
		circuit: newCircuit("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoPayload struct {
	Current *struct {
		Temperature         float64 `json:"temperature_2m"`
		Humidity            float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
	Hourly *struct {
		Time                     []string  `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
	} `json:"hourly"`
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, c weather.Coordinate) (weather.Forecast, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	values.Set("current", openMeteoCurrentFields)
	values.Set("hourly", openMeteoHourlyFields)

	var payload openMeteoPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), &payload); err != nil {
		return weather.Forecast{}, err
	}
	if payload.Current == nil {
		return weather.Forecast{}, fmt.Errorf("openmeteo response has no current block")
	}

	fc := weather.Forecast{
		Current: weather.Current{
			Temperature:         payload.Current.Temperature,
			Humidity:            payload.Current.Humidity,
			ApparentTemperature: payload.Current.ApparentTemperature,
			WindSpeed:           payload.Current.WindSpeed,
			WeatherCode:         payload.Current.WeatherCode,
		},
	}

	// Hourly is all-or-nothing.
	if h := payload.Hourly; h != nil && h.Time != nil && h.Temperature != nil && h.PrecipitationProbability != nil {
		fc.Hourly = &weather.Hourly{
			Time:                     h.Time,
			Temperature:              h.Temperature,
			PrecipitationProbability: h.PrecipitationProbability,
		}
	}

	return fc, nil
}
