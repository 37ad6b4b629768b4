package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const openMeteoBody = `{
  "current": {
    "temperature_2m": 21.4,
    "relative_humidity_2m": 63,
    "apparent_temperature": 22.1,
    "wind_speed_10m": 11.2,
    "weather_code": 61
  },
  "hourly": {
    "time": ["2024-07-01T00:00", "2024-07-01T01:00"],
    "temperature_2m": [19.8, 19.1],
    "precipitation_probability": [40, 55]
  }
}`

func TestOpenMeteoForecast(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{
			"latitude":  q.Get("latitude"),
			"longitude": q.Get("longitude"),
			"current":   q.Get("current"),
			"hourly":    q.Get("hourly"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openMeteoBody))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL)
	coord := weather.Coordinate{Lat: 40.7, Lon: -74}
	fc, err := p.Forecast(context.Background(), coord)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	if query["latitude"] != "40.7" || query["longitude"] != "-74" {
		t.Fatalf("unexpected coordinate params %v", query)
	}
	if query["current"] != openMeteoCurrentFields || query["hourly"] != openMeteoHourlyFields {
		t.Fatalf("unexpected field params %v", query)
	}

	want := weather.Current{Temperature: 21.4, Humidity: 63, ApparentTemperature: 22.1, WindSpeed: 11.2, WeatherCode: 61}
	if fc.Current != want {
		t.Fatalf("current = %+v, want %+v", fc.Current, want)
	}
	if fc.Hourly == nil || len(fc.Hourly.Time) != 2 || fc.Hourly.PrecipitationProbability[1] != 55 {
		t.Fatalf("unexpected hourly %+v", fc.Hourly)
	}

	rec := weather.NewRecord(coord, weather.Address{City: "New York", CountryCode: "us"}, fc, time.Now())
	if rec.Current.Description != "Slight rain" {
		t.Fatalf("expected %q, got %q", "Slight rain", rec.Current.Description)
	}
}

func TestOpenMeteoPartialHourlyIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":1,"weather_code":0},"hourly":{"time":["t"],"temperature_2m":[1]}}`))
	}))
	defer srv.Close()

	fc, err := NewOpenMeteoProvider(srv.Client(), srv.URL).Forecast(context.Background(), weather.Coordinate{})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if fc.Hourly != nil {
		t.Fatalf("expected hourly to be absent when a sequence is missing, got %+v", fc.Hourly)
	}
}

func TestOpenMeteoErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusBadGateway, "", errServerError},
		{"rate limited", http.StatusTooManyRequests, "", errRateLimited},
		{"bad request", http.StatusBadRequest, `{"error":true}`, errUnexpected},
		{"no current block", http.StatusOK, `{"hourly":null}`, nil},
		{"malformed body", http.StatusOK, `{`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenMeteoProvider(srv.Client(), srv.URL).Forecast(context.Background(), weather.Coordinate{})
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
