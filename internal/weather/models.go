package weather

import (
	"strconv"
	"time"
)

// UnknownPlace is used when the geocoder returns no usable locality.
const UnknownPlace = "Unknown"

// DisplayHours is the number of hourly entries shown on the dashboard.
const DisplayHours = 24

// Coordinate is a latitude/longitude pair. No range validation is applied.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key returns a canonical string key for indexing this coordinate in stores.
func (c Coordinate) Key() string {
	return strconv.FormatFloat(c.Lat, 'f', 4, 64) + ":" + strconv.FormatFloat(c.Lon, 'f', 4, 64)
}

// Address is the subset of a reverse-geocoding result we care about.
type Address struct {
	City        string
	Town        string
	Village     string
	CountryCode string
}

// Place is the resolved, display-ready location name.
type Place struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Current holds the current-conditions block of a forecast.
type Current struct {
	Temperature         float64 `json:"temperature"`
	Humidity            float64 `json:"humidity"`
	ApparentTemperature float64 `json:"apparentTemperature"`
	WindSpeed           float64 `json:"windSpeed"`
	WeatherCode         int     `json:"weatherCode"`
	Description         string  `json:"description"`
}

// Hourly holds parallel, time-indexed sequences.
// Either all three sequences are present or the whole value is nil.
type Hourly struct {
	Time                     []string  `json:"time"`
	Temperature              []float64 `json:"temperature"`
	PrecipitationProbability []float64 `json:"precipitationProbability"`
}

// Window returns the first n entries of every sequence. When the source sequences
// differ in length the shortest one bounds the window, so the result is always
// rectangular.
func (h *Hourly) Window(n int) *Hourly {
	if h == nil {
		return nil
	}
	size := min(n, len(h.Time), len(h.Temperature), len(h.PrecipitationProbability))
	if size < 0 {
		size = 0
	}
	return &Hourly{
		Time:                     append([]string(nil), h.Time[:size]...),
		Temperature:              append([]float64(nil), h.Temperature[:size]...),
		PrecipitationProbability: append([]float64(nil), h.PrecipitationProbability[:size]...),
	}
}

// Forecast is the normalized payload returned by a Forecaster.
type Forecast struct {
	Current Current
	Hourly  *Hourly
}

// WeatherRecord is the combined result of one successful fetch.
// It is never mutated after construction.
type WeatherRecord struct {
	Coordinate Coordinate `json:"coordinate"`
	FetchedAt  time.Time  `json:"fetchedAt"` // always UTC
	Current    Current    `json:"current"`
	Place      Place      `json:"place"`
	Hourly     *Hourly    `json:"hourly,omitempty"`
}

// NewRecord builds a WeatherRecord from the two upstream results.
func NewRecord(coord Coordinate, addr Address, fc Forecast, fetchedAt time.Time) WeatherRecord {
	cur := fc.Current
	cur.Description = Describe(cur.WeatherCode)

	return WeatherRecord{
		Coordinate: coord,
		FetchedAt:  fetchedAt.UTC(),
		Current:    cur,
		Place:      ResolvePlace(addr),
		Hourly:     fc.Hourly,
	}
}
