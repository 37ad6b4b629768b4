package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/location"
	"github.com/i474232898/weather-dashboard/internal/settings"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type stubFetcher struct {
	err error
}

func (f stubFetcher) Fetch(_ context.Context, c weather.Coordinate) (weather.WeatherRecord, error) {
	if f.err != nil {
		return weather.WeatherRecord{}, f.err
	}
	hourly := &weather.Hourly{}
	for i := 0; i < 48; i++ {
		hourly.Time = append(hourly.Time, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i)*time.Hour).Format("2006-01-02T15:04"))
		hourly.Temperature = append(hourly.Temperature, float64(i))
		hourly.PrecipitationProbability = append(hourly.PrecipitationProbability, 10)
	}
	return weather.NewRecord(c,
		weather.Address{Town: "Springfield", CountryCode: "us"},
		weather.Forecast{Current: weather.Current{Temperature: 21.5, WeatherCode: 61}, Hourly: hourly},
		time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
	), nil
}

type stubSearcher struct {
	results []location.Candidate
}

func (s stubSearcher) Search(context.Context, string) ([]location.Candidate, error) {
	return s.results, nil
}

type testEnv struct {
	app      *fiber.App
	session  *dashboard.Session
	settings *settings.Store
	history  *store.MemoryStore
	states   chan dashboard.State
}

func newTestEnv(t *testing.T, f dashboard.Fetcher) *testEnv {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC))
	history := store.NewMemoryStore(10, 0)
	session := dashboard.NewSession(f, dashboard.WithClock(clock), dashboard.WithStore(history))
	t.Cleanup(session.Close)

	states := make(chan dashboard.State, 64)
	session.Subscribe(func(st dashboard.State) { states <- st })

	search := location.NewSearchBox(stubSearcher{results: []location.Candidate{
		{ID: "1", Name: "Springfield, US", Lat: 39.8, Lon: -89.6},
		{ID: "2", Name: "Springfield, AU", Lat: -27.6, Lon: 152.9},
	}}, session.Load, nil)

	st := settings.NewStore(context.Background(), settings.NewFileBackend(t.TempDir()), nil)

	app := fiber.New()
	RegisterRoutes(app, Deps{
		Session:  session,
		Search:   search,
		Settings: st,
		History:  history,
	})

	return &testEnv{app: app, session: session, settings: st, history: history, states: states}
}

// waitFor drains state transitions until phase is reached.
func (e *testEnv) waitFor(t *testing.T, phase dashboard.Phase) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-e.states:
			if st.Phase == phase {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for phase %s", phase)
		}
	}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, body)
	}
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestDashboardLoaded(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})

	resp := env.do(t, http.MethodPost, "/api/v1/dashboard/locate", `{"lat":40.7,"lon":-74.0}`)
	expectStatus(t, resp, http.StatusAccepted)
	env.waitFor(t, dashboard.PhaseLoaded)

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard", "")
	expectStatus(t, resp, http.StatusOK)

	var view dashboardView
	decode(t, resp, &view)

	if view.Phase != dashboard.PhaseLoaded || view.Loading {
		t.Fatalf("expected loaded, not loading; got %+v", view)
	}
	if view.Weather == nil {
		t.Fatalf("expected weather block")
	}
	if view.Weather.Place.Name != "Springfield" || view.Weather.Place.Country != "US" {
		t.Fatalf("unexpected place %+v", view.Weather.Place)
	}
	if view.Weather.Current.Description != "Slight rain" {
		t.Fatalf("expected description %q, got %q", "Slight rain", view.Weather.Current.Description)
	}
	if n := len(view.Weather.Hourly.Time); n != weather.DisplayHours {
		t.Fatalf("expected %d hourly entries, got %d", weather.DisplayHours, n)
	}
	if view.Theme == nil || view.Theme.Season != "summer" {
		t.Fatalf("expected summer theme for northern July, got %+v", view.Theme)
	}
}

func TestDashboardErrorIsLocalized(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})
	_ = env.session.Locate(context.Background(), location.NewStaticPositioner(nil))
	env.waitFor(t, dashboard.PhaseError)

	resp := env.do(t, http.MethodGet, "/api/v1/dashboard?lang=en", "")
	expectStatus(t, resp, http.StatusOK)

	var view dashboardView
	decode(t, resp, &view)
	if view.Message != "Geolocation is not supported on this device." {
		t.Fatalf("unexpected message %q", view.Message)
	}
	if view.RetryLabel != "Retry" {
		t.Fatalf("unexpected retry label %q", view.RetryLabel)
	}
	if view.Weather != nil {
		t.Fatalf("error view must not carry weather")
	}

	// Stored language (Spanish by default) applies without the override.
	resp = env.do(t, http.MethodGet, "/api/v1/dashboard", "")
	decode(t, resp, &view)
	if view.Language != "es" || view.RetryLabel != "Reintentar" {
		t.Fatalf("expected Spanish view, got %+v", view)
	}
}

func TestRetryWithoutCoordinateConflicts(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})
	resp := env.do(t, http.MethodPost, "/api/v1/dashboard/retry", "")
	expectStatus(t, resp, http.StatusConflict)
}

func TestLocateValidation(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})

	resp := env.do(t, http.MethodPost, "/api/v1/dashboard/locate", `{"lat":40.7}`)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = env.do(t, http.MethodPost, "/api/v1/dashboard/locate", `not json`)
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestSearchAndSelect(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})

	resp := env.do(t, http.MethodGet, "/api/v1/locations/search?q=Springfield", "")
	expectStatus(t, resp, http.StatusOK)

	var found struct {
		Query   string               `json:"query"`
		Results []location.Candidate `json:"results"`
	}
	decode(t, resp, &found)
	if found.Query != "Springfield" || len(found.Results) != 2 {
		t.Fatalf("unexpected search response %+v", found)
	}

	resp = env.do(t, http.MethodPost, "/api/v1/locations/select/2", "")
	expectStatus(t, resp, http.StatusAccepted)
	env.waitFor(t, dashboard.PhaseLoaded)

	st := env.session.State()
	if st.Coordinate == nil || st.Coordinate.Lat != -27.6 {
		t.Fatalf("expected selected coordinate to be loaded, got %+v", st.Coordinate)
	}

	// Selection cleared the list.
	resp = env.do(t, http.MethodPost, "/api/v1/locations/select/2", "")
	expectStatus(t, resp, http.StatusNotFound)
}

func TestSettingsLanguage(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})

	resp := env.do(t, http.MethodPut, "/api/v1/settings/language", `{"language":"de"}`)
	expectStatus(t, resp, http.StatusOK)

	var got settings.Settings
	decode(t, resp, &got)
	if got.Language != "de" {
		t.Fatalf("expected language de, got %q", got.Language)
	}

	resp = env.do(t, http.MethodPut, "/api/v1/settings/language", `{"language":"fr"}`)
	expectStatus(t, resp, http.StatusBadRequest)
	if env.settings.Language() != "de" {
		t.Fatalf("rejected language must not change settings")
	}
}

func TestSavedLocations(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})

	resp := env.do(t, http.MethodPost, "/api/v1/settings/locations", `{"name":"Home","lat":-33.9,"lon":151.2}`)
	expectStatus(t, resp, http.StatusCreated)

	var loc settings.SavedLocation
	decode(t, resp, &loc)
	if loc.ID == "" || loc.Name != "Home" {
		t.Fatalf("unexpected saved location %+v", loc)
	}

	resp = env.do(t, http.MethodPost, "/api/v1/settings/locations", `{"name":"Nowhere","lat":95,"lon":0}`)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = env.do(t, http.MethodPost, "/api/v1/settings/locations/"+loc.ID+"/load", "")
	expectStatus(t, resp, http.StatusAccepted)
	env.waitFor(t, dashboard.PhaseLoaded)

	resp = env.do(t, http.MethodDelete, "/api/v1/settings/locations/"+loc.ID, "")
	expectStatus(t, resp, http.StatusNoContent)
	if len(env.settings.Get().Locations) != 0 {
		t.Fatalf("expected location to be removed")
	}

	resp = env.do(t, http.MethodPost, "/api/v1/settings/locations/"+loc.ID+"/load", "")
	expectStatus(t, resp, http.StatusNotFound)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})

	resp := env.do(t, http.MethodGet, "/api/v1/weather/history?lat=40.7&lon=-74.0", "")
	expectStatus(t, resp, http.StatusNotFound)

	env.do(t, http.MethodPost, "/api/v1/dashboard/locate", `{"lat":40.7,"lon":-74.0}`)
	env.waitFor(t, dashboard.PhaseLoaded)

	resp = env.do(t, http.MethodGet, "/api/v1/weather/history?lat=40.7&lon=-74.0&from=2024-07-01T00:00:00Z&to=2024-07-02T00:00:00Z", "")
	expectStatus(t, resp, http.StatusOK)

	var got struct {
		Records []weather.WeatherRecord `json:"records"`
	}
	decode(t, resp, &got)
	if len(got.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got.Records))
	}

	// to before from is rejected.
	resp = env.do(t, http.MethodGet, "/api/v1/weather/history?lat=40.7&lon=-74.0&from=1720000000&to=1710000000", "")
	expectStatus(t, resp, http.StatusBadRequest)

	resp = env.do(t, http.MethodGet, "/api/v1/weather/history?lat=40.7", "")
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestReplaceSettings(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})

	resp := env.do(t, http.MethodPut, "/api/v1/settings",
		`{"language":"en","locations":[{"id":"home","name":"Home","lat":-33.9,"lon":151.2},{"name":"Work","lat":51.5,"lon":-0.1}]}`)
	expectStatus(t, resp, http.StatusOK)

	var got settings.Settings
	decode(t, resp, &got)
	if got.Language != "en" || len(got.Locations) != 2 {
		t.Fatalf("unexpected settings %+v", got)
	}
	if got.Locations[0].ID != "home" {
		t.Fatalf("expected given id to be kept, got %q", got.Locations[0].ID)
	}
	if got.Locations[1].ID == "" {
		t.Fatalf("expected an id for the new location")
	}
	if _, ok := env.settings.Location(got.Locations[1].ID); !ok {
		t.Fatalf("replaced settings were not stored")
	}

	for _, body := range []string{
		`{"language":"fr","locations":[]}`,
		`{"language":"de","locations":[{"name":"Nowhere","lat":95,"lon":0}]}`,
		`{"language":"de","locations":[{"name":"","lat":1,"lon":1}]}`,
		`not json`,
	} {
		resp = env.do(t, http.MethodPut, "/api/v1/settings", body)
		expectStatus(t, resp, http.StatusBadRequest)
	}
	if env.settings.Language() != "en" || len(env.settings.Get().Locations) != 2 {
		t.Fatalf("rejected replacement must not change settings: %+v", env.settings.Get())
	}
}

func TestMessageCatalog(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})

	resp := env.do(t, http.MethodGet, "/api/v1/i18n?lang=de", "")
	expectStatus(t, resp, http.StatusOK)

	var got struct {
		Language  string            `json:"language"`
		Supported []string          `json:"supported"`
		Messages  map[string]string `json:"messages"`
	}
	decode(t, resp, &got)
	if got.Language != "de" || len(got.Supported) != 3 {
		t.Fatalf("unexpected catalog header %+v", got)
	}
	if got.Messages["retry"] != "Erneut versuchen" {
		t.Fatalf("expected German retry label, got %q", got.Messages["retry"])
	}

	// Without an override the stored language applies.
	resp = env.do(t, http.MethodGet, "/api/v1/i18n", "")
	decode(t, resp, &got)
	if got.Language != "es" || got.Messages["retry"] != "Reintentar" {
		t.Fatalf("expected Spanish catalog, got %s / %q", got.Language, got.Messages["retry"])
	}
}

func TestLatestWeather(t *testing.T) {
	env := newTestEnv(t, stubFetcher{})

	resp := env.do(t, http.MethodGet, "/api/v1/weather/latest?lat=40.7&lon=-74.0", "")
	expectStatus(t, resp, http.StatusNotFound)

	env.do(t, http.MethodPost, "/api/v1/dashboard/locate", `{"lat":40.7,"lon":-74.0}`)
	env.waitFor(t, dashboard.PhaseLoaded)

	resp = env.do(t, http.MethodGet, "/api/v1/weather/latest?lat=40.7&lon=-74.0", "")
	expectStatus(t, resp, http.StatusOK)

	var got weatherView
	decode(t, resp, &got)
	if got.Place.Name != "Springfield" {
		t.Fatalf("unexpected place %+v", got.Place)
	}
	if got.Hourly == nil || len(got.Hourly.Time) != weather.DisplayHours {
		t.Fatalf("expected a %d hour window", weather.DisplayHours)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/weather/latest?lat=abc&lon=1", "")
	expectStatus(t, resp, http.StatusBadRequest)
}
