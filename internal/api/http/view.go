package httpapi

import (
	"time"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/i18n"
	"github.com/i474232898/weather-dashboard/internal/theme"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// dashboardView is what the client renders. It is a pure function of the
// session state, the active language and the current month.
type dashboardView struct {
	Phase      dashboard.Phase `json:"phase"`
	Loading    bool            `json:"loading"`
	Attempt    int             `json:"attempt"`
	RetryInMs  int64           `json:"retryInMs,omitempty"`
	Message    string          `json:"message,omitempty"`
	RetryLabel string          `json:"retryLabel,omitempty"`
	Language   i18n.Language   `json:"language"`
	Theme      *theme.Theme    `json:"theme,omitempty"`
	Weather    *weatherView    `json:"weather,omitempty"`
}

type weatherView struct {
	Place     weather.Place   `json:"place"`
	Current   weather.Current `json:"current"`
	Hourly    *weather.Hourly `json:"hourly,omitempty"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

func buildView(st dashboard.State, lang i18n.Language, now time.Time) dashboardView {
	v := dashboardView{
		Phase:     st.Phase,
		Loading:   st.Loading(),
		Attempt:   st.Attempt,
		RetryInMs: st.RetryIn.Milliseconds(),
		Language:  lang,
	}

	switch st.Phase {
	case dashboard.PhaseError:
		v.Message = i18n.T(lang, st.ErrorKey)
		v.RetryLabel = i18n.T(lang, i18n.KeyRetry)
	case dashboard.PhaseLoaded:
		if st.Record == nil {
			break
		}
		var lat float64
		if st.Coordinate != nil {
			lat = st.Coordinate.Lat
		}
		t := theme.For(theme.SeasonFor(lat, int(now.Month())))
		v.Theme = &t
		v.Weather = newWeatherView(*st.Record)
	}
	return v
}

func newWeatherView(rec weather.WeatherRecord) *weatherView {
	return &weatherView{
		Place:     rec.Place,
		Current:   rec.Current,
		Hourly:    rec.Hourly.Window(weather.DisplayHours),
		FetchedAt: rec.FetchedAt,
	}
}
