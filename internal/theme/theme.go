// Package theme maps the calendar month and hemisphere to a season and its
// visual bundle. Everything here is pure.
package theme

// Season is one of the four astronomical seasons.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// Theme is the style bundle for a season. Values are opaque tokens for the client.
type Theme struct {
	Season     Season `json:"season"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Card       string `json:"card"`
	Icon       string `json:"icon"`
}

// SeasonFor resolves the season for a latitude and a 1-based month.
// Only strictly positive latitudes count as northern; the equator takes the
// southern bands.
func SeasonFor(lat float64, month int) Season {
	northern := lat > 0

	var s Season
	switch {
	case month >= 3 && month <= 5:
		s = Spring
	case month >= 6 && month <= 8:
		s = Summer
	case month >= 9 && month <= 11:
		s = Autumn
	default:
		s = Winter
	}
	if northern {
		return s
	}
	return Mirror(s)
}

// Mirror returns the season of the opposite hemisphere.
func Mirror(s Season) Season {
	switch s {
	case Spring:
		return Autumn
	case Summer:
		return Winter
	case Autumn:
		return Spring
	case Winter:
		return Summer
	}
	return s
}

var themes = map[Season]Theme{
	Spring: {
		Season:     Spring,
		Background: "from-pink-200 via-rose-200 to-pink-300",
		Text:       "text-gray-800",
		Card:       "bg-white/70",
		Icon:       "🌸",
	},
	Summer: {
		Season:     Summer,
		Background: "from-sky-400 via-blue-300 to-sky-300",
		Text:       "text-gray-800",
		Card:       "bg-white/60",
		Icon:       "☀️",
	},
	Autumn: {
		Season:     Autumn,
		Background: "from-amber-200 via-orange-200 to-yellow-200",
		Text:       "text-gray-800",
		Card:       "bg-white/70",
		Icon:       "🍂",
	},
	Winter: {
		Season:     Winter,
		Background: "from-blue-900 via-slate-800 to-blue-800",
		Text:       "text-white",
		Card:       "bg-white/20",
		Icon:       "❄️",
	},
}

// For returns the theme of a season. Unknown seasons get winter's bundle.
func For(s Season) Theme {
	if t, ok := themes[s]; ok {
		return t
	}
	return themes[Winter]
}
