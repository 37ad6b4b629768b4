package weather

import "strings"

// descriptions follows the WMO weather interpretation codes used by Open-Meteo.
var descriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Describe maps a weather code to its English description, or "Unknown".
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Unknown"
}

// ResolvePlace picks the first non-empty of city, town and village.
func ResolvePlace(addr Address) Place {
	name := UnknownPlace
	for _, candidate := range []string{addr.City, addr.Town, addr.Village} {
		if candidate != "" {
			name = candidate
			break
		}
	}
	return Place{
		Name:    name,
		Country: strings.ToUpper(addr.CountryCode),
	}
}
