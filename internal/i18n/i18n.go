// Package i18n holds the dashboard's user-facing strings for the supported locales.
package i18n

import (
	"golang.org/x/text/language"
)

// Language is one of the supported locale codes.
type Language string

const (
	Spanish Language = "es"
	English Language = "en"
	German  Language = "de"
)

// Default is used when nothing else is configured or stored.
const Default = Spanish

// Key identifies a translatable message.
type Key string

const (
	KeyError                Key = "error"
	KeyRetry                Key = "retry"
	KeyEnableLocation       Key = "enableLocation"
	KeyLocationNotSupported Key = "locationNotSupported"
	KeyLocationUnavailable  Key = "locationUnavailable"
	KeySearchPlaceholder    Key = "searchPlaceholder"
	KeySettings             Key = "settings"
	KeyLanguage             Key = "language"
	KeySavedLocations       Key = "savedLocations"
	KeyTemperature          Key = "temperature"
	KeyPrecipitation        Key = "precipitation"
	KeyHumidity             Key = "humidity"
	KeyFeelsLike            Key = "feelsLike"
	KeyWind                 Key = "wind"
	KeySpanish              Key = "spanish"
	KeyEnglish              Key = "english"
	KeyGerman               Key = "german"
)

var supported = []Language{Spanish, English, German}

var matcher = language.NewMatcher([]language.Tag{
	language.Spanish,
	language.English,
	language.German,
})

// Supported returns the closed set of locale codes in display order.
func Supported() []Language {
	return append([]Language(nil), supported...)
}

// Valid reports whether l is a supported locale code.
func (l Language) Valid() bool {
	for _, s := range supported {
		if s == l {
			return true
		}
	}
	return false
}

// T returns the message for key in lang, falling back to English and then to the key.
func T(lang Language, key Key) string {
	if msg, ok := catalog[lang][key]; ok {
		return msg
	}
	if msg, ok := catalog[English][key]; ok {
		return msg
	}
	return string(key)
}

// Messages returns the full catalog for lang, with English filling any gaps.
func Messages(lang Language) map[Key]string {
	out := make(map[Key]string, len(catalog[English]))
	for key, msg := range catalog[English] {
		out[key] = msg
	}
	for key, msg := range catalog[lang] {
		out[key] = msg
	}
	return out
}

// Match negotiates an Accept-Language header value against the supported set.
// ok is false when the header names none of them.
func Match(acceptLanguage string) (Language, bool) {
	if acceptLanguage == "" {
		return Default, false
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default, false
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default, false
	}
	return supported[idx], true
}
