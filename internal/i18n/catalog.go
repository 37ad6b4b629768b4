package i18n

var catalog = map[Language]map[Key]string{
	Spanish: {
		KeyError:                "No se pudieron obtener los datos del clima. Inténtalo de nuevo.",
		KeyRetry:                "Reintentar",
		KeyEnableLocation:       "Por favor, habilita el acceso a la ubicación para ver el clima.",
		KeyLocationNotSupported: "La geolocalización no está disponible en este dispositivo.",
		KeyLocationUnavailable:  "No se pudo determinar tu ubicación.",
		KeySearchPlaceholder:    "Buscar ubicación...",
		KeySettings:             "Ajustes",
		KeyLanguage:             "Idioma",
		KeySavedLocations:       "Ubicaciones guardadas",
		KeyTemperature:          "Temperatura",
		KeyPrecipitation:        "Precipitación",
		KeyHumidity:             "Humedad",
		KeyFeelsLike:            "Sensación térmica",
		KeyWind:                 "Viento",
		KeySpanish:              "Español",
		KeyEnglish:              "Inglés",
		KeyGerman:               "Alemán",
	},
	English: {
		KeyError:                "Could not load weather data. Please try again.",
		KeyRetry:                "Retry",
		KeyEnableLocation:       "Please enable location access to see the weather.",
		KeyLocationNotSupported: "Geolocation is not supported on this device.",
		KeyLocationUnavailable:  "Your location could not be determined.",
		KeySearchPlaceholder:    "Search location...",
		KeySettings:             "Settings",
		KeyLanguage:             "Language",
		KeySavedLocations:       "Saved locations",
		KeyTemperature:          "Temperature",
		KeyPrecipitation:        "Precipitation",
		KeyHumidity:             "Humidity",
		KeyFeelsLike:            "Feels like",
		KeyWind:                 "Wind",
		KeySpanish:              "Spanish",
		KeyEnglish:              "English",
		KeyGerman:               "German",
	},
	German: {
		KeyError:                "Wetterdaten konnten nicht geladen werden. Bitte erneut versuchen.",
		KeyRetry:                "Erneut versuchen",
		KeyEnableLocation:       "Bitte aktiviere den Standortzugriff, um das Wetter zu sehen.",
		KeyLocationNotSupported: "Geolokalisierung wird auf diesem Gerät nicht unterstützt.",
		KeyLocationUnavailable:  "Dein Standort konnte nicht ermittelt werden.",
		KeySearchPlaceholder:    "Ort suchen...",
		KeySettings:             "Einstellungen",
		KeyLanguage:             "Sprache",
		KeySavedLocations:       "Gespeicherte Orte",
		KeyTemperature:          "Temperatur",
		KeyPrecipitation:        "Niederschlag",
		KeyHumidity:             "Luftfeuchtigkeit",
		KeyFeelsLike:            "Gefühlt",
		KeyWind:                 "Wind",
		KeySpanish:              "Spanisch",
		KeyEnglish:              "Englisch",
		KeyGerman:               "Deutsch",
	},
}
