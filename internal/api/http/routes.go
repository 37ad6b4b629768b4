package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/i18n"
	"github.com/i474232898/weather-dashboard/internal/location"
	"github.com/i474232898/weather-dashboard/internal/settings"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// Deps are the components the HTTP surface renders and drives.
type Deps struct {
	Session  *dashboard.Session
	Search   *location.SearchBox
	Settings *settings.Store
	History  weather.Store
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		st := d.Session.State()
		return c.JSON(buildView(st, languageFor(c, d.Settings), d.Session.Now()))
	})

	v1.Get("/i18n", func(c *fiber.Ctx) error {
		lang := languageFor(c, d.Settings)
		return c.JSON(fiber.Map{
			"language":  lang,
			"supported": i18n.Supported(),
			"messages":  i18n.Messages(lang),
		})
	})

	v1.Post("/dashboard/retry", func(c *fiber.Ctx) error {
		if err := d.Session.Retry(); err != nil {
			if errors.Is(err, dashboard.ErrNoCoordinate) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return err
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	v1.Post("/dashboard/locate", func(c *fiber.Ctx) error {
		var req coordinateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		d.Session.Load(weather.Coordinate{Lat: *req.Lat, Lon: *req.Lon})
		return c.SendStatus(fiber.StatusAccepted)
	})

	v1.Get("/locations/search", func(c *fiber.Ctx) error {
		results := d.Search.Submit(c.UserContext(), c.Query("q"))
		return c.JSON(fiber.Map{
			"query":   d.Search.Query(),
			"results": results,
		})
	})

	v1.Post("/locations/select/:id", func(c *fiber.Ctx) error {
		picked, ok := d.Search.Select(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no such search result")
		}
		return c.Status(fiber.StatusAccepted).JSON(picked)
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(d.Settings.Get())
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var req settingsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := d.Settings.Replace(c.UserContext(), req.toSettings()); err != nil {
			return settingsError(err)
		}
		return c.JSON(d.Settings.Get())
	})

	v1.Put("/settings/language", func(c *fiber.Ctx) error {
		var req languageRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := d.Settings.SetLanguage(c.UserContext(), i18n.Language(req.Language)); err != nil {
			return settingsError(err)
		}
		return c.JSON(d.Settings.Get())
	})

	v1.Post("/settings/locations", func(c *fiber.Ctx) error {
		var req savedLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		loc, err := d.Settings.AddLocation(c.UserContext(), req.Name, *req.Lat, *req.Lon)
		if err != nil {
			return settingsError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	})

	v1.Delete("/settings/locations/:id", func(c *fiber.Ctx) error {
		if err := d.Settings.RemoveLocation(c.UserContext(), c.Params("id")); err != nil {
			return settingsError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/settings/locations/:id/load", func(c *fiber.Ctx) error {
		loc, ok := d.Settings.Location(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no such saved location")
		}
		d.Session.Load(weather.Coordinate{Lat: loc.Lat, Lon: loc.Lon})
		return c.SendStatus(fiber.StatusAccepted)
	})

	// Most recent stored record, without starting a fetch.
	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		coord, err := queryCoordinate(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := d.History.GetLatest(coord)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather stored for coordinate")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch latest weather")
		}

		return c.JSON(newWeatherView(rec))
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coord := weather.Coordinate{Lat: req.Lat, Lon: req.Lon}
		records, err := d.History.GetRange(coord, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"coordinate": coord,
			"from":       req.From,
			"to":         req.To,
			"records":    records,
		})
	})
}

// languageFor honours a ?lang= tag for this response only, else the stored setting.
func languageFor(c *fiber.Ctx, s *settings.Store) i18n.Language {
	if q := c.Query("lang"); q != "" {
		if lang, ok := i18n.Match(q); ok {
			return lang
		}
	}
	return s.Language()
}

func settingsError(err error) error {
	if errors.Is(err, settings.ErrInvalid) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to save settings")
}

type coordinateRequest struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lon *float64 `json:"lon" validate:"required"`
}

type languageRequest struct {
	Language string `json:"language" validate:"required,oneof=es en de"`
}

type savedLocationRequest struct {
	ID   string   `json:"id"`
	Name string   `json:"name" validate:"required"`
	Lat  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon  *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

type settingsRequest struct {
	Language  string                 `json:"language" validate:"required,oneof=es en de"`
	Locations []savedLocationRequest `json:"locations" validate:"dive"`
}

func (r settingsRequest) toSettings() settings.Settings {
	out := settings.Settings{
		Language:  i18n.Language(r.Language),
		Locations: make([]settings.SavedLocation, 0, len(r.Locations)),
	}
	for _, loc := range r.Locations {
		out.Locations = append(out.Locations, settings.SavedLocation{
			ID:   loc.ID,
			Name: loc.Name,
			Lat:  *loc.Lat,
			Lon:  *loc.Lon,
		})
	}
	return out
}

func queryCoordinate(c *fiber.Ctx) (weather.Coordinate, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return weather.Coordinate{}, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return weather.Coordinate{}, errors.New("invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return weather.Coordinate{}, errors.New("invalid lon")
	}
	return weather.Coordinate{Lat: lat, Lon: lon}, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Lat  float64
	Lon  float64
	From time.Time
	To   time.Time `validate:"gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	coord, err := queryCoordinate(c)
	if err != nil {
		return err
	}
	h.Lat, h.Lon = coord.Lat, coord.Lon

	h.To = time.Now().UTC()
	if s := c.Query("from"); s != "" {
		if h.From, err = parseTime(s); err != nil {
			return err
		}
	}
	if s := c.Query("to"); s != "" {
		if h.To, err = parseTime(s); err != nil {
			return err
		}
	}
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
