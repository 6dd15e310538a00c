package httpapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-records/internal/records"
	"github.com/i474232898/weather-records/internal/weather"
)

// coordinateQuery holds the raw lat/lon parameters.
type coordinateQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

type weatherResponse struct {
	Location  string           `json:"location"`
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Current   *weather.Current `json:"current"`
	Daily     *weather.Daily   `json:"daily"`
}

func parseCoordinates(c *fiber.Ctx) (*float64, *float64, error) {
	q := coordinateQuery{
		Lat: c.Query("lat"),
		Lon: c.Query("lon"),
	}
	if q.Lon == "" {
		q.Lon = c.Query("lng")
	}
	if q.Lat == "" || q.Lon == "" {
		return nil, nil, nil
	}
	if err := validate.Struct(q); err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "invalid coordinates")
	}

	lat, errLat := strconv.ParseFloat(q.Lat, 64)
	lon, errLon := strconv.ParseFloat(q.Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "invalid coordinates")
	}
	return &lat, &lon, nil
}

// weather serves GET /api/weather?q=... or ?lat=..&lon=.. and logs a search.
func (h *handlers) weather(c *fiber.Ctx) error {
	lat, lon, err := parseCoordinates(c)
	if err != nil {
		return err
	}

	look, err := h.svc.Lookup(c.UserContext(), records.PointQuery{
		Query: c.Query("q"),
		Lat:   lat,
		Lon:   lon,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(weatherResponse{
		Location:  look.Location,
		Latitude:  look.Latitude,
		Longitude: look.Longitude,
		Current:   look.Weather.Current,
		Daily:     look.Weather.Daily,
	})
}
