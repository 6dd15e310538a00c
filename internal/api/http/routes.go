package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-records/internal/records"
	"github.com/i474232898/weather-records/internal/store"
)

var validate = validator.New()

type handlers struct {
	svc  *records.Service
	opts Options
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc *records.Service, opts Options) {
	h := &handlers{svc: svc, opts: opts}

	app.Get("/", h.indexPage)
	app.Get("/ranges", h.rangesPage)
	app.Post("/ranges", h.rangesSubmit)
	app.Get("/records/:id", h.recordPage)
	app.Get("/searches/:id", h.searchPage)

	api := app.Group("/api")

	api.Get("/weather", h.weather)

	api.Get("/records", h.listRecords)
	api.Post("/records", h.createRecord)
	api.Get("/records/:id", h.getRecord)
	api.Put("/records/:id", h.updateRecord)
	api.Delete("/records/:id", h.deleteRecord)

	api.Get("/searches", h.listSearches)
	api.Delete("/searches/:id", h.deleteSearch)
}

// parseID reads the :id route parameter. Anything that is not a positive
// integer cannot name a row, so it is reported as not found.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "not found")
	}
	return uint(id), nil
}

// toHTTPError maps service and store errors onto status codes.
func toHTTPError(err error) error {
	var ve *records.ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.NewError(fiber.StatusBadRequest, ve.Msg)
	case errors.Is(err, records.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Location not found")
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "not found")
	default:
		return err
	}
}
