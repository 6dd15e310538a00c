package httpapi

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/i474232898/weather-records/internal/records"
	"github.com/i474232898/weather-records/internal/web"
)

const serviceName = "weather-records"

// Options tunes listing behaviour.
type Options struct {
	SearchListDefault int
	SearchListMax     int
	RecordPageLimit   int

	// AccessLog enables the request logger middleware.
	AccessLog bool
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		SearchListDefault: 15,
		SearchListMax:     100,
		RecordPageLimit:   20,
	}
}

// NewApp builds the Fiber app with views, middleware and every route.
func NewApp(svc *records.Service, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		Views:                 web.Engine(),
		ErrorHandler:          ErrorHandler,
	})

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(recover.New())

	app.Use("/static", filesystem.New(filesystem.Config{
		Root: web.Static(),
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})

	RegisterRoutes(app, svc, opts)
	return app
}

// ErrorHandler renders every error as {"error": "<message>"}. Errors that are
// not *fiber.Error are logged and reported as a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		slog.Error("request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("request_id", c.Locals("requestid")),
			slog.String("error", err.Error()))
	}

	return c.Status(code).JSON(fiber.Map{
		"error": msg,
	})
}
