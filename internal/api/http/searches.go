package httpapi

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

type searchSummary struct {
	ID          uint      `json:"id"`
	Query       string    `json:"query"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Temperature *float64  `json:"temperature"`
	WeatherCode *string   `json:"weather_code"`
	SearchedAt  time.Time `json:"searched_at"`
}

// searchLimit reads ?limit, defaulting and clamping to the configured bounds.
func (h *handlers) searchLimit(c *fiber.Ctx) (int, error) {
	limit := h.opts.SearchListDefault
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, fiber.NewError(fiber.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	if limit > h.opts.SearchListMax {
		limit = h.opts.SearchListMax
	}
	return limit, nil
}

func (h *handlers) listSearches(c *fiber.Ctx) error {
	limit, err := h.searchLimit(c)
	if err != nil {
		return err
	}

	list, err := h.svc.Store().ListSearches(c.UserContext(), limit)
	if err != nil {
		return err
	}

	out := make([]searchSummary, 0, len(list))
	for _, s := range list {
		out = append(out, searchSummary{
			ID:          s.ID,
			Query:       s.ResolvedName,
			Latitude:    s.Latitude,
			Longitude:   s.Longitude,
			Temperature: s.Temperature,
			WeatherCode: s.WeatherCode,
			SearchedAt:  s.SearchedAt,
		})
	}
	return c.JSON(out)
}

func (h *handlers) deleteSearch(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Store().DeleteSearch(c.UserContext(), id); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
