package httpapi

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-records/internal/records"
	"github.com/i474232898/weather-records/internal/weather"
)

// searchPageDays caps the forecast rows on the search detail page.
const searchPageDays = 7

type rangesView struct {
	Message   string
	Location  string
	StartDate string
	EndDate   string
	Created   *records.WeatherRecord
	Days      []weather.Day
	Records   []records.WeatherRecord
}

func (h *handlers) indexPage(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{})
}

func (h *handlers) rangesPage(c *fiber.Ctx) error {
	return h.renderRanges(c, rangesView{})
}

// rangesSubmit never fails the request: every outcome is a message on the page.
func (h *handlers) rangesSubmit(c *fiber.Ctx) error {
	in := records.RangeInput{
		Location:  c.FormValue("location"),
		StartDate: c.FormValue("start_date"),
		EndDate:   c.FormValue("end_date"),
	}
	view := rangesView{
		Location:  in.Location,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}

	rec, err := h.svc.CreateRecord(c.UserContext(), in)
	var ve *records.ValidationError
	switch {
	case err == nil:
		view.Message = "Created."
		view.Created = &rec
		view.Days = rec.Weather.Daily.Days()
	case errors.Is(err, records.ErrMissingFields):
		view.Message = "All fields required."
	case errors.As(err, &ve):
		view.Message = ve.Msg
	case errors.Is(err, records.ErrLocationNotFound):
		view.Message = "Location not found."
	default:
		slog.Error("range submission failed", slog.String("error", err.Error()))
		view.Message = "Unexpected error."
	}

	return h.renderRanges(c, view)
}

func (h *handlers) renderRanges(c *fiber.Ctx, view rangesView) error {
	recs, err := h.svc.Store().ListRecords(c.UserContext(), h.opts.RecordPageLimit)
	if err != nil {
		slog.Error("list records for ranges page", slog.String("error", err.Error()))
	}
	view.Records = recs
	return c.Render("ranges", view)
}

func (h *handlers) recordPage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Store().GetRecord(c.UserContext(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Render("record_detail", fiber.Map{
		"Record": rec,
		"Days":   rec.Weather.Daily.Days(),
	})
}

// searchPage re-fetches weather so the page shows current conditions.
func (h *handlers) searchPage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	s, err := h.svc.Store().GetSearch(c.UserContext(), id)
	if err != nil {
		return toHTTPError(err)
	}

	data := h.svc.Forecast(c.UserContext(), s.Latitude, s.Longitude)
	rows := data.Daily.Days()
	if len(rows) > searchPageDays {
		rows = rows[:searchPageDays]
	}

	return c.Render("search_detail", fiber.Map{
		"Search":  s,
		"Current": data.Current,
		"Days":    rows,
	})
}
