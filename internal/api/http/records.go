package httpapi

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-records/internal/records"
	"github.com/i474232898/weather-records/internal/weather"
)

type rangeBody struct {
	Location  string `json:"location"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// updateBody fields are optional; absent ones keep the stored value.
type updateBody struct {
	Location  *string `json:"location"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type recordSummary struct {
	ID            uint      `json:"id"`
	LocationInput string    `json:"location_input"`
	ResolvedName  string    `json:"resolved_name"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	CreatedAt     time.Time `json:"created_at"`
}

type recordDetail struct {
	ID            uint           `json:"id"`
	LocationInput string         `json:"location_input"`
	ResolvedName  string         `json:"resolved_name"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	WeatherJSON   weather.Result `json:"weather_json"`
	DailyList     []weather.Day  `json:"daily_list"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func decodeBody(c *fiber.Ctx, v interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	return nil
}

func days(res weather.Result) []weather.Day {
	d := res.Daily.Days()
	if d == nil {
		return []weather.Day{}
	}
	return d
}

func (h *handlers) listRecords(c *fiber.Ctx) error {
	recs, err := h.svc.Store().ListRecords(c.UserContext(), 0)
	if err != nil {
		return err
	}

	out := make([]recordSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, recordSummary{
			ID:            r.ID,
			LocationInput: r.LocationInput,
			ResolvedName:  r.ResolvedName,
			StartDate:     r.StartDate.Format(records.DateLayout),
			EndDate:       r.EndDate.Format(records.DateLayout),
			CreatedAt:     r.CreatedAt,
		})
	}
	return c.JSON(out)
}

func (h *handlers) createRecord(c *fiber.Ctx) error {
	var body rangeBody
	if err := decodeBody(c, &body); err != nil {
		return err
	}

	rec, err := h.svc.CreateRecord(c.UserContext(), records.RangeInput{
		Location:  body.Location,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         rec.ID,
		"location":   rec.ResolvedName,
		"start_date": rec.StartDate.Format(records.DateLayout),
		"end_date":   rec.EndDate.Format(records.DateLayout),
		"data":       rec.Weather,
	})
}

func (h *handlers) getRecord(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	rec, err := h.svc.Store().GetRecord(c.UserContext(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(recordDetail{
		ID:            rec.ID,
		LocationInput: rec.LocationInput,
		ResolvedName:  rec.ResolvedName,
		StartDate:     rec.StartDate.Format(records.DateLayout),
		EndDate:       rec.EndDate.Format(records.DateLayout),
		WeatherJSON:   rec.Weather,
		DailyList:     days(rec.Weather),
		UpdatedAt:     rec.UpdatedAt,
	})
}

func (h *handlers) updateRecord(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body updateBody
	if err := decodeBody(c, &body); err != nil {
		return err
	}

	rec, err := h.svc.UpdateRecord(c.UserContext(), id, records.UpdateInput{
		Location:  body.Location,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{
		"id":       rec.ID,
		"location": rec.ResolvedName,
		"data":     rec.Weather,
	})
}

func (h *handlers) deleteRecord(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Store().DeleteRecord(c.UserContext(), id); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
