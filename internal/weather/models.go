package weather

import (
	"encoding/json"
)

// Window is an optional calendar-date range (YYYY-MM-DD). Empty fields mean
// the caller did not supply that bound.
type Window struct {
	Start string
	End   string
}

// HourlySample is a single timestamped entry of the provider's hourly series.
// Nil fields were absent or non-numeric upstream.
type HourlySample struct {
	Time        string
	Temperature *float64
	WindSpeed   *float64
	Humidity    *float64
	// Symbol is the short-range (next hour) sky-condition code, e.g. "clearsky_day".
	Symbol *string
}

// Current is a point sample taken from the earliest series entry.
type Current struct {
	Temperature *float64 `json:"temperature_2m"`
	WindSpeed   *float64 `json:"windspeed_10m"`
	Humidity    *float64 `json:"relative_humidity_2m"`
	WeatherCode *string  `json:"weather_code"`
	Time        string   `json:"time"`
}

// Daily holds index-aligned per-day aggregates in ascending date order.
type Daily struct {
	Time        []string   `json:"time"`
	TempMax     []*float64 `json:"temperature_2m_max"`
	TempMin     []*float64 `json:"temperature_2m_min"`
	WindMax     []*float64 `json:"wind_speed_10m_max"`
	WeatherCode []*string  `json:"weather_code"`
}

// Day is one row of a Daily breakdown.
type Day struct {
	Date string   `json:"date"`
	TMax *float64 `json:"t_max"`
	TMin *float64 `json:"t_min"`
	Wind *float64 `json:"wind"`
	Code *string  `json:"weather_code"`
}

// Days flattens the arrays into rows. Arrays shorter than Time yield nils,
// which only happens for payloads that were not produced by Aggregate.
func (d *Daily) Days() []Day {
	if d == nil {
		return nil
	}
	days := make([]Day, 0, len(d.Time))
	for i, date := range d.Time {
		day := Day{Date: date}
		if i < len(d.TempMax) {
			day.TMax = d.TempMax[i]
		}
		if i < len(d.TempMin) {
			day.TMin = d.TempMin[i]
		}
		if i < len(d.WindMax) {
			day.Wind = d.WindMax[i]
		}
		if i < len(d.WeatherCode) {
			day.Code = d.WeatherCode[i]
		}
		days = append(days, day)
	}
	return days
}

// Result is the outcome of a fetch. Exactly one shape applies:
// an error (Err set), empty (nothing set), or full data.
type Result struct {
	Provider string
	Current  *Current
	Daily    *Daily
	Err      string
}

// Failed reports whether the upstream call failed outright.
func (r Result) Failed() bool { return r.Err != "" }

// Empty reports whether the upstream returned no series.
func (r Result) Empty() bool { return r.Err == "" && r.Current == nil && r.Daily == nil }

type resultJSON struct {
	Provider string   `json:"provider,omitempty"`
	Current  *Current `json:"current,omitempty"`
	Daily    *Daily   `json:"daily,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// MarshalJSON renders {}, {"error": ...} or {"provider","current","daily"}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(resultJSON{Error: r.Err})
	}
	return json.Marshal(resultJSON{Provider: r.Provider, Current: r.Current, Daily: r.Daily})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{Provider: raw.Provider, Current: raw.Current, Daily: raw.Daily, Err: raw.Error}
	return nil
}
