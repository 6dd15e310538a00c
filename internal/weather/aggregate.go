package weather

import (
	"sort"
	"time"
)

const (
	dateLayout = "2006-01-02"

	// defaultWindowDays is the number of days covered when no range is supplied.
	defaultWindowDays = 5
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp accepts RFC3339 as well as the offset-less forms some
// providers emit.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dayBucket collects the hourly samples falling on one calendar date.
type dayBucket struct {
	temps []float64
	winds []float64

	symbolCounts map[string]int
	symbolOrder  []string
}

func (b *dayBucket) add(s HourlySample) {
	if s.Temperature != nil {
		b.temps = append(b.temps, *s.Temperature)
	}
	if s.WindSpeed != nil {
		b.winds = append(b.winds, *s.WindSpeed)
	}
	if s.Symbol != nil && *s.Symbol != "" {
		if _, seen := b.symbolCounts[*s.Symbol]; !seen {
			b.symbolOrder = append(b.symbolOrder, *s.Symbol)
		}
		b.symbolCounts[*s.Symbol]++
	}
}

// mode returns the most frequent symbol; ties go to the one seen first.
func (b *dayBucket) mode() *string {
	var (
		best      string
		bestCount int
	)
	for _, sym := range b.symbolOrder {
		if c := b.symbolCounts[sym]; c > bestCount {
			best, bestCount = sym, c
		}
	}
	if bestCount == 0 {
		return nil
	}
	return &best
}

// Aggregate turns an hourly series into a Result: current conditions from
// the first entry and per-day min/max/mode summaries over the window.
// now is used only when the first entry's timestamp cannot be parsed.
// The caller stamps Provider.
func Aggregate(series []HourlySample, win Window, now time.Time) Result {
	if len(series) == 0 {
		return Result{}
	}

	first := series[0]
	current := &Current{
		Temperature: first.Temperature,
		WindSpeed:   first.WindSpeed,
		Humidity:    first.Humidity,
		WeatherCode: first.Symbol,
		Time:        first.Time,
	}

	start, end, filter := resolveWindow(first, win, now)

	buckets := make(map[string]*dayBucket)
	for _, s := range series {
		ts, ok := ParseTimestamp(s.Time)
		if !ok {
			continue
		}
		date := ts.Format(dateLayout)
		if filter && (date < start || date > end) {
			continue
		}
		b, ok := buckets[date]
		if !ok {
			b = &dayBucket{symbolCounts: make(map[string]int)}
			buckets[date] = b
		}
		b.add(s)
	}

	dates := make([]string, 0, len(buckets))
	for d := range buckets {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	daily := &Daily{
		Time:        make([]string, 0, len(dates)),
		TempMax:     make([]*float64, 0, len(dates)),
		TempMin:     make([]*float64, 0, len(dates)),
		WindMax:     make([]*float64, 0, len(dates)),
		WeatherCode: make([]*string, 0, len(dates)),
	}
	for _, d := range dates {
		b := buckets[d]
		daily.Time = append(daily.Time, d)
		daily.TempMax = append(daily.TempMax, maxOf(b.temps))
		daily.TempMin = append(daily.TempMin, minOf(b.temps))
		daily.WindMax = append(daily.WindMax, maxOf(b.winds))
		daily.WeatherCode = append(daily.WeatherCode, b.mode())
	}

	return Result{
		Current: current,
		Daily:   daily,
	}
}

// resolveWindow returns the inclusive date bounds and whether to filter at
// all. An explicit pair that does not parse disables filtering; a missing
// bound falls back to the default window starting at the first entry.
func resolveWindow(first HourlySample, win Window, now time.Time) (string, string, bool) {
	if win.Start != "" && win.End != "" {
		s, errS := time.Parse(dateLayout, win.Start)
		e, errE := time.Parse(dateLayout, win.End)
		if errS != nil || errE != nil {
			return "", "", false
		}
		return s.Format(dateLayout), e.Format(dateLayout), true
	}

	base := now
	if ts, ok := ParseTimestamp(first.Time); ok {
		base = ts
	}
	day := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.UTC)
	return day.Format(dateLayout), day.AddDate(0, 0, defaultWindowDays-1).Format(dateLayout), true
}

func maxOf(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return &m
}

func minOf(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return &m
}
