package records

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout = "2006-01-02"

	// maxSpanDays bounds end-start; together with the start day this makes
	// at most 31 calendar days.
	maxSpanDays = 30
)

var (
	// ErrLocationNotFound is returned when the geocoder has no match or failed.
	ErrLocationNotFound = errors.New("location not found")

	// ErrMissingFields is returned when a range submission lacks a field.
	ErrMissingFields = &ValidationError{Msg: "location, start_date, end_date required"}

	// ErrMissingQuery is returned for a point lookup with neither a query
	// nor coordinates.
	ErrMissingQuery = &ValidationError{Msg: "missing q or lat/lon"}

	validate = validator.New()
)

// ValidationError carries a message safe to show to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RangeInput is a range-query submission.
type RangeInput struct {
	Location  string `validate:"required"`
	StartDate string `validate:"required"`
	EndDate   string `validate:"required"`
}

// ValidateRange parses both dates and enforces start <= end and the span cap.
func ValidateRange(start, end string) (time.Time, time.Time, error) {
	ds, errS := time.Parse(DateLayout, start)
	de, errE := time.Parse(DateLayout, end)
	if errS != nil || errE != nil {
		return time.Time{}, time.Time{}, invalid("Bad date format (YYYY-MM-DD)")
	}
	if ds.After(de) {
		return time.Time{}, time.Time{}, invalid("start_date after end_date")
	}
	if de.Sub(ds) > maxSpanDays*24*time.Hour {
		return time.Time{}, time.Time{}, invalid("Range too large (max 31 days)")
	}
	return ds, de, nil
}

// validateInput checks presence and then the range itself.
func validateInput(in RangeInput) (time.Time, time.Time, error) {
	if err := validate.Struct(in); err != nil {
		return time.Time{}, time.Time{}, ErrMissingFields
	}
	return ValidateRange(in.StartDate, in.EndDate)
}
