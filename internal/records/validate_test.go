package records

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRange(t *testing.T) {
	tests := []struct {
		start, end string
		wantErr    string
	}{
		{"2024-01-01", "2024-01-01", ""},
		{"2024-01-01", "2024-01-31", ""},
		{"2024-02-01", "2024-03-02", ""},
		{"2024-01-01", "2024-02-01", "Range too large (max 31 days)"},
		{"2024-01-05", "2024-01-04", "start_date after end_date"},
		{"2024-1-1", "2024-01-04", "Bad date format (YYYY-MM-DD)"},
		{"2024-01-01", "2024-01-4", "Bad date format (YYYY-MM-DD)"},
		{"2024-01-01", "tomorrow", "Bad date format (YYYY-MM-DD)"},
		{"2024-02-30", "2024-03-01", "Bad date format (YYYY-MM-DD)"},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s..%s", tc.start, tc.end), func(t *testing.T) {
			start, end, err := ValidateRange(tc.start, tc.end)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.start, start.Format(DateLayout))
				assert.Equal(t, tc.end, end.Format(DateLayout))
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tc.wantErr, err.Error())
		})
	}
}

func TestValidateInputRequiresAllFields(t *testing.T) {
	for _, in := range []RangeInput{
		{},
		{Location: "Oslo", StartDate: "2024-01-01"},
		{Location: "Oslo", EndDate: "2024-01-01"},
		{StartDate: "2024-01-01", EndDate: "2024-01-02"},
	} {
		_, _, err := validateInput(in)
		assert.ErrorIs(t, err, ErrMissingFields, "%+v", in)
	}
}

func TestIsValidationWrapped(t *testing.T) {
	err := fmt.Errorf("update: %w", invalid("nope"))
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(ErrLocationNotFound))
}
