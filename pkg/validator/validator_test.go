package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Start string `schema:"start_time" validate:"required,datetime=15:04"`
	Role  string `json:"role" validate:"omitempty,oneof=doctor patient"`
}

func TestFormatValidationErrors_UsesWireNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sample{Email: "nope", Start: "9am", Role: "admin"})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Equal(t, "email must be a valid email address", errs["email"])
	assert.Equal(t, "start_time must match the format 15:04", errs["start_time"])
	assert.Equal(t, "role must be one of: doctor patient", errs["role"])
}

func TestValidate_OK(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&sample{Email: "a@b.co", Start: "09:30"}))
}
