package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneValidator(t *testing.T) {
	validator := NewPhoneValidator()
	assert.NotNil(t, validator)
}

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"9876543210", "9876543210", "Standard format"},
		{"98765 43210", "9876543210", "With space"},
		{"98765-43210", "9876543210", "With dash"},
		{"(98765) 43210", "9876543210", "With parentheses"},
		{"+919876543210", "9876543210", "With country code"},
		{"+91-98765-43210", "9876543210", "Country code and dashes"},
		{"09876543210", "9876543210", "With trunk zero"},
		{"6123456789", "6123456789", "Jio 6-series"},
		{"7123456789", "7123456789", "7-series"},
		{"8123456789", "8123456789", "8-series"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty"},
		{"98765", ErrInvalidLength, "Too short"},
		{"98765432101", ErrInvalidLength, "Too long"},
		{"5876543210", ErrInvalidPrefix, "Landline-style prefix"},
		{"1234567890", ErrInvalidPrefix, "Starts with 1"},
		{"98765abcde", ErrInvalidFormat, "Contains letters"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestFormat(t *testing.T) {
	validator := NewPhoneValidator()

	formatted, err := validator.Format("+919876543210")
	require.NoError(t, err)
	assert.Equal(t, "98765 43210", formatted)

	_, err = validator.Format("12345")
	assert.Error(t, err)
}
