package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$1.25B", FormatUSD(1.25e9))
	assert.Equal(t, "$12.00M", FormatUSD(1.2e7))
	assert.Equal(t, "$3.50K", FormatUSD(3500))
	assert.Equal(t, "$0.42", FormatUSD(0.42))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "420.69B", FormatCount(420.69e9))
	assert.Equal(t, "1.20M", FormatCount(1.2e6))
	assert.Equal(t, "280.00K", FormatCount(280000))
	assert.Equal(t, "42", FormatCount(42))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "6.10%", FormatPercent(6.1))
	assert.Equal(t, "0.00%", FormatPercent(0))
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "Yes", FormatBool(true))
	assert.Equal(t, "No", FormatBool(false))
}

func TestFormatDays(t *testing.T) {
	assert.Equal(t, "1 day", FormatDays(1))
	assert.Equal(t, "1 day", FormatDays(1.4))
	assert.Equal(t, "180 days", FormatDays(180))
	assert.Equal(t, "0 days", FormatDays(0))
}
