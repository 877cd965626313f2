package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePricing(t *testing.T) {
	cases := []struct {
		height         float64
		monthly, setup float64
	}{
		{24, 269, 123},
		{18, 233, 111},
		{12, 197, 99},
		{30, 305, 135},
	}
	for _, tc := range cases {
		p := CalculatePricing(tc.height, testBusinessConfig.Pricing)
		assert.Equal(t, tc.monthly, p.MonthlyRate, "height %v", tc.height)
		assert.Equal(t, tc.setup, p.InstallationFee, "height %v", tc.height)
		assert.Equal(t, tc.monthly+tc.setup, p.TotalFirstMonth)
		assert.Equal(t, tc.monthly, p.EstimatedMonthlyTotal)
	}
}

func TestCalculatePricingFractionalHeightIsNotRounded(t *testing.T) {
	p := CalculatePricing(10.5, testBusinessConfig.Pricing)
	assert.InDelta(t, 188.0, p.MonthlyRate, 1e-9)
	assert.InDelta(t, 96.0, p.InstallationFee, 1e-9)
}
