package dtos

import (
	"encoding/json"

	"github.com/samedayramps/app.samedayramps.com/internal/models"
)

type BusinessHoursView struct {
	models.BusinessHours
	Formatted string `json:"formatted"`
}

type SettingsResponse struct {
	Pricing         models.PricingSettings `json:"pricing"`
	BusinessHours   BusinessHoursView      `json:"business_hours"`
	Company         models.CompanyInfo     `json:"company"`
	IsBusinessHours bool                   `json:"isBusinessHours"`
}

// UpdateSettingsRequest maps a settings key to its new (possibly partial)
// JSON document.
type UpdateSettingsRequest map[string]json.RawMessage

type FormattedPricing struct {
	MonthlyRate     string `json:"monthlyRate"`
	InstallationFee string `json:"installationFee"`
	TotalFirstMonth string `json:"totalFirstMonth"`
}

type PricingPreviewResponse struct {
	RampHeight            float64          `json:"rampHeight"`
	MonthlyRate           float64          `json:"monthlyRate"`
	InstallationFee       float64          `json:"installationFee"`
	TotalFirstMonth       float64          `json:"totalFirstMonth"`
	EstimatedMonthlyTotal float64          `json:"estimatedMonthlyTotal"`
	Formatted             FormattedPricing `json:"formatted"`
}
