package models

import (
	"encoding/json"
	"time"
)

const (
	SettingKeyPricing       = "pricing"
	SettingKeyBusinessHours = "business_hours"
	SettingKeyCompany       = "company"
)

// Setting is one key/value row; Value is free-form JSON.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// The settings documents keep snake_case keys; that is how they are stored.

type PricingSettings struct {
	BaseMonthly         float64 `json:"base_monthly"`
	PerInchMonthly      float64 `json:"per_inch_monthly"`
	BaseInstallation    float64 `json:"base_installation"`
	PerInchInstallation float64 `json:"per_inch_installation"`
}

type BusinessHours struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

type CompanyInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type BusinessConfig struct {
	Pricing       PricingSettings `json:"pricing"`
	BusinessHours BusinessHours   `json:"business_hours"`
	Company       CompanyInfo     `json:"company"`
}
