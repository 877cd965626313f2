package services

import "github.com/samedayramps/app.samedayramps.com/internal/models"

// Pricing is the result of pricing one ramp.
type Pricing struct {
	MonthlyRate           float64 `json:"monthlyRate"`
	InstallationFee       float64 `json:"installationFee"`
	TotalFirstMonth       float64 `json:"totalFirstMonth"`
	EstimatedMonthlyTotal float64 `json:"estimatedMonthlyTotal"`
}

// CalculatePricing applies the linear rate card. It does not validate height;
// callers reject non-positive values before getting here.
func CalculatePricing(heightInches float64, p models.PricingSettings) Pricing {
	monthly := p.BaseMonthly + heightInches*p.PerInchMonthly
	install := p.BaseInstallation + heightInches*p.PerInchInstallation
	return Pricing{
		MonthlyRate:           monthly,
		InstallationFee:       install,
		TotalFirstMonth:       monthly + install,
		EstimatedMonthlyTotal: monthly,
	}
}

// applyPricing stores a computed price on the quote.
func applyPricing(q *models.Quote, height float64, p Pricing) {
	q.RampHeight = &height
	q.MonthlyRate = &p.MonthlyRate
	q.InstallationFee = &p.InstallationFee
}
