package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories/repotest"
	"github.com/samedayramps/app.samedayramps.com/internal/services"
)

type discardEmail struct{}

func (discardEmail) SendQuoteEmail(context.Context, *models.Quote, models.CompanyInfo) error {
	return nil
}
func (discardEmail) SendAssessmentNeededEmail(context.Context, *models.Quote) error { return nil }

type discardSMS struct{}

func (discardSMS) NotifyNewQuoteRequest(context.Context, *models.Quote) error { return nil }

func TestSeedTestDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	audit := services.NewAuditService(store.EventRepo())
	settings := services.NewSettingsService(store.SettingsRepo(), models.BusinessConfig{
		Pricing:       models.PricingSettings{BaseMonthly: 125, PerInchMonthly: 6, BaseInstallation: 75, PerInchInstallation: 2},
		BusinessHours: models.BusinessHours{Start: "08:00", End: "18:00", Timezone: "UTC"},
		Company:       models.CompanyInfo{Name: "Same Day Ramps"},
	}, audit)
	quotes := services.NewQuoteService(
		store.QuoteRepo(), store.AgreementRepo(), store.RentalRepo(), store.PaymentRepo(),
		settings, discardEmail{}, discardSMS{}, audit,
	)

	for i := 0; i < 2; i++ {
		require.NoError(t, SeedTestData(ctx, settings, store.CustomerRepo(), store.AgreementRepo(), quotes))
	}

	assert.Len(t, store.Customers, 3)
	assert.Len(t, store.Quotes, 3)
	require.Len(t, store.Agreements, 1)
	for _, a := range store.Agreements {
		assert.Equal(t, models.AgreementStatusSigned, a.Status)
		assert.NotNil(t, a.SignedAt)
	}
	assert.Len(t, store.Settings, 3)
	assert.NotEmpty(t, store.EventsOfType(models.EventQuoteCreated))
}
