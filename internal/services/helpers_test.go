package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories/repotest"
)

var testBusinessConfig = models.BusinessConfig{
	Pricing: models.PricingSettings{
		BaseMonthly:         125,
		PerInchMonthly:      6,
		BaseInstallation:    75,
		PerInchInstallation: 2,
	},
	BusinessHours: models.BusinessHours{Start: "08:00", End: "18:00", Timezone: "America/Chicago"},
	Company: models.CompanyInfo{
		Name:    "Same Day Ramps",
		Phone:   "(214) 555-0123",
		Email:   "info@samedayramps.com",
		Address: "Dallas-Fort Worth, TX",
	},
}

type mockEmailService struct{ mock.Mock }

func (m *mockEmailService) SendQuoteEmail(ctx context.Context, q *models.Quote, company models.CompanyInfo) error {
	return m.Called(q.ID, company.Name).Error(0)
}

func (m *mockEmailService) SendAssessmentNeededEmail(ctx context.Context, q *models.Quote) error {
	return m.Called(q.ID).Error(0)
}

type recordingSMS struct{ sent []*models.Quote }

func (r *recordingSMS) NotifyNewQuoteRequest(ctx context.Context, q *models.Quote) error {
	r.sent = append(r.sent, q)
	return nil
}

type quoteFixture struct {
	store *repotest.Store
	email *mockEmailService
	sms   *recordingSMS
	svc   *QuoteService
	now   time.Time
}

func newQuoteFixture(t *testing.T) *quoteFixture {
	t.Helper()
	f := &quoteFixture{
		store: repotest.NewStore(),
		email: &mockEmailService{},
		sms:   &recordingSMS{},
		now:   time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC),
	}
	audit := NewAuditService(f.store.EventRepo())
	settings := NewSettingsService(f.store.SettingsRepo(), testBusinessConfig, audit)
	f.svc = NewQuoteService(
		f.store.QuoteRepo(),
		f.store.AgreementRepo(),
		f.store.RentalRepo(),
		f.store.PaymentRepo(),
		settings,
		f.email,
		f.sms,
		audit,
	).WithClock(func() time.Time { return f.now })
	t.Cleanup(func() { f.email.AssertExpectations(t) })
	return f
}
