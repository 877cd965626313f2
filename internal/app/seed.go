package app

import (
	"context"
	"fmt"

	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories"
	"github.com/samedayramps/app.samedayramps.com/internal/services"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

const seedSentinelEmail = "margaret.johnson@example.com"

var seedQuotes = []dtos.CreateQuoteRequest{
	{
		CustomerName:   "Margaret Johnson",
		CustomerEmail:  seedSentinelEmail,
		CustomerPhone:  "2145550147",
		ServiceAddress: "4821 Mockingbird Ln",
		Timeline:       "asap",
		RampHeight:     dtos.OptionalFloat{Value: 24, Present: true},
		Notes:          "Discharged from Baylor hospital Friday, needs ramp before surgery follow-up.",
		Source:         "website",
		Priority:       "high",
	},
	{
		CustomerName:   "Robert Alvarez",
		CustomerEmail:  "robert.alvarez@example.com",
		CustomerPhone:  "9725550182",
		ServiceAddress: "1307 Elm Creek Dr",
		Timeline:       "within-1-week",
		RampHeight:     dtos.OptionalFloat{Value: 18, Present: true},
		Source:         "phone",
	},
	{
		CustomerName:   "Dorothy Nguyen",
		CustomerEmail:  "dorothy.nguyen@example.com",
		CustomerPhone:  "8175550199",
		ServiceAddress: "220 Prairie View Ct",
		Timeline:       "flexible",
		RampHeight:     dtos.OptionalFloat{Value: 12, Present: true},
		Notes:          "Transitional hospice care at home.",
		Source:         "referral",
	},
}

// SeedTestData writes default settings plus three demo quotes, the first of
// which is accepted with a signed agreement. It is a no-op once the demo
// customer exists.
func SeedTestData(
	ctx context.Context,
	settings services.SettingsService,
	customerRepo repositories.CustomerRepository,
	agreementRepo repositories.AgreementRepository,
	quoteService *services.QuoteService,
) error {
	if err := settings.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed default settings: %w", err)
	}

	existing, err := customerRepo.GetByEmail(ctx, seedSentinelEmail)
	if err != nil {
		return fmt.Errorf("check existing seed customer: %w", err)
	}
	if existing != nil {
		utils.Logger.Info("Seed data already present; skipping seeding")
		return nil
	}

	var created []*models.Quote
	for _, in := range seedQuotes {
		in.Normalize()
		res, err := quoteService.CreateQuote(ctx, in)
		if err != nil {
			return fmt.Errorf("seed quote for %s: %w", in.CustomerEmail, err)
		}
		created = append(created, res.Data.Quote)
	}

	accepted := created[0]
	for _, status := range []string{string(models.QuoteStatusSent), string(models.QuoteStatusAccepted)} {
		if _, err := quoteService.UpdateQuoteStatus(ctx, accepted.ID, status); err != nil {
			return fmt.Errorf("seed quote status %s: %w", status, err)
		}
	}

	agreement, err := agreementRepo.GetByQuoteID(ctx, accepted.ID)
	if err != nil {
		return fmt.Errorf("load seed agreement: %w", err)
	}
	if agreement == nil {
		return fmt.Errorf("seed quote %s has no agreement", accepted.ID)
	}
	if err := agreementRepo.MarkSigned(ctx, agreement.ID); err != nil {
		return fmt.Errorf("sign seed agreement: %w", err)
	}

	utils.Logger.Infof("Seeded %d quotes", len(created))
	return nil
}
