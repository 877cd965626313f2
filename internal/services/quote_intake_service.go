package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samedayramps/app.samedayramps.com/internal/constants"
	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

const (
	msgQuoteSentTo          = "Quote sent successfully to %s"
	msgQuoteEmailFailed     = "Quote created but email could not be sent. We will contact you within 2 hours."
	msgQuoteNeedsAssessment = "Quote request received. Our team will assess your needs and contact you within 2 hours."
)

// SubmitQuoteRequest handles the public quote form. A request with a ramp
// height is priced and emailed straight away; without one it is parked as
// NEEDS_ASSESSMENT and staff are notified.
func (s *QuoteService) SubmitQuoteRequest(ctx context.Context, in dtos.QuoteRequestInput) (*dtos.QuoteRequestResponse, error) {
	height := in.RampHeight.Ptr()
	if height != nil && *height <= 0 {
		return nil, invalidRampHeight()
	}

	source := in.Source
	if source == "" {
		source = constants.DefaultIntakeSource
	}
	priority := in.Priority
	if priority == "" {
		priority = constants.DefaultPriority
	}
	timeline := MapIntakeTimeline(in.Timeline)
	rawTimeline := in.Timeline
	if rawTimeline == "" {
		rawTimeline = strings.ToLower(string(timeline))
	}
	notes := in.Notes
	if notes == "" {
		notes = fmt.Sprintf("Quote request from %s. Timeline: %s. Priority: %s", source, rawTimeline, priority)
	}

	now := s.now()
	q := &models.Quote{
		ID:                uuid.New(),
		TimelineNeeded:    timeline,
		ServiceType:       InferServiceType(timeline, in.Notes),
		EstimatedDuration: EstimateInstallDuration(height),
		Status:            models.QuoteStatusNeedsAssessment,
		Source:            source,
		Priority:          priority,
		Notes:             &notes,
		CreatedAt:         now,
		UpdatedAt:         now,
		ExpiresAt:         now.Add(constants.PublicQuoteExpiry),
	}
	if height != nil {
		pricing, err := s.settings.CalculatePricing(ctx, *height)
		if err != nil {
			return nil, err
		}
		applyPricing(q, *height, *pricing)
		q.Status = models.QuoteStatusPending
	}

	res, err := s.quoteRepo.CreateIntakeAtomic(ctx, &repositories.QuoteIntake{
		Customer: &models.Customer{
			ID:        uuid.New(),
			Name:      in.CustomerName,
			Email:     strings.ToLower(in.CustomerEmail),
			Phone:     utils.FormatPhoneNumber(in.CustomerPhone),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Address: newDefaultAddress(in.ServiceAddress, now),
		Quote:   q,
	})
	if err != nil {
		return nil, quoteError(err, "Failed to create quote request")
	}
	q = res.Quote

	logger := utils.Logger.WithFields(logrus.Fields{
		"quote_id":    q.ID,
		"customer_id": q.CustomerID,
		"status":      q.Status,
	})
	logger.Info("Quote request created")

	if res.CustomerCreated {
		s.audit.Record(ctx, models.EntityCustomer, q.CustomerID.String(), models.EventCustomerCreated, map[string]any{
			"source": source,
		})
	}
	s.audit.Record(ctx, models.EntityQuote, q.ID.String(), models.EventQuoteCreated, map[string]any{
		"source":          source,
		"status":          q.Status,
		"rampHeight":      q.RampHeight,
		"monthlyRate":     q.MonthlyRate,
		"installationFee": q.InstallationFee,
	})
	if err := s.sms.NotifyNewQuoteRequest(ctx, q); err != nil {
		logger.WithError(err).Warn("Admin SMS alert failed")
	}

	if !q.HasPricing() {
		if err := s.email.SendAssessmentNeededEmail(ctx, q); err != nil {
			logger.WithError(err).Warn("Assessment notification failed")
		}
		return &dtos.QuoteRequestResponse{
			Success: true,
			Quote:   newQuoteRequestView(q, false),
			Message: msgQuoteNeedsAssessment,
		}, nil
	}

	q, emailSent := s.sendAndMarkSent(ctx, q)
	msg := msgQuoteEmailFailed
	if emailSent {
		msg = fmt.Sprintf(msgQuoteSentTo, q.Customer.Email)
	}
	return &dtos.QuoteRequestResponse{
		Success:   true,
		Quote:     newQuoteRequestView(q, emailSent),
		EmailSent: emailSent,
		Message:   msg,
	}, nil
}

// sendAndMarkSent emails the quote and, on success, moves it to SENT. A
// failed email leaves the quote untouched.
func (s *QuoteService) sendAndMarkSent(ctx context.Context, q *models.Quote) (*models.Quote, bool) {
	logger := utils.Logger.WithField("quote_id", q.ID)

	cfg, err := s.settings.GetBusinessConfig(ctx)
	if err != nil {
		logger.WithError(err).Error("Cannot load company info for quote email")
		return q, false
	}
	if err := s.email.SendQuoteEmail(ctx, q, cfg.Company); err != nil {
		logger.WithError(err).Warn("Quote email failed")
		return q, false
	}

	sentAt := s.now()
	upd, err := s.quoteRepo.UpdateWithRetry(ctx, q.ID, func(cur *models.Quote) (*models.Agreement, error) {
		_, err := ApplyTransition(cur, models.QuoteStatusSent, sentAt)
		return nil, err
	})
	if err != nil {
		// the customer has the email; only the status write failed
		logger.WithError(err).Error("Quote emailed but could not be marked SENT")
		return q, true
	}
	s.audit.Record(ctx, models.EntityQuote, q.ID.String(), models.EventQuoteSent, map[string]any{
		"to":     q.Customer.Email,
		"sentAt": sentAt,
	})
	return upd.Quote, true
}

// ListQuoteRequests returns the newest quotes for one customer, by id or by
// email, or across all customers when neither is given.
func (s *QuoteService) ListQuoteRequests(ctx context.Context, customerID, email string) ([]*models.Quote, error) {
	f := repositories.QuoteFilter{Limit: constants.RecentQuoteRequests}
	if customerID != "" {
		id, err := uuid.Parse(customerID)
		if err != nil {
			return nil, utils.NewBadRequestError(utils.ErrCodeValidation, "Invalid customerId", err)
		}
		f.CustomerID = &id
	} else if email != "" {
		f.Email = strings.ToLower(strings.TrimSpace(email))
	}

	quotes, _, err := s.quoteRepo.List(ctx, f)
	if err != nil {
		return nil, quoteError(err, "Failed to fetch quote requests")
	}
	if quotes == nil {
		quotes = []*models.Quote{}
	}
	return quotes, nil
}

func newDefaultAddress(street string, now time.Time) *models.Address {
	return &models.Address{
		ID:        uuid.New(),
		Street:    street,
		City:      models.DefaultCity,
		State:     models.DefaultState,
		ZipCode:   models.DefaultZipCode,
		Country:   models.DefaultCountry,
		CreatedAt: now,
	}
}

func newQuoteRequestView(q *models.Quote, emailSent bool) dtos.QuoteRequestView {
	v := dtos.QuoteRequestView{
		ID:                q.ID,
		CustomerID:        q.CustomerID,
		Status:            q.Status,
		Timeline:          q.TimelineNeeded,
		ServiceType:       q.ServiceType,
		EstimatedDuration: q.EstimatedDuration,
		ExpiresAt:         q.ExpiresAt,
		NeedsAssessment:   !q.HasPricing(),
		EmailSent:         emailSent,
	}
	if q.Customer != nil {
		v.CustomerName = q.Customer.Name
		v.CustomerEmail = q.Customer.Email
	}
	if q.HasPricing() {
		v.Pricing = &dtos.PricingView{
			MonthlyRate:     *q.MonthlyRate,
			InstallationFee: *q.InstallationFee,
			Total:           q.TotalValue(),
		}
	}
	return v
}
