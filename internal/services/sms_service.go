package services

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/samedayramps/app.samedayramps.com/internal/config"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// messageCreator is the slice of the Twilio REST API used for alerts.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSService texts staff when a new quote request arrives. Alerts are best
// effort; a failed text never fails the intake.
type SMSService interface {
	NotifyNewQuoteRequest(ctx context.Context, q *models.Quote) error
}

type smsService struct {
	api       messageCreator
	fromPhone string
	toPhone   string
}

func NewSMSService(cfg *config.Config) SMSService {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" ||
		cfg.AdminAlertPhone == "" || cfg.LDFlag_TwilioFromPhone == "" {
		utils.Logger.Info("Twilio not fully configured; SMS alerts disabled")
		return &smsService{}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &smsService{
		api:       client.Api,
		fromPhone: cfg.LDFlag_TwilioFromPhone,
		toPhone:   cfg.AdminAlertPhone,
	}
}

func (s *smsService) NotifyNewQuoteRequest(ctx context.Context, q *models.Quote) error {
	if s.api == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.toPhone)
	params.SetFrom(s.fromPhone)
	params.SetBody(alertBody(q))

	if _, err := s.api.CreateMessage(params); err != nil {
		utils.Logger.WithError(err).WithField("quote_id", q.ID).Error("Failed to send SMS alert")
		return fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	utils.Logger.WithField("quote_id", q.ID).Debug("SMS alert sent")
	return nil
}

// SMS segments are 160 chars; notes get what is left of roughly two.
const smsNotesLimit = 120

func alertBody(q *models.Quote) string {
	name := "Unknown customer"
	if q.Customer != nil {
		name = q.Customer.Name
	}
	var body string
	if !q.HasPricing() {
		body = fmt.Sprintf("Same Day Ramps: new request #%s from %s needs assessment (%s).",
			QuoteReference(q), name, timelineLabel(q.TimelineNeeded))
	} else {
		body = fmt.Sprintf("Same Day Ramps: new quote #%s from %s, %s/mo (%s).",
			QuoteReference(q), name, utils.FormatCurrency(*q.MonthlyRate), timelineLabel(q.TimelineNeeded))
	}
	if q.Notes != nil && *q.Notes != "" {
		body += " " + utils.TruncateText(*q.Notes, smsNotesLimit)
	}
	return body
}
