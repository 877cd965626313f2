package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

func intakeInput(height string) dtos.QuoteRequestInput {
	in := dtos.QuoteRequestInput{
		CustomerName:   "Michael Johnson",
		CustomerEmail:  "Michael.Johnson@Email.com",
		CustomerPhone:  "2145550123",
		ServiceAddress: "1234 Oak Street",
		Timeline:       "asap",
	}
	if height != "" {
		_ = in.RampHeight.UnmarshalJSON([]byte(`"` + height + `"`))
	}
	return in
}

func appStatus(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.StatusCode
}

func TestSubmitQuoteRequestPricedAndSent(t *testing.T) {
	f := newQuoteFixture(t)
	f.email.On("SendQuoteEmail", mock.Anything, "Same Day Ramps").Return(nil).Once()

	resp, err := f.svc.SubmitQuoteRequest(context.Background(), intakeInput("24"))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.True(t, resp.EmailSent)
	assert.Equal(t, "Quote sent successfully to michael.johnson@email.com", resp.Message)
	assert.False(t, resp.Quote.NeedsAssessment)
	require.NotNil(t, resp.Quote.Pricing)
	assert.Equal(t, 269.0, resp.Quote.Pricing.MonthlyRate)
	assert.Equal(t, 123.0, resp.Quote.Pricing.InstallationFee)
	assert.Equal(t, 392.0, resp.Quote.Pricing.Total)
	assert.Equal(t, models.QuoteStatusSent, resp.Quote.Status)
	assert.Equal(t, models.TimelineASAP, resp.Quote.Timeline)
	assert.Equal(t, models.ServiceTypePostSurgery, resp.Quote.ServiceType)
	assert.Equal(t, "1-2 hours", resp.Quote.EstimatedDuration)
	assert.Equal(t, f.now.Add(30*24*time.Hour), resp.Quote.ExpiresAt)

	stored := f.store.Quotes[resp.Quote.ID]
	assert.Equal(t, models.QuoteStatusSent, stored.Status)
	require.NotNil(t, stored.SentAt)
	assert.Equal(t, f.now, *stored.SentAt)

	c := f.store.Customers[resp.Quote.CustomerID]
	assert.Equal(t, "(214) 555-0123", c.Phone)
	addr := f.store.Addresses[stored.ServiceAddressID]
	assert.Equal(t, "Dallas", addr.City)
	assert.Equal(t, "75000", addr.ZipCode)

	assert.Len(t, f.store.EventsOfType(models.EventQuoteCreated), 1)
	assert.Len(t, f.store.EventsOfType(models.EventCustomerCreated), 1)
	assert.Len(t, f.store.EventsOfType(models.EventQuoteSent), 1)
	assert.Len(t, f.sms.sent, 1)
}

func TestSubmitQuoteRequestEmailFailureLeavesPending(t *testing.T) {
	f := newQuoteFixture(t)
	f.email.On("SendQuoteEmail", mock.Anything, mock.Anything).
		Return(utils.ErrExternalServiceFailure).Once()

	resp, err := f.svc.SubmitQuoteRequest(context.Background(), intakeInput("24"))
	require.NoError(t, err)

	assert.False(t, resp.EmailSent)
	assert.False(t, resp.Quote.EmailSent)
	assert.Equal(t, msgQuoteEmailFailed, resp.Message)
	assert.Equal(t, models.QuoteStatusPending, resp.Quote.Status)
	assert.Nil(t, f.store.Quotes[resp.Quote.ID].SentAt)
	assert.Empty(t, f.store.EventsOfType(models.EventQuoteSent))
}

func TestSubmitQuoteRequestWithoutHeightNeedsAssessment(t *testing.T) {
	f := newQuoteFixture(t)
	f.email.On("SendAssessmentNeededEmail", mock.Anything).Return(nil).Once()

	in := intakeInput("")
	in.Timeline = "flexible"
	in.Notes = "Mom is coming home from hospice care"
	resp, err := f.svc.SubmitQuoteRequest(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, resp.Quote.NeedsAssessment)
	assert.Nil(t, resp.Quote.Pricing)
	assert.False(t, resp.EmailSent)
	assert.Equal(t, msgQuoteNeedsAssessment, resp.Message)
	assert.Equal(t, models.QuoteStatusNeedsAssessment, resp.Quote.Status)
	assert.Equal(t, models.ServiceTypeTransitionalHospice, resp.Quote.ServiceType)

	stored := f.store.Quotes[resp.Quote.ID]
	assert.Nil(t, stored.RampHeight)
	assert.Nil(t, stored.MonthlyRate)
	assert.Nil(t, stored.InstallationFee)
}

func TestSubmitQuoteRequestAssessmentEmailFailureIsNotFatal(t *testing.T) {
	f := newQuoteFixture(t)
	f.email.On("SendAssessmentNeededEmail", mock.Anything).Return(utils.ErrExternalServiceFailure).Once()

	resp, err := f.svc.SubmitQuoteRequest(context.Background(), intakeInput(""))
	require.NoError(t, err)
	assert.True(t, resp.Quote.NeedsAssessment)
}

func TestSubmitQuoteRequestRejectsNonPositiveHeight(t *testing.T) {
	f := newQuoteFixture(t)
	_, err := f.svc.SubmitQuoteRequest(context.Background(), intakeInput("0"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))
	assert.ErrorIs(t, err, utils.ErrInvalidRampHeight)
	assert.Empty(t, f.store.Quotes)
}

func TestSubmitQuoteRequestReusesCustomerByEmail(t *testing.T) {
	f := newQuoteFixture(t)
	f.email.On("SendAssessmentNeededEmail", mock.Anything).Return(nil).Twice()

	first, err := f.svc.SubmitQuoteRequest(context.Background(), intakeInput(""))
	require.NoError(t, err)
	second, err := f.svc.SubmitQuoteRequest(context.Background(), intakeInput(""))
	require.NoError(t, err)

	assert.Equal(t, first.Quote.CustomerID, second.Quote.CustomerID)
	assert.Len(t, f.store.Customers, 1)
	assert.Len(t, f.store.Quotes, 2)
	assert.Len(t, f.store.EventsOfType(models.EventCustomerCreated), 1)
}

func TestIntakeDefaults(t *testing.T) {
	assert.Equal(t, models.TimelineWithin3Days, MapIntakeTimeline("within-3-days"))
	assert.Equal(t, models.TimelineWithin1Week, MapIntakeTimeline("WITHIN_1_WEEK"))
	assert.Equal(t, models.TimelineFlexible, MapIntakeTimeline("next year"))
	assert.Equal(t, models.TimelineFlexible, MapIntakeTimeline(""))

	assert.Equal(t, models.ServiceTypePostSurgery, InferServiceType(models.TimelineFlexible, "Knee SURGERY next week"))
	assert.Equal(t, models.ServiceTypeAgingInPlace, InferServiceType(models.TimelineFlexible, ""))

	assert.Equal(t, "2-3 hours", EstimateInstallDuration(utils.Ptr(30.0)))
	assert.Equal(t, "1-2 hours", EstimateInstallDuration(utils.Ptr(24.0)))
	assert.Equal(t, "1-2 hours", EstimateInstallDuration(nil))
}

func TestUpdateQuoteAddsHeightAndPromotesToPending(t *testing.T) {
	f := newQuoteFixture(t)
	f.email.On("SendAssessmentNeededEmail", mock.Anything).Return(nil).Once()
	resp, err := f.svc.SubmitQuoteRequest(context.Background(), intakeInput(""))
	require.NoError(t, err)

	var upd dtos.UpdateQuoteRequest
	upd.RampHeight = dtos.OptionalFloat{Value: 18, Present: true}
	q, err := f.svc.UpdateQuote(context.Background(), resp.Quote.ID, upd)
	require.NoError(t, err)

	assert.Equal(t, models.QuoteStatusPending, q.Status)
	require.True(t, q.HasPricing())
	assert.Equal(t, 233.0, *q.MonthlyRate)
	assert.Equal(t, 111.0, *q.InstallationFee)
	assert.Len(t, f.store.EventsOfType(models.EventQuoteUpdated), 1)
}

func TestUpdateQuoteStatusStampsSentAtOnlyForSent(t *testing.T) {
	f := newQuoteFixture(t)
	resp, err := f.svc.CreateQuote(context.Background(), dtos.CreateQuoteRequest{
		CustomerName:   "Sarah Williams",
		CustomerEmail:  "sarah@example.com",
		CustomerPhone:  "214-555-0456",
		ServiceAddress: "567 Pine Avenue",
		Timeline:       "WITHIN_3_DAYS",
	})
	require.NoError(t, err)
	id := resp.Data.ID

	before := f.now
	out, err := f.svc.UpdateQuoteStatus(context.Background(), id, "SENT")
	require.NoError(t, err)
	assert.Equal(t, "Quote status updated to SENT", out.Message)
	require.NotNil(t, out.Quote.SentAt)
	assert.False(t, out.Quote.SentAt.Before(before))
	sentAt := *out.Quote.SentAt

	f.now = f.now.Add(time.Hour)
	out, err = f.svc.UpdateQuoteStatus(context.Background(), id, "declined")
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusDeclined, out.Quote.Status)
	assert.Equal(t, sentAt, *out.Quote.SentAt)
	assert.Len(t, f.store.EventsOfType(models.EventQuoteStatusChanged), 2)
}

func TestUpdateQuoteStatusValidation(t *testing.T) {
	f := newQuoteFixture(t)

	_, err := f.svc.UpdateQuoteStatus(context.Background(), uuid.New(), "")
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))

	_, err = f.svc.UpdateQuoteStatus(context.Background(), uuid.New(), "ARCHIVED")
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))

	_, err = f.svc.UpdateQuoteStatus(context.Background(), uuid.New(), "SENT")
	assert.Equal(t, http.StatusNotFound, appStatus(t, err))
}

func TestAcceptCreatesAgreementAndBlocksDelete(t *testing.T) {
	f := newQuoteFixture(t)
	resp, err := f.svc.CreateQuote(context.Background(), dtos.CreateQuoteRequest{
		CustomerName:   "Robert Davis",
		CustomerEmail:  "robert@example.com",
		CustomerPhone:  "2145550789",
		ServiceAddress: "890 Elm Street",
		Timeline:       "flexible",
	})
	require.NoError(t, err)
	id := resp.Data.ID

	accepted, err := f.svc.UpdateQuoteStatus(context.Background(), id, "ACCEPTED")
	require.NoError(t, err)
	require.Len(t, f.store.Agreements, 1)
	assert.Len(t, f.store.EventsOfType(models.EventAgreementCreated), 1)
	require.NotNil(t, accepted.Quote.Agreement, "status response carries the new agreement")
	assert.Equal(t, models.AgreementStatusDraft, accepted.Quote.Agreement.Status)

	notes := "call before arrival"
	edited, err := f.svc.UpdateQuote(context.Background(), id, dtos.UpdateQuoteRequest{Notes: &notes})
	require.NoError(t, err)
	require.NotNil(t, edited.Agreement)
	assert.Equal(t, accepted.Quote.Agreement.ID, edited.Agreement.ID)

	// accepting twice must not add a second agreement
	_, err = f.svc.UpdateQuoteStatus(context.Background(), id, "ACCEPTED")
	require.NoError(t, err)
	assert.Len(t, f.store.Agreements, 1)

	err = f.svc.DeleteQuote(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))
	assert.Contains(t, err.(*utils.AppError).Message, "associated agreement")
	assert.Contains(t, f.store.Quotes, id)

	q, err := f.svc.GetQuote(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, q.Agreement)
	assert.Equal(t, models.AgreementStatusDraft, q.Agreement.Status)
}

func TestDeleteQuote(t *testing.T) {
	f := newQuoteFixture(t)
	err := f.svc.DeleteQuote(context.Background(), uuid.New())
	assert.Equal(t, http.StatusNotFound, appStatus(t, err))

	resp, err := f.svc.CreateQuote(context.Background(), dtos.CreateQuoteRequest{
		CustomerName:   "Linda Brown",
		CustomerEmail:  "linda@example.com",
		CustomerPhone:  "2145550999",
		ServiceAddress: "321 Maple Drive",
		Timeline:       "asap",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteQuote(context.Background(), resp.Data.ID))
	assert.Empty(t, f.store.Quotes)
	assert.Len(t, f.store.EventsOfType(models.EventQuoteDeleted), 1)
}

func TestCreateQuoteDefaults(t *testing.T) {
	f := newQuoteFixture(t)
	resp, err := f.svc.CreateQuote(context.Background(), dtos.CreateQuoteRequest{
		CustomerName:   "Sarah Williams",
		CustomerEmail:  "sarah@example.com",
		CustomerPhone:  "2145550456",
		ServiceAddress: "567 Pine Avenue",
		Timeline:       "within-1-week",
	})
	require.NoError(t, err)

	q := resp.Data.Quote
	assert.Equal(t, "Quote created successfully", resp.Message)
	assert.Equal(t, models.QuoteStatusPending, q.Status)
	assert.Equal(t, 20.0, *q.RampHeight)
	assert.Equal(t, 245.0, *q.MonthlyRate)
	assert.Equal(t, 115.0, *q.InstallationFee)
	assert.Equal(t, "6-12 months", q.EstimatedDuration)
	assert.Equal(t, "admin", q.Source)
	assert.Equal(t, f.now.Add(7*24*time.Hour), q.ExpiresAt)
	assert.Equal(t, "SW", resp.Data.CustomerInitials)
	require.NotNil(t, resp.Data.TotalFirstMonth)
	assert.Equal(t, 360.0, *resp.Data.TotalFirstMonth)

	_, err = f.svc.CreateQuote(context.Background(), dtos.CreateQuoteRequest{
		CustomerName:   "X",
		CustomerEmail:  "x@example.com",
		CustomerPhone:  "2145550000",
		ServiceAddress: "1 Main",
		Timeline:       "someday",
	})
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))
}

func TestListQuotesFiltersAndStats(t *testing.T) {
	f := newQuoteFixture(t)
	f.email.On("SendAssessmentNeededEmail", mock.Anything).Return(nil)

	for i, name := range []string{"Ann Able", "Ben Baker", "Cal Cole"} {
		f.now = f.now.Add(time.Minute)
		_, err := f.svc.CreateQuote(context.Background(), dtos.CreateQuoteRequest{
			CustomerName:   name,
			CustomerEmail:  uuid.NewString() + "@example.com",
			CustomerPhone:  "214555000" + string(rune('0'+i)),
			ServiceAddress: "Street",
			Timeline:       "asap",
			RampHeight:     dtos.OptionalFloat{Value: 24, Present: true},
		})
		require.NoError(t, err)
	}
	f.now = f.now.Add(time.Minute)
	in := intakeInput("")
	in.CustomerPhone = "9725550100"
	in.CustomerEmail = "na@example.com"
	_, err := f.svc.SubmitQuoteRequest(context.Background(), in)
	require.NoError(t, err)

	out, err := f.svc.ListQuotes(context.Background(), dtos.QuoteListParams{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, out.Data, 3)
	for _, item := range out.Data {
		assert.Equal(t, models.QuoteStatusPending, item.Status)
	}
	assert.Equal(t, "Cal Cole", out.Data[0].Customer.Name, "newest first")
	assert.Equal(t, int64(3), out.Meta.Total)
	assert.Equal(t, 1, out.Meta.Page)
	assert.Equal(t, 10, out.Meta.Limit)

	assert.Equal(t, int64(4), out.Stats.Total)
	assert.Equal(t, int64(1), out.Stats.NeedsAssessment)
	assert.Equal(t, int64(3), out.Stats.Pending)
	assert.Equal(t, 807.0, out.Stats.TotalValue)
	assert.Equal(t, 269.0, out.Stats.AverageValue)

	out, err = f.svc.ListQuotes(context.Background(), dtos.QuoteListParams{Status: "all", Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, out.Data, 2)
	assert.Equal(t, 2, out.Meta.TotalPages)

	_, err = f.svc.ListQuotes(context.Background(), dtos.QuoteListParams{Status: "bogus"})
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))
}

func TestSendQuote(t *testing.T) {
	f := newQuoteFixture(t)
	resp, err := f.svc.CreateQuote(context.Background(), dtos.CreateQuoteRequest{
		CustomerName:   "Sarah Williams",
		CustomerEmail:  "sarah@example.com",
		CustomerPhone:  "2145550456",
		ServiceAddress: "567 Pine Avenue",
		Timeline:       "asap",
	})
	require.NoError(t, err)
	id := resp.Data.ID

	f.email.On("SendQuoteEmail", id, mock.Anything).Return(errors.New("boom")).Once()
	out, err := f.svc.SendQuote(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, out.EmailSent)
	assert.Equal(t, models.QuoteStatusPending, out.Quote.Status)

	f.email.On("SendQuoteEmail", id, mock.Anything).Return(nil).Once()
	out, err = f.svc.SendQuote(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, out.EmailSent)
	assert.Equal(t, models.QuoteStatusSent, out.Quote.Status)
	assert.Equal(t, "Quote sent successfully to sarah@example.com", out.Message)
}

func TestSendQuoteRequiresPricing(t *testing.T) {
	f := newQuoteFixture(t)
	f.email.On("SendAssessmentNeededEmail", mock.Anything).Return(nil).Once()
	resp, err := f.svc.SubmitQuoteRequest(context.Background(), intakeInput(""))
	require.NoError(t, err)

	_, err = f.svc.SendQuote(context.Background(), resp.Quote.ID)
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))
	assert.ErrorIs(t, err, utils.ErrPricingRequired)
}

func TestExpireOverdueQuotes(t *testing.T) {
	f := newQuoteFixture(t)
	resp, err := f.svc.CreateQuote(context.Background(), dtos.CreateQuoteRequest{
		CustomerName:   "Old Quote",
		CustomerEmail:  "old@example.com",
		CustomerPhone:  "2145551111",
		ServiceAddress: "1 Past Lane",
		Timeline:       "flexible",
	})
	require.NoError(t, err)

	n, err := f.svc.ExpireOverdueQuotes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.now = f.now.Add(8 * 24 * time.Hour)
	n, err = f.svc.ExpireOverdueQuotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.QuoteStatusExpired, f.store.Quotes[resp.Data.ID].Status)
	assert.Len(t, f.store.EventsOfType(models.EventQuoteExpired), 1)
}

func TestListQuoteRequests(t *testing.T) {
	f := newQuoteFixture(t)
	f.email.On("SendAssessmentNeededEmail", mock.Anything).Return(nil)
	resp, err := f.svc.SubmitQuoteRequest(context.Background(), intakeInput(""))
	require.NoError(t, err)

	quotes, err := f.svc.ListQuoteRequests(context.Background(), "", "MICHAEL.johnson@email.com")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, resp.Quote.ID, quotes[0].ID)
	assert.NotNil(t, quotes[0].Customer)
	assert.NotNil(t, quotes[0].ServiceAddress)

	quotes, err = f.svc.ListQuoteRequests(context.Background(), uuid.NewString(), "")
	require.NoError(t, err)
	assert.Empty(t, quotes)

	_, err = f.svc.ListQuoteRequests(context.Background(), "not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))
}
