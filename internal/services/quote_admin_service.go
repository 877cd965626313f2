package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samedayramps/app.samedayramps.com/internal/constants"
	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// NormalizePage clamps page and limit to the listing bounds.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	return page, limit
}

func (s *QuoteService) ListQuotes(ctx context.Context, p dtos.QuoteListParams) (*dtos.QuoteListResponse, error) {
	page, limit := NormalizePage(p.Page, p.Limit)
	f := repositories.QuoteFilter{
		Search: p.Search,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if p.Status != "" && !strings.EqualFold(p.Status, "all") {
		st, err := ParseQuoteStatus(p.Status)
		if err != nil {
			return nil, quoteError(err, "")
		}
		f.Status = st
	}
	if p.Timeline != "" && !strings.EqualFold(p.Timeline, "all") {
		t, err := ParseTimeline(p.Timeline)
		if err != nil {
			return nil, quoteError(err, "")
		}
		f.Timeline = t
	}
	if p.CustomerID != "" {
		id, err := uuid.Parse(p.CustomerID)
		if err != nil {
			return nil, utils.NewBadRequestError(utils.ErrCodeValidation, "Invalid customerId", err)
		}
		f.CustomerID = &id
	}

	quotes, total, err := s.quoteRepo.List(ctx, f)
	if err != nil {
		return nil, quoteError(err, "Failed to fetch quotes")
	}
	stats, err := s.quoteRepo.Stats(ctx)
	if err != nil {
		return nil, quoteError(err, "Failed to fetch quote stats")
	}

	now := s.now()
	items := make([]dtos.QuoteListItem, 0, len(quotes))
	for _, q := range quotes {
		items = append(items, dtos.NewQuoteListItem(q, now))
	}
	return &dtos.QuoteListResponse{
		Data:  items,
		Meta:  dtos.NewPageMeta(total, page, limit),
		Stats: newQuoteStatsView(stats),
	}, nil
}

func newQuoteStatsView(st *repositories.QuoteStats) dtos.QuoteStatsView {
	v := dtos.QuoteStatsView{
		Total:           st.Total,
		NeedsAssessment: st.NeedsAssessment,
		Pending:         st.Pending,
		Sent:            st.Sent,
		Accepted:        st.Accepted,
		Declined:        st.Declined,
		Expired:         st.Expired,
		TotalValue:      st.TotalValue,
	}
	if st.PricedCount > 0 {
		v.AverageValue = math.Round(st.TotalValue / float64(st.PricedCount))
	}
	return v
}

// CreateQuote is the staff-entered quote. Unlike intake it always carries a
// price (20" when no height is given) and expires after a week.
func (s *QuoteService) CreateQuote(ctx context.Context, in dtos.CreateQuoteRequest) (*dtos.QuoteCreatedResponse, error) {
	height := constants.DefaultAdminRampHeight
	if in.RampHeight.Present {
		height = in.RampHeight.Value
	}
	if height <= 0 {
		return nil, invalidRampHeight()
	}
	timeline, err := ParseTimeline(in.Timeline)
	if err != nil {
		return nil, quoteError(err, "")
	}
	serviceType := InferServiceType(timeline, in.Notes)
	if in.ServiceType != "" {
		serviceType = models.ServiceType(strings.ToUpper(in.ServiceType))
		if !serviceType.Valid() {
			return nil, utils.NewBadRequestError(utils.ErrCodeValidation, "Invalid serviceType", nil)
		}
	}

	pricing, err := s.settings.CalculatePricing(ctx, height)
	if err != nil {
		return nil, err
	}

	now := s.now()
	q := &models.Quote{
		ID:                uuid.New(),
		TimelineNeeded:    timeline,
		ServiceType:       serviceType,
		EstimatedDuration: orDefault(in.EstimatedDuration, constants.DefaultAdminEstimatedDuration),
		Status:            models.QuoteStatusPending,
		Source:            orDefault(in.Source, constants.DefaultAdminSource),
		Priority:          orDefault(in.Priority, constants.DefaultPriority),
		CreatedAt:         now,
		UpdatedAt:         now,
		ExpiresAt:         now.Add(constants.AdminQuoteExpiry),
	}
	if in.Notes != "" {
		q.Notes = utils.Ptr(in.Notes)
	}
	applyPricing(q, height, *pricing)

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
		return nil, quoteError(err, "Failed to create quote")
	}
	q = res.Quote

	if res.CustomerCreated {
		s.audit.Record(ctx, models.EntityCustomer, q.CustomerID.String(), models.EventCustomerCreated, map[string]any{
			"source": q.Source,
		})
	}
	s.audit.Record(ctx, models.EntityQuote, q.ID.String(), models.EventQuoteCreated, map[string]any{
		"source":      q.Source,
		"status":      q.Status,
		"rampHeight":  q.RampHeight,
		"monthlyRate": q.MonthlyRate,
	})

	return &dtos.QuoteCreatedResponse{
		Data:    dtos.NewQuoteListItem(q, now),
		Message: "Quote created successfully",
	}, nil
}

// GetQuote loads a quote with its customer, address, and, when accepted,
// the agreement with its rental and payments.
func (s *QuoteService) GetQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	q, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, quoteError(err, "Failed to fetch quote")
	}
	if q == nil {
		return nil, utils.NewNotFoundError("Quote not found")
	}

	if err := s.attachAgreement(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// attachAgreement loads the quote's agreement with its rental and payments.
func (s *QuoteService) attachAgreement(ctx context.Context, q *models.Quote) error {
	agreement, err := s.agreementRepo.GetByQuoteID(ctx, q.ID)
	if err != nil {
		return quoteError(err, "Failed to fetch agreement")
	}
	if agreement == nil {
		return nil
	}
	q.Agreement = agreement

	rental, err := s.rentalRepo.GetByAgreementID(ctx, agreement.ID)
	if err != nil {
		return quoteError(err, "Failed to fetch rental")
	}
	if rental == nil {
		return nil
	}
	payments, err := s.paymentRepo.ListByRentalIDs(ctx, []uuid.UUID{rental.ID})
	if err != nil {
		return quoteError(err, "Failed to fetch payments")
	}
	rental.Payments = payments[rental.ID]
	agreement.Rental = rental
	return nil
}

// withRelations adds the agreement chain to a quote that was just written.
// The write already succeeded, so a failed read is logged rather than returned.
func (s *QuoteService) withRelations(ctx context.Context, q *models.Quote) *models.Quote {
	if err := s.attachAgreement(ctx, q); err != nil {
		utils.Logger.WithError(err).WithField("quoteID", q.ID).Warn("Updated quote returned without agreement")
	}
	return q
}

// UpdateQuote applies a partial edit. A new ramp height re-prices the quote
// and promotes NEEDS_ASSESSMENT to PENDING; an explicit status goes through
// the lifecycle rules.
func (s *QuoteService) UpdateQuote(ctx context.Context, id uuid.UUID, in dtos.UpdateQuoteRequest) (*models.Quote, error) {
	var (
		pricing     *Pricing
		status      *models.QuoteStatus
		timeline    *models.Timeline
		serviceType *models.ServiceType
		err         error
	)
	if in.RampHeight.Present {
		if in.RampHeight.Value <= 0 {
			return nil, invalidRampHeight()
		}
		if pricing, err = s.settings.CalculatePricing(ctx, in.RampHeight.Value); err != nil {
			return nil, err
		}
	}
	if in.Status != nil {
		st, err := ParseQuoteStatus(*in.Status)
		if err != nil {
			return nil, quoteError(err, "")
		}
		status = &st
	}
	if in.TimelineNeeded != nil {
		t, err := ParseTimeline(*in.TimelineNeeded)
		if err != nil {
			return nil, quoteError(err, "")
		}
		timeline = &t
	}
	if in.ServiceType != nil {
		st := models.ServiceType(strings.ToUpper(strings.TrimSpace(*in.ServiceType)))
		if !st.Valid() {
			return nil, utils.NewBadRequestError(utils.ErrCodeValidation, "Invalid serviceType", nil)
		}
		serviceType = &st
	}

	now := s.now()
	var transition *TransitionResult
	res, err := s.quoteRepo.UpdateWithRetry(ctx, id, func(q *models.Quote) (*models.Agreement, error) {
		transition = nil
		if pricing != nil {
			applyPricing(q, in.RampHeight.Value, *pricing)
			q.EstimatedDuration = EstimateInstallDuration(q.RampHeight)
			if status == nil && q.Status == models.QuoteStatusNeedsAssessment {
				q.Status = models.QuoteStatusPending
			}
		}
		if in.Notes != nil {
			q.Notes = in.Notes
		}
		if timeline != nil {
			q.TimelineNeeded = *timeline
		}
		if serviceType != nil {
			q.ServiceType = *serviceType
		}
		if in.EstimatedDuration != nil {
			q.EstimatedDuration = *in.EstimatedDuration
		}
		if in.ExpiresAt != nil {
			q.ExpiresAt = *in.ExpiresAt
		}
		if in.Source != nil {
			q.Source = *in.Source
		}
		if in.Priority != nil {
			q.Priority = *in.Priority
		}
		q.UpdatedAt = now

		if status == nil {
			return nil, nil
		}
		tr, err := ApplyTransition(q, *status, now)
		if err != nil {
			return nil, err
		}
		transition = tr
		return tr.Agreement, nil
	})
	if err != nil {
		return nil, quoteError(err, "Failed to update quote")
	}

	s.audit.Record(ctx, models.EntityQuote, id.String(), models.EventQuoteUpdated, in)
	s.recordTransition(ctx, res, transition)
	return s.withRelations(ctx, res.Quote), nil
}

// UpdateQuoteStatus is the dedicated status endpoint.
func (s *QuoteService) UpdateQuoteStatus(ctx context.Context, id uuid.UUID, raw string) (*dtos.QuoteStatusResponse, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, utils.NewBadRequestError(utils.ErrCodeValidation, "Status is required", nil)
	}
	to, err := ParseQuoteStatus(raw)
	if err != nil {
		return nil, quoteError(err, "")
	}

	now := s.now()
	var transition *TransitionResult
	res, err := s.quoteRepo.UpdateWithRetry(ctx, id, func(q *models.Quote) (*models.Agreement, error) {
		tr, err := ApplyTransition(q, to, now)
		if err != nil {
			return nil, err
		}
		transition = tr
		return tr.Agreement, nil
	})
	if err != nil {
		return nil, quoteError(err, "Failed to update quote status")
	}
	s.recordTransition(ctx, res, transition)

	return &dtos.QuoteStatusResponse{
		Quote:   s.withRelations(ctx, res.Quote),
		Message: fmt.Sprintf("Quote status updated to %s", to),
	}, nil
}

func (s *QuoteService) recordTransition(ctx context.Context, res *repositories.QuoteUpdateResult, tr *TransitionResult) {
	if tr == nil {
		return
	}
	id := res.Quote.ID.String()
	if tr.Override {
		utils.Logger.WithFields(logrus.Fields{
			"quote_id": id,
			"from":     tr.From,
			"to":       tr.To,
		}).Warn("Quote status override")
	}
	if tr.From != tr.To {
		s.audit.Record(ctx, models.EntityQuote, id, models.EventQuoteStatusChanged, map[string]any{
			"from":     tr.From,
			"to":       tr.To,
			"override": tr.Override,
		})
	}
	if a := res.AgreementCreated; a != nil {
		s.audit.Record(ctx, models.EntityAgreement, a.ID.String(), models.EventAgreementCreated, map[string]any{
			"quoteId": id,
			"status":  a.Status,
		})
	}
}

// SendQuote emails a priced quote and marks it SENT when the email goes out.
func (s *QuoteService) SendQuote(ctx context.Context, id uuid.UUID) (*dtos.SendQuoteResponse, error) {
	q, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, quoteError(err, "Failed to fetch quote")
	}
	if q == nil {
		return nil, utils.NewNotFoundError("Quote not found")
	}
	if !q.HasPricing() {
		return nil, utils.NewBadRequestError(utils.ErrCodeValidation,
			"Quote needs a ramp height before it can be sent", utils.ErrPricingRequired)
	}
	if q.Status != models.QuoteStatusPending && q.Status != models.QuoteStatusSent {
		return nil, utils.NewBadRequestError(utils.ErrCodeValidation,
			fmt.Sprintf("Cannot send a quote with status %s", q.Status), utils.ErrInvalidStatus)
	}

	q, sent := s.sendAndMarkSent(ctx, q)
	msg := "Quote email could not be sent"
	if sent {
		msg = fmt.Sprintf(msgQuoteSentTo, q.Customer.Email)
	}
	return &dtos.SendQuoteResponse{Quote: q, EmailSent: sent, Message: msg}, nil
}

func (s *QuoteService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	if err := s.quoteRepo.DeleteIfNoAgreement(ctx, id); err != nil {
		return quoteError(err, "Failed to delete quote")
	}
	s.audit.Record(ctx, models.EntityQuote, id.String(), models.EventQuoteDeleted, nil)
	utils.Logger.WithField("quote_id", id).Info("Quote deleted")
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
