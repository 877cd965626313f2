package services

import (
	"fmt"
	"time"

	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// forwardTransitions lists the moves the normal workflow makes. Anything else
// is a staff override: still allowed, but logged and audited as such.
var forwardTransitions = map[models.QuoteStatus][]models.QuoteStatus{
	models.QuoteStatusNeedsAssessment: {models.QuoteStatusPending},
	models.QuoteStatusPending:         {models.QuoteStatusSent, models.QuoteStatusExpired},
	models.QuoteStatusSent:            {models.QuoteStatusAccepted, models.QuoteStatusDeclined, models.QuoteStatusExpired},
}

func IsForwardTransition(from, to models.QuoteStatus) bool {
	for _, s := range forwardTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionResult describes what ApplyTransition did to the quote.
type TransitionResult struct {
	From      models.QuoteStatus
	To        models.QuoteStatus
	Override  bool
	Agreement *models.Agreement // set when the move to ACCEPTED needs one
}

// ApplyTransition moves q to the target status and stamps the matching
// timestamp. Only SENT touches sentAt. Any status other than NEEDS_ASSESSMENT
// requires pricing.
func ApplyTransition(q *models.Quote, to models.QuoteStatus, now time.Time) (*TransitionResult, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", utils.ErrInvalidStatus, to)
	}
	if !q.PricingConsistent() {
		return nil, utils.ErrPricingIncomplete
	}
	if to != models.QuoteStatusNeedsAssessment && !q.HasPricing() {
		return nil, fmt.Errorf("%w: cannot move to %s without a ramp height", utils.ErrPricingRequired, to)
	}

	res := &TransitionResult{
		From:     q.Status,
		To:       to,
		Override: q.Status != to && !IsForwardTransition(q.Status, to),
	}

	switch to {
	case models.QuoteStatusSent:
		q.SentAt = &now
	case models.QuoteStatusAccepted:
		if q.Status != models.QuoteStatusAccepted {
			q.AcceptedAt = &now
		}
		agreement, err := models.NewDraftAgreement(q, now)
		if err != nil {
			return nil, err
		}
		res.Agreement = agreement
	case models.QuoteStatusDeclined:
		if q.Status != models.QuoteStatusDeclined {
			q.DeclinedAt = &now
		}
	}

	q.Status = to
	q.UpdatedAt = now
	return res, nil
}
