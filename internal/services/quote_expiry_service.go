package services

import (
	"context"

	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// ExpireOverdueQuotes moves PENDING and SENT quotes past expiresAt to
// EXPIRED and returns how many changed.
func (s *QuoteService) ExpireOverdueQuotes(ctx context.Context) (int, error) {
	now := s.now()
	ids, err := s.quoteRepo.ExpireOverdue(ctx, now)
	if err != nil {
		utils.Logger.WithError(err).Error("Quote expiry sweep failed")
		return 0, err
	}
	for _, id := range ids {
		s.audit.Record(ctx, models.EntityQuote, id.String(), models.EventQuoteExpired, map[string]any{
			"expiredAt": now,
		})
	}
	if len(ids) > 0 {
		utils.Logger.WithField("count", len(ids)).Info("Expired overdue quotes")
	}
	return len(ids), nil
}
