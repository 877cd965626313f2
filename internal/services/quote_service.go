package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/samedayramps/app.samedayramps.com/internal/constants"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// QuoteService owns the quote workflow: public intake, the admin screens,
// and the expiry sweep.
type QuoteService struct {
	quoteRepo     repositories.QuoteRepository
	agreementRepo repositories.AgreementRepository
	rentalRepo    repositories.RentalRepository
	paymentRepo   repositories.PaymentRepository
	settings      SettingsService
	email         EmailService
	sms           SMSService
	audit         AuditService
	now           func() time.Time
}

func NewQuoteService(
	quoteRepo repositories.QuoteRepository,
	agreementRepo repositories.AgreementRepository,
	rentalRepo repositories.RentalRepository,
	paymentRepo repositories.PaymentRepository,
	settings SettingsService,
	email EmailService,
	sms SMSService,
	audit AuditService,
) *QuoteService {
	return &QuoteService{
		quoteRepo:     quoteRepo,
		agreementRepo: agreementRepo,
		rentalRepo:    rentalRepo,
		paymentRepo:   paymentRepo,
		settings:      settings,
		email:         email,
		sms:           sms,
		audit:         audit,
		now:           time.Now,
	}
}

// WithClock replaces time.Now; tests use it to pin timestamps.
func (s *QuoteService) WithClock(now func() time.Time) *QuoteService {
	s.now = now
	return s
}

var timelineSlugs = map[string]models.Timeline{
	"asap":          models.TimelineASAP,
	"within-3-days": models.TimelineWithin3Days,
	"within-1-week": models.TimelineWithin1Week,
	"flexible":      models.TimelineFlexible,
}

// ParseTimeline accepts the website slugs ("within-3-days") and the stored
// enum names ("WITHIN_3_DAYS").
func ParseTimeline(raw string) (models.Timeline, error) {
	v := strings.TrimSpace(raw)
	if t, ok := timelineSlugs[strings.ToLower(v)]; ok {
		return t, nil
	}
	if t := models.Timeline(strings.ToUpper(v)); t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", utils.ErrInvalidTimeline, raw)
}

// MapIntakeTimeline is ParseTimeline with FLEXIBLE for anything unknown.
func MapIntakeTimeline(raw string) models.Timeline {
	t, err := ParseTimeline(raw)
	if err != nil {
		return models.TimelineFlexible
	}
	return t
}

// InferServiceType guesses the care situation from the request.
func InferServiceType(timeline models.Timeline, notes string) models.ServiceType {
	n := strings.ToLower(notes)
	switch {
	case timeline == models.TimelineASAP,
		strings.Contains(n, "hospital"),
		strings.Contains(n, "surgery"):
		return models.ServiceTypePostSurgery
	case strings.Contains(n, "hospice"), strings.Contains(n, "transitional"):
		return models.ServiceTypeTransitionalHospice
	}
	return models.ServiceTypeAgingInPlace
}

// EstimateInstallDuration is how long the crew should plan to be on site.
func EstimateInstallDuration(height *float64) string {
	if height != nil && *height > constants.LongInstallHeightThresholdInch {
		return constants.LongInstallEstimatedDuration
	}
	return constants.ShortInstallEstimatedDuration
}

func ParseQuoteStatus(raw string) (models.QuoteStatus, error) {
	st := models.QuoteStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", utils.ErrInvalidStatus, raw)
	}
	return st, nil
}

func invalidRampHeight() *utils.AppError {
	return &utils.AppError{
		StatusCode: http.StatusBadRequest,
		Code:       utils.ErrCodeValidation,
		Message:    "Ramp height must be greater than zero",
		Err:        utils.ErrInvalidRampHeight,
	}
}

// quoteError turns repository and lifecycle errors into AppErrors.
func quoteError(err error, fallback string) error {
	var appErr *utils.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return utils.NewNotFoundError("Quote not found")
	case errors.Is(err, utils.ErrQuoteHasAgreement):
		return utils.NewBadRequestError(utils.ErrCodeConflict, "Cannot delete quote with associated agreement", err)
	case errors.Is(err, utils.ErrPricingRequired):
		return utils.NewBadRequestError(utils.ErrCodeValidation, "Quote needs a ramp height before this change", err)
	case errors.Is(err, utils.ErrPricingIncomplete):
		return utils.NewBadRequestError(utils.ErrCodeValidation, "Quote pricing is incomplete", err)
	case errors.Is(err, utils.ErrInvalidStatus):
		return utils.NewBadRequestError(utils.ErrCodeValidation, "Invalid status", err)
	case errors.Is(err, utils.ErrInvalidTimeline):
		return utils.NewBadRequestError(utils.ErrCodeValidation, "Invalid timeline", err)
	case errors.Is(err, utils.ErrInvalidRampHeight):
		return invalidRampHeight()
	case errors.Is(err, utils.ErrRowVersionConflict):
		return &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeRowVersionConflict,
			Message:    "Quote was modified concurrently, please retry",
			Err:        err,
		}
	}
	return utils.NewInternalError(fallback, err)
}
