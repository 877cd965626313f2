package dtos

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

/* ---------- Public intake ---------- */

// QuoteRequestInput is the website quote form.
type QuoteRequestInput struct {
	CustomerName   string        `json:"customerName" validate:"required"`
	CustomerEmail  string        `json:"customerEmail" validate:"required,email"`
	CustomerPhone  string        `json:"customerPhone" validate:"required"`
	ServiceAddress string        `json:"serviceAddress" validate:"required"`
	RampHeight     OptionalFloat `json:"rampHeight"`
	Timeline       string        `json:"timeline"`
	Notes          string        `json:"notes"`
	Source         string        `json:"source"`
	Priority       string        `json:"priority"`
}

func (in *QuoteRequestInput) Normalize() {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.ServiceAddress = strings.TrimSpace(in.ServiceAddress)
	in.Timeline = strings.TrimSpace(in.Timeline)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Source = strings.TrimSpace(in.Source)
	in.Priority = strings.TrimSpace(in.Priority)
}

type PricingView struct {
	MonthlyRate     float64 `json:"monthlyRate"`
	InstallationFee float64 `json:"installationFee"`
	Total           float64 `json:"total"`
}

type QuoteRequestView struct {
	ID                uuid.UUID          `json:"id"`
	CustomerID        uuid.UUID          `json:"customerId"`
	CustomerName      string             `json:"customerName"`
	CustomerEmail     string             `json:"customerEmail"`
	Status            models.QuoteStatus `json:"status"`
	Timeline          models.Timeline    `json:"timeline"`
	ServiceType       models.ServiceType `json:"serviceType"`
	EstimatedDuration string             `json:"estimatedDuration"`
	ExpiresAt         time.Time          `json:"expiresAt"`
	Pricing           *PricingView       `json:"pricing"`
	NeedsAssessment   bool               `json:"needsAssessment"`
	EmailSent         bool               `json:"emailSent"`
}

type QuoteRequestResponse struct {
	Success   bool             `json:"success"`
	Quote     QuoteRequestView `json:"quote"`
	EmailSent bool             `json:"emailSent"`
	Message   string           `json:"message"`
}

type QuoteRequestsListResponse struct {
	Quotes []*models.Quote `json:"quotes"`
}

/* ---------- Admin list ---------- */

type QuoteListParams struct {
	Search     string
	Status     string
	Timeline   string
	CustomerID string
	Page       int
	Limit      int
}

// QuoteListItem decorates a quote with display fields.
type QuoteListItem struct {
	*models.Quote
	CustomerInitials string              `json:"customerInitials"`
	TotalFirstMonth  *float64            `json:"totalFirstMonth"`
	TimeRemaining    utils.TimeRemaining `json:"timeRemaining"`
}

func NewQuoteListItem(q *models.Quote, now time.Time) QuoteListItem {
	item := QuoteListItem{
		Quote:         q,
		TimeRemaining: utils.GetTimeRemaining(q.ExpiresAt, now),
	}
	if q.Customer != nil {
		item.CustomerInitials = utils.GenerateInitials(q.Customer.Name)
	}
	if q.HasPricing() {
		total := q.TotalValue()
		item.TotalFirstMonth = &total
	}
	return item
}

type QuoteStatsView struct {
	Total           int64   `json:"total"`
	NeedsAssessment int64   `json:"needsAssessment"`
	Pending         int64   `json:"pending"`
	Sent            int64   `json:"sent"`
	Accepted        int64   `json:"accepted"`
	Declined        int64   `json:"declined"`
	Expired         int64   `json:"expired"`
	TotalValue      float64 `json:"totalValue"`
	AverageValue    float64 `json:"averageValue"`
}

type QuoteListResponse struct {
	Data  []QuoteListItem `json:"data"`
	Meta  PageMeta        `json:"meta"`
	Stats QuoteStatsView  `json:"stats"`
}

/* ---------- Admin create / update ---------- */

type CreateQuoteRequest struct {
	CustomerName      string        `json:"customerName" validate:"required"`
	CustomerEmail     string        `json:"customerEmail" validate:"required,email"`
	CustomerPhone     string        `json:"customerPhone" validate:"required"`
	ServiceAddress    string        `json:"serviceAddress" validate:"required"`
	Timeline          string        `json:"timeline" validate:"required"`
	RampHeight        OptionalFloat `json:"rampHeight"`
	ServiceType       string        `json:"serviceType"`
	EstimatedDuration string        `json:"estimatedDuration"`
	Notes             string        `json:"notes"`
	Source            string        `json:"source"`
	Priority          string        `json:"priority"`
}

func (in *CreateQuoteRequest) Normalize() {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.ServiceAddress = strings.TrimSpace(in.ServiceAddress)
	in.Timeline = strings.TrimSpace(in.Timeline)
	in.ServiceType = strings.TrimSpace(in.ServiceType)
	in.EstimatedDuration = strings.TrimSpace(in.EstimatedDuration)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Source = strings.TrimSpace(in.Source)
	in.Priority = strings.TrimSpace(in.Priority)
}

type QuoteCreatedResponse struct {
	Data    QuoteListItem `json:"data"`
	Message string        `json:"message"`
}

// UpdateQuoteRequest is a partial update; nil fields are left alone.
type UpdateQuoteRequest struct {
	RampHeight        OptionalFloat `json:"rampHeight"`
	Status            *string       `json:"status"`
	Notes             *string       `json:"notes"`
	TimelineNeeded    *string       `json:"timelineNeeded"`
	ServiceType       *string       `json:"serviceType"`
	EstimatedDuration *string       `json:"estimatedDuration"`
	ExpiresAt         *time.Time    `json:"expiresAt"`
	Source            *string       `json:"source"`
	Priority          *string       `json:"priority"`
}

type UpdateQuoteStatusRequest struct {
	Status string `json:"status"`
}

type QuoteStatusResponse struct {
	Quote   *models.Quote `json:"quote"`
	Message string        `json:"message"`
}

type SendQuoteResponse struct {
	Quote     *models.Quote `json:"quote"`
	EmailSent bool          `json:"emailSent"`
	Message   string        `json:"message"`
}
