package models

import (
	"time"

	"github.com/google/uuid"
)

type QuoteStatus string

const (
	QuoteStatusNeedsAssessment QuoteStatus = "NEEDS_ASSESSMENT"
	QuoteStatusPending         QuoteStatus = "PENDING"
	QuoteStatusSent            QuoteStatus = "SENT"
	QuoteStatusAccepted        QuoteStatus = "ACCEPTED"
	QuoteStatusDeclined        QuoteStatus = "DECLINED"
	QuoteStatusExpired         QuoteStatus = "EXPIRED"
)

var AllQuoteStatuses = []QuoteStatus{
	QuoteStatusNeedsAssessment,
	QuoteStatusPending,
	QuoteStatusSent,
	QuoteStatusAccepted,
	QuoteStatusDeclined,
	QuoteStatusExpired,
}

func (s QuoteStatus) Valid() bool {
	for _, v := range AllQuoteStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Timeline string

const (
	TimelineASAP        Timeline = "ASAP"
	TimelineWithin3Days Timeline = "WITHIN_3_DAYS"
	TimelineWithin1Week Timeline = "WITHIN_1_WEEK"
	TimelineFlexible    Timeline = "FLEXIBLE"
)

func (t Timeline) Valid() bool {
	switch t {
	case TimelineASAP, TimelineWithin3Days, TimelineWithin1Week, TimelineFlexible:
		return true
	}
	return false
}

type ServiceType string

const (
	ServiceTypePostSurgery         ServiceType = "POST_SURGERY"
	ServiceTypeAgingInPlace        ServiceType = "AGING_IN_PLACE"
	ServiceTypeTransitionalHospice ServiceType = "TRANSITIONAL_HOSPICE"
)

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypePostSurgery, ServiceTypeAgingInPlace, ServiceTypeTransitionalHospice:
		return true
	}
	return false
}

type Quote struct {
	Versioned

	ID               uuid.UUID `json:"id"`
	CustomerID       uuid.UUID `json:"customerId"`
	ServiceAddressID uuid.UUID `json:"serviceAddressId"`

	RampHeight        *float64    `json:"rampHeight"`
	TimelineNeeded    Timeline    `json:"timelineNeeded"`
	ServiceType       ServiceType `json:"serviceType"`
	MonthlyRate       *float64    `json:"monthlyRate"`
	InstallationFee   *float64    `json:"installationFee"`
	EstimatedDuration string      `json:"estimatedDuration"`
	Status            QuoteStatus `json:"status"`
	Source            string      `json:"source"`
	Priority          string      `json:"priority"`
	Notes             *string     `json:"notes,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	DeclinedAt *time.Time `json:"declinedAt,omitempty"`
	ExpiresAt  time.Time  `json:"expiresAt"`

	Customer       *Customer  `json:"customer,omitempty"`
	ServiceAddress *Address   `json:"serviceAddress,omitempty"`
	Agreement      *Agreement `json:"agreement,omitempty"`
}

func (q *Quote) GetID() string {
	return q.ID.String()
}

// HasPricing reports whether both price components are known.
func (q *Quote) HasPricing() bool {
	return q.MonthlyRate != nil && q.InstallationFee != nil
}

// PricingConsistent is false when only one of the two price columns is set.
func (q *Quote) PricingConsistent() bool {
	return (q.MonthlyRate == nil) == (q.InstallationFee == nil)
}

// TotalValue is the first-month amount, or 0 when unpriced.
func (q *Quote) TotalValue() float64 {
	if !q.HasPricing() {
		return 0
	}
	return *q.MonthlyRate + *q.InstallationFee
}
