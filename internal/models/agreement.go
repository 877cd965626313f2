package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AgreementStatus string

const (
	AgreementStatusDraft     AgreementStatus = "DRAFT"
	AgreementStatusSent      AgreementStatus = "SENT"
	AgreementStatusSigned    AgreementStatus = "SIGNED"
	AgreementStatusCancelled AgreementStatus = "CANCELLED"
)

type Agreement struct {
	ID            uuid.UUID       `json:"id"`
	QuoteID       uuid.UUID       `json:"quoteId"`
	Status        AgreementStatus `json:"status"`
	SignedAt      *time.Time      `json:"signedAt,omitempty"`
	ContractTerms json.RawMessage `json:"contractTerms,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Rental *Rental `json:"rental,omitempty"`
}

// ContractTerms is the JSON document stored on a draft agreement.
type ContractTerms struct {
	MonthlyRate     float64 `json:"monthlyRate"`
	InstallationFee float64 `json:"installationFee"`
	RampHeight      float64 `json:"rampHeight"`
	MinimumMonths   int     `json:"minimumMonths"`
}

// NewDraftAgreement builds the agreement created when a quote is accepted.
func NewDraftAgreement(q *Quote, now time.Time) (*Agreement, error) {
	terms := ContractTerms{MinimumMonths: 1}
	if q.MonthlyRate != nil {
		terms.MonthlyRate = *q.MonthlyRate
	}
	if q.InstallationFee != nil {
		terms.InstallationFee = *q.InstallationFee
	}
	if q.RampHeight != nil {
		terms.RampHeight = *q.RampHeight
	}
	raw, err := json.Marshal(terms)
	if err != nil {
		return nil, err
	}
	return &Agreement{
		ID:            uuid.New(),
		QuoteID:       q.ID,
		Status:        AgreementStatusDraft,
		ContractTerms: raw,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
