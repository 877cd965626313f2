package models

import (
	"time"

	"github.com/google/uuid"
)

type RentalStatus string

const (
	RentalStatusScheduled RentalStatus = "SCHEDULED"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusEnding    RentalStatus = "ENDING"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
)

type Rental struct {
	ID          uuid.UUID    `json:"id"`
	AgreementID uuid.UUID    `json:"agreementId"`
	CustomerID  uuid.UUID    `json:"customerId"`
	MonthlyRate float64      `json:"monthlyRate"`
	Status      RentalStatus `json:"status"`
	StartDate   *time.Time   `json:"startDate,omitempty"`
	EndDate     *time.Time   `json:"endDate,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	Payments []*Payment `json:"payments,omitempty"`
}
