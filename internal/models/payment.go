package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type PaymentType string

const (
	PaymentTypeInstallationFee PaymentType = "INSTALLATION_FEE"
	PaymentTypeMonthlyRent     PaymentType = "MONTHLY_RENT"
	PaymentTypeLateFee         PaymentType = "LATE_FEE"
	PaymentTypeDamageFee       PaymentType = "DAMAGE_FEE"
)

type Payment struct {
	ID        uuid.UUID     `json:"id"`
	RentalID  uuid.UUID     `json:"rentalId"`
	Amount    float64       `json:"amount"`
	Status    PaymentStatus `json:"status"`
	Type      PaymentType   `json:"type"`
	DueDate   time.Time     `json:"dueDate"`
	PaidDate  *time.Time    `json:"paidDate,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}
