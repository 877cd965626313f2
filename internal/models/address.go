package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultCity    = "Dallas"
	DefaultState   = "TX"
	DefaultZipCode = "75000"
	DefaultCountry = "US"
)

type Address struct {
	ID         uuid.UUID `json:"id"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	ZipCode    string    `json:"zipCode"`
	Country    string    `json:"country"`
	CustomerID uuid.UUID `json:"customerId"`
	CreatedAt  time.Time `json:"createdAt"`
}
