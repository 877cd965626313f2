package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventEntityType string

const (
	EntityCustomer  EventEntityType = "customer"
	EntityQuote     EventEntityType = "quote"
	EntityAgreement EventEntityType = "agreement"
	EntitySettings  EventEntityType = "settings"
)

type EventType string

const (
	EventCustomerCreated    EventType = "customer.created"
	EventCustomerUpdated    EventType = "customer.updated"
	EventQuoteCreated       EventType = "quote.created"
	EventQuoteUpdated       EventType = "quote.updated"
	EventQuoteSent          EventType = "quote.sent"
	EventQuoteStatusChanged EventType = "quote.status_changed"
	EventQuoteDeleted       EventType = "quote.deleted"
	EventQuoteExpired       EventType = "quote.expired"
	EventAgreementCreated   EventType = "agreement.created"
	EventSettingsUpdated    EventType = "settings.updated"
)

// Event is an append-only audit row.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	EntityType EventEntityType `json:"entityType"`
	EntityID   string          `json:"entityId"`
	EventType  EventType       `json:"eventType"`
	EventData  json.RawMessage `json:"eventData,omitempty"`
	UserID     *string         `json:"userId,omitempty"`
	IPAddress  *string         `json:"ipAddress,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}
