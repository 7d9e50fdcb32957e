package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the kind of change that happened
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypePaid    EventType = "paid"
	EventTypeMissed  EventType = "missed"
	EventTypeClosed  EventType = "closed"
)

// EntityType represents the entity the event is about
type EntityType string

const (
	EntityTypeLoan        EntityType = "loan"
	EntityTypeInstallment EntityType = "installment"
	EntityTypeBorrower    EntityType = "borrower"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "installment.paid"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "installment"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LoanCreated creates a loan.created event
func LoanCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeLoan, payload)
}

// LoanClosed creates a loan.closed event
func LoanClosed(payload interface{}) Event {
	return NewEvent(EventTypeClosed, EntityTypeLoan, payload)
}

// InstallmentPaid creates an installment.paid event
func InstallmentPaid(payload interface{}) Event {
	return NewEvent(EventTypePaid, EntityTypeInstallment, payload)
}

// InstallmentMissed creates an installment.missed event
func InstallmentMissed(payload interface{}) Event {
	return NewEvent(EventTypeMissed, EntityTypeInstallment, payload)
}

// BorrowerCreated creates a borrower.created event
func BorrowerCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBorrower, payload)
}
