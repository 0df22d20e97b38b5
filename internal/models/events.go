package models

import (
	"encoding/json"
	"time"
)

// Event types published to the order events topic.
const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

// OrderEvent is the payload published when an order is created or its
// status changes. Publishing is best effort and never blocks the order flow.
type OrderEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Order      *Order    `json:"order,omitempty"`
	NewStatus  string    `json:"new_status,omitempty"`
}

// NewOrderCreatedEvent builds the serialized order_created event.
func NewOrderCreatedEvent(order *Order) ([]byte, error) {
	return json.Marshal(OrderEvent{
		EventType:  EventOrderCreated,
		OrderID:    order.OrderID,
		OccurredAt: time.Now().UTC(),
		Order:      order,
	})
}

// NewOrderStatusChangedEvent builds the serialized order_status_changed event.
func NewOrderStatusChangedEvent(orderID, newStatus string) ([]byte, error) {
	return json.Marshal(OrderEvent{
		EventType:  EventOrderStatusChanged,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
		NewStatus:  newStatus,
	})
}
