package entities

import "time"

type OrderEventType string

const (
	OrderEventPendingPayment      OrderEventType = "order.pending_payment"
	OrderEventCheckoutLinkCreated OrderEventType = "order.checkout_link_created"
	OrderEventWebhookFailed       OrderEventType = "order.webhook_failed"
	OrderEventCancelled           OrderEventType = "order.cancelled"
	OrderEventStatusChanged       OrderEventType = "order.status_changed"
)

// OrderEvent is published after an order crossed the durability boundary.
type OrderEvent struct {
	ID         string         `json:"id"`
	Type       OrderEventType `json:"type"`
	OrderID    string         `json:"order_id"`
	CompanyID  string         `json:"company_id"`
	Status     OrderStatus    `json:"status"`
	Total      float64        `json:"total"`
	Reason     string         `json:"reason,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
