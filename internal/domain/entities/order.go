package entities

import "time"

// OrderStatus represents the lifecycle of an order.
//
// Domain notes:
//   - The checkout pipeline only drives CREATED -> PENDING_PAYMENT.
//   - PAID/CONFIRMED are set by the payment webhook listener (outside this service).
//   - Orders are never deleted; cancellation is a status transition.
type OrderStatus string

const (
	OrderStatusCreated        OrderStatus = "CREATED"
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusExpired        OrderStatus = "EXPIRED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:        {OrderStatusPendingPayment, OrderStatusCancelled, OrderStatusExpired},
	OrderStatusPendingPayment: {OrderStatusPaid, OrderStatusConfirmed, OrderStatusCancelled, OrderStatusExpired},
	OrderStatusPaid:           {OrderStatusConfirmed},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusPendingPayment, OrderStatusPaid,
		OrderStatusConfirmed, OrderStatusCancelled, OrderStatusExpired:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus mirrors the payment side of an order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusReceived  PaymentStatus = "RECEIVED"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// Order is the persisted checkout order.
//
// Storage model (DynamoDB):
//   - PK: id
//
// Splits are only filled once the payment orchestrator accepted the checkout.
type Order struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CompanyID     string `json:"company_id"`

	Items    []OrderItem `json:"items"`
	Subtotal float64     `json:"subtotal"`
	Discount float64     `json:"discount"`
	Total    float64     `json:"total"`

	CouponCode  string `json:"coupon_code,omitempty"`
	CouponID    string `json:"coupon_id,omitempty"`
	AffiliateID string `json:"affiliate_id,omitempty"`

	Status            OrderStatus    `json:"status"`
	PaymentStatus     PaymentStatus  `json:"payment_status"`
	CheckoutURL       string         `json:"checkout_url,omitempty"`
	ExternalPaymentID string         `json:"external_payment_id,omitempty"`
	Splits            []PaymentSplit `json:"splits,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentLink is what the payment orchestrator returns for an order.
type PaymentLink struct {
	ExternalPaymentID string
	CheckoutURL       string
	Splits            []PaymentSplit
}
