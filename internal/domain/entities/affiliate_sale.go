package entities

import "time"

// AffiliateSale records the commission owed to an affiliate for one order.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (order_id-index): order_id
//
// It is written in the same transaction as its Order and later marked paid by
// the payment webhook listener.
type AffiliateSale struct {
	ID                  string        `json:"id"`
	OrderID             string        `json:"order_id"`
	AffiliateID         string        `json:"affiliate_id"`
	CouponID            string        `json:"coupon_id"`
	CouponCode          string        `json:"coupon_code"`
	GrossValue          float64       `json:"gross_value"`
	CommissionRate      float64       `json:"commission_rate"`
	PlatformFee         float64       `json:"platform_fee"`
	AffiliateCommission float64       `json:"affiliate_commission"`
	NetValue            float64       `json:"net_value"`
	PaymentStatus       PaymentStatus `json:"payment_status"`
	ProductSummary      string        `json:"product_summary"`
	CreatedAt           time.Time     `json:"created_at"`
	PaidAt              *time.Time    `json:"paid_at,omitempty"`
}

// PaymentSplit is one recipient share of an order total.
type PaymentSplit struct {
	Recipient  string  `json:"recipient"`
	WalletID   string  `json:"wallet_id,omitempty"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

const (
	SplitRecipientPlatform  = "platform"
	SplitRecipientCompany   = "company"
	SplitRecipientAffiliate = "affiliate"
)
