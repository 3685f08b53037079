package entities

import "time"

const (
	CompanyStatusActive   = "active"
	AffiliateStatusActive = "active"
)

type Company struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	WalletID string `json:"wallet_id,omitempty"`
}

type Product struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"company_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url,omitempty"`
	Active      bool    `json:"active"`
}

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Coupon is a company-scoped discount code, optionally bound to an affiliate.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (code-index): code
type Coupon struct {
	ID            string       `json:"id"`
	Code          string       `json:"code"`
	CompanyID     string       `json:"company_id"`
	AffiliateID   string       `json:"affiliate_id,omitempty"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`
	MinOrderValue float64      `json:"min_order_value,omitempty"`
	Active        bool         `json:"active"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
}

type Affiliate struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Status         string  `json:"status"`
	CommissionRate float64 `json:"commission_rate"`
	WalletID       string  `json:"wallet_id,omitempty"`
}
