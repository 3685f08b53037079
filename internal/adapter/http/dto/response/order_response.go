package response

import (
	"time"

	"checkout_service/internal/domain/entities"
)

type OrderItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

type OrderResponse struct {
	ID                string                  `json:"id"`
	CompanyID         string                  `json:"company_id"`
	CustomerID        string                  `json:"customer_id"`
	CustomerEmail     string                  `json:"customer_email"`
	Items             []OrderItemResponse     `json:"items"`
	Subtotal          float64                 `json:"subtotal"`
	Discount          float64                 `json:"discount"`
	Total             float64                 `json:"total"`
	CouponCode        string                  `json:"coupon_code,omitempty"`
	AffiliateID       string                  `json:"affiliate_id,omitempty"`
	Status            string                  `json:"status"`
	PaymentStatus     string                  `json:"payment_status"`
	CheckoutURL       string                  `json:"checkout_url,omitempty"`
	ExternalPaymentID string                  `json:"external_payment_id,omitempty"`
	Splits            []entities.PaymentSplit `json:"splits,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

func FromOrder(o entities.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
		})
	}
	return OrderResponse{
		ID:                o.ID,
		CompanyID:         o.CompanyID,
		CustomerID:        o.CustomerID,
		CustomerEmail:     o.CustomerEmail,
		Items:             items,
		Subtotal:          o.Subtotal,
		Discount:          o.Discount,
		Total:             o.Total,
		CouponCode:        o.CouponCode,
		AffiliateID:       o.AffiliateID,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		CheckoutURL:       o.CheckoutURL,
		ExternalPaymentID: o.ExternalPaymentID,
		Splits:            o.Splits,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}
