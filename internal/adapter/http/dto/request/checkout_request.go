package request

import (
	"strings"

	"checkout_service/internal/domain/entities"
)

type CheckoutItemRequest struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

type CustomerRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"cpfCnpj"`
	Address  string `json:"address"`
	Number   string `json:"addressNumber"`
	Zip      string `json:"postalCode"`
}

type SplitRequest struct {
	WalletID   string  `json:"walletId"`
	Percentage float64 `json:"percentage"`
}

// CheckoutRequest is the public checkout payload. Business rules are checked
// by the checkout validator, so no field carries binding tags.
type CheckoutRequest struct {
	CompanyID   string                `json:"companyId"`
	UserID      string                `json:"userId"`
	Items       []CheckoutItemRequest `json:"items"`
	TotalAmount float64               `json:"totalAmount"`
	CouponCode  string                `json:"couponCode"`
	AffiliateID string                `json:"affiliateId"`
	Customer    CustomerRequest       `json:"customer"`
	Splits      []SplitRequest        `json:"splits"`
	Signature   string                `json:"signature"`
}

func (r CheckoutRequest) ToEntity() entities.CheckoutRequest {
	items := make([]entities.CheckoutItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, entities.CheckoutItem{
			ProductID: strings.TrimSpace(it.ProductID),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
		})
	}
	splits := make([]entities.RequestedSplit, 0, len(r.Splits))
	for _, s := range r.Splits {
		splits = append(splits, entities.RequestedSplit{WalletID: strings.TrimSpace(s.WalletID), Percentage: s.Percentage})
	}

	return entities.CheckoutRequest{
		CompanyID:   strings.TrimSpace(r.CompanyID),
		UserID:      strings.TrimSpace(r.UserID),
		Items:       items,
		TotalAmount: r.TotalAmount,
		CouponCode:  strings.ToUpper(strings.TrimSpace(r.CouponCode)),
		AffiliateID: strings.TrimSpace(r.AffiliateID),
		Customer: entities.CustomerProfile{
			ID:       r.Customer.ID,
			Name:     strings.TrimSpace(r.Customer.Name),
			Email:    strings.TrimSpace(r.Customer.Email),
			Phone:    r.Customer.Phone,
			Document: r.Customer.Document,
			Address:  r.Customer.Address,
			Number:   r.Customer.Number,
			Zip:      r.Customer.Zip,
		},
		Splits:    splits,
		Signature: strings.TrimSpace(r.Signature),
	}
}
