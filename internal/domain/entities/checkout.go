package entities

// CheckoutItem is one untrusted line of a checkout request.
type CheckoutItem struct {
	ProductID string
	Quantity  int
	UnitPrice float64
	Total     float64
}

type CustomerProfile struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Document string
	Address  string
	Number   string
	Zip      string
}

// RequestedSplit is a split declared by the caller (wallet + percentage).
type RequestedSplit struct {
	WalletID   string
	Percentage float64
}

// CheckoutRequest is the inbound, untrusted checkout command.
//
// It is validated once and never persisted verbatim.
type CheckoutRequest struct {
	CompanyID   string
	UserID      string
	Items       []CheckoutItem
	TotalAmount float64
	CouponCode  string
	AffiliateID string
	Customer    CustomerProfile
	Splits      []RequestedSplit
	Signature   string
}

// ValidatedCheckout is what the validation collaborator returns on success.
//
// Products is aligned index-by-index with CheckoutRequest.Items.
type ValidatedCheckout struct {
	Company       Company
	Products      []Product
	Coupon        *Coupon
	Affiliate     *Affiliate
	Subtotal      float64
	DiscountValue float64
	FinalTotal    float64
}

// HasAffiliateSale reports whether the checkout generates a commission record.
func (v ValidatedCheckout) HasAffiliateSale() bool {
	return v.Coupon != nil && v.Affiliate != nil
}

// CheckoutResult is returned to the caller once a checkout link exists.
type CheckoutResult struct {
	OrderID           string
	CheckoutURL       string
	ExternalPaymentID string
	Status            string
}
