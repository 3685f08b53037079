package entities

// WebhookPayload is what the payment orchestrator receives to create a
// hosted checkout.
//
// ExternalReference is either the raw order id or, when the order carries an
// affiliate sale, a versioned JSON document (see AffiliateReference).
type WebhookPayload struct {
	BillingTypes      []string           `json:"billingTypes"`
	ChargeTypes       []string           `json:"chargeTypes"`
	MinutesToExpire   int                `json:"minutesToExpire"`
	ExternalReference string             `json:"externalReference"`
	TotalAmount       float64            `json:"totalAmount"`
	Callback          WebhookCallback    `json:"callback"`
	Items             []WebhookItem      `json:"items"`
	CustomerData      WebhookCustomer    `json:"customerData"`
	Installment       WebhookInstallment `json:"installment"`
	Split             []WebhookSplit     `json:"split"`
	CompanyID         string             `json:"companyId"`
	OrderID           string             `json:"orderId"`
	UserID            string             `json:"userId"`
	Signature         string             `json:"signature,omitempty"`
	Affiliate         *WebhookAffiliate  `json:"affiliate,omitempty"`
}

type WebhookCallback struct {
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
	ExpiredURL string `json:"expiredUrl"`
}

type WebhookItem struct {
	ProductID   string  `json:"externalReference"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Value       float64 `json:"value"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	ImageBase64 string  `json:"imageBase64"`
}

type WebhookCustomer struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CpfCnpj       string `json:"cpfCnpj"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	AddressNumber string `json:"addressNumber"`
	PostalCode    string `json:"postalCode"`
}

type WebhookInstallment struct {
	MaxInstallmentCount int `json:"maxInstallmentCount"`
}

type WebhookSplit struct {
	WalletID        string  `json:"walletId"`
	PercentualValue float64 `json:"percentualValue"`
}

type WebhookAffiliate struct {
	AffiliateID         string  `json:"affiliateId"`
	CouponCode          string  `json:"couponCode"`
	CommissionRate      float64 `json:"commissionRate"`
	AffiliateCommission float64 `json:"affiliateCommission"`
}

// AffiliateReference is the JSON external reference used for affiliate sales.
type AffiliateReference struct {
	Version             int     `json:"v"`
	OrderID             string  `json:"orderId"`
	AffiliateID         string  `json:"affiliateId"`
	CouponID            string  `json:"couponId"`
	CouponCode          string  `json:"couponCode"`
	CommissionRate      float64 `json:"commissionRate"`
	AffiliateCommission float64 `json:"affiliateCommission"`
	PlatformFee         float64 `json:"platformFee"`
	NetValue            float64 `json:"netValue"`
}

const AffiliateReferenceVersion = 1

// WebhookResponse is the normalized orchestrator answer.
type WebhookResponse struct {
	CheckoutURL       string
	ExternalPaymentID string
	Status            string
}
