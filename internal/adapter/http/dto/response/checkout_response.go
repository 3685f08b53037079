package response

import "checkout_service/internal/domain/entities"

// CheckoutResponse keeps asaasPaymentId for clients written against the
// first orchestrator; it always equals externalPaymentId.
type CheckoutResponse struct {
	Success           bool   `json:"success"`
	CheckoutURL       string `json:"checkoutUrl"`
	OrderID           string `json:"orderId"`
	AsaasPaymentID    string `json:"asaasPaymentId,omitempty"`
	ExternalPaymentID string `json:"externalPaymentId,omitempty"`
	Message           string `json:"message"`
}

func FromCheckoutResult(r entities.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		Success:           true,
		CheckoutURL:       r.CheckoutURL,
		OrderID:           r.OrderID,
		AsaasPaymentID:    r.ExternalPaymentID,
		ExternalPaymentID: r.ExternalPaymentID,
		Message:           "Checkout created",
	}
}
