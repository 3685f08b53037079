package interfaces

import (
	"context"

	"checkout_service/internal/domain/entities"
)

// IPaymentGateway abstracts the external payment orchestrator (n8n webhook,
// Mercado Pago preferences, or the local mock).
//
// One call is one attempt; retries are owned by the caller.
type IPaymentGateway interface {
	CreateCheckout(ctx context.Context, payload entities.WebhookPayload) (entities.WebhookResponse, error)
}
