package interfaces

import (
	"context"

	"checkout_service/internal/domain/entities"
)

// IOrderRepository abstracts the document store for orders and affiliate sales.
//
// The checkout pipeline must be able to:
//   - write an order and its optional affiliate sale in one all-or-nothing transaction
//   - apply the payment link returned by the orchestrator (idempotent)
//   - change the order status, conditioned on the current status
//
// Lookups return a zero Order (empty ID) when nothing matches.
type IOrderRepository interface {
	CreateWithAffiliateSale(ctx context.Context, order entities.Order, sale *entities.AffiliateSale) error
	GetByID(ctx context.Context, id string) (entities.Order, error)
	ApplyPaymentLink(ctx context.Context, orderID string, link entities.PaymentLink) (entities.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to entities.OrderStatus) (entities.Order, error)
}
