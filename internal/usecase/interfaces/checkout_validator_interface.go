package interfaces

import (
	"context"

	"checkout_service/internal/domain/entities"
)

// ICheckoutValidator checks an untrusted request against the catalog.
type ICheckoutValidator interface {
	Validate(ctx context.Context, req entities.CheckoutRequest) (entities.ValidatedCheckout, error)
}
