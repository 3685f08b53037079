package interfaces

import (
	"context"

	"checkout_service/internal/domain/entities"
)

type IEventPublisher interface {
	Publish(ctx context.Context, event entities.OrderEvent) error
}
