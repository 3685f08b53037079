package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout_service/internal/domain/entities"
	"checkout_service/internal/usecase/interfaces"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidOrderID          = errors.New("invalid order id")
	ErrInvalidOrderStatus      = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// IOrderUseCase exposes order reads and manual status changes.
//
// Allowed transitions follow entities.OrderStatus.CanTransitionTo; terminal
// states reject every change.
type IOrderUseCase interface {
	GetByID(ctx context.Context, id string) (entities.Order, error)
	UpdateStatus(ctx context.Context, id string, status entities.OrderStatus) (entities.Order, error)
}

type OrderUseCase struct {
	repo   interfaces.IOrderRepository
	events interfaces.IEventPublisher
	logger *zap.Logger
}

var _ IOrderUseCase = (*OrderUseCase)(nil)

func NewOrderUseCase(repo interfaces.IOrderRepository, events interfaces.IEventPublisher, logger *zap.Logger) *OrderUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderUseCase{repo: repo, events: events, logger: logger}
}

func (u *OrderUseCase) GetByID(ctx context.Context, id string) (entities.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Order{}, ErrInvalidOrderID
	}
	o, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Order{}, err
	}
	if o.ID == "" {
		return entities.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (u *OrderUseCase) UpdateStatus(ctx context.Context, id string, status entities.OrderStatus) (entities.Order, error) {
	status = entities.OrderStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return entities.Order{}, ErrInvalidOrderStatus
	}

	current, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Order{}, err
	}
	if !current.Status.CanTransitionTo(status) {
		u.logger.Info("[order][usecase] transition rejected",
			zap.String("order_id", current.ID),
			zap.String("from", string(current.Status)),
			zap.String("to", string(status)),
		)
		return entities.Order{}, ErrInvalidStatusTransition
	}

	updated, err := u.repo.UpdateStatus(ctx, current.ID, current.Status, status)
	if err != nil {
		return entities.Order{}, err
	}
	// The status changed between the read and the conditional write.
	if updated.ID == "" {
		return entities.Order{}, ErrInvalidStatusTransition
	}

	u.logger.Info("[order][usecase] status updated",
		zap.String("order_id", updated.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
	)
	u.publish(ctx, updated)
	return updated, nil
}

func (u *OrderUseCase) publish(ctx context.Context, o entities.Order) {
	if u.events == nil {
		return
	}
	typ := entities.OrderEventStatusChanged
	if o.Status == entities.OrderStatusCancelled {
		typ = entities.OrderEventCancelled
	}
	err := u.events.Publish(context.WithoutCancel(ctx), entities.OrderEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		OrderID:    o.ID,
		CompanyID:  o.CompanyID,
		Status:     o.Status,
		Total:      o.Total,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		u.logger.Warn("[order][usecase] event publish failed", zap.String("order_id", o.ID), zap.Error(err))
	}
}
