package request

import (
	"strings"

	"checkout_service/internal/domain/entities"
)

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r OrderStatusRequest) ResolveStatus() entities.OrderStatus {
	return entities.OrderStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
}
