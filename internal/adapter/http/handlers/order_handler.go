package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checkout_service/internal/adapter/http/dto/request"
	"checkout_service/internal/adapter/http/dto/response"
	"checkout_service/internal/usecase"
	"checkout_service/pkg"
)

// OrderHandler exposes order reads and manual status changes.
type OrderHandler struct {
	usecase usecase.IOrderUseCase
	logger  *zap.Logger
}

func NewOrderHandler(uc usecase.IOrderUseCase, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{usecase: uc, logger: logger}
}

// GetOrder godoc
// @Summary  Get an order
// @Tags     orders
// @Produce  json
// @Param    order_id  path      string  true  "Order ID"
// @Success  200       {object}  response.OrderResponse
// @Failure  404       {object}  pkg.HTTPError
// @Router   /orders/{order_id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID := c.Param("order_id")

	o, err := h.usecase.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.logger.Info("[order][handler] get failed", zap.String("order_id", orderID), zap.Error(err))
		appErr := mapOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromOrder(o))
}

// UpdateOrderStatus godoc
// @Summary  Change the status of an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    order_id  path      string                      true  "Order ID"
// @Param    request   body      request.OrderStatusRequest  true  "New status"
// @Success  200       {object}  response.OrderResponse
// @Failure  400       {object}  pkg.HTTPError
// @Failure  404       {object}  pkg.HTTPError
// @Failure  409       {object}  pkg.HTTPError
// @Router   /orders/{order_id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("order_id")

	var body request.OrderStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		appErr := pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	o, err := h.usecase.UpdateStatus(c.Request.Context(), orderID, body.ResolveStatus())
	if err != nil {
		h.logger.Info("[order][handler] status change failed", zap.String("order_id", orderID), zap.Error(err))
		appErr := mapOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	h.logger.Info("[order][handler] status changed", zap.String("order_id", o.ID), zap.String("status", string(o.Status)))

	c.JSON(http.StatusOK, response.FromOrder(o))
}

func mapOrderError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidOrderID), errors.Is(err, usecase.ErrInvalidOrderStatus):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrOrderNotFound):
		return pkg.NewDomainErrorSimple("ORDER_NOT_FOUND", "Order not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidStatusTransition):
		return pkg.NewDomainErrorSimple("INVALID_STATUS_TRANSITION", "Status transition not allowed", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
