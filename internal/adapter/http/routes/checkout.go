package routes

import (
	"checkout_service/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathCheckout = "/checkout"
	PathOrders   = "/orders"
)

func addCheckoutRoutes(rg *gin.RouterGroup, checkoutHandler *handlers.CheckoutHandler) {
	rg.POST(PathCheckout, checkoutHandler.CreateCheckout)
}

func addOrderRoutes(rg *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orders := rg.Group(PathOrders)
	{
		orders.GET("/:order_id", orderHandler.GetOrder)
		orders.PATCH("/:order_id/status", orderHandler.UpdateOrderStatus)
	}
}
