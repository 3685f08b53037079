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

// CheckoutHandler handles checkout creation.
type CheckoutHandler struct {
	usecase usecase.ICheckoutUseCase
	logger  *zap.Logger
}

func NewCheckoutHandler(uc usecase.ICheckoutUseCase, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{usecase: uc, logger: logger}
}

// CreateCheckout godoc
// @Summary      Create a checkout
// @Description  Validates the cart, persists a pending order and returns the hosted payment link.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request  body      request.CheckoutRequest  true  "Checkout request"
// @Success      200      {object}  response.CheckoutResponse
// @Failure      400      {object}  pkg.HTTPError
// @Failure      403      {object}  pkg.HTTPError
// @Failure      500      {object}  pkg.HTTPError
// @Failure      503      {object}  pkg.HTTPError
// @Router       /checkout [post]
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var body request.CheckoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Info("[checkout][handler] invalid body", zap.Error(err))
		appErr := pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	req := body.ToEntity()
	log := h.logger.With(zap.String("company_id", req.CompanyID), zap.String("user_id", req.UserID))
	if req.Signature == "" {
		log.Warn("[checkout][handler] request without signature")
	}

	res, err := h.usecase.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		appErr := mapCheckoutError(err)
		log.Info("[checkout][handler] create failed", zap.String("code", appErr.Code), zap.Error(err))
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Info("[checkout][handler] create success", zap.String("order_id", res.OrderID))

	c.JSON(http.StatusOK, response.FromCheckoutResult(res))
}

func mapCheckoutError(err error) *pkg.AppError {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]pkg.ErrorDetail, 0, len(verr.Errors))
		for _, fe := range verr.Errors {
			details = append(details, pkg.ErrorDetail{Code: fe.Code, Description: fe.Description, Field: fe.Field})
		}
		return pkg.NewDomainError("VALIDATION_ERROR", "Checkout validation failed", err, http.StatusBadRequest).WithDetails(details)
	case errors.Is(err, usecase.ErrSignatureInvalid):
		return pkg.NewDomainErrorSimple("SIGNATURE_INVALID", "Request signature is invalid", http.StatusForbidden)
	case errors.Is(err, usecase.ErrSplitsMissing):
		return pkg.NewDomainErrorSimple("SPLITS_MISSING", "Payment splits are required", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPersistence):
		return pkg.NewDomainError("PERSISTENCE_ERROR", "Could not store the order", err, http.StatusInternalServerError)
	case errors.Is(err, usecase.ErrWebhookExhausted):
		return pkg.NewDomainError("N8N_ERROR", "Payment provider unavailable", err, http.StatusServiceUnavailable)
	case errors.Is(err, usecase.ErrInvalidWebhookResponse):
		return pkg.NewDomainErrorSimple("INVALID_RESPONSE", "Payment provider returned an invalid response", http.StatusBadRequest)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
