package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"checkout_service/internal/domain/entities"
	"checkout_service/internal/infrastructure/retry"
	"checkout_service/internal/usecase/interfaces"
)

var (
	ErrSignatureInvalid       = errors.New("signature invalid")
	ErrSplitsMissing          = errors.New("payment splits missing")
	ErrPersistence            = errors.New("order persistence failed")
	ErrWebhookExhausted       = errors.New("payment webhook failed")
	ErrInvalidWebhookResponse = errors.New("invalid payment webhook response")
	ErrMissingImage           = errors.New("resolved image missing")
)

// CheckoutConfig holds the pipeline settings.
type CheckoutConfig struct {
	SigningSecret    string
	RequireSignature bool

	PlatformFeePercent    float64
	DefaultCommissionRate float64
	MinutesToExpire       int
	MaxInstallments       int

	SuccessURL string
	CancelURL  string
	ExpiredURL string

	Retry retry.Options
}

func DefaultCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		PlatformFeePercent:    DefaultPlatformFeePercent,
		DefaultCommissionRate: DefaultAffiliateCommission,
		MinutesToExpire:       15,
		MaxInstallments:       1,
		Retry:                 retry.DefaultOptions(),
	}
}

// ICheckoutUseCase turns a checkout request into a hosted payment link.
//
// Stages run strictly in order:
//  1. signature, 2. validation, 3. splits, 4. images (concurrent per line)
//  5. atomic persistence (durability boundary)
//  6. webhook with retries, 7. response validation and reconciliation
type ICheckoutUseCase interface {
	CreateCheckout(ctx context.Context, req entities.CheckoutRequest) (entities.CheckoutResult, error)
}

type CheckoutUseCase struct {
	cfg       CheckoutConfig
	validator interfaces.ICheckoutValidator
	orders    interfaces.IOrderRepository
	images    interfaces.IImageResolver
	gateway   interfaces.IPaymentGateway
	events    interfaces.IEventPublisher
	logger    *zap.Logger
	tracer    trace.Tracer

	now   func() time.Time
	newID func() string
}

var _ ICheckoutUseCase = (*CheckoutUseCase)(nil)

func NewCheckoutUseCase(
	cfg CheckoutConfig,
	validator interfaces.ICheckoutValidator,
	orders interfaces.IOrderRepository,
	images interfaces.IImageResolver,
	gateway interfaces.IPaymentGateway,
	events interfaces.IEventPublisher,
	logger *zap.Logger,
) *CheckoutUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutUseCase{
		cfg:       cfg,
		validator: validator,
		orders:    orders,
		images:    images,
		gateway:   gateway,
		events:    events,
		logger:    logger,
		tracer:    otel.Tracer("checkout_service/usecase"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (u *CheckoutUseCase) CreateCheckout(ctx context.Context, req entities.CheckoutRequest) (result entities.CheckoutResult, err error) {
	ctx, span := u.tracer.Start(ctx, "checkout.create", trace.WithAttributes(attribute.String("company_id", req.CompanyID)))
	defer func() {
		checkoutOutcomesTotal.WithLabelValues(outcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome(err))
		}
		span.End()
	}()

	log := u.logger.With(zap.String("company_id", req.CompanyID), zap.String("user_id", req.UserID))
	log.Info("[checkout][usecase] create start", zap.Int("items", len(req.Items)))

	// 1. signature
	if err := u.checkSignature(req, log); err != nil {
		return entities.CheckoutResult{}, err
	}

	// 2. validation
	validated, err := u.validator.Validate(ctx, req)
	if err != nil {
		log.Info("[checkout][usecase] validation failed", zap.Error(err))
		return entities.CheckoutResult{}, err
	}

	// 3. splits
	splits, err := ComputeSplits(validated.FinalTotal, req.Splits, u.cfg.PlatformFeePercent)
	if err != nil {
		log.Info("[checkout][usecase] splits missing")
		return entities.CheckoutResult{}, err
	}

	// 4. images
	images := u.resolveImages(ctx, validated.Products)

	// 5. persistence
	now := u.now()
	order := u.buildOrder(req, validated, now)
	sale := BuildAffiliateSale(order.ID, validated, order.Items, u.cfg.PlatformFeePercent, u.cfg.DefaultCommissionRate, now)
	log = log.With(zap.String("order_id", order.ID))

	if err := u.persist(ctx, order, sale); err != nil {
		log.Error("[checkout][usecase] persistence failed", zap.Error(err))
		return entities.CheckoutResult{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	log.Info("[checkout][usecase] order persisted", zap.Bool("affiliate_sale", sale != nil))
	u.publish(ctx, entities.OrderEventPendingPayment, order, "")

	// 6. webhook
	payload, err := u.buildPayload(req, validated, order, sale, images)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Error("[checkout][usecase] aborting before webhook", zap.Error(err))
		u.cancelOrder(ctx, order, err.Error())
		return entities.CheckoutResult{}, err
	}

	resp, err := u.callWebhook(ctx, payload, log)
	if err != nil {
		u.publish(ctx, entities.OrderEventWebhookFailed, order, err.Error())
		return entities.CheckoutResult{}, err
	}

	// 7. response validation and reconciliation
	if strings.TrimSpace(resp.CheckoutURL) == "" || strings.TrimSpace(resp.ExternalPaymentID) == "" {
		log.Warn("[checkout][usecase] webhook response missing fields",
			zap.Bool("has_checkout_url", resp.CheckoutURL != ""),
			zap.Bool("has_payment_id", resp.ExternalPaymentID != ""),
		)
		u.publish(ctx, entities.OrderEventWebhookFailed, order, ErrInvalidWebhookResponse.Error())
		return entities.CheckoutResult{}, ErrInvalidWebhookResponse
	}

	link := entities.PaymentLink{ExternalPaymentID: resp.ExternalPaymentID, CheckoutURL: resp.CheckoutURL, Splits: splits}
	u.reconcile(ctx, order.ID, link, log)
	order.CheckoutURL = link.CheckoutURL
	order.ExternalPaymentID = link.ExternalPaymentID
	u.publish(ctx, entities.OrderEventCheckoutLinkCreated, order, "")

	log.Info("[checkout][usecase] create success", zap.String("external_payment_id", resp.ExternalPaymentID))
	return entities.CheckoutResult{
		OrderID:           order.ID,
		CheckoutURL:       resp.CheckoutURL,
		ExternalPaymentID: resp.ExternalPaymentID,
		Status:            string(entities.OrderStatusPendingPayment),
	}, nil
}

func (u *CheckoutUseCase) checkSignature(req entities.CheckoutRequest, log *zap.Logger) error {
	if strings.TrimSpace(req.Signature) == "" {
		if u.cfg.RequireSignature {
			log.Warn("[checkout][usecase] unsigned request rejected")
			return ErrSignatureInvalid
		}
		log.Warn("[checkout][usecase] accepting unsigned request")
		return nil
	}
	if !VerifySignature(req, u.cfg.SigningSecret, req.Signature) {
		log.Warn("[checkout][usecase] signature mismatch")
		return ErrSignatureInvalid
	}
	return nil
}

// resolveImages runs one resolution per product concurrently. The resolver
// never fails, so the group only waits.
func (u *CheckoutUseCase) resolveImages(ctx context.Context, products []entities.Product) []string {
	ctx, span := u.tracer.Start(ctx, "checkout.resolve_images", trace.WithAttributes(attribute.Int("lines", len(products))))
	defer span.End()

	out := make([]string, len(products))
	var g errgroup.Group
	for i, p := range products {
		g.Go(func() error {
			out[i] = u.images.ResolveBase64(ctx, p.ImageURL)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (u *CheckoutUseCase) buildOrder(req entities.CheckoutRequest, v entities.ValidatedCheckout, now time.Time) entities.Order {
	items := make([]entities.OrderItem, 0, len(req.Items))
	for i, it := range req.Items {
		p := v.Products[i]
		items = append(items, entities.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			Total:     lineTotal(p.Price, it.Quantity),
			ImageURL:  p.ImageURL,
		})
	}

	order := entities.Order{
		ID:            u.newID(),
		CustomerID:    req.Customer.ID,
		CustomerEmail: req.Customer.Email,
		CustomerName:  req.Customer.Name,
		CustomerPhone: req.Customer.Phone,
		CompanyID:     v.Company.ID,
		Items:         items,
		Subtotal:      v.Subtotal,
		Discount:      v.DiscountValue,
		Total:         v.FinalTotal,
		Status:        entities.OrderStatusPendingPayment,
		PaymentStatus: entities.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if order.CustomerID == "" {
		order.CustomerID = req.UserID
	}
	if v.Coupon != nil {
		order.CouponCode = v.Coupon.Code
		order.CouponID = v.Coupon.ID
	}
	if v.Affiliate != nil {
		order.AffiliateID = v.Affiliate.ID
	}
	return order
}

func (u *CheckoutUseCase) persist(ctx context.Context, order entities.Order, sale *entities.AffiliateSale) error {
	ctx, span := u.tracer.Start(ctx, "checkout.persist")
	defer span.End()
	return u.orders.CreateWithAffiliateSale(ctx, order, sale)
}

func (u *CheckoutUseCase) buildPayload(req entities.CheckoutRequest, v entities.ValidatedCheckout, order entities.Order, sale *entities.AffiliateSale, images []string) (entities.WebhookPayload, error) {
	items := make([]entities.WebhookItem, 0, len(order.Items))
	for i, it := range order.Items {
		if i >= len(images) || images[i] == "" {
			return entities.WebhookPayload{}, fmt.Errorf("%w for line %d", ErrMissingImage, i)
		}
		items = append(items, entities.WebhookItem{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Description: v.Products[i].Description,
			Quantity:    it.Quantity,
			Value:       it.UnitPrice,
			ImageURL:    it.ImageURL,
			ImageBase64: images[i],
		})
	}

	split := make([]entities.WebhookSplit, 0, len(req.Splits))
	for _, s := range req.Splits {
		split = append(split, entities.WebhookSplit{WalletID: s.WalletID, PercentualValue: s.Percentage})
	}

	payload := entities.WebhookPayload{
		BillingTypes:      []string{"CREDIT_CARD", "PIX"},
		ChargeTypes:       []string{"DETACHED"},
		MinutesToExpire:   u.cfg.MinutesToExpire,
		ExternalReference: ExternalReference(order.ID, sale),
		TotalAmount:       order.Total,
		Callback: entities.WebhookCallback{
			SuccessURL: u.cfg.SuccessURL,
			CancelURL:  u.cfg.CancelURL,
			ExpiredURL: u.cfg.ExpiredURL,
		},
		Items: items,
		CustomerData: entities.WebhookCustomer{
			Name:          req.Customer.Name,
			Email:         req.Customer.Email,
			CpfCnpj:       req.Customer.Document,
			Phone:         req.Customer.Phone,
			Address:       req.Customer.Address,
			AddressNumber: req.Customer.Number,
			PostalCode:    req.Customer.Zip,
		},
		Installment: entities.WebhookInstallment{MaxInstallmentCount: u.cfg.MaxInstallments},
		Split:       split,
		CompanyID:   order.CompanyID,
		OrderID:     order.ID,
		UserID:      req.UserID,
		Signature:   req.Signature,
	}
	if sale != nil {
		payload.Affiliate = &entities.WebhookAffiliate{
			AffiliateID:         sale.AffiliateID,
			CouponCode:          sale.CouponCode,
			CommissionRate:      sale.CommissionRate,
			AffiliateCommission: sale.AffiliateCommission,
		}
	}
	return payload, nil
}

func (u *CheckoutUseCase) callWebhook(ctx context.Context, payload entities.WebhookPayload, log *zap.Logger) (entities.WebhookResponse, error) {
	ctx, span := u.tracer.Start(ctx, "checkout.webhook")
	defer span.End()

	opts := u.cfg.Retry
	opts.OnRetry = func(n int, err error) {
		log.Warn("[checkout][usecase] retrying payment webhook", zap.Int("retry", n), zap.Error(err))
	}

	res := retry.Do(ctx, func(ctx context.Context) (entities.WebhookResponse, error) {
		resp, err := u.gateway.CreateCheckout(ctx, payload)
		if err != nil {
			webhookAttemptsTotal.WithLabelValues("error").Inc()
		} else {
			webhookAttemptsTotal.WithLabelValues("ok").Inc()
		}
		return resp, err
	}, opts)
	span.SetAttributes(attribute.Int("attempts", res.Attempts))

	if !res.Success {
		log.Error("[checkout][usecase] payment webhook failed",
			zap.Int("attempts", res.Attempts),
			zap.Duration("elapsed", res.TotalDuration),
			zap.Error(res.Err),
		)
		return entities.WebhookResponse{}, fmt.Errorf("%w after %d attempts: %w", ErrWebhookExhausted, res.Attempts, res.Err)
	}
	log.Info("[checkout][usecase] payment webhook ok", zap.Int("attempts", res.Attempts))
	return res.Data, nil
}

// reconcile stores the payment link. Failures are logged only: the customer
// already has a usable checkout URL.
func (u *CheckoutUseCase) reconcile(ctx context.Context, orderID string, link entities.PaymentLink, log *zap.Logger) {
	if _, err := u.orders.ApplyPaymentLink(context.WithoutCancel(ctx), orderID, link); err != nil {
		log.Error("[checkout][usecase] reconciliation failed", zap.Error(err))
	}
}

func (u *CheckoutUseCase) cancelOrder(ctx context.Context, order entities.Order, reason string) {
	ctx = context.WithoutCancel(ctx)
	if _, err := u.orders.UpdateStatus(ctx, order.ID, entities.OrderStatusPendingPayment, entities.OrderStatusCancelled); err != nil {
		u.logger.Error("[checkout][usecase] best-effort cancel failed", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	order.Status = entities.OrderStatusCancelled
	u.publish(ctx, entities.OrderEventCancelled, order, reason)
}

func (u *CheckoutUseCase) publish(ctx context.Context, typ entities.OrderEventType, order entities.Order, reason string) {
	if u.events == nil {
		return
	}
	ev := entities.OrderEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		OrderID:    order.ID,
		CompanyID:  order.CompanyID,
		Status:     order.Status,
		Total:      order.Total,
		Reason:     reason,
		OccurredAt: u.now(),
	}
	if err := u.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		u.logger.Warn("[checkout][usecase] event publish failed",
			zap.String("order_id", order.ID),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
	}
}

func outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verr):
		return "validation_error"
	case errors.Is(err, ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrSplitsMissing):
		return "splits_missing"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	case errors.Is(err, ErrWebhookExhausted):
		return "webhook_error"
	case errors.Is(err, ErrInvalidWebhookResponse):
		return "invalid_response"
	default:
		return "internal_error"
	}
}
