package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"checkout_service/internal/domain/entities"
	"checkout_service/internal/infrastructure/retry"
	mock_interfaces "checkout_service/internal/usecase/interfaces/mocks"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2026, 4, 2, 15, 4, 5, 0, time.UTC)

// memoryOrderStore commits an order and its sale together or not at all.
type memoryOrderStore struct {
	mu        sync.Mutex
	orders    map[string]entities.Order
	sales     map[string]entities.AffiliateSale
	failSale  error
	failApply error
	applied   int
}

func newMemoryOrderStore() *memoryOrderStore {
	return &memoryOrderStore{orders: map[string]entities.Order{}, sales: map[string]entities.AffiliateSale{}}
}

func (s *memoryOrderStore) CreateWithAffiliateSale(_ context.Context, order entities.Order, sale *entities.AffiliateSale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sale != nil {
		if s.failSale != nil {
			return s.failSale
		}
		if _, exists := s.sales[sale.ID]; exists {
			return errors.New("sale already exists")
		}
		s.sales[sale.ID] = *sale
	}
	s.orders[order.ID] = order
	return nil
}

func (s *memoryOrderStore) GetByID(_ context.Context, id string) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id], nil
}

func (s *memoryOrderStore) ApplyPaymentLink(_ context.Context, id string, link entities.PaymentLink) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied++
	if s.failApply != nil {
		return entities.Order{}, s.failApply
	}
	o, ok := s.orders[id]
	if !ok {
		return entities.Order{}, nil
	}
	o.ExternalPaymentID = link.ExternalPaymentID
	o.CheckoutURL = link.CheckoutURL
	o.Splits = append([]entities.PaymentSplit(nil), link.Splits...)
	o.UpdatedAt = fixedNow
	s.orders[id] = o
	return o, nil
}

func (s *memoryOrderStore) UpdateStatus(_ context.Context, id string, from, to entities.OrderStatus) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return entities.Order{}, nil
	}
	o.Status = to
	s.orders[id] = o
	return o, nil
}

func (s *memoryOrderStore) only(t *testing.T) entities.Order {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.orders) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(s.orders))
	}
	for _, o := range s.orders {
		return o
	}
	return entities.Order{}
}

type eventLog struct {
	mu     sync.Mutex
	events []entities.OrderEvent
}

func (l *eventLog) types() []entities.OrderEventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entities.OrderEventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

type checkoutHarness struct {
	uc        *CheckoutUseCase
	store     *memoryOrderStore
	validator *mock_interfaces.MockICheckoutValidator
	images    *mock_interfaces.MockIImageResolver
	gateway   *mock_interfaces.MockIPaymentGateway
	events    *eventLog
}

func newCheckoutHarness(t *testing.T, adjust func(*CheckoutConfig)) *checkoutHarness {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg := DefaultCheckoutConfig()
	cfg.SigningSecret = testSecret
	cfg.Retry.InitialDelay = time.Millisecond
	cfg.Retry.MaxDelay = 2 * time.Millisecond
	cfg.Retry.Timeout = time.Second
	if adjust != nil {
		adjust(&cfg)
	}

	h := &checkoutHarness{
		store:     newMemoryOrderStore(),
		validator: mock_interfaces.NewMockICheckoutValidator(ctrl),
		images:    mock_interfaces.NewMockIImageResolver(ctrl),
		gateway:   mock_interfaces.NewMockIPaymentGateway(ctrl),
		events:    &eventLog{},
	}
	publisher := mock_interfaces.NewMockIEventPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev entities.OrderEvent) error {
		h.events.mu.Lock()
		h.events.events = append(h.events.events, ev)
		h.events.mu.Unlock()
		return nil
	}).AnyTimes()

	h.uc = NewCheckoutUseCase(cfg, h.validator, h.store, h.images, h.gateway, publisher, zaptest.NewLogger(t))
	h.uc.now = func() time.Time { return fixedNow }
	h.uc.newID = func() string { return "order-1" }
	return h
}

func checkoutRequest(signed bool) entities.CheckoutRequest {
	req := entities.CheckoutRequest{
		CompanyID:   "company-1",
		UserID:      "user-1",
		TotalAmount: 100,
		Items: []entities.CheckoutItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: 25, Total: 50},
			{ProductID: "p2", Quantity: 1, UnitPrice: 50, Total: 50},
		},
		Customer: entities.CustomerProfile{Name: "Ana", Email: "ana@example.com", Document: "12345678900"},
		Splits:   []entities.RequestedSplit{{WalletID: "w-company", Percentage: 92}},
	}
	if signed {
		req.Signature = ComputeSignature(req, testSecret)
	}
	return req
}

func validatedCheckout() entities.ValidatedCheckout {
	return entities.ValidatedCheckout{
		Company: entities.Company{ID: "company-1", Status: entities.CompanyStatusActive},
		Products: []entities.Product{
			{ID: "p1", CompanyID: "company-1", Name: "Mug", Price: 25, Stock: 5, Active: true, ImageURL: "https://cdn.example/mug.png"},
			{ID: "p2", CompanyID: "company-1", Name: "Shirt", Price: 50, Stock: 5, Active: true},
		},
		Subtotal:   100,
		FinalTotal: 100,
	}
}

var okResponse = entities.WebhookResponse{CheckoutURL: "https://pay.example/c/abc", ExternalPaymentID: "pay_123", Status: "PENDING"}

func TestCheckout_ScenarioA_NoAffiliate(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	req := checkoutRequest(true)

	h.validator.EXPECT().Validate(gomock.Any(), req).Return(validatedCheckout(), nil)
	h.images.EXPECT().ResolveBase64(gomock.Any(), "https://cdn.example/mug.png").Return("mug-b64")
	h.images.EXPECT().ResolveBase64(gomock.Any(), "").Return("placeholder-b64")
	h.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p entities.WebhookPayload) (entities.WebhookResponse, error) {
			if p.ExternalReference != "order-1" || p.Affiliate != nil {
				t.Fatalf("expected raw order id reference, got %q", p.ExternalReference)
			}
			if p.MinutesToExpire != 15 || p.TotalAmount != 100 || p.OrderID != "order-1" || p.Signature != req.Signature {
				t.Fatalf("unexpected payload: %+v", p)
			}
			if len(p.Items) != 2 || p.Items[0].ImageBase64 != "mug-b64" || p.Items[1].ImageBase64 != "placeholder-b64" {
				t.Fatalf("images must stay aligned with items: %+v", p.Items)
			}
			if len(p.Split) != 1 || p.Split[0].WalletID != "w-company" || p.Split[0].PercentualValue != 92 {
				t.Fatalf("unexpected split table: %+v", p.Split)
			}
			if p.CustomerData.CpfCnpj != "12345678900" {
				t.Fatalf("unexpected customer data: %+v", p.CustomerData)
			}
			return okResponse, nil
		}).Times(1)

	res, err := h.uc.CreateCheckout(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CheckoutURL != okResponse.CheckoutURL || res.OrderID != "order-1" || res.ExternalPaymentID != "pay_123" {
		t.Fatalf("unexpected result: %+v", res)
	}

	order := h.store.only(t)
	if order.Status != entities.OrderStatusPendingPayment || order.PaymentStatus != entities.PaymentStatusPending {
		t.Fatalf("unexpected order status: %s/%s", order.Status, order.PaymentStatus)
	}
	if order.CheckoutURL != okResponse.CheckoutURL || order.ExternalPaymentID != "pay_123" || len(order.Splits) != 2 {
		t.Fatalf("order must be reconciled with the webhook response: %+v", order)
	}
	if order.Items[0].Total != 50 || order.CustomerID != "user-1" {
		t.Fatalf("unexpected order content: %+v", order)
	}
	if len(h.store.sales) != 0 {
		t.Fatalf("no affiliate sale expected")
	}
	want := []entities.OrderEventType{entities.OrderEventPendingPayment, entities.OrderEventCheckoutLinkCreated}
	if got := h.events.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestCheckout_ScenarioB_AffiliateSale(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	req := checkoutRequest(false)
	req.CouponCode = "PROMO"
	req.Splits = append(req.Splits, entities.RequestedSplit{WalletID: "w-aff", Percentage: 5})

	v := validatedCheckout()
	v.Coupon = &entities.Coupon{ID: "coupon-1", Code: "PROMO"}
	v.Affiliate = &entities.Affiliate{ID: "aff-1", Status: entities.AffiliateStatusActive, CommissionRate: 5}

	h.validator.EXPECT().Validate(gomock.Any(), req).Return(v, nil)
	h.images.EXPECT().ResolveBase64(gomock.Any(), gomock.Any()).Return("img").Times(2)
	h.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p entities.WebhookPayload) (entities.WebhookResponse, error) {
			var ref entities.AffiliateReference
			if err := json.Unmarshal([]byte(p.ExternalReference), &ref); err != nil {
				t.Fatalf("expected json external reference, got %q", p.ExternalReference)
			}
			if ref.Version != 1 || ref.AffiliateID != "aff-1" || ref.AffiliateCommission != 5 {
				t.Fatalf("unexpected reference: %+v", ref)
			}
			if p.Affiliate == nil || p.Affiliate.CouponCode != "PROMO" {
				t.Fatalf("expected affiliate metadata: %+v", p.Affiliate)
			}
			return okResponse, nil
		})

	if _, err := h.uc.CreateCheckout(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(h.store.sales) != 1 {
		t.Fatalf("expected one affiliate sale, got %d", len(h.store.sales))
	}
	for _, sale := range h.store.sales {
		if sale.AffiliateCommission != 5.0 || sale.PlatformFee != 8.0 || sale.NetValue != 92.0 {
			t.Fatalf("unexpected sale amounts: %+v", sale)
		}
		if sale.OrderID != "order-1" || sale.CouponID != "coupon-1" {
			t.Fatalf("unexpected sale: %+v", sale)
		}
	}
	order := h.store.only(t)
	if order.AffiliateID != "aff-1" || order.CouponCode != "PROMO" || len(order.Splits) != 3 {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCheckout_ScenarioC_WebhookTimesOut(t *testing.T) {
	h := newCheckoutHarness(t, func(c *CheckoutConfig) { c.Retry.Timeout = 10 * time.Millisecond })
	req := checkoutRequest(true)

	h.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(validatedCheckout(), nil)
	h.images.EXPECT().ResolveBase64(gomock.Any(), gomock.Any()).Return("img").AnyTimes()
	h.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ entities.WebhookPayload) (entities.WebhookResponse, error) {
			<-ctx.Done()
			return entities.WebhookResponse{}, ctx.Err()
		}).Times(4)

	_, err := h.uc.CreateCheckout(context.Background(), req)
	if !errors.Is(err, ErrWebhookExhausted) {
		t.Fatalf("expected ErrWebhookExhausted, got %v", err)
	}
	if !errors.Is(err, retry.ErrAttemptTimeout) {
		t.Fatalf("expected the last attempt error to be a timeout, got %v", err)
	}
	if order := h.store.only(t); order.Status != entities.OrderStatusPendingPayment || order.CheckoutURL != "" {
		t.Fatalf("order must stay PENDING_PAYMENT without a link: %+v", order)
	}
	types := h.events.types()
	if types[len(types)-1] != entities.OrderEventWebhookFailed {
		t.Fatalf("expected webhook_failed event, got %v", types)
	}
}

func TestCheckout_ScenarioD_SignatureMismatch(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	req := checkoutRequest(true)
	req.TotalAmount = 1

	_, err := h.uc.CreateCheckout(context.Background(), req)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
	if len(h.store.orders) != 0 {
		t.Fatalf("no order must be created")
	}
}

func TestCheckout_RequireSignature(t *testing.T) {
	h := newCheckoutHarness(t, func(c *CheckoutConfig) { c.RequireSignature = true })

	_, err := h.uc.CreateCheckout(context.Background(), checkoutRequest(false))
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected unsigned request to be rejected, got %v", err)
	}
}

func TestCheckout_ValidationErrorPassesThrough(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	verr := &ValidationError{Errors: []FieldError{{Field: "items[0].quantity", Code: FieldCodeOutOfStock}}}
	h.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(entities.ValidatedCheckout{}, verr)

	_, err := h.uc.CreateCheckout(context.Background(), checkoutRequest(true))
	var got *ValidationError
	if !errors.As(err, &got) || got.Errors[0].Code != FieldCodeOutOfStock {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckout_SplitsMissing(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	req := checkoutRequest(false)
	req.Splits = nil
	h.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(validatedCheckout(), nil)

	if _, err := h.uc.CreateCheckout(context.Background(), req); !errors.Is(err, ErrSplitsMissing) {
		t.Fatalf("expected ErrSplitsMissing, got %v", err)
	}
	if len(h.store.orders) != 0 {
		t.Fatalf("nothing may be persisted before splits are known")
	}
}

func TestCheckout_PersistenceFailureIsAtomic(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	h.store.failSale = errors.New("transaction cancelled")

	v := validatedCheckout()
	v.Coupon = &entities.Coupon{ID: "coupon-1", Code: "PROMO"}
	v.Affiliate = &entities.Affiliate{ID: "aff-1", CommissionRate: 5}
	h.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(v, nil)
	h.images.EXPECT().ResolveBase64(gomock.Any(), gomock.Any()).Return("img").AnyTimes()
	// gateway has no expectations: any call fails the test

	_, err := h.uc.CreateCheckout(context.Background(), checkoutRequest(false))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if o, _ := h.store.GetByID(context.Background(), "order-1"); o.ID != "" {
		t.Fatalf("order must not exist after a failed transaction")
	}
	if len(h.store.sales) != 0 {
		t.Fatalf("sale must not exist after a failed transaction")
	}
}

func TestCheckout_InvalidWebhookResponse(t *testing.T) {
	for name, resp := range map[string]entities.WebhookResponse{
		"missing url":        {ExternalPaymentID: "pay_1"},
		"missing payment id": {CheckoutURL: "https://pay.example/x"},
		"empty":              {},
	} {
		t.Run(name, func(t *testing.T) {
			h := newCheckoutHarness(t, nil)
			h.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(validatedCheckout(), nil)
			h.images.EXPECT().ResolveBase64(gomock.Any(), gomock.Any()).Return("img").AnyTimes()
			h.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).Return(resp, nil).Times(1)

			_, err := h.uc.CreateCheckout(context.Background(), checkoutRequest(false))
			if !errors.Is(err, ErrInvalidWebhookResponse) {
				t.Fatalf("expected ErrInvalidWebhookResponse, got %v", err)
			}
			if o := h.store.only(t); o.Status != entities.OrderStatusPendingPayment {
				t.Fatalf("order must stay PENDING_PAYMENT, got %s", o.Status)
			}
		})
	}
}

func TestCheckout_ClientErrorFromWebhookIsNotRetried(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	h.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(validatedCheckout(), nil)
	h.images.EXPECT().ResolveBase64(gomock.Any(), gomock.Any()).Return("img").AnyTimes()
	h.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).
		Return(entities.WebhookResponse{}, &retry.HTTPError{StatusCode: http.StatusBadRequest}).Times(1)

	if _, err := h.uc.CreateCheckout(context.Background(), checkoutRequest(false)); !errors.Is(err, ErrWebhookExhausted) {
		t.Fatalf("expected ErrWebhookExhausted, got %v", err)
	}
}

func TestCheckout_RetriesThenSucceeds(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	h.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(validatedCheckout(), nil)
	h.images.EXPECT().ResolveBase64(gomock.Any(), gomock.Any()).Return("img").AnyTimes()
	gomock.InOrder(
		h.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).
			Return(entities.WebhookResponse{}, &retry.HTTPError{StatusCode: http.StatusBadGateway}).Times(2),
		h.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).Return(okResponse, nil),
	)

	res, err := h.uc.CreateCheckout(context.Background(), checkoutRequest(false))
	if err != nil || res.CheckoutURL != okResponse.CheckoutURL {
		t.Fatalf("unexpected result %+v err=%v", res, err)
	}
}

func TestCheckout_MissingImageCancelsOrder(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	h.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(validatedCheckout(), nil)
	h.images.EXPECT().ResolveBase64(gomock.Any(), gomock.Any()).Return("").AnyTimes()

	_, err := h.uc.CreateCheckout(context.Background(), checkoutRequest(false))
	if !errors.Is(err, ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}
	if o := h.store.only(t); o.Status != entities.OrderStatusCancelled {
		t.Fatalf("expected best-effort cancellation, got %s", o.Status)
	}
	types := h.events.types()
	if types[len(types)-1] != entities.OrderEventCancelled {
		t.Fatalf("expected cancelled event, got %v", types)
	}
}

func TestCheckout_ReconciliationFailureDoesNotFailRequest(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	h.store.failApply = errors.New("throttled")
	h.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(validatedCheckout(), nil)
	h.images.EXPECT().ResolveBase64(gomock.Any(), gomock.Any()).Return("img").AnyTimes()
	h.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).Return(okResponse, nil)

	res, err := h.uc.CreateCheckout(context.Background(), checkoutRequest(false))
	if err != nil || res.CheckoutURL != okResponse.CheckoutURL {
		t.Fatalf("expected success despite reconciliation failure, got %+v %v", res, err)
	}
	if h.store.applied != 1 {
		t.Fatalf("expected one reconciliation attempt, got %d", h.store.applied)
	}
}

func TestCheckout_ReconciliationIsIdempotent(t *testing.T) {
	h := newCheckoutHarness(t, nil)
	h.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(validatedCheckout(), nil)
	h.images.EXPECT().ResolveBase64(gomock.Any(), gomock.Any()).Return("img").AnyTimes()
	h.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).Return(okResponse, nil)

	if _, err := h.uc.CreateCheckout(context.Background(), checkoutRequest(false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := h.store.only(t)

	splits, _ := ComputeSplits(first.Total, checkoutRequest(false).Splits, DefaultPlatformFeePercent)
	link := entities.PaymentLink{ExternalPaymentID: okResponse.ExternalPaymentID, CheckoutURL: okResponse.CheckoutURL, Splits: splits}
	h.uc.reconcile(context.Background(), first.ID, link, h.uc.logger)

	if second := h.store.only(t); !reflect.DeepEqual(first, second) {
		t.Fatalf("second reconciliation changed the order:\nfirst  %+v\nsecond %+v", first, second)
	}
}
