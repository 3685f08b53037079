package payments

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/zap"

	"checkout_service/internal/domain/entities"
	"checkout_service/internal/infrastructure/retry"
	"checkout_service/internal/usecase/interfaces"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
var ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")

const mercadoPagoCurrency = "BRL"

// preferenceCreator is the part of the preference client the gateway uses.
type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

// MercadoPagoGateway creates a Mercado Pago checkout preference per order.
// The preference init point is the checkout URL and its id the external
// payment id.
type MercadoPagoGateway struct {
	client preferenceCreator
	logger *zap.Logger
	now    func() time.Time
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string, logger *zap.Logger) (*MercadoPagoGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if accessToken == "" {
		logger.Error("[payment][mercadopago] missing access token")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		logger.Error("[payment][mercadopago] failed creating sdk config", zap.Error(err))
		return nil, err
	}
	logger.Info("[payment][mercadopago] client initialized")

	return newMercadoPagoGateway(preference.NewClient(cfg), logger), nil
}

func newMercadoPagoGateway(client preferenceCreator, logger *zap.Logger) *MercadoPagoGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MercadoPagoGateway{client: client, logger: logger, now: time.Now}
}

func (g *MercadoPagoGateway) CreateCheckout(ctx context.Context, payload entities.WebhookPayload) (entities.WebhookResponse, error) {
	if g == nil || g.client == nil {
		return entities.WebhookResponse{}, ErrMercadoPagoGatewayNotConfigured
	}
	g.logger.Info("[payment][mercadopago] create preference start",
		zap.String("order_id", payload.OrderID),
		zap.Int("items", len(payload.Items)),
	)

	resp, err := g.client.Create(ctx, g.buildPreference(payload))
	if err != nil {
		g.logger.Error("[payment][mercadopago] create preference failed", zap.String("order_id", payload.OrderID), zap.Error(err))
		return entities.WebhookResponse{}, classifyMercadoPagoError(err)
	}
	if resp == nil {
		return entities.WebhookResponse{}, nil
	}

	g.logger.Info("[payment][mercadopago] create preference success",
		zap.String("order_id", payload.OrderID),
		zap.String("preference_id", resp.ID),
	)
	return entities.WebhookResponse{
		CheckoutURL:       resp.InitPoint,
		ExternalPaymentID: resp.ID,
		Status:            "PENDING",
	}, nil
}

func (g *MercadoPagoGateway) buildPreference(p entities.WebhookPayload) preference.Request {
	items := make([]preference.ItemRequest, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, preference.ItemRequest{
			ID:          it.ProductID,
			Title:       it.Name,
			Description: it.Description,
			PictureURL:  it.ImageURL,
			Quantity:    it.Quantity,
			UnitPrice:   it.Value,
			CurrencyID:  mercadoPagoCurrency,
		})
	}

	req := preference.Request{
		Items:             items,
		ExternalReference: p.ExternalReference,
		Payer: &preference.PayerRequest{
			Name:  p.CustomerData.Name,
			Email: p.CustomerData.Email,
		},
		BackURLs: &preference.BackURLsRequest{
			Success: p.Callback.SuccessURL,
			Failure: p.Callback.CancelURL,
			Pending: p.Callback.ExpiredURL,
		},
		Metadata: map[string]any{
			"order_id":   p.OrderID,
			"company_id": p.CompanyID,
			"user_id":    p.UserID,
		},
	}
	if p.Installment.MaxInstallmentCount > 0 {
		req.PaymentMethods = &preference.PaymentMethodsRequest{Installments: p.Installment.MaxInstallmentCount}
	}
	if p.MinutesToExpire > 0 {
		from := g.now().UTC()
		to := from.Add(time.Duration(p.MinutesToExpire) * time.Minute)
		req.Expires = true
		req.ExpirationDateFrom = &from
		req.ExpirationDateTo = &to
	}
	return req
}

// classifyMercadoPagoError turns request-rejection errors into a 4xx
// *retry.HTTPError so they are not retried. The sdk only exposes them as text.
func classifyMercadoPagoError(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"bad request", "invalid", "unauthorized", "forbidden", "400", "401", "403"} {
		if strings.Contains(msg, marker) {
			return &retry.HTTPError{StatusCode: http.StatusBadRequest, Status: err.Error()}
		}
	}
	return err
}
