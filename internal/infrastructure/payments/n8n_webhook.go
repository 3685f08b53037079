package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"checkout_service/internal/domain/entities"
	"checkout_service/internal/infrastructure/retry"
	"checkout_service/internal/usecase/interfaces"
)

var ErrMissingWebhookURL = errors.New("missing checkout webhook url")

// N8NWebhookGateway posts the checkout payload to the payment orchestrator
// webhook. One call is one attempt; retries belong to the caller.
type N8NWebhookGateway struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

var _ interfaces.IPaymentGateway = (*N8NWebhookGateway)(nil)

func NewN8NWebhookGateway(url string, client *http.Client, logger *zap.Logger) (*N8NWebhookGateway, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrMissingWebhookURL
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &N8NWebhookGateway{url: url, client: client, logger: logger}, nil
}

// webhookBody is the orchestrator answer. asaasPaymentId is the historical
// name of the external payment id.
type webhookBody struct {
	CheckoutURL       string `json:"checkoutUrl"`
	AsaasPaymentID    string `json:"asaasPaymentId"`
	ExternalPaymentID string `json:"externalPaymentId"`
	Status            string `json:"status"`
}

func (g *N8NWebhookGateway) CreateCheckout(ctx context.Context, payload entities.WebhookPayload) (entities.WebhookResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return entities.WebhookResponse{}, fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return entities.WebhookResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	g.logger.Debug("[payment][n8n] post start", zap.String("order_id", payload.OrderID), zap.Int("payload_len", len(body)))

	raw, err := retry.SendJSON[json.RawMessage](g.client, req)
	if errors.Is(err, retry.ErrDecodeBody) {
		// A 2xx without a usable body is an invalid response, not a failed attempt.
		g.logger.Warn("[payment][n8n] undecodable response body", zap.String("order_id", payload.OrderID), zap.Error(err))
		return entities.WebhookResponse{}, nil
	}
	if err != nil {
		var httpErr *retry.HTTPError
		if errors.As(err, &httpErr) {
			g.logger.Warn("[payment][n8n] non-2xx response",
				zap.String("order_id", payload.OrderID),
				zap.Int("status", httpErr.StatusCode),
			)
		}
		return entities.WebhookResponse{}, err
	}

	resp := decodeWebhookResponse(raw)
	g.logger.Info("[payment][n8n] post success",
		zap.String("order_id", payload.OrderID),
		zap.String("external_payment_id", resp.ExternalPaymentID),
	)
	return resp, nil
}

// decodeWebhookResponse accepts an object or an array whose first element is
// the answer. Anything else yields an empty response.
func decodeWebhookResponse(raw json.RawMessage) entities.WebhookResponse {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return entities.WebhookResponse{}
	}

	var body webhookBody
	if trimmed[0] == '[' {
		var list []webhookBody
		if err := json.Unmarshal(trimmed, &list); err != nil || len(list) == 0 {
			return entities.WebhookResponse{}
		}
		body = list[0]
	} else if err := json.Unmarshal(trimmed, &body); err != nil {
		return entities.WebhookResponse{}
	}

	id := body.AsaasPaymentID
	if id == "" {
		id = body.ExternalPaymentID
	}
	return entities.WebhookResponse{
		CheckoutURL:       strings.TrimSpace(body.CheckoutURL),
		ExternalPaymentID: strings.TrimSpace(id),
		Status:            body.Status,
	}
}
