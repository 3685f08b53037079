package payments

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"checkout_service/internal/domain/entities"
	"checkout_service/internal/usecase/interfaces"
)

const defaultMockCheckoutBaseURL = "http://localhost:8080/mock-checkout"

// MockGateway answers every checkout with a deterministic local link. It is
// meant for local runs without a payment orchestrator.
type MockGateway struct {
	baseURL string
	logger  *zap.Logger
}

var _ interfaces.IPaymentGateway = (*MockGateway)(nil)

func NewMockGateway(baseURL string, logger *zap.Logger) *MockGateway {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultMockCheckoutBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockGateway{baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (g *MockGateway) CreateCheckout(ctx context.Context, payload entities.WebhookPayload) (entities.WebhookResponse, error) {
	if err := ctx.Err(); err != nil {
		return entities.WebhookResponse{}, err
	}
	id := "mock_" + payload.OrderID
	g.logger.Info("[payment][mock] checkout created", zap.String("order_id", payload.OrderID), zap.String("external_payment_id", id))
	return entities.WebhookResponse{
		CheckoutURL:       g.baseURL + "/" + url.PathEscape(payload.OrderID),
		ExternalPaymentID: id,
		Status:            "PENDING",
	}, nil
}
