package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"checkout_service/internal/adapter/http/handlers/mocks"
	"checkout_service/internal/domain/entities"
	"checkout_service/internal/usecase"
)

func orderRouter(uc *mocks.MockIOrderUseCase) *gin.Engine {
	h := NewOrderHandler(uc, nil)
	r := gin.New()
	r.GET("/v1/orders/:order_id", h.GetOrder)
	r.PATCH("/v1/orders/:order_id/status", h.UpdateOrderStatus)
	return r
}

func TestOrderHandler_GetOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIOrderUseCase(ctrl)
		uc.EXPECT().GetByID(gomock.Any(), "o-1").Return(entities.Order{ID: "o-1", Status: entities.OrderStatusPendingPayment}, nil)

		w := httptest.NewRecorder()
		orderRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orders/o-1", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["id"] != "o-1" || body["status"] != "PENDING_PAYMENT" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIOrderUseCase(ctrl)
		uc.EXPECT().GetByID(gomock.Any(), "o-404").Return(entities.Order{}, usecase.ErrOrderNotFound)

		w := httptest.NewRecorder()
		orderRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orders/o-404", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "missing status", body: `{}`, status: http.StatusBadRequest},
		{name: "success", body: `{"status":"cancelled"}`, status: http.StatusOK},
		{name: "terminal", body: `{"status":"PAID"}`, err: usecase.ErrInvalidStatusTransition, status: http.StatusConflict},
		{name: "unknown status", body: `{"status":"SHIPPED"}`, err: usecase.ErrInvalidOrderStatus, status: http.StatusBadRequest},
		{name: "store failure", body: `{"status":"PAID"}`, err: errors.New("throttled"), status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc := mocks.NewMockIOrderUseCase(ctrl)
			if tc.body != `{}` {
				uc.EXPECT().UpdateStatus(gomock.Any(), "o-1", gomock.Any()).DoAndReturn(
					func(_ any, id string, s entities.OrderStatus) (entities.Order, error) {
						if tc.err != nil {
							return entities.Order{}, tc.err
						}
						return entities.Order{ID: id, Status: s}, nil
					})
			}

			req := httptest.NewRequest(http.MethodPatch, "/v1/orders/o-1/status", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			orderRouter(uc).ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.status == http.StatusOK && !bytes.Contains(w.Body.Bytes(), []byte(`"status":"CANCELLED"`)) {
				t.Fatalf("expected upper-cased status, got %s", w.Body.String())
			}
		})
	}
}
