package rest_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prizmamta/metropole/internal/adapters/gateway/mercadopago"
	"github.com/prizmamta/metropole/internal/adapters/store/model"
	mockgateway "github.com/prizmamta/metropole/internal/mocks/gateway"
	mockstore "github.com/prizmamta/metropole/internal/mocks/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestServer_handlerWebhookHealth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := newTestServer(t, mockstore.NewMockStore(ctrl), mockgateway.NewMockPaymentGateway(ctrl))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/pix/webhook", nil)

	server.Engine().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestServer_handlerWebhook(t *testing.T) {
	order := model.Order{
		ID:        "5bd2f3a6-0000-4000-8000-000000000001",
		UserID:    1,
		PackageID: 1,
		Status:    model.OrderStatePending,
	}
	pkg := model.DiamondPackage{ID: 1, Name: "290 Diamantes", Diamonds: 290, PriceCents: 6900, Active: true}

	tests := []struct {
		name    string
		target  string
		body    string
		want    string
		prepare func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway)
	}{
		{
			name:    "no payment id",
			target:  "/api/pix/webhook",
			body:    `{"type":"payment"}`,
			want:    `"ignored":true`,
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {},
		},
		{
			name:   "not approved yet",
			target: "/api/pix/webhook",
			body:   `{"type":"payment","data":{"id":"42"}}`,
			want:   `"status":"pending"`,
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				gatewayMock.EXPECT().GetPayment(gomock.Any(), "42").
					Return(mercadopago.Payment{ID: 42, Status: "pending", ExternalReference: order.ID}, nil)
			},
		},
		{
			name:   "approved payment delivers and credits",
			target: "/api/pix/webhook",
			body:   `{"type":"payment","data":{"id":"42"}}`,
			want:   `"delivered":true`,
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				gatewayMock.EXPECT().GetPayment(gomock.Any(), "42").
					Return(mercadopago.Payment{
						ID:                42,
						Status:            mercadopago.StatusApproved,
						ExternalReference: order.ID,
						TransactionAmount: 69.00,
					}, nil)
				storeMock.EXPECT().GetOrder(gomock.Any(), order.ID).Return(order, nil)
				storeMock.EXPECT().GetPackage(gomock.Any(), uint(1)).Return(pkg, nil)
				storeMock.EXPECT().MarkOrderPaid(gomock.Any(), order.ID, "42").Return(nil)
				storeMock.EXPECT().DeliverOrder(gomock.Any(), order.ID, "42").Return(true, nil)
				storeMock.EXPECT().CreditUserDiamonds(gomock.Any(), uint(1), int64(290)).Return(nil)
			},
		},
		{
			name:   "payment id in query",
			target: "/api/pix/webhook?topic=payment&id=42",
			body:   ``,
			want:   `"status":"pending"`,
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				gatewayMock.EXPECT().GetPayment(gomock.Any(), "42").
					Return(mercadopago.Payment{ID: 42, Status: "pending"}, nil)
			},
		},
		{
			name:   "redelivery after credit",
			target: "/api/pix/webhook",
			body:   `{"type":"payment","data":{"id":"42"}}`,
			want:   `"already_delivered":true`,
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				deliveredAt := time.Now()
				delivered := order
				delivered.Status = model.OrderStateDelivered
				delivered.DeliveredAt = &deliveredAt

				gatewayMock.EXPECT().GetPayment(gomock.Any(), "42").
					Return(mercadopago.Payment{
						ID:                42,
						Status:            mercadopago.StatusApproved,
						ExternalReference: order.ID,
						TransactionAmount: 69.00,
					}, nil)
				storeMock.EXPECT().GetOrder(gomock.Any(), order.ID).Return(delivered, nil)
			},
		},
		{
			name:   "amount mismatch withholds the credit",
			target: "/api/pix/webhook",
			body:   `{"type":"payment","data":{"id":"42"}}`,
			want:   `"amount_mismatch":true`,
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				gatewayMock.EXPECT().GetPayment(gomock.Any(), "42").
					Return(mercadopago.Payment{
						ID:                42,
						Status:            mercadopago.StatusApproved,
						ExternalReference: order.ID,
						TransactionAmount: 1.00,
					}, nil)
				storeMock.EXPECT().GetOrder(gomock.Any(), order.ID).Return(order, nil)
				storeMock.EXPECT().GetPackage(gomock.Any(), uint(1)).Return(pkg, nil)
			},
		},
		{
			name:   "gateway lookup fails",
			target: "/api/pix/webhook",
			body:   `{"type":"payment","data":{"id":"42"}}`,
			want:   `"error"`,
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				gatewayMock.EXPECT().GetPayment(gomock.Any(), "42").
					Return(mercadopago.Payment{}, fmt.Errorf("mp unavailable"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := mockstore.NewMockStore(ctrl)
			gatewayMock := mockgateway.NewMockPaymentGateway(ctrl)
			tt.prepare(storeMock, gatewayMock)

			server := newTestServer(t, storeMock, gatewayMock)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))

			server.Engine().ServeHTTP(w, r)

			result := w.Result()
			// The gateway treats any non-200 as a redelivery trigger.
			assert.Equal(t, http.StatusOK, result.StatusCode)
			assert.Contains(t, w.Body.String(), tt.want)
			assert.NoError(t, result.Body.Close())
		})
	}

	t.Run("delivered body names the order and payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		storeMock := mockstore.NewMockStore(ctrl)
		gatewayMock := mockgateway.NewMockPaymentGateway(ctrl)
		gatewayMock.EXPECT().GetPayment(gomock.Any(), "42").
			Return(mercadopago.Payment{
				ID:                42,
				Status:            mercadopago.StatusApproved,
				ExternalReference: order.ID,
				TransactionAmount: 69.00,
			}, nil)
		storeMock.EXPECT().GetOrder(gomock.Any(), order.ID).Return(order, nil)
		storeMock.EXPECT().GetPackage(gomock.Any(), uint(1)).Return(pkg, nil)
		storeMock.EXPECT().MarkOrderPaid(gomock.Any(), order.ID, "42").Return(nil)
		storeMock.EXPECT().DeliverOrder(gomock.Any(), order.ID, "42").Return(true, nil)
		storeMock.EXPECT().CreditUserDiamonds(gomock.Any(), uint(1), int64(290)).Return(nil)

		server := newTestServer(t, storeMock, gatewayMock)

		w := httptest.NewRecorder()
		body := strings.NewReader(`{"type":"payment","data":{"id":"42"}}`)
		r := httptest.NewRequest(http.MethodPost, "/api/pix/webhook", body)

		server.Engine().ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
		assert.Contains(t, w.Body.String(), `"diamonds":290`)
		assert.Contains(t, w.Body.String(), fmt.Sprintf(`"order_id":%q`, order.ID))
		assert.Contains(t, w.Body.String(), `"payment_id":"42"`)
	})
}
