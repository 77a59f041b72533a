package mercadopago_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prizmamta/metropole/internal/adapters/gateway/mercadopago"
	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.Handler) (*mercadopago.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := mercadopago.New(&mercadopago.Config{
		AccessToken: "test-token",
		BaseURL:     server.URL,
		Timeout:     time.Second,
	})
	assert.NoError(t, err)

	return client, server
}

func TestNew_RequiresAccessToken(t *testing.T) {
	_, err := mercadopago.New(&mercadopago.Config{})
	assert.ErrorIs(t, err, mercadopago.ErrAccessTokenMissing)
}

func TestClient_CreatePreference(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		req := mercadopago.PreferenceRequest{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "order-1", req.ExternalReference)
		assert.Len(t, req.Items, 1)
		assert.InDelta(t, 69.0, req.Items[0].UnitPrice, 0.001)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":                 "pref-1",
			"init_point":         "https://mp.example/redirect",
			"sandbox_init_point": "https://sandbox.mp.example/redirect",
		})
	}))

	pref, err := client.CreatePreference(context.Background(), mercadopago.PreferenceRequest{
		ExternalReference: "order-1",
		Items: []mercadopago.PreferenceItem{
			{Title: "290 Diamantes", CurrencyID: "BRL", Quantity: 1, UnitPrice: 69.00},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "pref-1", pref.ID)
	assert.Equal(t, "https://mp.example/redirect", pref.CheckoutURL())
}

func TestClient_CreatePreference_SandboxFallback(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":                 "pref-2",
			"sandbox_init_point": "https://sandbox.mp.example/redirect",
		})
	}))

	pref, err := client.CreatePreference(context.Background(), mercadopago.PreferenceRequest{})

	assert.NoError(t, err)
	assert.Equal(t, "https://sandbox.mp.example/redirect", pref.CheckoutURL())
}

func TestClient_CreatePreference_GatewayError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid access token"}`, http.StatusUnauthorized)
	}))

	_, err := client.CreatePreference(context.Background(), mercadopago.PreferenceRequest{})

	assert.Error(t, err)
}

func TestClient_GetPayment(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/42", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                 42,
			"status":             "approved",
			"external_reference": "order-1",
			"transaction_amount": 69.00,
		})
	}))

	payment, err := client.GetPayment(context.Background(), "42")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), payment.ID)
	assert.Equal(t, mercadopago.StatusApproved, payment.Status)
	assert.Equal(t, "order-1", payment.ExternalReference)
	assert.InDelta(t, 69.00, payment.TransactionAmount, 0.001)
}

func TestClient_GetPayment_EscapesID(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		http.Error(w, `{"message":"Payment not found"}`, http.StatusNotFound)
	}))

	// Ids come straight from the webhook query, a crafted one must not
	// redirect the lookup to another endpoint.
	_, err := client.GetPayment(context.Background(), "123/../refunds")

	assert.Error(t, err)
	assert.Equal(t, "/v1/payments/123%2F..%2Frefunds", gotPath)
}

func TestClient_GetPayment_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Payment not found"}`, http.StatusNotFound)
	}))

	_, err := client.GetPayment(context.Background(), "404")

	assert.Error(t, err)
}
