// Package mercadopago is a thin client for the two Mercado Pago REST calls
// the payment flow needs: creating a checkout preference and fetching the
// authoritative state of a payment by id.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// StatusApproved is the only payment status that triggers delivery.
const StatusApproved = "approved"

var ErrAccessTokenMissing = errors.New("mercado pago access token is not set")

type Client struct {
	log     *zap.Logger
	httpc   *http.Client
	baseURL string
	token   string
}

type option func(*Client)

func Logger(log *zap.Logger) option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// HTTPClient replaces the underlying transport, used by tests.
func HTTPClient(httpc *http.Client) option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

func New(cfg *Config, options ...option) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, ErrAccessTokenMissing
	}

	c := &Client{
		log:     zap.NewNop(),
		httpc:   &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		token:   cfg.AccessToken,
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

type PreferenceItem struct {
	Title      string  `json:"title"`
	CurrencyID string  `json:"currency_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

type BackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

type PreferenceRequest struct {
	ExternalReference string           `json:"external_reference"`
	Items             []PreferenceItem `json:"items"`
	BackURLs          BackURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return"`
	NotificationURL   string           `json:"notification_url"`
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CheckoutURL prefers the production redirect and falls back to the
// sandbox one, which is all the API returns for test credentials.
func (p Preference) CheckoutURL() string {
	if p.InitPoint != "" {
		return p.InitPoint
	}
	return p.SandboxInitPoint
}

type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
}

func (c *Client) CreatePreference(ctx context.Context, pref PreferenceRequest) (Preference, error) {
	preference := Preference{}

	bBody, err := json.Marshal(pref)
	if err != nil {
		return preference, fmt.Errorf("failed marshal preference: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/preferences", bytes.NewReader(bBody))
	if err != nil {
		return preference, fmt.Errorf("failed create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return preference, fmt.Errorf("failed request create preference: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	bResp, err := io.ReadAll(resp.Body)
	if err != nil {
		return preference, fmt.Errorf("failed read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Error("create preference rejected",
			zap.String("status", resp.Status),
			zap.String("body", string(bResp)),
		)
		return preference, fmt.Errorf("create preference failed: %s", resp.Status)
	}

	if err := json.Unmarshal(bResp, &preference); err != nil {
		return preference, fmt.Errorf("failed unmarshal preference: %w", err)
	}
	if preference.CheckoutURL() == "" {
		return preference, errors.New("preference response without init_point")
	}

	return preference, nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (Payment, error) {
	payment := Payment{}

	// The id comes from an unauthenticated webhook, escape it so it cannot
	// rewrite the request path.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return payment, fmt.Errorf("failed create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return payment, fmt.Errorf("failed request payment: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	bResp, err := io.ReadAll(resp.Body)
	if err != nil {
		return payment, fmt.Errorf("failed read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("get payment rejected",
			zap.String("paymentID", paymentID),
			zap.String("status", resp.Status),
			zap.String("body", string(bResp)),
		)
		return payment, fmt.Errorf("get payment %s failed: %s", paymentID, resp.Status)
	}

	if err := json.Unmarshal(bResp, &payment); err != nil {
		return payment, fmt.Errorf("failed unmarshal payment: %w", err)
	}

	return payment, nil
}
