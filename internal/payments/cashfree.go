package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type CashfreeClient struct {
	appID      string
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewCashfreeClient(appID, secretKey, baseURL string, timeout time.Duration) *CashfreeClient {
	return &CashfreeClient{
		appID:      appID,
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *CashfreeClient) Configured() bool {
	return c != nil && c.appID != "" && c.secretKey != "" && c.baseURL != ""
}

func (c *CashfreeClient) authHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", "2023-08-01")
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)
}

type cashfreeOrderResponse struct {
	CFOrderID        json.Number `json:"cf_order_id"`
	OrderID          string      `json:"order_id"`
	OrderStatus      string      `json:"order_status"`
	PaymentSessionID string      `json:"payment_session_id"`
}

// CreateOrder registers an order with Cashfree. Amount is in paise and
// converted to the rupee figure the API expects.
func (c *CashfreeClient) CreateOrder(ctx context.Context, orderID string, amount int64, currency, customerID, customerPhone string) (GatewayOrder, error) {
	if !c.Configured() {
		return GatewayOrder{}, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]interface{}{
		"order_id":       orderID,
		"order_amount":   float64(amount) / 100,
		"order_currency": currency,
		"customer_details": map[string]string{
			"customer_id":    customerID,
			"customer_phone": customerPhone,
		},
	})
	if err != nil {
		return GatewayOrder{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pg/orders", bytes.NewReader(body))
	if err != nil {
		return GatewayOrder{}, err
	}
	c.authHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return GatewayOrder{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return GatewayOrder{}, fmt.Errorf("payments: cashfree order create returned status %d", resp.StatusCode)
	}

	var parsed cashfreeOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return GatewayOrder{}, err
	}
	if parsed.OrderID == "" {
		return GatewayOrder{}, errors.New("payments: cashfree order response missing order_id")
	}

	return GatewayOrder{
		ID:        parsed.OrderID,
		Amount:    amount,
		Currency:  currency,
		SessionID: parsed.PaymentSessionID,
	}, nil
}

// FetchOrderStatus asks Cashfree for the authoritative status of an
// order. The return-URL flow must call this instead of trusting the
// redirect query parameters.
func (c *CashfreeClient) FetchOrderStatus(ctx context.Context, gatewayOrderID string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pg/orders/"+gatewayOrderID, nil)
	if err != nil {
		return "", err
	}
	c.authHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("payments: cashfree order fetch returned status %d", resp.StatusCode)
	}

	var parsed cashfreeOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.OrderStatus == "" {
		return "", errors.New("payments: cashfree order response missing order_status")
	}
	return parsed.OrderStatus, nil
}

// VerifyWebhookSignature checks the x-webhook-signature header: a
// base64-encoded HMAC-SHA256 over timestamp + raw body.
func (c *CashfreeClient) VerifyWebhookSignature(timestamp string, rawBody []byte, signature string) bool {
	if c == nil || c.secretKey == "" || signature == "" || timestamp == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	provided, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, provided)
}
