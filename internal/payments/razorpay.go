// Package payments holds the gateway clients and the reconciliation
// helpers shared by the payment handlers. Clients are constructed once
// in main and injected into handlers so tests can point them at fake
// servers.
package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrNotConfigured = errors.New("payments: gateway not configured")

// GatewayOrder is the normalized result of creating an order on a
// gateway, whatever shape the gateway answered with.
type GatewayOrder struct {
	ID        string
	Amount    int64
	Currency  string
	SessionID string // Cashfree payment session id, empty for Razorpay
}

type RazorpayClient struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

func NewRazorpayClient(keyID, keySecret, webhookSecret string, timeout time.Duration) *RazorpayClient {
	return &RazorpayClient{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		baseURL:       "https://api.razorpay.com",
		httpClient:    &http.Client{Timeout: timeout},
	}
}

func (c *RazorpayClient) Configured() bool {
	return c != nil && c.keyID != "" && c.keySecret != ""
}

// SetBaseURL overrides the API host, used by tests.
func (c *RazorpayClient) SetBaseURL(url string) { c.baseURL = url }

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder registers an order with Razorpay. Amount is in paise.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (GatewayOrder, error) {
	if !c.Configured() {
		return GatewayOrder{}, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return GatewayOrder{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return GatewayOrder{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return GatewayOrder{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return GatewayOrder{}, fmt.Errorf("payments: razorpay order create returned status %d", resp.StatusCode)
	}

	var parsed razorpayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return GatewayOrder{}, err
	}
	if parsed.ID == "" {
		return GatewayOrder{}, errors.New("payments: razorpay order response missing id")
	}

	return GatewayOrder{ID: parsed.ID, Amount: parsed.Amount, Currency: parsed.Currency}, nil
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header: a
// hex-encoded HMAC-SHA256 over the raw webhook body.
func (c *RazorpayClient) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	if c == nil || c.webhookSecret == "" || signature == "" {
		return false
	}
	return verifyHexHMAC(rawBody, signature, c.webhookSecret)
}

// VerifyCheckoutSignature checks the signature returned to the browser
// after checkout, computed over "<orderID>|<paymentID>" with the key
// secret.
func (c *RazorpayClient) VerifyCheckoutSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if !c.Configured() || signature == "" {
		return false
	}
	payload := gatewayOrderID + "|" + gatewayPaymentID
	return verifyHexHMAC([]byte(payload), signature, c.keySecret)
}

func verifyHexHMAC(message []byte, providedHex, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(providedHex)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, provided)
}
