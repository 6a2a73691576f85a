package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"backend/internal/models"
)

func razorpaySign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func cashfreeSign(timestamp string, body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestRazorpayWebhookSignature(t *testing.T) {
	client := NewRazorpayClient("key", "key_secret", "whsec", 5*time.Second)
	body := []byte(`{"event":"payment.captured"}`)

	assert.True(t, client.VerifyWebhookSignature(body, razorpaySign(body, "whsec")))
	assert.False(t, client.VerifyWebhookSignature(body, razorpaySign(body, "wrong_secret")))
	assert.False(t, client.VerifyWebhookSignature(body, ""))
	assert.False(t, client.VerifyWebhookSignature(body, "not-hex"))

	unconfigured := NewRazorpayClient("key", "key_secret", "", 5*time.Second)
	assert.False(t, unconfigured.VerifyWebhookSignature(body, razorpaySign(body, "whsec")))
}

func TestRazorpayCheckoutSignature(t *testing.T) {
	client := NewRazorpayClient("key", "key_secret", "whsec", 5*time.Second)

	sig := razorpaySign([]byte("order_123|pay_456"), "key_secret")
	assert.True(t, client.VerifyCheckoutSignature("order_123", "pay_456", sig))
	assert.False(t, client.VerifyCheckoutSignature("order_123", "pay_999", sig))
}

func TestCashfreeWebhookSignature(t *testing.T) {
	client := NewCashfreeClient("app", "cf_secret", "https://sandbox.cashfree.com", 5*time.Second)
	body := []byte(`{"type":"PAYMENT_SUCCESS_WEBHOOK"}`)
	ts := "1700000000"

	assert.True(t, client.VerifyWebhookSignature(ts, body, cashfreeSign(ts, body, "cf_secret")))
	assert.False(t, client.VerifyWebhookSignature(ts, body, cashfreeSign(ts, body, "other")))
	assert.False(t, client.VerifyWebhookSignature("", body, cashfreeSign(ts, body, "cf_secret")))
	assert.False(t, client.VerifyWebhookSignature("1700000001", body, cashfreeSign(ts, body, "cf_secret")))
}

func TestParseRazorpayWebhook(t *testing.T) {
	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_456",
					"order_id": "order_123",
					"status": "captured"
				}
			}
		}
	}`)

	event, err := ParseRazorpayWebhook(body)
	assert.NoError(t, err)
	assert.Equal(t, "order_123", event.GatewayOrderID)
	assert.Equal(t, "pay_456", event.GatewayPaymentID)
	assert.Equal(t, models.PaymentStatusCompleted, event.Status)
}

func TestParseRazorpayWebhookFlatShape(t *testing.T) {
	event, err := ParseRazorpayWebhook([]byte(`{"order_id":"order_9","payment_id":"pay_9","status":"failed"}`))
	assert.NoError(t, err)
	assert.Equal(t, "order_9", event.GatewayOrderID)
	assert.Equal(t, models.PaymentStatusFailed, event.Status)
}

func TestParseRazorpayWebhookMissingOrderID(t *testing.T) {
	_, err := ParseRazorpayWebhook([]byte(`{"event":"payment.captured","payload":{}}`))
	assert.ErrorIs(t, err, ErrNoOrderID)
}

func TestParseCashfreeWebhook(t *testing.T) {
	body := []byte(`{
		"type": "PAYMENT_SUCCESS_WEBHOOK",
		"data": {
			"order": {"order_id": "ord_77", "order_status": "PAID"},
			"payment": {"cf_payment_id": 991122, "payment_status": "SUCCESS"}
		}
	}`)

	event, err := ParseCashfreeWebhook(body)
	assert.NoError(t, err)
	assert.Equal(t, "ord_77", event.GatewayOrderID)
	assert.Equal(t, "991122", event.GatewayPaymentID)
	assert.Equal(t, models.PaymentStatusCompleted, event.Status)
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, models.PaymentStatusCompleted, MapRazorpayStatus("captured"))
	assert.Equal(t, models.PaymentStatusCompleted, MapRazorpayStatus("Authorized"))
	assert.Equal(t, models.PaymentStatusFailed, MapRazorpayStatus("failed"))
	assert.Equal(t, models.PaymentStatusPending, MapRazorpayStatus("created"))

	assert.Equal(t, models.PaymentStatusCompleted, MapCashfreeStatus("SUCCESS"))
	assert.Equal(t, models.PaymentStatusFailed, MapCashfreeStatus("user_dropped"))
	assert.Equal(t, models.PaymentStatusPending, MapCashfreeStatus("ACTIVE"))
}

func TestApplyStatusIsIdempotent(t *testing.T) {
	next, changed := ApplyStatus(models.PaymentStatusPending, models.PaymentStatusCompleted)
	assert.True(t, changed)
	assert.Equal(t, models.PaymentStatusCompleted, next)

	// Re-applying the same terminal status is a no-op.
	next, changed = ApplyStatus(next, models.PaymentStatusCompleted)
	assert.False(t, changed)
	assert.Equal(t, models.PaymentStatusCompleted, next)

	// A late "failed" must not regress a completed payment.
	next, changed = ApplyStatus(models.PaymentStatusCompleted, models.PaymentStatusFailed)
	assert.False(t, changed)
	assert.Equal(t, models.PaymentStatusCompleted, next)

	// A retry that eventually succeeds upgrades failed → completed.
	next, changed = ApplyStatus(models.PaymentStatusFailed, models.PaymentStatusCompleted)
	assert.True(t, changed)
	assert.Equal(t, models.PaymentStatusCompleted, next)

	// Refunded payments never move on webhook replays.
	_, changed = ApplyStatus(models.PaymentStatusRefunded, models.PaymentStatusCompleted)
	assert.False(t, changed)

	// Pending gateway statuses never mutate anything.
	_, changed = ApplyStatus(models.PaymentStatusPending, models.PaymentStatusPending)
	assert.False(t, changed)
}
