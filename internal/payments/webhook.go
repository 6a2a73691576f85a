package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"backend/internal/models"
)

// ErrNoOrderID means the payload carried no gateway order id. Webhook
// handlers acknowledge this with a no-op so the gateway does not retry
// forever.
var ErrNoOrderID = errors.New("payments: webhook payload has no order id")

// WebhookEvent is the normalized form of a gateway notification.
type WebhookEvent struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Status           string // internal: completed | failed | pending
}

// ParseRazorpayWebhook extracts the order/payment ids and status from a
// Razorpay webhook body. The payload nests the payment entity under
// payload.payment.entity, but older events have carried the fields at
// other depths, so each value is tried from an ordered candidate list.
func ParseRazorpayWebhook(rawBody []byte) (WebhookEvent, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(rawBody, &doc); err != nil {
		return WebhookEvent{}, fmt.Errorf("payments: decode razorpay webhook: %w", err)
	}

	orderID := firstString(doc,
		[]string{"payload", "payment", "entity", "order_id"},
		[]string{"payload", "order", "entity", "id"},
		[]string{"order_id"},
	)
	if orderID == "" {
		return WebhookEvent{}, ErrNoOrderID
	}

	paymentID := firstString(doc,
		[]string{"payload", "payment", "entity", "id"},
		[]string{"payment_id"},
	)
	status := firstString(doc,
		[]string{"payload", "payment", "entity", "status"},
		[]string{"status"},
	)

	return WebhookEvent{
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		Status:           MapRazorpayStatus(status),
	}, nil
}

// ParseCashfreeWebhook extracts the normalized event from a Cashfree
// webhook body (data.order / data.payment in current payloads).
func ParseCashfreeWebhook(rawBody []byte) (WebhookEvent, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(rawBody, &doc); err != nil {
		return WebhookEvent{}, fmt.Errorf("payments: decode cashfree webhook: %w", err)
	}

	orderID := firstString(doc,
		[]string{"data", "order", "order_id"},
		[]string{"order", "order_id"},
		[]string{"orderId"},
	)
	if orderID == "" {
		return WebhookEvent{}, ErrNoOrderID
	}

	paymentID := firstString(doc,
		[]string{"data", "payment", "cf_payment_id"},
		[]string{"data", "payment", "payment_id"},
		[]string{"referenceId"},
	)
	status := firstString(doc,
		[]string{"data", "payment", "payment_status"},
		[]string{"data", "order", "order_status"},
		[]string{"txStatus"},
	)

	return WebhookEvent{
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		Status:           MapCashfreeStatus(status),
	}, nil
}

// MapRazorpayStatus maps Razorpay's payment status vocabulary to the
// internal one.
func MapRazorpayStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "captured", "authorized", "paid":
		return models.PaymentStatusCompleted
	case "failed":
		return models.PaymentStatusFailed
	default:
		return models.PaymentStatusPending
	}
}

// MapCashfreeStatus maps Cashfree's payment/order status vocabulary to
// the internal one.
func MapCashfreeStatus(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "SUCCESS", "PAID":
		return models.PaymentStatusCompleted
	case "FAILED", "USER_DROPPED", "CANCELLED", "VOID", "EXPIRED":
		return models.PaymentStatusFailed
	default:
		return models.PaymentStatusPending
	}
}

// ApplyStatus computes the next payment status for an incoming gateway
// status. Webhook delivery is at-least-once and may reorder, so the
// transition must be safe to re-apply: a terminal completed/refunded
// payment never regresses, and a late "completed" upgrades an earlier
// "failed" (gateways allow retrying payment on the same order).
func ApplyStatus(current, incoming string) (next string, changed bool) {
	if incoming != models.PaymentStatusCompleted && incoming != models.PaymentStatusFailed {
		return current, false
	}
	if current == incoming {
		return current, false
	}
	switch current {
	case models.PaymentStatusCompleted,
		models.PaymentStatusRefunded,
		models.PaymentStatusPartiallyRefunded:
		return current, false
	case models.PaymentStatusFailed:
		if incoming == models.PaymentStatusCompleted {
			return incoming, true
		}
		return current, false
	default: // pending, processing
		return incoming, true
	}
}

func firstString(doc map[string]interface{}, paths ...[]string) string {
	for _, path := range paths {
		if value, ok := lookupString(doc, path); ok {
			return value
		}
	}
	return ""
}

func lookupString(doc map[string]interface{}, path []string) (string, bool) {
	var current interface{} = doc
	for _, key := range path {
		node, ok := current.(map[string]interface{})
		if !ok {
			return "", false
		}
		current, ok = node[key]
		if !ok {
			return "", false
		}
	}
	switch v := current.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), "."), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}
