package payments

import (
	"errors"

	"backend/internal/models"
)

var (
	// ErrRefundNotAllowed means the payment is not in a refundable
	// status. Only captured money can be returned.
	ErrRefundNotAllowed = errors.New("payments: refunds require a completed payment")
	// ErrRefundExceedsCapture means the refund would push the refunded
	// total past the captured amount.
	ErrRefundExceedsCapture = errors.New("payments: refund exceeds captured amount")

	errRefundAmountInvalid = errors.New("payments: refund amount must be positive")
)

// ApplyRefund validates a refund of amount minor units against the
// payment's current status, captured amount and previously refunded
// total. Refunded totals may never exceed the capture. Returns the
// status the payment moves to: refunded when the capture is fully
// repaid, partially_refunded otherwise.
func ApplyRefund(currentStatus string, captured, refundedSoFar, amount int64) (string, error) {
	switch currentStatus {
	case models.PaymentStatusCompleted, models.PaymentStatusPartiallyRefunded:
	default:
		return "", ErrRefundNotAllowed
	}

	if amount <= 0 {
		return "", errRefundAmountInvalid
	}
	if refundedSoFar+amount > captured {
		return "", ErrRefundExceedsCapture
	}

	if refundedSoFar+amount == captured {
		return models.PaymentStatusRefunded, nil
	}
	return models.PaymentStatusPartiallyRefunded, nil
}
