package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backend/internal/models"
)

func TestApplyRefund(t *testing.T) {
	tests := []struct {
		name          string
		status        string
		captured      int64
		refundedSoFar int64
		amount        int64
		wantStatus    string
		wantErr       error
	}{
		{
			name:     "partial refund of a completed payment",
			status:   models.PaymentStatusCompleted,
			captured: 50000, amount: 20000,
			wantStatus: models.PaymentStatusPartiallyRefunded,
		},
		{
			name:     "full refund in one go",
			status:   models.PaymentStatusCompleted,
			captured: 50000, amount: 50000,
			wantStatus: models.PaymentStatusRefunded,
		},
		{
			name:     "second partial refund completes the capture",
			status:   models.PaymentStatusPartiallyRefunded,
			captured: 50000, refundedSoFar: 20000, amount: 30000,
			wantStatus: models.PaymentStatusRefunded,
		},
		{
			name:     "refund may never exceed the capture",
			status:   models.PaymentStatusCompleted,
			captured: 50000, amount: 50001,
			wantErr: ErrRefundExceedsCapture,
		},
		{
			name:     "cumulative refunds may never exceed the capture",
			status:   models.PaymentStatusPartiallyRefunded,
			captured: 50000, refundedSoFar: 30000, amount: 30000,
			wantErr: ErrRefundExceedsCapture,
		},
		{
			name:     "pending payments are not refundable",
			status:   models.PaymentStatusPending,
			captured: 50000, amount: 10000,
			wantErr: ErrRefundNotAllowed,
		},
		{
			name:     "failed payments are not refundable",
			status:   models.PaymentStatusFailed,
			captured: 50000, amount: 10000,
			wantErr: ErrRefundNotAllowed,
		},
		{
			name:     "fully refunded payments are terminal",
			status:   models.PaymentStatusRefunded,
			captured: 50000, refundedSoFar: 50000, amount: 1,
			wantErr: ErrRefundNotAllowed,
		},
		{
			name:     "zero amount is rejected",
			status:   models.PaymentStatusCompleted,
			captured: 50000, amount: 0,
			wantErr: errRefundAmountInvalid,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := ApplyRefund(tc.status, tc.captured, tc.refundedSoFar, tc.amount)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.wantStatus, next)
		})
	}
}
