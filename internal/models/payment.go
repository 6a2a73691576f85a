package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses.
const (
	PaymentStatusPending           = "pending"
	PaymentStatusProcessing        = "processing"
	PaymentStatusCompleted         = "completed"
	PaymentStatusFailed            = "failed"
	PaymentStatusRefunded          = "refunded"
	PaymentStatusPartiallyRefunded = "partially_refunded"
)

const (
	GatewayRazorpay = "razorpay"
	GatewayCashfree = "cashfree"
)

const (
	RefundStatusProcessed = "processed"
)

type Refund struct {
	RefundID    string    `bson:"refundId" json:"refundId"`
	Amount      int64     `bson:"amount" json:"amount"`
	Status      string    `bson:"status" json:"status"`
	ProcessedAt time.Time `bson:"processedAt" json:"processedAt"`
}

// Payment tracks a checkout attempt against a gateway. Amount and refund
// amounts are in minor units (paise).
type Payment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID          primitive.ObjectID `bson:"orderId" json:"orderId"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	Amount           int64              `bson:"amount" json:"amount"`
	Currency         string             `bson:"currency" json:"currency"`
	Method           string             `bson:"method" json:"method"`
	Gateway          string             `bson:"gateway" json:"gateway"`
	GatewayOrderID   string             `bson:"gatewayOrderId,omitempty" json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string             `bson:"gatewayPaymentId,omitempty" json:"gatewayPaymentId,omitempty"`
	Receipt          string             `bson:"receipt" json:"receipt"`
	Status           string             `bson:"status" json:"status"`
	Refunds          []Refund           `bson:"refunds,omitempty" json:"refunds,omitempty"`
	IsDeleted        bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RefundedTotal sums recorded refunds in minor units.
func (p Payment) RefundedTotal() int64 {
	var total int64
	for _, r := range p.Refunds {
		total += r.Amount
	}
	return total
}
