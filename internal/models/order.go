package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusReturned  = "returned"
)

// Order payment statuses (orthogonal to the lifecycle status).
const (
	OrderPaymentPending  = "pending"
	OrderPaymentPaid     = "paid"
	OrderPaymentFailed   = "failed"
	OrderPaymentRefunded = "refunded"
)

// OrderItem is a snapshot of a product line at purchase time. Price and
// name are copied so later product edits do not rewrite order history.
type OrderItem struct {
	ProductID primitive.ObjectID  `bson:"productId" json:"productId"`
	VendorID  *primitive.ObjectID `bson:"vendorId,omitempty" json:"vendorId,omitempty"`
	Name      string              `bson:"name" json:"name"`
	Price     float64             `bson:"price" json:"price"`
	Quantity  int                 `bson:"quantity" json:"quantity"`
	Color     string              `bson:"color,omitempty" json:"color,omitempty"`
	Size      string              `bson:"size,omitempty" json:"size,omitempty"`
	Subtotal  float64             `bson:"subtotal" json:"subtotal"`
}

// OrderAddress is an address snapshot embedded in the order.
type OrderAddress struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Line1   string `bson:"line1" json:"line1"`
	Line2   string `bson:"line2,omitempty" json:"line2,omitempty"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string `bson:"pincode" json:"pincode"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type OrderPaymentInfo struct {
	Method        string     `bson:"method" json:"method"`
	Status        string     `bson:"status" json:"status"`
	TransactionID string     `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Amount        float64    `bson:"amount" json:"amount"`
	PaidAt        *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}

// StatusHistoryEntry is one record in the append-only audit trail.
type StatusHistoryEntry struct {
	Status    string              `bson:"status" json:"status"`
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
	Note      string              `bson:"note,omitempty" json:"note,omitempty"`
	UpdatedBy *primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID   `bson:"userId" json:"userId"`
	Items           []OrderItem          `bson:"items" json:"items"`
	Subtotal        float64              `bson:"subtotal" json:"subtotal"`
	ShippingCost    float64              `bson:"shippingCost" json:"shippingCost"`
	Tax             float64              `bson:"tax" json:"tax"`
	Discount        float64              `bson:"discount" json:"discount"`
	TotalAmount     float64              `bson:"totalAmount" json:"totalAmount"`
	CouponCode      string               `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	ShippingAddress OrderAddress         `bson:"shippingAddress" json:"shippingAddress"`
	BillingAddress  OrderAddress         `bson:"billingAddress" json:"billingAddress"`
	Payment         OrderPaymentInfo     `bson:"payment" json:"payment"`
	PaymentStatus   string               `bson:"paymentStatus" json:"paymentStatus"`
	ShippingMethod  string               `bson:"shippingMethod" json:"shippingMethod"`
	TrackingNumber  string               `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	Status          string               `bson:"status" json:"status"`
	StatusHistory   []StatusHistoryEntry `bson:"statusHistory" json:"statusHistory"`
	IsDeleted       bool                 `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt       *time.Time           `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}
