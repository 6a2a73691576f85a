package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CouponTypePercentage = "percentage"
	CouponTypeFlat       = "flat"

	CouponStatusActive   = "active"
	CouponStatusInactive = "inactive"
)

// Coupon defines a discount code. VendorID nil means platform-wide; when
// set, only line items belonging to that vendor count toward the
// eligible subtotal.
type Coupon struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Code              string              `bson:"code" json:"code"`
	DiscountType      string              `bson:"discountType" json:"discountType"`
	DiscountValue     float64             `bson:"discountValue" json:"discountValue"`
	MaxDiscountAmount *float64            `bson:"maxDiscountAmount,omitempty" json:"maxDiscountAmount,omitempty"`
	MinOrderAmount    float64             `bson:"minOrderAmount" json:"minOrderAmount"`
	StartDate         time.Time           `bson:"startDate" json:"startDate"`
	EndDate           time.Time           `bson:"endDate" json:"endDate"`
	VendorID          *primitive.ObjectID `bson:"vendorId,omitempty" json:"vendorId,omitempty"`
	Status            string              `bson:"status" json:"status"`
	IsDeleted         bool                `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt         *time.Time          `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}
