package handlers

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

// couponWindowActive reports whether the coupon can be applied right
// now. An inactive or deleted coupon simply yields no discount, it is
// not an error.
func couponWindowActive(coupon models.Coupon, now time.Time) bool {
	if coupon.IsDeleted || coupon.Status != models.CouponStatusActive {
		return false
	}
	if now.Before(coupon.StartDate) || now.After(coupon.EndDate) {
		return false
	}
	return true
}

// eligibleSubtotal sums price×quantity for the items the coupon's vendor
// scope covers, and the full subtotal alongside it. A nil scope means
// platform-wide: every item counts.
func eligibleSubtotal(items []models.OrderItem, vendorScope *primitive.ObjectID) (eligible float64, full float64) {
	for _, item := range items {
		line := item.Price * float64(item.Quantity)
		full += line
		if vendorScope == nil {
			eligible += line
			continue
		}
		if item.VendorID != nil && *item.VendorID == *vendorScope {
			eligible += line
		}
	}
	return eligible, full
}

// couponDiscount computes the discount amount for an eligible subtotal.
// Below the minimum order amount the coupon silently does not apply.
func couponDiscount(coupon models.Coupon, eligible float64) float64 {
	if eligible <= 0 || eligible < coupon.MinOrderAmount {
		return 0
	}

	var amount float64
	switch coupon.DiscountType {
	case models.CouponTypePercentage:
		amount = eligible * coupon.DiscountValue / 100
		if coupon.MaxDiscountAmount != nil && amount > *coupon.MaxDiscountAmount {
			amount = *coupon.MaxDiscountAmount
		}
	case models.CouponTypeFlat:
		amount = coupon.DiscountValue
		if amount > eligible {
			amount = eligible
		}
	default:
		return 0
	}

	if amount < 0 {
		return 0
	}
	return amount
}
