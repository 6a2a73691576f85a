package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func activeCoupon() models.Coupon {
	now := time.Now()
	return models.Coupon{
		Code:           "SAVE10",
		DiscountType:   models.CouponTypePercentage,
		DiscountValue:  10,
		MinOrderAmount: 100,
		StartDate:      now.Add(-24 * time.Hour),
		EndDate:        now.Add(24 * time.Hour),
		Status:         models.CouponStatusActive,
	}
}

func TestCouponWindowActive(t *testing.T) {
	now := time.Now()
	coupon := activeCoupon()

	if !couponWindowActive(coupon, now) {
		t.Fatal("expected coupon to be active inside its window")
	}

	expired := coupon
	expired.EndDate = now.Add(-time.Hour)
	if couponWindowActive(expired, now) {
		t.Fatal("expected expired coupon to be inactive")
	}

	future := coupon
	future.StartDate = now.Add(time.Hour)
	if couponWindowActive(future, now) {
		t.Fatal("expected not-yet-started coupon to be inactive")
	}

	deleted := coupon
	deleted.IsDeleted = true
	if couponWindowActive(deleted, now) {
		t.Fatal("expected soft-deleted coupon to be inactive")
	}

	disabled := coupon
	disabled.Status = models.CouponStatusInactive
	if couponWindowActive(disabled, now) {
		t.Fatal("expected inactive coupon to be inactive")
	}
}

func TestCouponDiscountPercentage(t *testing.T) {
	coupon := activeCoupon()

	// SAVE10 over 500 → 50; over 150 → 15; 50 is below the minimum → 0.
	if got := couponDiscount(coupon, 500); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := couponDiscount(coupon, 150); got != 15 {
		t.Fatalf("expected 15, got %v", got)
	}
	if got := couponDiscount(coupon, 50); got != 0 {
		t.Fatalf("expected 0 below minOrderAmount, got %v", got)
	}
}

func TestCouponDiscountPercentageCap(t *testing.T) {
	cap := 30.0
	coupon := activeCoupon()
	coupon.MaxDiscountAmount = &cap

	if got := couponDiscount(coupon, 10000); got != 30 {
		t.Fatalf("expected cap 30, got %v", got)
	}
	if got := couponDiscount(coupon, 200); got != 20 {
		t.Fatalf("expected 20 under the cap, got %v", got)
	}
}

func TestCouponDiscountFlat(t *testing.T) {
	coupon := activeCoupon()
	coupon.DiscountType = models.CouponTypeFlat
	coupon.DiscountValue = 75

	if got := couponDiscount(coupon, 500); got != 75 {
		t.Fatalf("expected flat 75, got %v", got)
	}

	// Flat value never exceeds what the items are worth.
	coupon.MinOrderAmount = 0
	if got := couponDiscount(coupon, 60); got != 60 {
		t.Fatalf("expected flat discount clamped to 60, got %v", got)
	}
}

func TestCouponDiscountUnknownType(t *testing.T) {
	coupon := activeCoupon()
	coupon.DiscountType = "bogus"
	if got := couponDiscount(coupon, 500); got != 0 {
		t.Fatalf("expected 0 for unknown discount type, got %v", got)
	}
}

func TestEligibleSubtotalVendorScope(t *testing.T) {
	vendorA := primitive.NewObjectID()
	vendorB := primitive.NewObjectID()

	items := []models.OrderItem{
		{VendorID: &vendorA, Price: 100, Quantity: 2},
		{VendorID: &vendorB, Price: 50, Quantity: 1},
		{Price: 25, Quantity: 4}, // no vendor on the line
	}

	eligible, full := eligibleSubtotal(items, &vendorA)
	if eligible != 200 {
		t.Fatalf("expected eligible 200 for vendor scope, got %v", eligible)
	}
	if full != 350 {
		t.Fatalf("expected full subtotal 350, got %v", full)
	}

	eligible, full = eligibleSubtotal(items, nil)
	if eligible != 350 || full != 350 {
		t.Fatalf("expected platform-wide scope to cover everything, got %v/%v", eligible, full)
	}
}
