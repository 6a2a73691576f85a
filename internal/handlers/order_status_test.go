package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestCanTransitionLifecycle(t *testing.T) {
	tests := []struct {
		current string
		target  string
		want    bool
	}{
		{models.OrderStatusPending, models.OrderStatusShipped, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusPending, models.OrderStatusDelivered, false},
		{models.OrderStatusPending, models.OrderStatusReturned, false},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{models.OrderStatusShipped, models.OrderStatusCancelled, true},
		{models.OrderStatusShipped, models.OrderStatusReturned, false},
		{models.OrderStatusDelivered, models.OrderStatusReturned, true},
		{models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{models.OrderStatusCancelled, models.OrderStatusShipped, false},
		{models.OrderStatusReturned, models.OrderStatusPending, false},
		// Re-applying the same status is an idempotent no-op.
		{models.OrderStatusShipped, models.OrderStatusShipped, true},
		{models.OrderStatusCancelled, models.OrderStatusCancelled, true},
	}

	for _, tc := range tests {
		if got := canTransition(tc.current, tc.target); got != tc.want {
			t.Errorf("canTransition(%s, %s) = %v, want %v", tc.current, tc.target, got, tc.want)
		}
	}
}

func TestIsCancellable(t *testing.T) {
	cancellable := []string{models.OrderStatusPending, models.OrderStatusShipped}
	for _, status := range cancellable {
		if !isCancellable(status) {
			t.Errorf("expected %s to be cancellable", status)
		}
	}

	blocked := []string{models.OrderStatusDelivered, models.OrderStatusCancelled, models.OrderStatusReturned}
	for _, status := range blocked {
		if isCancellable(status) {
			t.Errorf("expected %s to not be cancellable", status)
		}
	}
}

func TestOrderAcceptsPayment(t *testing.T) {
	payable := []string{models.OrderStatusPending, models.OrderStatusShipped, models.OrderStatusDelivered}
	for _, status := range payable {
		if !orderAcceptsPayment(status) {
			t.Errorf("expected %s order to accept payment", status)
		}
	}

	dead := []string{models.OrderStatusCancelled, models.OrderStatusReturned}
	for _, status := range dead {
		if orderAcceptsPayment(status) {
			t.Errorf("expected %s order to reject payment", status)
		}
	}
}

func TestStockRestoreMatchesDecrement(t *testing.T) {
	productA := primitive.NewObjectID()
	productB := primitive.NewObjectID()

	// Two lines of the same product in different variants decrement
	// stock twice at creation; cancellation must put back the sum.
	items := []models.OrderItem{
		{ProductID: productA, Quantity: 2, Color: "red"},
		{ProductID: productA, Quantity: 1, Color: "blue"},
		{ProductID: productB, Quantity: 4},
	}

	restore := stockRestoreQuantities(items)
	if len(restore) != 2 {
		t.Fatalf("expected 2 products to restore, got %d", len(restore))
	}
	if restore[productA] != 3 {
		t.Errorf("expected 3 units restored for merged variant lines, got %d", restore[productA])
	}
	if restore[productB] != 4 {
		t.Errorf("expected 4 units restored, got %d", restore[productB])
	}

	if len(stockRestoreQuantities(nil)) != 0 {
		t.Error("expected no restores for an empty order")
	}
}
