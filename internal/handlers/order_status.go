package handlers

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// allowedTransitions drives the order lifecycle. Missing states
// (cancelled, returned) are terminal.
var allowedTransitions = map[string]map[string]bool{
	models.OrderStatusPending: {
		models.OrderStatusShipped:   true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusShipped: {
		models.OrderStatusDelivered: true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusDelivered: {
		models.OrderStatusReturned: true,
	},
}

// canTransition reports whether an order may move from current to
// target. Re-applying the current status is allowed as an idempotent
// no-op so replayed updates do not error.
func canTransition(current, target string) bool {
	if current == target {
		return true
	}
	next, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return next[target]
}

// isCancellable mirrors the cancel edge of the transition table.
func isCancellable(status string) bool {
	return canTransition(status, models.OrderStatusCancelled) && status != models.OrderStatusCancelled
}

// orderAcceptsPayment reports whether payment may still be initiated
// for an order in the given lifecycle status. Cancelled and returned
// orders are dead ends for money movement.
func orderAcceptsPayment(status string) bool {
	switch status {
	case models.OrderStatusCancelled, models.OrderStatusReturned:
		return false
	}
	return true
}

func statusEntry(status, note string, updatedBy *primitive.ObjectID) models.StatusHistoryEntry {
	return models.StatusHistoryEntry{
		Status:    status,
		Timestamp: time.Now(),
		Note:      note,
		UpdatedBy: updatedBy,
	}
}

// transitionOrder moves an order to target inside the given context,
// guarding on the current status so concurrent updates cannot skip a
// state. Returns mongo.ErrNoDocuments when the guard did not match.
func transitionOrder(ctx mongo.SessionContext, db *mongo.Database, order models.Order, target, note string, updatedBy *primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"status":    target,
			"updatedAt": time.Now(),
		},
		"$push": bson.M{
			"statusHistory": statusEntry(target, note, updatedBy),
		},
	}

	res, err := db.Collection("orders").UpdateOne(ctx, bson.M{
		"_id":       order.ID,
		"status":    order.Status,
		"isDeleted": bson.M{"$ne": true},
	}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// stockRestoreQuantities totals the per-product quantities a cancelled
// order puts back. Lines for the same product (different color/size)
// collapse into one increment, matching the sum of their decrements.
func stockRestoreQuantities(items []models.OrderItem) map[primitive.ObjectID]int {
	restore := make(map[primitive.ObjectID]int, len(items))
	for _, item := range items {
		restore[item.ProductID] += item.Quantity
	}
	return restore
}

// restoreOrderStock puts back the exact quantities decremented at order
// creation, one $inc per product within the caller's transaction.
func restoreOrderStock(ctx mongo.SessionContext, db *mongo.Database, items []models.OrderItem) error {
	for productID, quantity := range stockRestoreQuantities(items) {
		_, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"_id": productID},
			bson.M{"$inc": bson.M{"stock": quantity}},
		)
		if err != nil {
			return err
		}
	}
	return nil
}
