package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	vendorIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "vendorId", Value: 1}},
		Options: options.Index().SetName("vendorId_index"),
	}

	log.Println("EnsureProductIndexes: creating vendorId_index")
	if _, err := indexes.CreateOne(ctx, vendorIndex); err != nil {
		log.Println("EnsureProductIndexes: vendorId index error:", err)
		return err
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	userIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_index"),
	}

	log.Println("EnsureOrderIndexes: creating userId_index")
	if _, err := indexes.CreateOne(ctx, userIDIndex); err != nil {
		log.Println("EnsureOrderIndexes: userId index error:", err)
		return err
	}
	return nil
}

// EnsureCouponIndexes keeps coupon codes unique at the database level so
// duplicate creation surfaces as a write conflict rather than a race.
func EnsureCouponIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("coupons").Indexes()

	codeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}},
		Options: options.Index().
			SetName("code_unique").
			SetUnique(true),
	}

	log.Println("EnsureCouponIndexes: creating code_unique index")
	if _, err := indexes.CreateOne(ctx, codeIndex); err != nil {
		log.Println("EnsureCouponIndexes: code index error:", err)
		return err
	}
	return nil
}

// EnsurePaymentIndexes indexes the gateway order id used to locate a
// payment during webhook reconciliation.
func EnsurePaymentIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("payments").Indexes()

	gatewayOrderIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "gatewayOrderId", Value: 1}},
		Options: options.Index().
			SetName("gatewayOrderId_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"gatewayOrderId": bson.M{"$type": "string"},
			}),
	}

	log.Println("EnsurePaymentIndexes: creating gatewayOrderId_unique index")
	if _, err := indexes.CreateOne(ctx, gatewayOrderIndex); err != nil {
		log.Println("EnsurePaymentIndexes: gatewayOrderId index error:", err)
		return err
	}

	orderIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetName("orderId_index"),
	}
	if _, err := indexes.CreateOne(ctx, orderIndex); err != nil {
		log.Println("EnsurePaymentIndexes: orderId index error:", err)
		return err
	}
	return nil
}

func EnsureCartIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("carts").Indexes()

	userIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().
			SetName("userId_unique").
			SetUnique(true),
	}

	log.Println("EnsureCartIndexes: creating userId_unique index")
	if _, err := indexes.CreateOne(ctx, userIndex); err != nil {
		log.Println("EnsureCartIndexes: userId index error:", err)
		return err
	}
	return nil
}
