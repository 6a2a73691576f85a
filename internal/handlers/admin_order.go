package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// ListOrders returns all orders for admins, optionally filtered by
// lifecycle status.
func ListOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		filter := bson.M{"isDeleted": bson.M{"$ne": true}}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "orders could not be counted")
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "orders could not be fetched")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to parse orders")
			return
		}

		respondWithData(c, http.StatusOK, "orders fetched", gin.H{
			"orders": orders,
			"total":  total,
			"page":   page,
			"limit":  limit,
		})
	}
}

type updateOrderStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=pending shipped delivered cancelled returned"`
	TrackingNumber string `json:"trackingNumber"`
	Note           string `json:"note"`
}

// UpdateOrderStatus moves an order along the lifecycle (admin only).
// Cancellation through this endpoint restores stock like the user-facing
// cancel does.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		order, status, err := loadOrderForCaller(c, db)
		if err != nil {
			respondWithError(c, status, route, err.Error())
			return
		}

		if !canTransition(order.Status, req.Status) {
			respondWithError(c, http.StatusBadRequest, route,
				fmt.Sprintf("cannot move order from %q to %q", order.Status, req.Status))
			return
		}
		if order.Status == req.Status {
			// Idempotent replay, nothing to record.
			respondWithData(c, http.StatusOK, "order status unchanged", order)
			return
		}

		adminID, _ := currentUserID(c)
		note := strings.TrimSpace(req.Note)
		if note == "" {
			note = "Status updated to " + req.Status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			if err := transitionOrder(sessCtx, db, order, req.Status, note, &adminID); err != nil {
				return nil, err
			}
			if tracking := strings.TrimSpace(req.TrackingNumber); tracking != "" {
				_, err := db.Collection("orders").UpdateOne(sessCtx,
					bson.M{"_id": order.ID},
					bson.M{"$set": bson.M{"trackingNumber": tracking}},
				)
				if err != nil {
					return nil, err
				}
			}
			if req.Status == models.OrderStatusCancelled {
				return nil, restoreOrderStock(sessCtx, db, order.Items)
			}
			return nil, nil
		})
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusConflict, route, "order status changed, please retry")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] status updated:", order.ID.Hex(), order.Status, "->", req.Status)
		respondWithData(c, http.StatusOK, "order status updated", nil)
	}
}

// DeleteOrder soft-deletes an order. Orders are never physically
// removed.
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("orders").UpdateOne(ctx,
			bson.M{"_id": orderID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": now, "updatedAt": now}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		respondWithData(c, http.StatusOK, "order deleted", nil)
	}
}
