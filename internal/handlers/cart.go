package handlers

import (
	"context"
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

// GetCart returns the caller's cart, empty if none exists yet.
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			respondWithData(c, http.StatusOK, "cart fetched", models.Cart{
				UserID: userID,
				Items:  []models.CartItem{},
			})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondWithData(c, http.StatusOK, "cart fetched", cart)
	}
}

type putCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type putCartRequest struct {
	Items []putCartItemRequest `json:"items" binding:"required,dive"`
}

// PutCart replaces the caller's cart wholesale.
func PutCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req putCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		items := make([]models.CartItem, 0, len(req.Items))
		for _, line := range req.Items {
			productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(line.ProductID))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid productId")
				return
			}
			items = append(items, models.CartItem{
				ProductID: productID,
				Quantity:  line.Quantity,
				Color:     strings.TrimSpace(line.Color),
				Size:      strings.TrimSpace(line.Size),
			})
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err := db.Collection("carts").UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now()}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondWithData(c, http.StatusOK, "cart updated", nil)
	}
}

// ClearCart empties the caller's cart.
func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := clearUserCart(ctx, db, userID); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondWithData(c, http.StatusOK, "cart cleared", nil)
	}
}
