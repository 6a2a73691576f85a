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

/* =======================
   REQUEST MODELS
======================= */

type productCreateRequest struct {
	Name         string               `json:"name" binding:"required"`
	Price        float64              `json:"price" binding:"required,gt=0"`
	SaleEnabled  bool                 `json:"saleEnabled"`
	SalePrice    float64              `json:"salePrice"`
	Category     []string             `json:"category"`
	Description  string               `json:"description"`
	Brand        string               `json:"brand"`
	Stock        int                  `json:"stock" binding:"min=0"`
	Colors       []string             `json:"colors"`
	Sizes        []string             `json:"sizes"`
	Weight       float64              `json:"weight"`
	Dimensions   *models.Dimensions   `json:"dimensions"`
	ShippingInfo *models.ShippingInfo `json:"shippingInfo"`
	VendorID     string               `json:"vendorId"`
	IsActive     *bool                `json:"isActive"`
}

type productUpdateRequest struct {
	Name         *string              `json:"name"`
	Price        *float64             `json:"price"`
	SaleEnabled  *bool                `json:"saleEnabled"`
	SalePrice    *float64             `json:"salePrice"`
	Category     *[]string            `json:"category"`
	Description  *string              `json:"description"`
	Brand        *string              `json:"brand"`
	Stock        *int                 `json:"stock"`
	Colors       *[]string            `json:"colors"`
	Sizes        *[]string            `json:"sizes"`
	Weight       *float64             `json:"weight"`
	Dimensions   *models.Dimensions   `json:"dimensions"`
	ShippingInfo *models.ShippingInfo `json:"shippingInfo"`
	IsActive     *bool                `json:"isActive"`
}

/* =======================
   HANDLERS
======================= */

// CreateProduct registers a product (admins and vendors).
func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req productCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		salePriceSet := req.SalePrice > 0
		if err := validateSaleFields(req.Price, req.SaleEnabled, req.SalePrice, salePriceSet); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		now := time.Now()
		product := models.Product{
			Name:         strings.TrimSpace(req.Name),
			Price:        req.Price,
			SaleEnabled:  req.SaleEnabled,
			SalePrice:    req.SalePrice,
			Category:     req.Category,
			Description:  strings.TrimSpace(req.Description),
			Brand:        strings.TrimSpace(req.Brand),
			Stock:        req.Stock,
			Colors:       req.Colors,
			Sizes:        req.Sizes,
			Weight:       req.Weight,
			Dimensions:   req.Dimensions,
			ShippingInfo: req.ShippingInfo,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if req.IsActive != nil {
			product.IsActive = *req.IsActive
		}

		if vendor := strings.TrimSpace(req.VendorID); vendor != "" {
			vendorID, err := primitive.ObjectIDFromHex(vendor)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid vendorId")
				return
			}
			product.VendorID = &vendorID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			product.ID = id
		}

		respondWithData(c, http.StatusCreated, "product created", product)
	}
}

// UpdateProduct applies a partial update. Sale fields go through the
// same resolution used when orders pick an effective price.
func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		sale, err := resolveSaleUpdate(existing.Price, existing.SaleEnabled, existing.SalePrice, saleUpdateInput{
			Price:       req.Price,
			SaleEnabled: req.SaleEnabled,
			SalePrice:   req.SalePrice,
		})
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		set := bson.M{
			"price":     sale.Price,
			"updatedAt": time.Now(),
		}
		if sale.SetSaleEnabled {
			set["saleEnabled"] = sale.SaleEnabled
		}
		if sale.SetSalePrice {
			set["salePrice"] = sale.SalePrice
		}
		if req.Name != nil {
			set["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Category != nil {
			set["category"] = *req.Category
		}
		if req.Description != nil {
			set["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Brand != nil {
			set["brand"] = strings.TrimSpace(*req.Brand)
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				respondWithError(c, http.StatusBadRequest, route, "stock must not be negative")
				return
			}
			set["stock"] = *req.Stock
		}
		if req.Colors != nil {
			set["colors"] = *req.Colors
		}
		if req.Sizes != nil {
			set["sizes"] = *req.Sizes
		}
		if req.Weight != nil {
			set["weight"] = *req.Weight
		}
		if req.Dimensions != nil {
			set["dimensions"] = req.Dimensions
		}
		if req.ShippingInfo != nil {
			set["shippingInfo"] = req.ShippingInfo
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}

		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"_id": productID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": set},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		respondWithData(c, http.StatusOK, "product updated", nil)
	}
}

// DeleteProduct soft-deletes a product so existing order snapshots keep
// resolving.
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"_id": productID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": now, "updatedAt": now}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		respondWithData(c, http.StatusOK, "product deleted", nil)
	}
}

// GetAllProducts lists every non-deleted product, inactive included.
func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("products").Find(ctx, bson.M{
			"isDeleted": bson.M{"$ne": true},
		}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "products could not be fetched")
			return
		}
		defer cursor.Close(ctx)

		products, err := decodeProducts(ctx, cursor)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to parse products")
			return
		}

		respondWithData(c, http.StatusOK, "products fetched", products)
	}
}
