package handlers

import (
	"context"
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

type couponRequest struct {
	Code              string   `json:"code" binding:"required"`
	DiscountType      string   `json:"discountType" binding:"required,oneof=percentage flat"`
	DiscountValue     float64  `json:"discountValue" binding:"required,gt=0"`
	MaxDiscountAmount *float64 `json:"maxDiscountAmount"`
	MinOrderAmount    float64  `json:"minOrderAmount"`
	StartDate         string   `json:"startDate" binding:"required"`
	EndDate           string   `json:"endDate" binding:"required"`
	VendorID          string   `json:"vendorId"`
	Status            string   `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r couponRequest) toModel() (models.Coupon, error) {
	start, err := time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		return models.Coupon{}, errInvalidDate
	}
	end, err := time.Parse(time.RFC3339, r.EndDate)
	if err != nil {
		return models.Coupon{}, errInvalidDate
	}
	if end.Before(start) {
		return models.Coupon{}, errDateWindow
	}

	coupon := models.Coupon{
		Code:              strings.ToUpper(strings.TrimSpace(r.Code)),
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		MaxDiscountAmount: r.MaxDiscountAmount,
		MinOrderAmount:    r.MinOrderAmount,
		StartDate:         start,
		EndDate:           end,
		Status:            r.Status,
	}
	if coupon.Status == "" {
		coupon.Status = models.CouponStatusActive
	}

	if vendor := strings.TrimSpace(r.VendorID); vendor != "" {
		vendorID, err := primitive.ObjectIDFromHex(vendor)
		if err != nil {
			return models.Coupon{}, errInvalidVendor
		}
		coupon.VendorID = &vendorID
	}
	return coupon, nil
}

var (
	errInvalidDate   = couponValidationError("startDate and endDate must be RFC3339 timestamps")
	errDateWindow    = couponValidationError("endDate must not be before startDate")
	errInvalidVendor = couponValidationError("invalid vendorId")
)

type couponValidationError string

func (e couponValidationError) Error() string { return string(e) }

// CreateCoupon registers a coupon; the unique index on code turns a
// duplicate into a 409.
func CreateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/coupons"
		defer handlePanic(c, route)

		var req couponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		coupon, err := req.toModel()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		now := time.Now()
		coupon.CreatedAt = now
		coupon.UpdatedAt = now

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").InsertOne(ctx, coupon)
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, http.StatusConflict, route, "coupon code already exists")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			coupon.ID = id
		}

		log.Println("[COUPON] [INFO] coupon created:", coupon.Code)
		respondWithData(c, http.StatusCreated, "coupon created", coupon)
	}
}

// UpdateCoupon replaces the editable fields of a coupon.
func UpdateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid coupon id")
			return
		}

		var req couponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		coupon, err := req.toModel()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		update := bson.M{"$set": bson.M{
			"code":              coupon.Code,
			"discountType":      coupon.DiscountType,
			"discountValue":     coupon.DiscountValue,
			"maxDiscountAmount": coupon.MaxDiscountAmount,
			"minOrderAmount":    coupon.MinOrderAmount,
			"startDate":         coupon.StartDate,
			"endDate":           coupon.EndDate,
			"vendorId":          coupon.VendorID,
			"status":            coupon.Status,
			"updatedAt":         time.Now(),
		}}

		res, err := db.Collection("coupons").UpdateOne(ctx, bson.M{
			"_id":       couponID,
			"isDeleted": bson.M{"$ne": true},
		}, update)
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, http.StatusConflict, route, "coupon code already exists")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		respondWithData(c, http.StatusOK, "coupon updated", nil)
	}
}

// DeleteCoupon soft-deletes a coupon.
func DeleteCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid coupon id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("coupons").UpdateOne(ctx,
			bson.M{"_id": couponID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": now, "updatedAt": now}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		respondWithData(c, http.StatusOK, "coupon deleted", nil)
	}
}

// ListCoupons returns all non-deleted coupons for admins.
func ListCoupons(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/coupons"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("coupons").Find(ctx, bson.M{
			"isDeleted": bson.M{"$ne": true},
		}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "coupons could not be fetched")
			return
		}
		defer cursor.Close(ctx)

		coupons := make([]models.Coupon, 0)
		if err := cursor.All(ctx, &coupons); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to parse coupons")
			return
		}

		respondWithData(c, http.StatusOK, "coupons fetched", coupons)
	}
}

/* =========================
   PREVIEW
========================= */

type previewCouponItem struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type previewCouponRequest struct {
	Code  string              `json:"code" binding:"required"`
	Items []previewCouponItem `json:"items" binding:"required,min=1,dive"`
}

// PreviewCoupon computes the discount a coupon would give for a cart
// without touching stock or creating anything.
func PreviewCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /coupons/preview"
		defer handlePanic(c, route)

		var req previewCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(line.ProductID))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid productId")
				return
			}

			var product models.Product
			err = db.Collection("products").FindOne(ctx, bson.M{
				"_id":       productID,
				"isDeleted": bson.M{"$ne": true},
			}).Decode(&product)
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "product not found: "+productID.Hex())
				return
			}
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			unitPrice := effectiveProductPrice(product.Price, product.SaleEnabled, product.SalePrice)
			items = append(items, models.OrderItem{
				ProductID: productID,
				VendorID:  product.VendorID,
				Price:     unitPrice,
				Quantity:  line.Quantity,
			})
		}

		discount, appliedCode := resolveCouponDiscount(ctx, db, req.Code, items)
		_, full := eligibleSubtotal(items, nil)

		respondWithData(c, http.StatusOK, "coupon preview", gin.H{
			"applied":  appliedCode != "",
			"code":     strings.ToUpper(strings.TrimSpace(req.Code)),
			"subtotal": full,
			"discount": discount,
		})
	}
}
