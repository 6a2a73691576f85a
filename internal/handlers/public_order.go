package handlers

import (
	"context"
	"errors"
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
	"backend/internal/shipping"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type orderAddressRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1" binding:"required"`
	Line2   string `json:"line2"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state"`
	Pincode string `json:"pincode" binding:"required"`
	Country string `json:"country"`
}

type createOrderRequest struct {
	Items            []createOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress  orderAddressRequest      `json:"shippingAddress" binding:"required"`
	BillingAddress   *orderAddressRequest     `json:"billingAddress"`
	PaymentMethod    string                   `json:"paymentMethod" binding:"required,oneof=cod razorpay cashfree"`
	ShippingMethod   string                   `json:"shippingMethod" binding:"omitempty,oneof=standard express"`
	CouponCode       string                   `json:"couponCode"`
	OnBehalfOfUserID string                   `json:"onBehalfOfUserId"`
}

/* =========================
   CREATE ORDER
========================= */

// CreateOrder validates the requested items against live inventory,
// decrements stock, prices the order (weight → shipping quote → coupon
// discount) and persists it. Everything that touches stock runs inside
// one mongo transaction so a failed later item rolls back earlier
// decrements.
func CreateOrder(db *mongo.Database, carrier *shipping.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		if strings.TrimSpace(req.OnBehalfOfUserID) != "" {
			if currentRole(c) != models.RoleAdmin {
				respondWithError(c, http.StatusForbidden, route, "only admins can order on behalf of a user")
				return
			}
			target, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.OnBehalfOfUserID))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid onBehalfOfUserId")
				return
			}
			userID = target
		}

		shippingMethod := req.ShippingMethod
		if shippingMethod == "" {
			shippingMethod = "standard"
		}

		requested, err := parseOrderItems(req.Items)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var order models.Order
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			items := make([]models.OrderItem, 0, len(requested))
			subtotal := 0.0
			totalWeightKg := 0.0

			for _, line := range requested {
				var product models.Product
				err := db.Collection("products").FindOne(sessCtx, bson.M{
					"_id":       line.productID,
					"isDeleted": bson.M{"$ne": true},
				}).Decode(&product)
				if err == mongo.ErrNoDocuments {
					return nil, productNotFoundError{ProductID: line.productID}
				}
				if err != nil {
					return nil, err
				}
				if !product.IsActive {
					return nil, productNotFoundError{ProductID: line.productID}
				}

				if product.Stock < line.quantity {
					return nil, outOfStockError{
						ProductID: line.productID,
						Available: product.Stock,
						Requested: line.quantity,
					}
				}

				if err := validateVariant(product, line.color, line.size); err != nil {
					return nil, err
				}

				unitPrice := effectiveProductPrice(product.Price, product.SaleEnabled, product.SalePrice)
				lineSubtotal := unitPrice * float64(line.quantity)

				items = append(items, models.OrderItem{
					ProductID: line.productID,
					VendorID:  product.VendorID,
					Name:      product.Name,
					Price:     unitPrice,
					Quantity:  line.quantity,
					Color:     line.color,
					Size:      line.size,
					Subtotal:  lineSubtotal,
				})
				subtotal += lineSubtotal
				totalWeightKg += effectiveItemWeightKg(product, line.quantity)

				// Guarded decrement: the stock check above can go stale
				// under concurrency, the filter makes the write the
				// authority.
				res, err := db.Collection("products").UpdateOne(sessCtx, bson.M{
					"_id":       line.productID,
					"isDeleted": bson.M{"$ne": true},
					"stock":     bson.M{"$gte": line.quantity},
				}, bson.M{"$inc": bson.M{"stock": -line.quantity}})
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, outOfStockError{
						ProductID: line.productID,
						Available: product.Stock,
						Requested: line.quantity,
					}
				}
			}

			shippingCost := quoteShippingCost(sessCtx, carrier, shippingQuoteInput{
				deliveryPincode: req.ShippingAddress.Pincode,
				weightKg:        totalWeightKg,
				paymentMethod:   req.PaymentMethod,
				shippingMethod:  shippingMethod,
			})

			discount, couponCode := resolveCouponDiscount(sessCtx, db, req.CouponCode, items)
			if discount > subtotal {
				discount = subtotal
			}

			now := time.Now()
			billing := req.ShippingAddress
			if req.BillingAddress != nil {
				billing = *req.BillingAddress
			}

			order = models.Order{
				UserID:          userID,
				Items:           items,
				Subtotal:        subtotal,
				ShippingCost:    shippingCost,
				Discount:        discount,
				TotalAmount:     orderTotal(subtotal, shippingCost, discount),
				CouponCode:      couponCode,
				ShippingAddress: snapshotAddress(req.ShippingAddress),
				BillingAddress:  snapshotAddress(billing),
				Payment: models.OrderPaymentInfo{
					Method: req.PaymentMethod,
					Status: models.OrderPaymentPending,
					Amount: orderTotal(subtotal, shippingCost, discount),
				},
				PaymentStatus:  models.OrderPaymentPending,
				ShippingMethod: shippingMethod,
				Status:         models.OrderStatusPending,
				StatusHistory: []models.StatusHistoryEntry{
					statusEntry(models.OrderStatusPending, "Order created", &userID),
				},
				CreatedAt: now,
				UpdatedAt: now,
			}

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				order.ID = id
			}
			return nil, nil
		})
		if err != nil {
			respondOrderBuildError(c, route, err)
			return
		}

		// Best effort: a failed cart clear must never fail the order.
		if err := clearUserCart(ctx, db, userID); err != nil {
			log.Println("[ORDER] [WARN] cart clear failed:", err)
		}

		log.Println("[ORDER] [INFO] order created:", order.ID.Hex(), "user:", userID.Hex())
		respondWithData(c, http.StatusCreated, "order created", order)
	}
}

type parsedOrderItem struct {
	productID primitive.ObjectID
	quantity  int
	color     string
	size      string
}

func parseOrderItems(items []createOrderItemRequest) ([]parsedOrderItem, error) {
	parsed := make([]parsedOrderItem, 0, len(items))
	for _, item := range items {
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, errors.New("invalid productId")
		}
		if item.Quantity <= 0 {
			return nil, errors.New("quantity must be greater than zero")
		}
		parsed = append(parsed, parsedOrderItem{
			productID: productID,
			quantity:  item.Quantity,
			color:     strings.TrimSpace(item.Color),
			size:      strings.TrimSpace(item.Size),
		})
	}
	return parsed, nil
}

func validateVariant(product models.Product, color, size string) error {
	if color != "" && !containsFold(product.Colors, color) {
		return invalidVariantError{Field: "color", Value: color}
	}
	if size != "" && !containsFold(product.Sizes, size) {
		return invalidVariantError{Field: "size", Value: size}
	}
	return nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func snapshotAddress(a orderAddressRequest) models.OrderAddress {
	return models.OrderAddress{
		Name:    strings.TrimSpace(a.Name),
		Phone:   strings.TrimSpace(a.Phone),
		Line1:   strings.TrimSpace(a.Line1),
		Line2:   strings.TrimSpace(a.Line2),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Pincode: strings.TrimSpace(a.Pincode),
		Country: strings.TrimSpace(a.Country),
	}
}

type shippingQuoteInput struct {
	deliveryPincode string
	weightKg        float64
	paymentMethod   string
	shippingMethod  string
}

// quoteShippingCost asks the carrier for an estimate and falls back to
// the flat fee on any failure. Quote problems are logged, never
// propagated: shipping pricing must not block checkout.
func quoteShippingCost(ctx context.Context, carrier *shipping.Client, in shippingQuoteInput) float64 {
	if carrier == nil || !carrier.Configured() {
		log.Println("[ORDER] [WARN] carrier not configured, using flat shipping fee")
		return flatShippingFee(in.shippingMethod)
	}

	paymentMode := shipping.PaymentModePrepaid
	if in.paymentMethod == "cod" {
		paymentMode = shipping.PaymentModeCOD
	}

	fee, err := carrier.Quote(ctx, shipping.QuoteRequest{
		DeliveryPincode: in.deliveryPincode,
		WeightGrams:     chargeableWeightGrams(in.weightKg),
		PaymentMode:     paymentMode,
	})
	if err != nil {
		log.Println("[ORDER] [WARN] shipping quote failed, using flat fee:", err)
		return flatShippingFee(in.shippingMethod)
	}
	return fee
}

// resolveCouponDiscount looks up the coupon and computes the discount
// over the vendor-scoped eligible subtotal. A missing or inactive
// coupon is not an error, it just does not apply.
func resolveCouponDiscount(ctx context.Context, db *mongo.Database, code string, items []models.OrderItem) (float64, string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, ""
	}

	var coupon models.Coupon
	err := db.Collection("coupons").FindOne(ctx, bson.M{
		"code":      code,
		"isDeleted": bson.M{"$ne": true},
	}).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		log.Println("[ORDER] [INFO] coupon not found:", code)
		return 0, ""
	}
	if err != nil {
		log.Println("[ORDER] [WARN] coupon lookup failed:", err)
		return 0, ""
	}

	if !couponWindowActive(coupon, time.Now()) {
		log.Println("[ORDER] [INFO] coupon outside active window:", code)
		return 0, ""
	}

	eligible, _ := eligibleSubtotal(items, coupon.VendorID)
	discount := couponDiscount(coupon, eligible)
	if discount <= 0 {
		return 0, ""
	}
	return discount, coupon.Code
}

func clearUserCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) error {
	_, err := db.Collection("carts").UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()}},
	)
	return err
}

func respondOrderBuildError(c *gin.Context, route string, err error) {
	var stockErr outOfStockError
	if errors.As(err, &stockErr) {
		log.Printf("[%s] returning error %d: insufficient stock", route, http.StatusBadRequest)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":    false,
			"statusCode": http.StatusBadRequest,
			"message":    "insufficient stock",
			"data": gin.H{
				"productId": stockErr.ProductID.Hex(),
				"available": stockErr.Available,
				"requested": stockErr.Requested,
			},
		})
		return
	}
	var notFoundErr productNotFoundError
	if errors.As(err, &notFoundErr) {
		respondWithError(c, http.StatusNotFound, route, fmt.Sprintf("product not found: %s", notFoundErr.ProductID.Hex()))
		return
	}
	var variantErr invalidVariantError
	if errors.As(err, &variantErr) {
		respondWithError(c, http.StatusBadRequest, route, variantErr.Error())
		return
	}
	respondWithError(c, http.StatusInternalServerError, route, "db error")
}

/* =========================
   READ
========================= */

// GetMyOrders lists the caller's orders, newest first.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

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

		cursor, err := db.Collection("orders").Find(ctx, bson.M{
			"userId":    userID,
			"isDeleted": bson.M{"$ne": true},
		}, opts)
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

		respondWithData(c, http.StatusOK, "orders fetched", orders)
	}
}

// GetOrder returns one order, visible to its owner or an admin.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		order, status, err := loadOrderForCaller(c, db)
		if err != nil {
			respondWithError(c, status, route, err.Error())
			return
		}

		respondWithData(c, http.StatusOK, "order fetched", order)
	}
}

/* =========================
   CANCEL / RETURN
========================= */

// CancelOrder cancels a pending or shipped order and restores the stock
// decremented at creation, both inside one transaction.
func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/:id/cancel"
		defer handlePanic(c, route)

		order, status, err := loadOrderForCaller(c, db)
		if err != nil {
			respondWithError(c, status, route, err.Error())
			return
		}

		if !isCancellable(order.Status) {
			respondWithError(c, http.StatusBadRequest, route,
				fmt.Sprintf("order in status %q cannot be cancelled", order.Status))
			return
		}

		userID, _ := currentUserID(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			if err := transitionOrder(sessCtx, db, order, models.OrderStatusCancelled, "Order cancelled", &userID); err != nil {
				return nil, err
			}
			return nil, restoreOrderStock(sessCtx, db, order.Items)
		})
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusConflict, route, "order status changed, please retry")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] order cancelled:", order.ID.Hex())
		respondWithData(c, http.StatusOK, "order cancelled", nil)
	}
}

// ReturnOrder marks a delivered order as returned. Any other current
// status is rejected.
func ReturnOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/:id/return"
		defer handlePanic(c, route)

		order, status, err := loadOrderForCaller(c, db)
		if err != nil {
			respondWithError(c, status, route, err.Error())
			return
		}

		if order.Status != models.OrderStatusDelivered {
			respondWithError(c, http.StatusBadRequest, route,
				fmt.Sprintf("only delivered orders can be returned, current status is %q", order.Status))
			return
		}

		userID, _ := currentUserID(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			return nil, transitionOrder(sessCtx, db, order, models.OrderStatusReturned, "Order returned", &userID)
		})
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusConflict, route, "order status changed, please retry")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] order returned:", order.ID.Hex())
		respondWithData(c, http.StatusOK, "order returned", nil)
	}
}

// loadOrderForCaller fetches the order from the :id param and enforces
// owner-or-admin visibility. Returns the HTTP status to use on error.
func loadOrderForCaller(c *gin.Context, db *mongo.Database) (models.Order, int, error) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return models.Order{}, http.StatusBadRequest, errors.New("invalid order id")
	}

	userID, ok := currentUserID(c)
	if !ok {
		return models.Order{}, http.StatusUnauthorized, errors.New("unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var order models.Order
	err = db.Collection("orders").FindOne(ctx, bson.M{
		"_id":       orderID,
		"isDeleted": bson.M{"$ne": true},
	}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, http.StatusNotFound, errors.New("order not found")
	}
	if err != nil {
		return models.Order{}, http.StatusInternalServerError, errors.New("db error")
	}

	if order.UserID != userID && currentRole(c) != models.RoleAdmin {
		return models.Order{}, http.StatusForbidden, errors.New("forbidden")
	}

	return order, 0, nil
}

/* =========================
   ERRORS
========================= */

type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "product out of stock"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}

type invalidVariantError struct {
	Field string
	Value string
}

func (e invalidVariantError) Error() string {
	return fmt.Sprintf("invalid %s %q for this product", e.Field, e.Value)
}
