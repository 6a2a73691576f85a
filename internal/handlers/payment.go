package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
	"backend/internal/payments"
)

/* =========================
   INITIATE
========================= */

type initiatePaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Gateway string `json:"gateway" binding:"required,oneof=razorpay cashfree"`
}

// InitiatePayment creates a gateway order for an existing order and
// persists the Payment record that webhooks will later reconcile.
func InitiatePayment(db *mongo.Database, rzp *payments.RazorpayClient, cf *payments.CashfreeClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/initiate"
		defer handlePanic(c, route)

		var req initiatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.OrderID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{
			"_id":       orderID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if order.UserID != userID && currentRole(c) != models.RoleAdmin {
			respondWithError(c, http.StatusForbidden, route, "forbidden")
			return
		}

		if !orderAcceptsPayment(order.Status) {
			respondWithError(c, http.StatusConflict, route,
				fmt.Sprintf("order in status %q cannot be paid", order.Status))
			return
		}

		// One live payment per order: a pending or completed attempt
		// blocks a new one, a failed attempt may be retried.
		count, err := db.Collection("payments").CountDocuments(ctx, bson.M{
			"orderId":   orderID,
			"isDeleted": bson.M{"$ne": true},
			"status":    bson.M{"$nin": []string{models.PaymentStatusFailed}},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "a payment already exists for this order")
			return
		}

		amountMinor := int64(order.TotalAmount*100 + 0.5)
		receipt := "rcpt_" + uuid.NewString()

		var gatewayOrder payments.GatewayOrder
		switch req.Gateway {
		case models.GatewayRazorpay:
			if !rzp.Configured() {
				respondWithError(c, http.StatusInternalServerError, route, "razorpay not configured")
				return
			}
			gatewayOrder, err = rzp.CreateOrder(ctx, amountMinor, "INR", receipt)
		case models.GatewayCashfree:
			if !cf.Configured() {
				respondWithError(c, http.StatusInternalServerError, route, "cashfree not configured")
				return
			}
			gatewayOrder, err = cf.CreateOrder(ctx, receipt, amountMinor, "INR", userID.Hex(), order.ShippingAddress.Phone)
		}
		if err != nil {
			log.Println("[PAYMENT] [ERROR] gateway order create failed:", err)
			respondWithError(c, http.StatusBadGateway, route, "payment gateway unavailable")
			return
		}

		now := time.Now()
		payment := models.Payment{
			OrderID:        orderID,
			UserID:         userID,
			Amount:         amountMinor,
			Currency:       "INR",
			Method:         order.Payment.Method,
			Gateway:        req.Gateway,
			GatewayOrderID: gatewayOrder.ID,
			Receipt:        receipt,
			Status:         models.PaymentStatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		res, err := db.Collection("payments").InsertOne(ctx, payment)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			payment.ID = id
		}

		log.Println("[PAYMENT] [INFO] payment initiated:", payment.ID.Hex(), "gateway order:", gatewayOrder.ID)
		respondWithData(c, http.StatusCreated, "payment initiated", gin.H{
			"payment":          payment,
			"gatewayOrderId":   gatewayOrder.ID,
			"paymentSessionId": gatewayOrder.SessionID,
		})
	}
}

/* =========================
   WEBHOOKS
========================= */

// RazorpayWebhook verifies the HMAC signature over the raw body, then
// reconciles. Unverifiable requests get a 400 with no state change;
// everything else is acknowledged so the gateway does not retry forever.
func RazorpayWebhook(db *mongo.Database, rzp *payments.RazorpayClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /webhooks/razorpay"
		defer handlePanic(c, route)

		rawBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "unreadable body")
			return
		}

		if !rzp.VerifyWebhookSignature(rawBody, c.GetHeader("X-Razorpay-Signature")) {
			respondWithError(c, http.StatusBadRequest, route, "invalid signature")
			return
		}

		event, err := payments.ParseRazorpayWebhook(rawBody)
		if errors.Is(err, payments.ErrNoOrderID) {
			// Nothing to correlate against; retrying would not help.
			log.Println("[PAYMENT] [WARN] razorpay webhook without order id, acknowledged")
			respondWithData(c, http.StatusOK, "acknowledged", nil)
			return
		}
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid payload")
			return
		}

		if err := reconcilePayment(c.Request.Context(), db, event); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "reconciliation failed")
			return
		}
		respondWithData(c, http.StatusOK, "acknowledged", nil)
	}
}

type verifyRazorpayRequest struct {
	GatewayOrderID   string `json:"razorpayOrderId" binding:"required"`
	GatewayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	Signature        string `json:"razorpaySignature" binding:"required"`
}

// VerifyRazorpayPayment handles the browser checkout callback. The
// signature over "orderId|paymentId" proves the capture happened.
func VerifyRazorpayPayment(db *mongo.Database, rzp *payments.RazorpayClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/razorpay/verify"
		defer handlePanic(c, route)

		var req verifyRazorpayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if !rzp.VerifyCheckoutSignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
			respondWithError(c, http.StatusBadRequest, route, "invalid signature")
			return
		}

		err := reconcilePayment(c.Request.Context(), db, payments.WebhookEvent{
			GatewayOrderID:   req.GatewayOrderID,
			GatewayPaymentID: req.GatewayPaymentID,
			Status:           models.PaymentStatusCompleted,
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "reconciliation failed")
			return
		}
		respondWithData(c, http.StatusOK, "payment verified", nil)
	}
}

// CashfreeWebhook verifies the base64 HMAC over timestamp + raw body,
// then reconciles.
func CashfreeWebhook(db *mongo.Database, cf *payments.CashfreeClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /webhooks/cashfree"
		defer handlePanic(c, route)

		rawBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "unreadable body")
			return
		}

		timestamp := c.GetHeader("x-webhook-timestamp")
		signature := c.GetHeader("x-webhook-signature")
		if !cf.VerifyWebhookSignature(timestamp, rawBody, signature) {
			respondWithError(c, http.StatusBadRequest, route, "invalid signature")
			return
		}

		event, err := payments.ParseCashfreeWebhook(rawBody)
		if errors.Is(err, payments.ErrNoOrderID) {
			log.Println("[PAYMENT] [WARN] cashfree webhook without order id, acknowledged")
			respondWithData(c, http.StatusOK, "acknowledged", nil)
			return
		}
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid payload")
			return
		}

		if err := reconcilePayment(c.Request.Context(), db, event); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "reconciliation failed")
			return
		}
		respondWithData(c, http.StatusOK, "acknowledged", nil)
	}
}

// CashfreeReturn handles the synchronous redirect after checkout. The
// redirect parameters are attacker-controlled, so the authoritative
// status is re-fetched from the gateway before anything is applied.
func CashfreeReturn(db *mongo.Database, cf *payments.CashfreeClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /payments/cashfree/return"
		defer handlePanic(c, route)

		gatewayOrderID := strings.TrimSpace(c.Query("order_id"))
		if gatewayOrderID == "" {
			respondWithError(c, http.StatusBadRequest, route, "order_id is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		gatewayStatus, err := cf.FetchOrderStatus(ctx, gatewayOrderID)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] cashfree status fetch failed:", err)
			respondWithError(c, http.StatusBadGateway, route, "payment gateway unavailable")
			return
		}

		err = reconcilePayment(ctx, db, payments.WebhookEvent{
			GatewayOrderID: gatewayOrderID,
			Status:         payments.MapCashfreeStatus(gatewayStatus),
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "reconciliation failed")
			return
		}

		respondWithData(c, http.StatusOK, "payment status updated", gin.H{
			"gatewayOrderId": gatewayOrderID,
			"gatewayStatus":  gatewayStatus,
		})
	}
}

/* =========================
   RECONCILE
========================= */

// reconcilePayment applies a normalized gateway event to the Payment and
// its Order. It is safe to call repeatedly with the same event: webhook
// delivery is at-least-once and may reorder. An unknown gateway order id
// is a logged no-op, not an error, to avoid retry storms.
func reconcilePayment(parent context.Context, db *mongo.Database, event payments.WebhookEvent) error {
	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	var payment models.Payment
	err := db.Collection("payments").FindOne(ctx, bson.M{
		"gatewayOrderId": event.GatewayOrderID,
		"isDeleted":      bson.M{"$ne": true},
	}).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		log.Println("[PAYMENT] [WARN] no payment for gateway order:", event.GatewayOrderID)
		return nil
	}
	if err != nil {
		return err
	}

	next, changed := payments.ApplyStatus(payment.Status, event.Status)
	if !changed {
		log.Println("[PAYMENT] [INFO] reconcile no-op for payment:", payment.ID.Hex(), "status:", payment.Status)
		return nil
	}

	now := time.Now()
	update := bson.M{
		"status":    next,
		"updatedAt": now,
	}
	if event.GatewayPaymentID != "" {
		update["gatewayPaymentId"] = event.GatewayPaymentID
	}

	// Guard on the status read above so two concurrent webhooks cannot
	// interleave their read-then-write and leave the losing status
	// behind. A missed match means another reconcile already moved the
	// payment; the replay is dropped, not errored.
	res, err := db.Collection("payments").UpdateOne(ctx,
		bson.M{"_id": payment.ID, "status": payment.Status},
		bson.M{"$set": update},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		log.Println("[PAYMENT] [INFO] concurrent reconcile already applied, skipping:", payment.ID.Hex())
		return nil
	}

	orderPaymentStatus := models.OrderPaymentFailed
	switch next {
	case models.PaymentStatusCompleted:
		orderPaymentStatus = models.OrderPaymentPaid
	case models.PaymentStatusRefunded:
		orderPaymentStatus = models.OrderPaymentRefunded
	}

	orderUpdate := bson.M{
		"paymentStatus":  orderPaymentStatus,
		"payment.status": orderPaymentStatus,
		"updatedAt":      now,
	}
	if event.GatewayPaymentID != "" {
		orderUpdate["payment.transactionId"] = event.GatewayPaymentID
	}
	if next == models.PaymentStatusCompleted {
		orderUpdate["payment.paidAt"] = now
	}

	_, err = db.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": payment.OrderID},
		bson.M{"$set": orderUpdate},
	)
	if err != nil {
		return err
	}

	if next == models.PaymentStatusCompleted {
		if err := clearUserCart(ctx, db, payment.UserID); err != nil {
			log.Println("[PAYMENT] [WARN] cart clear failed:", err)
		}
	}

	log.Println("[PAYMENT] [INFO] payment reconciled:", payment.ID.Hex(), payment.Status, "->", next)
	return nil
}

/* =========================
   REFUNDS
========================= */

type recordRefundRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// RecordRefund registers a (full or partial) refund against a completed
// payment. Refund totals may never exceed the captured amount.
func RecordRefund(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/payments/:id/refunds"
		defer handlePanic(c, route)

		paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment id")
			return
		}

		var req recordRefundRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var payment models.Payment
		err = db.Collection("payments").FindOne(ctx, bson.M{
			"_id":       paymentID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&payment)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "payment not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		nextStatus, err := payments.ApplyRefund(payment.Status, payment.Amount, payment.RefundedTotal(), req.Amount)
		if errors.Is(err, payments.ErrRefundNotAllowed) {
			respondWithError(c, http.StatusBadRequest, route,
				"refunds are only allowed for completed payments")
			return
		}
		if errors.Is(err, payments.ErrRefundExceedsCapture) {
			respondWithError(c, http.StatusBadRequest, route, "refund exceeds captured amount")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid refund amount")
			return
		}

		refund := models.Refund{
			RefundID:    "rfnd_" + uuid.NewString(),
			Amount:      req.Amount,
			Status:      models.RefundStatusProcessed,
			ProcessedAt: time.Now(),
		}

		now := time.Now()
		_, err = db.Collection("payments").UpdateOne(ctx,
			bson.M{"_id": payment.ID},
			bson.M{
				"$push": bson.M{"refunds": refund},
				"$set":  bson.M{"status": nextStatus, "updatedAt": now},
			},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if nextStatus == models.PaymentStatusRefunded {
			_, err = db.Collection("orders").UpdateOne(ctx,
				bson.M{"_id": payment.OrderID},
				bson.M{"$set": bson.M{
					"paymentStatus":  models.OrderPaymentRefunded,
					"payment.status": models.OrderPaymentRefunded,
					"updatedAt":      now,
				}},
			)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
		}

		log.Println("[PAYMENT] [INFO] refund recorded:", refund.RefundID, "payment:", payment.ID.Hex())
		respondWithData(c, http.StatusOK, "refund recorded", refund)
	}
}
