package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/metrics"
	"backend/internal/middleware"
	"backend/internal/payments"
	"backend/internal/shipping"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureCouponIndexes(db); err != nil {
		log.Printf("coupon index warning: %v", err)
	}
	if err := database.EnsurePaymentIndexes(db); err != nil {
		log.Printf("payment index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}

	carrier := shipping.NewClient(
		config.AppEnv.CarrierAPIURL,
		config.AppEnv.CarrierToken,
		config.AppEnv.PickupPincode,
		config.AppEnv.CarrierTimeout,
	)
	razorpay := payments.NewRazorpayClient(
		config.AppEnv.RazorpayKeyID,
		config.AppEnv.RazorpayKeySecret,
		config.AppEnv.RazorpayWebhookSecret,
		config.AppEnv.GatewayTimeout,
	)
	cashfree := payments.NewCashfreeClient(
		config.AppEnv.CashfreeAppID,
		config.AppEnv.CashfreeSecretKey,
		config.AppEnv.CashfreeAPIURL,
		config.AppEnv.GatewayTimeout,
	)

	serverMetrics := metrics.NewServerMetrics()

	r := gin.Default()
	r.Use(cors.Default())
	r.Use(serverMetrics.Middleware())

	r.GET("/metrics", serverMetrics.Handler())

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))
	r.POST("/coupons/preview", handlers.PreviewCoupon(db))

	// Gateway callbacks authenticate via HMAC signatures, not JWTs.
	r.POST("/webhooks/razorpay", handlers.RazorpayWebhook(db, razorpay))
	r.POST("/webhooks/cashfree", handlers.CashfreeWebhook(db, cashfree))
	r.GET("/payments/cashfree/return", handlers.CashfreeReturn(db, cashfree))

	user := r.Group("/")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.POST("/orders", handlers.CreateOrder(db, carrier))
		user.GET("/orders", handlers.GetMyOrders(db))
		user.GET("/orders/:id", handlers.GetOrder(db))
		user.POST("/orders/:id/cancel", handlers.CancelOrder(db))
		user.POST("/orders/:id/return", handlers.ReturnOrder(db))

		user.POST("/payments/initiate", handlers.InitiatePayment(db, razorpay, cashfree))
		user.POST("/payments/razorpay/verify", handlers.VerifyRazorpayPayment(db, razorpay))

		user.GET("/cart", handlers.GetCart(db))
		user.PUT("/cart", handlers.PutCart(db))
		user.DELETE("/cart", handlers.ClearCart(db))
	}

	staff := r.Group("/admin/api")
	staff.Use(middleware.StaffAuth(config.AppEnv.JWTSecret))
	{
		staff.GET("/products", handlers.GetAllProducts(db))
		staff.POST("/products", handlers.CreateProduct(db))
		staff.PUT("/products/:id", handlers.UpdateProduct(db))
		staff.DELETE("/products/:id", handlers.DeleteProduct(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/orders", handlers.ListOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))

		admin.GET("/coupons", handlers.ListCoupons(db))
		admin.POST("/coupons", handlers.CreateCoupon(db))
		admin.PUT("/coupons/:id", handlers.UpdateCoupon(db))
		admin.DELETE("/coupons/:id", handlers.DeleteCoupon(db))

		admin.POST("/payments/:id/refunds", handlers.RecordRefund(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
