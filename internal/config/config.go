package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI  string
	DBName    string
	JWTSecret string

	// Carrier (shipping quote) integration. Empty values mean the
	// integration is unconfigured and order creation uses the flat fee.
	CarrierAPIURL  string
	CarrierToken   string
	PickupPincode  string
	CarrierTimeout time.Duration

	// Razorpay
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	// Cashfree
	CashfreeAppID     string
	CashfreeSecretKey string
	CashfreeAPIURL    string

	GatewayTimeout time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:  getEnvOrDefault("MONGO_URI", ""),
		DBName:    getEnvOrDefault("DB_NAME", "marketplace"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),

		CarrierAPIURL:  getEnvOrDefault("CARRIER_API_URL", ""),
		CarrierToken:   getEnvOrDefault("CARRIER_API_TOKEN", ""),
		PickupPincode:  getEnvOrDefault("PICKUP_PINCODE", ""),
		CarrierTimeout: getDurationEnv("CARRIER_TIMEOUT_SECONDS", 8, time.Second),

		RazorpayKeyID:         getEnvOrDefault("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:     getEnvOrDefault("RAZORPAY_KEY_SECRET", ""),
		RazorpayWebhookSecret: getEnvOrDefault("RAZORPAY_WEBHOOK_SECRET", ""),

		CashfreeAppID:     getEnvOrDefault("CASHFREE_APP_ID", ""),
		CashfreeSecretKey: getEnvOrDefault("CASHFREE_SECRET_KEY", ""),
		CashfreeAPIURL:    getEnvOrDefault("CASHFREE_API_URL", "https://sandbox.cashfree.com"),

		GatewayTimeout: getDurationEnv("GATEWAY_TIMEOUT_SECONDS", 10, time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
