package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Load reads a .env file if one is present. Missing files are fine; real
// deployments set the environment directly.
func Load() {
	_ = godotenv.Load()
}

func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// AccessToken is the payment gateway credential.
func AccessToken() string {
	return os.Getenv("MERCADO_PAGO_ACCESS_TOKEN")
}

// PublicURL is the base URL the gateway redirects the shopper back to.
func PublicURL() string {
	return Getenv("PUBLIC_URL", "http://localhost:8082")
}

func GatewayBaseURL() string {
	return Getenv("GATEWAY_BASE_URL", "https://api.mercadopago.com")
}

func RedisAddr() string {
	return Getenv("REDIS_ADDR", "localhost:6379")
}

func OrdersDir() string {
	return Getenv("ORDERS_DIR", "orders")
}

func JWTSecret() string {
	return Getenv("JWT_SECRET", "secret")
}
