package app

import (
	"time"

	"github.com/splitcpg/splitcpg-backend/internal/platform/envutil"
)

type Config struct {
	Port            string
	AppBaseURL      string
	AllowedOrigins  string
	PlatformFeeBPS  int
	PaymentCurrency string
	ReadinessTTL    time.Duration
}

func LoadConfig() Config {
	return Config{
		Port:            envutil.String("PORT", "8080"),
		AppBaseURL:      envutil.String("APP_BASE_URL", "http://localhost:3000"),
		AllowedOrigins:  envutil.String("ALLOWED_ORIGINS", "http://localhost:3000"),
		PlatformFeeBPS:  envutil.Int("PLATFORM_FEE_BPS", 250),
		PaymentCurrency: envutil.String("PAYMENT_CURRENCY", "usd"),
		ReadinessTTL:    envutil.Duration("READINESS_CACHE_TTL", 10*time.Minute),
	}
}
