package util

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultServerAddr      = ":3001"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour

	defaultRateLimit     = 20
	defaultRateInterval  = 1 * time.Minute
	defaultRateBlockTime = 5 * time.Minute

	defaultPaymentAPIURL  = "https://api.yookassa.ru/v3"
	defaultPaymentTimeout = 15 * time.Second

	defaultCORSOrigins = "http://localhost:3000,https://food-combo-app.vercel.app"
	defaultLogLevel    = "info"

	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	BearerPrefix       = "Bearer "
	RefreshTokenLength = 64
	JWTLeeWay          = 5 * time.Second
)

var ErrMissingEnv = errors.New("required environment variable is not set")

type Config struct {
	Server      ServerConfig
	Token       TokenConfig
	Cookie      CookieConfig
	DB          DBConfig
	Redis       RedisConfig
	RateLimiter RateLimiterConfig
	Payment     PaymentConfig
	CORS        CORSConfig
	LogLevel    string
}

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	// TrustedProxies are the peers allowed to set X-Forwarded-For. Empty means
	// the client IP is always the direct peer address.
	TrustedProxies []*net.IPNet
}

type TokenConfig struct {
	JwtSecretKey []byte
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

type CookieConfig struct {
	Secure bool
}

type DBConfig struct {
	Driver string
	DSN    string
}

type RedisConfig struct {
	Addr string
}

type RateLimiterConfig struct {
	Limit     int
	Interval  time.Duration
	BlockTime time.Duration
}

// PaymentConfig holds the YooKassa shop credentials.
type PaymentConfig struct {
	APIURL    string
	ShopID    string
	SecretKey string
	ReturnURL string
	Timeout   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LoadConfig reads .env (if present) and the process environment once.
// The result is passed explicitly to every component that needs it.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET: %w", ErrMissingEnv)
	}

	driver := getEnv("STORAGE_DRIVER", StorageDriverPostgres)
	dsn := os.Getenv("DATABASE_URL")
	switch driver {
	case StorageDriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL: %w", ErrMissingEnv)
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}

	proxies, err := parseCIDRs(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			ServerAddr:      getEnv("SERVER_ADDRESS", defaultServerAddr),
			WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
			ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
			IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
			GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
			TrustedProxies:  proxies,
		},
		Token: TokenConfig{
			JwtSecretKey: []byte(secret),
			AccessTTL:    parseDurationOrDefault("ACCESS_TOKEN_TTL", defaultAccessTTL),
			RefreshTTL:   parseDurationOrDefault("REFRESH_TOKEN_TTL", defaultRefreshTTL),
		},
		Cookie: CookieConfig{
			Secure: parseBoolOrDefault("COOKIE_SECURE", true),
		},
		DB: DBConfig{
			Driver: driver,
			DSN:    dsn,
		},
		Redis: RedisConfig{
			Addr: os.Getenv("REDIS_ADDR"),
		},
		RateLimiter: RateLimiterConfig{
			Limit:     parseIntOrDefault("RATE_LIMIT_LIMIT", defaultRateLimit),
			Interval:  parseDurationOrDefault("RATE_LIMIT_INTERVAL", defaultRateInterval),
			BlockTime: parseDurationOrDefault("RATE_LIMIT_BLOCK_TIME", defaultRateBlockTime),
		},
		Payment: PaymentConfig{
			APIURL:    strings.TrimRight(getEnv("YOOKASSA_API_URL", defaultPaymentAPIURL), "/"),
			ShopID:    os.Getenv("YOOKASSA_SHOP_ID"),
			SecretKey: os.Getenv("YOOKASSA_SECRET_KEY"),
			ReturnURL: os.Getenv("PAYMENT_RETURN_URL"),
			Timeout:   parseDurationOrDefault("PAYMENT_TIMEOUT", defaultPaymentTimeout),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)),
		},
		LogLevel: getEnv("LOG_LEVEL", defaultLogLevel),
	}, nil
}

func getEnv(varName, def string) string {
	if v, ok := os.LookupEnv(varName); ok && v != "" {
		return v
	}
	return def
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}

func parseIntOrDefault(varName string, def int) int {
	if v := os.Getenv(varName); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid %s: %s, using default %d", varName, v, def)
	}
	return def
}

func parseBoolOrDefault(varName string, def bool) bool {
	if v := os.Getenv(varName); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("Invalid %s: %s, using default %t", varName, v, def)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseCIDRs(s string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, part := range splitList(s) {
		_, ipNet, err := net.ParseCIDR(part)
		if err != nil {
			return nil, err
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}
