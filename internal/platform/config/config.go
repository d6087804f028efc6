package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	JWTIssuer     string
	Redis         RedisConfig

	// Allowance amounts seed the service catalog on first start. Runtime
	// edits go through the catalog API, not the environment.
	MarriageAllowance   int64
	BirthAllowance      int64
	DeathAllowance      int64
	SocialLoanCeiling   int64
	EconomicLoanCeiling int64
}

// RedisConfig configures the catalog cache. An empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CatalogCacheTTL bounds staleness of cached fixed amounts.
var CatalogCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("MUTUELLE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development fallback - must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     envOr("JWT_ISSUER", "mutuelle"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		MarriageAllowance:   envInt64("MARRIAGE_ALLOWANCE_AMOUNT", 50000),
		BirthAllowance:      envInt64("BIRTH_ALLOWANCE_AMOUNT", 25000),
		DeathAllowance:      envInt64("DEATH_ALLOWANCE_AMOUNT", 75000),
		SocialLoanCeiling:   envInt64("SOCIAL_LOAN_CEILING", 500000),
		EconomicLoanCeiling: envInt64("ECONOMIC_LOAN_CEILING", 2000000),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
