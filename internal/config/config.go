package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// Where the services are dialed.
	AuthAddr    string
	OrderAddr   string
	ProductAddr string

	// Where each service binds its listener.
	AuthListen    string
	OrderListen   string
	ProductListen string

	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	ServiceName  string

	JWTSecret    string
	JWTTTL       time.Duration
	PasswordMode string

	CallTimeout     time.Duration
	ConnReadTimeout time.Duration
	MaxConns        int

	LogLevel    string
	MetricsAddr string

	ProductGroup   string
	ProductWorkers int
}

func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":3000"),
		AuthAddr:        getenv("AUTH_ADDR", "127.0.0.1:4000"),
		OrderAddr:       getenv("ORDER_ADDR", "127.0.0.1:5000"),
		ProductAddr:     getenv("PRODUCT_ADDR", "127.0.0.1:6000"),
		AuthListen:      getenv("AUTH_LISTEN", ":4000"),
		OrderListen:     getenv("ORDER_LISTEN", ":5000"),
		ProductListen:   getenv("PRODUCT_LISTEN", ":6000"),
		PostgresDSN:     getenv("POSTGRES_DSN", ""),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		KafkaBrokers:    splitCSV(getenv("KAFKA_BROKERS", "")),
		ServiceName:     getenv("SERVICE_NAME", "fabric"),
		JWTSecret:       getenv("JWT_SECRET", "supersecret"),
		JWTTTL:          getduration("JWT_TTL", time.Hour),
		PasswordMode:    getenv("AUTH_PASSWORD_MODE", "plain"),
		CallTimeout:     getduration("CALL_TIMEOUT", 4*time.Second),
		ConnReadTimeout: getduration("CONN_READ_TIMEOUT", 30*time.Second),
		MaxConns:        getint("MAX_CONNS", 1024),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		MetricsAddr:     getenv("METRICS_ADDR", ""),
		ProductGroup:    getenv("PRODUCT_GROUP", "product-stock"),
		ProductWorkers:  getint("PRODUCT_WORKERS", 4),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	i, err := strconv.Atoi(os.Getenv(k))
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func getduration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
