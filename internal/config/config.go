package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	DatabaseURL         string
	JWTSecret           string
	JWTTTL              time.Duration
	GoogleAudience      string
	AllowOrigins        []string
	LogCollectorTCPAddr string

	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	MinIOBucket       string
	MinIOPublicURL    string
	StorageTimeout    time.Duration
	StorageRetries    int
	TourismImageMax   int64
	ImageMaxDimension int
	SweepInterval     time.Duration
	SweepGrace        time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	imageMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("TOURISM_IMAGE_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		imageMax = v
	}

	maxDimension := 0
	if v, err := strconv.Atoi(getenv("TOURISM_IMAGE_MAX_DIMENSION", "0")); err == nil && v > 0 {
		maxDimension = v
	}

	retries := 2
	if v, err := strconv.Atoi(getenv("STORAGE_RETRIES", "2")); err == nil && v >= 0 {
		retries = v
	}

	return Config{
		Port:                getenv("PORT", "8080"),
		DatabaseURL:         must("DATABASE_URL"),
		JWTSecret:           must("JWT_SECRET"),
		JWTTTL:              duration("JWT_TTL", 24*time.Hour),
		GoogleAudience:      getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:        splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogCollectorTCPAddr: getenv("LOG_COLLECTOR_TCP_ADDR", ""),
		MinIOEndpoint:       must("MINIO_ENDPOINT"),
		MinIOAccessKey:      must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:      must("MINIO_SECRET_KEY"),
		MinIOUseSSL:         getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucket:         getenv("MINIO_BUCKET_TOURISM", "tourism-image"),
		MinIOPublicURL:      getenv("MINIO_PUBLIC_URL", ""),
		StorageTimeout:      duration("STORAGE_TIMEOUT", 15*time.Second),
		StorageRetries:      retries,
		TourismImageMax:     imageMax,
		ImageMaxDimension:   maxDimension,
		SweepInterval:       duration("SWEEP_INTERVAL", 6*time.Hour),
		SweepGrace:          duration("SWEEP_GRACE", time.Hour),
	}
}

func duration(k string, d time.Duration) time.Duration {
	raw := getenv(k, "")
	if raw == "" {
		return d
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return d
	}
	return parsed
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
