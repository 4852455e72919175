package config

import (
	"log"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	RawCSVPath       string
	ProcessedCSVPath string
	ModelPath        string
	FeatureSchema    string

	IsoForestTrees         int
	IsoForestContamination float64
	IsoForestSeed          int64
	ForestTrees            int
	ForestSeed             int64
	MaxConcurrency         int

	ServeAddr         string
	RequestTimeoutSec int

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MaxRetries       int

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		RawCSVPath:       getEnv("RAW_CSV_PATH", "./data/raw/hotel_reservations.csv"),
		ProcessedCSVPath: getEnv("PROCESSED_CSV_PATH", "./data/processed/hotel_reservations.csv"),
		ModelPath:        getEnv("MODEL_PATH", "./models/hotel_booking_model.gob"),
		FeatureSchema:    getEnv("FEATURE_SCHEMA", "reduced"),

		IsoForestTrees:         getEnvInt("ISOFOREST_TREES", 100),
		IsoForestContamination: getEnvFloat("ISOFOREST_CONTAMINATION", 0.075),
		IsoForestSeed:          int64(getEnvInt("ISOFOREST_SEED", 0)),
		ForestTrees:            getEnvInt("FOREST_TREES", 100),
		ForestSeed:             int64(getEnvInt("FOREST_SEED", 42)),
		MaxConcurrency:         getEnvInt("MAX_CONCURRENCY", runtime.NumCPU()),

		ServeAddr:         getEnv("SERVE_ADDR", ":3000"),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 10),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "hotel"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "hotel123"),
		PostgresDB:       getEnv("POSTGRES_DB", "hotel_reservations"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := cast.ToFloat64E(val)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := cast.ToBoolE(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
