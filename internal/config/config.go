package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds runtime settings read from the environment.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	StoreDriver    string
	JWTSecret      string
	TokenExpiry    time.Duration
	RequestTimeout time.Duration
	CORSOrigins    []string
	LogLevel       string
	MaxUploadMB    int64

	GoogleMapsAPIKey string
	PlacesLocations  []string
	PlacesRadius     int
	PlacesCron       string
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	return &Config{
		Port:           getenv("PORT", "8080"),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "studyfindr"),
		StoreDriver:    strings.ToLower(getenv("STORE_DRIVER", "mongo")),
		JWTSecret:      getenv("JWT_SECRET", "default_secret_key"),
		TokenExpiry:    duration(getenv("TOKEN_EXPIRY", "24h"), 24*time.Hour),
		RequestTimeout: duration(getenv("REQUEST_TIMEOUT", "10s"), 10*time.Second),
		CORSOrigins:    split(getenv("CORS_ORIGINS", "http://localhost:3000"), ","),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		MaxUploadMB:    int64(atoi(getenv("MAX_UPLOAD_MB", "10"), 10)),

		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		// Gainesville: downtown, UF campus, SW, NW, east.
		PlacesLocations: split(getenv("PLACES_LOCATIONS",
			"29.6456,-82.3519;29.6785,-82.3572;29.6158,-82.3747;29.6677,-82.3365;29.6394,-82.3066"), ";"),
		PlacesRadius: atoi(getenv("PLACES_RADIUS", "5000"), 5000),
		PlacesCron:   getenv("PLACES_CRON", "@daily"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

func split(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
