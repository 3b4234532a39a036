package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"medgate/internal/geofence"
	"medgate/internal/principal"
)

const devSigningKey = "dev-secret-key-change-in-production"

// Server captures deployment-level configuration for the login pipeline.
// Every verification tunable lives here so no component bakes in a literal.
type Server struct {
	Addr       string
	Production bool

	JWTSigningKey string
	StageTokenTTL time.Duration
	SessionTTL    time.Duration

	BcryptCost     int
	MatchThreshold float64

	Geofence geofence.Config

	DatabaseURL string

	KafkaBrokers string
	AuditTopic   string

	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminName     string
	SeedDemoData      bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file is loaded first when present; real env vars win.
func FromEnv() Server {
	_ = godotenv.Load()

	cfg := Server{
		Addr:              envString("MEDGATE_ADDR", ":8080"),
		Production:        os.Getenv("MEDGATE_ENV") == "production",
		JWTSigningKey:     envString("JWT_SIGNING_KEY", devSigningKey),
		StageTokenTTL:     envDuration("STAGE_TOKEN_TTL", 15*time.Minute),
		SessionTTL:        envDuration("SESSION_TTL", 24*time.Hour),
		BcryptCost:        envInt("BCRYPT_COST", 10),
		MatchThreshold:    envFloat("FACE_MATCH_THRESHOLD", 0.6),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		KafkaBrokers:      os.Getenv("KAFKA_BROKERS"),
		AuditTopic:        envString("AUDIT_TOPIC", "medgate.audit"),
		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		SeedAdminName:     envString("SEED_ADMIN_NAME", "Administrator"),
		SeedDemoData:      os.Getenv("SEED_DEMO_DATA") == "true",
	}

	cfg.Geofence = geofence.Config{
		MaxDistanceMeters: envFloat("GEOFENCE_MAX_DISTANCE", 100),
	}
	if lat, ok := envFloatOK("GEOFENCE_LAT"); ok {
		if lon, ok := envFloatOK("GEOFENCE_LON"); ok {
			cfg.Geofence.Reference = &principal.GeoPoint{Latitude: lat, Longitude: lon}
		}
	}

	return cfg
}

// Validate rejects configurations that must never reach production.
// The geofence reference is deliberately not required here: the validator
// fails closed at request time when it is absent.
func (s Server) Validate() error {
	if s.Production && s.JWTSigningKey == devSigningKey {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}
	if s.StageTokenTTL <= 0 || s.SessionTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if s.MatchThreshold <= 0 {
		return fmt.Errorf("FACE_MATCH_THRESHOLD must be positive")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
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

func envFloat(key string, fallback float64) float64 {
	if f, ok := envFloatOK(key); ok {
		return f
	}
	return fallback
}

func envFloatOK(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
