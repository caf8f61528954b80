package config

import (
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Tokens and sessions
	JWTSecret       string
	JWTAccessExpiry time.Duration
	SessionExpiry   time.Duration

	// Secret hashing
	BcryptCost int

	// OTP / password reset lifecycle
	OTPExpiry        time.Duration
	ResetLinkExpiry  time.Duration
	ResetOTPExpiry   time.Duration
	OTPRequestWindow time.Duration
	OTPRequestLimit  int64

	// Google Sign-In
	GoogleClientID string

	// Email (Resend)
	ResendAPIKey string
	EmailDomain  string
	AppBaseURL   string

	// Admin
	AdminToken string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "studyio_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		SessionExpiry:   parseDuration(getEnv("SESSION_EXPIRY", "720h"), 720*time.Hour),

		BcryptCost: parseInt(getEnv("BCRYPT_COST", "10"), bcrypt.DefaultCost),

		OTPExpiry:        parseDuration(getEnv("OTP_EXPIRY", "3m"), 3*time.Minute),
		ResetLinkExpiry:  parseDuration(getEnv("RESET_LINK_EXPIRY", "15m"), 15*time.Minute),
		ResetOTPExpiry:   parseDuration(getEnv("RESET_OTP_EXPIRY", "10m"), 10*time.Minute),
		OTPRequestWindow: parseDuration(getEnv("OTP_REQUEST_WINDOW", "30s"), 30*time.Second),
		OTPRequestLimit:  int64(parseInt(getEnv("OTP_REQUEST_LIMIT", "1"), 1)),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		EmailDomain:  getEnv("RESEND_DOMAIN", "@studyiovibe.com"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:3000"),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
