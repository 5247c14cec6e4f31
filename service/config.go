package service

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string
	DBPath      string

	Session struct {
		Secret string
	}

	Backend struct {
		URL     string
		Timeout time.Duration
	}

	GA4 struct {
		MeasurementID string
		APISecret     string
	}

	WhatsApp struct {
		Number string
	}

	Admin struct {
		Username string
		Password string
	}
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
		DBPath:      getEnv("DB_PATH", "./db/yourease.db"),
	}

	// Session
	config.Session.Secret = getEnv("SESSION_SECRET", "development-secret")

	// Backend API
	config.Backend.URL = getEnv("BACKEND_API_URL", "http://localhost:5000")
	timeout := getEnv("BACKEND_TIMEOUT_SECONDS", "10")
	if secs, err := strconv.ParseInt(timeout, 10, 64); err == nil && secs > 0 {
		config.Backend.Timeout = time.Duration(secs) * time.Second
	} else {
		config.Backend.Timeout = 10 * time.Second
	}

	// GA4 Measurement Protocol
	config.GA4.MeasurementID = getEnv("GA4_MEASUREMENT_ID", "")
	config.GA4.APISecret = getEnv("GA4_API_SECRET", "")

	// WhatsApp
	config.WhatsApp.Number = getEnv("WHATSAPP_NUMBER", "")

	// Admin
	config.Admin.Username = getEnv("ADMIN_USERNAME", "admin")
	config.Admin.Password = getEnv("ADMIN_PASSWORD", "password")

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
