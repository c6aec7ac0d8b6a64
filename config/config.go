package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every externally injected setting. The API base URL lives here
// and only here: all HTTP call sites receive it through this struct instead of
// carrying their own hard-coded host.
type Config struct {
	// Shared by client and server.
	ServerBaseURL string

	// Server side.
	Port              string
	ModelPath         string
	ModelMetadataPath string
	LogoPath          string
	UnidocLicenseKey  string

	// Email delivery.
	SenderEmail    string
	SenderPassword string
	SMTPServer     string
	SMTPPort       int
}

// Load reads the optional .env file and assembles the configuration from
// environment variables, falling back to sensible local-dev defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		ServerBaseURL:     getEnv("RETINONET_SERVER", "http://localhost:8000"),
		Port:              getEnv("PORT", "8000"),
		ModelPath:         getEnv("MODEL_PATH", "models/retinonet.onnx"),
		ModelMetadataPath: getEnv("MODEL_METADATA_PATH", "models/retinonet_metadata.json"),
		LogoPath:          os.Getenv("LOGO_PATH"),
		UnidocLicenseKey:  os.Getenv("UNIDOC_LICENSE_KEY"),
		SenderEmail:       os.Getenv("SENDER_EMAIL"),
		SenderPassword:    os.Getenv("SENDER_PASSWORD"),
		SMTPServer:        getEnv("SMTP_SERVER", "smtp.gmail.com"),
	}

	port, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		log.Printf("CONFIG WARN: invalid SMTP_PORT, falling back to 587: %v", err)
		port = 587
	}
	cfg.SMTPPort = port

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
