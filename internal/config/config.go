package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
)

// Defaults for everything except the API key, which must be provided
// explicitly.
const (
	DefaultAPIURL   = "https://predict.ultralytics.com"
	DefaultModelURL = "https://hub.ultralytics.com/models/eAjS72HEB8er9T7UWut0"
	DefaultHTTPAddr = ":8080"
)

// ErrMissingAPIKey indicates that ULTRALYTICS_API_KEY was not set. The key
// deliberately has no built-in fallback.
var ErrMissingAPIKey = errors.New("ULTRALYTICS_API_KEY is not set; export it before starting the server")

// Config holds all runtime settings for the service.
type Config struct {
	APIKey        string
	APIURL        string
	ModelURL      string
	HTTPAddr      string
	ConsentSecret string
}

// Load reads configuration from the environment. It fails when the API key
// is absent so that misconfiguration is caught at startup rather than on the
// first upload.
func Load() (*Config, error) {
	apiKey := os.Getenv("ULTRALYTICS_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	secret := os.Getenv("CONSENT_SECRET")
	if secret == "" {
		// Consent tokens only need to outlive a browser session, so a
		// per-boot random secret is an acceptable default.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(buf)
	}

	return &Config{
		APIKey:        apiKey,
		APIURL:        getEnv("ULTRALYTICS_API_URL", DefaultAPIURL),
		ModelURL:      getEnv("ULTRALYTICS_MODEL_URL", DefaultModelURL),
		HTTPAddr:      getEnv("HTTP_ADDR", DefaultHTTPAddr),
		ConsentSecret: secret,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
