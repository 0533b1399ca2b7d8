// Package config loads connector configuration from the environment.
//
// A .env file in the working directory is honored once per process; real
// environment variables always win over .env entries. The core packages never
// read the environment themselves — they receive immutable values built here.
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/veiloq/okx-connector/pkg/auth"
)

// Default endpoint URLs for the live OKX environment.
const (
	DefaultAPIURL              = "https://www.okx.com"
	DefaultPublicWebsocketURL  = "wss://ws.okx.com:8443/ws/v5/public"
	DefaultPrivateWebsocketURL = "wss://ws.okx.com:8443/ws/v5/private"

	DefaultHTTPTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvAPIKey             = "OKX_API_KEY"
	EnvAPISecret          = "OKX_API_SECRET"
	EnvPassphrase         = "OKX_PASSPHRASE"
	EnvSimulatedTrading   = "OKX_SIMULATED_TRADING"
	EnvAPIURL             = "OKX_API_URL"
	EnvPublicWebsocketURL = "OKX_WEBSOCKET_URL"
	EnvPrivateWSURL       = "OKX_PRIVATE_WEBSOCKET_URL"
)

var loadDotenv sync.Once

// Config holds the endpoint and credential configuration for one connector.
type Config struct {
	APIURL              string
	PublicWebsocketURL  string
	PrivateWebsocketURL string
	HTTPTimeout         time.Duration

	Credentials auth.Credentials
}

// Default returns the live-environment configuration with no credentials.
func Default() Config {
	return Config{
		APIURL:              DefaultAPIURL,
		PublicWebsocketURL:  DefaultPublicWebsocketURL,
		PrivateWebsocketURL: DefaultPrivateWebsocketURL,
		HTTPTimeout:         DefaultHTTPTimeout,
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for anything unset. Credentials are optional here: a Config
// without credentials still serves public endpoints.
func FromEnv() Config {
	initEnv()

	cfg := Default()
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvPublicWebsocketURL); v != "" {
		cfg.PublicWebsocketURL = v
	}
	if v := os.Getenv(EnvPrivateWSURL); v != "" {
		cfg.PrivateWebsocketURL = v
	}
	cfg.Credentials = auth.NewCredentials(
		os.Getenv(EnvAPIKey),
		os.Getenv(EnvAPISecret),
		os.Getenv(EnvPassphrase),
		os.Getenv(EnvSimulatedTrading) == "1",
	)
	return cfg
}

// CredentialsFromEnv reads required API credentials from the environment.
// Unlike FromEnv it fails when any of the three secrets is missing.
func CredentialsFromEnv() (auth.Credentials, error) {
	initEnv()

	for _, key := range []string{EnvAPIKey, EnvAPISecret, EnvPassphrase} {
		if os.Getenv(key) == "" {
			return auth.Credentials{}, fmt.Errorf("%w: %s not set", auth.ErrMissingCredentials, key)
		}
	}
	return auth.NewCredentials(
		os.Getenv(EnvAPIKey),
		os.Getenv(EnvAPISecret),
		os.Getenv(EnvPassphrase),
		os.Getenv(EnvSimulatedTrading) == "1",
	), nil
}

func initEnv() {
	loadDotenv.Do(func() {
		// Missing .env is fine; the process environment is authoritative.
		_ = godotenv.Load()
	})
}
