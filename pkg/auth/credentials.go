package auth

import "errors"

// ErrMissingCredentials is returned when an operation that requires
// authentication is attempted without API credentials.
var ErrMissingCredentials = errors.New("missing API credentials")

// Credentials holds the API key material for one OKX account.
// A zero value means "no credentials" and only allows public endpoints.
// Credentials are immutable once constructed; the secret and passphrase
// must never appear in logs or error messages.
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string

	// Simulated routes requests to the exchange demo environment via the
	// x-simulated-trading header. It does not affect signing.
	Simulated bool
}

// NewCredentials creates an immutable credentials value.
func NewCredentials(apiKey, apiSecret, passphrase string, simulated bool) Credentials {
	return Credentials{
		APIKey:     apiKey,
		APISecret:  apiSecret,
		Passphrase: passphrase,
		Simulated:  simulated,
	}
}

// Empty reports whether no key material is present.
func (c Credentials) Empty() bool {
	return c.APIKey == "" && c.APISecret == "" && c.Passphrase == ""
}

// Validate checks that all three secrets required for signing are present.
func (c Credentials) Validate() error {
	if c.APIKey == "" || c.APISecret == "" || c.Passphrase == "" {
		return ErrMissingCredentials
	}
	return nil
}

// String implements fmt.Stringer without exposing secret material.
func (c Credentials) String() string {
	if c.Empty() {
		return "auth.Credentials{}"
	}
	return "auth.Credentials{APIKey:" + redact(c.APIKey) + "}"
}

func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
