package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veiloq/okx-connector/pkg/auth"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultPublicWebsocketURL, cfg.PublicWebsocketURL)
	assert.Equal(t, DefaultPrivateWebsocketURL, cfg.PrivateWebsocketURL)
	assert.True(t, cfg.Credentials.Empty())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://aws.okx.com")
	t.Setenv(EnvPublicWebsocketURL, "wss://wsaws.okx.com:8443/ws/v5/public")
	t.Setenv(EnvAPIKey, "key")
	t.Setenv(EnvAPISecret, "secret")
	t.Setenv(EnvPassphrase, "pass")
	t.Setenv(EnvSimulatedTrading, "1")

	cfg := FromEnv()
	assert.Equal(t, "https://aws.okx.com", cfg.APIURL)
	assert.Equal(t, "wss://wsaws.okx.com:8443/ws/v5/public", cfg.PublicWebsocketURL)
	assert.Equal(t, DefaultPrivateWebsocketURL, cfg.PrivateWebsocketURL)
	assert.True(t, cfg.Credentials.Simulated)
	require.NoError(t, cfg.Credentials.Validate())
}

func TestCredentialsFromEnvMissing(t *testing.T) {
	t.Setenv(EnvAPIKey, "key")
	t.Setenv(EnvAPISecret, "")
	t.Setenv(EnvPassphrase, "pass")

	_, err := CredentialsFromEnv()
	assert.ErrorIs(t, err, auth.ErrMissingCredentials)
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "key")
	t.Setenv(EnvAPISecret, "secret")
	t.Setenv(EnvPassphrase, "pass")
	t.Setenv(EnvSimulatedTrading, "0")

	creds, err := CredentialsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "key", creds.APIKey)
	assert.False(t, creds.Simulated)
}
