package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignKnownVectors(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		timestamp string
		method    string
		path      string
		body      string
		want      string
	}{
		{
			name:      "get with query",
			secret:    "SECRETKEY",
			timestamp: "2020-12-08T09:08:57.715Z",
			method:    "GET",
			path:      "/api/v5/account/balance?ccy=BTC",
			want:      "6HVOqcBrGuPKxkbxKG04T4WfvQXItxv+4SyVSIJ0AfM=",
		},
		{
			name:      "post with body",
			secret:    "SECRETKEY",
			timestamp: "2020-12-08T09:08:57.715Z",
			method:    "POST",
			path:      "/api/v5/trade/order",
			body:      `{"instId":"BTC-USDT","tdMode":"cash","side":"buy","ordType":"market","sz":"1"}`,
			want:      "xjhHipFc2PyJGojrykTJuOA/pgl4VS6XbW7hDnxRanw=",
		},
		{
			name:      "empty body get",
			secret:    "22582BD0CFF14C41EDBF1AB98506286D",
			timestamp: "2020-12-08T09:08:57.715Z",
			method:    "GET",
			path:      "/api/v5/account/balance",
			want:      "AkD5YszBhggtIyjDlmTy/9PpNVntel+1Lff8wh0qpQw=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sign(tt.secret, tt.timestamp, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignDeterministic(t *testing.T) {
	a := Sign("secret", "2024-01-01T00:00:00.000Z", "GET", "/api/v5/public/time", "")
	b := Sign("secret", "2024-01-01T00:00:00.000Z", "GET", "/api/v5/public/time", "")
	assert.Equal(t, a, b)

	// Any input change must change the signature.
	assert.NotEqual(t, a, Sign("secret2", "2024-01-01T00:00:00.000Z", "GET", "/api/v5/public/time", ""))
	assert.NotEqual(t, a, Sign("secret", "2024-01-01T00:00:00.001Z", "GET", "/api/v5/public/time", ""))
	assert.NotEqual(t, a, Sign("secret", "2024-01-01T00:00:00.000Z", "POST", "/api/v5/public/time", ""))
}

func TestLoginSignature(t *testing.T) {
	// Precomputed over "1607418537" + "GET" + "/users/self/verify".
	got := LoginSignature("SECRETKEY", "1607418537")
	assert.Equal(t, "FVmLSSZkBhGDqydMhJd2vJNYnK17UCrfYPRHhXg6w9A=", got)
}

func TestTimestampFormat(t *testing.T) {
	ts := Timestamp()
	parsed, err := time.Parse("2006-01-02T15:04:05.000Z", ts)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, 5*time.Second)
}

func TestCredentials(t *testing.T) {
	c := NewCredentials("my-api-key", "my-secret", "my-pass", true)
	require.NoError(t, c.Validate())
	assert.False(t, c.Empty())

	// Stringer must never leak the secret or passphrase.
	s := c.String()
	assert.NotContains(t, s, "my-secret")
	assert.NotContains(t, s, "my-pass")

	var zero Credentials
	assert.True(t, zero.Empty())
	assert.ErrorIs(t, zero.Validate(), ErrMissingCredentials)
	assert.ErrorIs(t, NewCredentials("k", "", "p", false).Validate(), ErrMissingCredentials)
}
