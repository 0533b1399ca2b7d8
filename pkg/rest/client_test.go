package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veiloq/okx-connector/pkg/auth"
)

const testSecret = "test-secret"

func testCredentials() auth.Credentials {
	return auth.NewCredentials("test-key", testSecret, "test-pass", false)
}

func TestSignedRequestHeaders(t *testing.T) {
	var captured *http.Request
	var capturedBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(r.Context())
		b, _ := io.ReadAll(r.Body)
		capturedBody = string(b)
		w.Write([]byte(`{"code":"0","msg":"","data":[]}`))
	}))
	defer server.Close()

	inv := NewInvoker(Config{BaseURL: server.URL, Credentials: testCredentials()})

	query := url.Values{"ccy": {"BTC"}}
	_, err := inv.SignedRequest(context.Background(), http.MethodGet, "/api/v5/account/balance", query, nil)
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, "test-key", captured.Header.Get("OK-ACCESS-KEY"))
	assert.Equal(t, "test-pass", captured.Header.Get("OK-ACCESS-PASSPHRASE"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.Empty(t, captured.Header.Get("x-simulated-trading"))

	// The signature must verify against the exact timestamp header, method,
	// path+query and body that went over the wire.
	timestamp := captured.Header.Get("OK-ACCESS-TIMESTAMP")
	require.NotEmpty(t, timestamp)
	want := auth.Sign(testSecret, timestamp, http.MethodGet, "/api/v5/account/balance?ccy=BTC", capturedBody)
	assert.Equal(t, want, captured.Header.Get("OK-ACCESS-SIGN"))
}

func TestSignedRequestBodySigned(t *testing.T) {
	var sig, timestamp, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sig = r.Header.Get("OK-ACCESS-SIGN")
		timestamp = r.Header.Get("OK-ACCESS-TIMESTAMP")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{"code":"0","msg":"","data":[{"ordId":"1"}]}`))
	}))
	defer server.Close()

	inv := NewInvoker(Config{BaseURL: server.URL, Credentials: testCredentials()})

	body := map[string]string{"instId": "BTC-USDT", "side": "buy"}
	data, err := inv.SignedRequest(context.Background(), http.MethodPost, "/api/v5/trade/order", nil, body)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"ordId":"1"}]`, string(data))

	want := auth.Sign(testSecret, timestamp, http.MethodPost, "/api/v5/trade/order", gotBody)
	assert.Equal(t, want, sig)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(gotBody), &decoded))
	assert.Equal(t, "BTC-USDT", decoded["instId"])
}

func TestSimulatedTradingHeader(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("x-simulated-trading")
		w.Write([]byte(`{"code":"0","msg":"","data":[]}`))
	}))
	defer server.Close()

	creds := auth.NewCredentials("k", "s", "p", true)
	inv := NewInvoker(Config{BaseURL: server.URL, Credentials: creds})

	_, err := inv.SignedRequest(context.Background(), http.MethodGet, "/api/v5/account/balance", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", header)
}

func TestPublicRequestUnsigned(t *testing.T) {
	var captured http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Header.Clone()
		w.Write([]byte(`{"code":"0","msg":"","data":[{"ts":"1"}]}`))
	}))
	defer server.Close()

	// No credentials at all; public requests must still work.
	inv := NewInvoker(Config{BaseURL: server.URL})
	data, err := inv.PublicRequest(context.Background(), http.MethodGet, "/api/v5/public/time", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Empty(t, captured.Get("OK-ACCESS-KEY"))
	assert.Empty(t, captured.Get("OK-ACCESS-SIGN"))
}

func TestSignedRequestMissingCredentials(t *testing.T) {
	inv := NewInvoker(Config{BaseURL: "http://localhost:1"})
	_, err := inv.SignedRequest(context.Background(), http.MethodGet, "/api/v5/account/balance", nil, nil)
	assert.ErrorIs(t, err, auth.ErrMissingCredentials)
}

func TestHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":"50011","msg":"Too Many Requests"}`))
	}))
	defer server.Close()

	inv := NewInvoker(Config{BaseURL: server.URL})
	_, err := inv.PublicRequest(context.Background(), http.MethodGet, "/api/v5/market/ticker", nil)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
	assert.Contains(t, httpErr.Body, "50011")
}

func TestExchangeErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"51001","msg":"Instrument ID does not exist","data":[]}`))
	}))
	defer server.Close()

	inv := NewInvoker(Config{BaseURL: server.URL})
	_, err := inv.PublicRequest(context.Background(), http.MethodGet, "/api/v5/market/ticker", url.Values{"instId": {"NOPE"}})

	var exErr *ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "51001", exErr.Code)
	assert.Equal(t, "Instrument ID does not exist", exErr.Message)
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	inv := NewInvoker(Config{BaseURL: server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := inv.PublicRequest(ctx, http.MethodGet, "/api/v5/public/time", nil)
	assert.True(t, errors.Is(err, context.Canceled))
}
