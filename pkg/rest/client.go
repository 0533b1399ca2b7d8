// Package rest issues signed and public HTTP requests against the OKX REST
// API. The Invoker is stateless beyond the immutable credentials and base URL
// it was built with, so a single instance is safe for concurrent use from any
// number of goroutines.
//
// The layer deliberately performs no retries: transient failures surface to
// the caller as errors, and retry policy stays a caller decision.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/veiloq/okx-connector/pkg/auth"
	"github.com/veiloq/okx-connector/pkg/logging"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://www.okx.com"

const defaultTimeout = 10 * time.Second

// Config holds configuration for an Invoker.
type Config struct {
	// BaseURL of the REST API, without a trailing slash.
	BaseURL string

	// Credentials sign private requests. May be empty for a public-only
	// invoker; SignedRequest then fails with auth.ErrMissingCredentials.
	Credentials auth.Credentials

	// Timeout applies to each request end to end.
	Timeout time.Duration

	// Optional logger
	Logger logging.Logger
}

// Invoker builds, signs and issues REST requests.
type Invoker struct {
	baseURL    string
	creds      auth.Credentials
	httpClient *http.Client
	logger     logging.Logger
}

// NewInvoker creates an Invoker with the given configuration.
func NewInvoker(cfg Config) *Invoker {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewLogger()
	}
	return &Invoker{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		creds:      cfg.Credentials,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
	}
}

// envelope is the uniform OKX response wrapper.
type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// SignedRequest issues an authenticated request and returns the data portion
// of the response envelope. body is marshaled to JSON when non-nil. A non-2xx
// status yields *HTTPError; an envelope code other than "0" yields
// *ExchangeError.
func (inv *Invoker) SignedRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	if err := inv.creds.Validate(); err != nil {
		return nil, err
	}
	return inv.do(ctx, method, path, query, body, true)
}

// PublicRequest issues an unauthenticated request and returns the data
// portion of the response envelope.
func (inv *Invoker) PublicRequest(ctx context.Context, method, path string, query url.Values) (json.RawMessage, error) {
	return inv.do(ctx, method, path, query, nil, false)
}

func (inv *Invoker) do(ctx context.Context, method, path string, query url.Values, body interface{}, signed bool) (json.RawMessage, error) {
	method = strings.ToUpper(method)

	requestPath := path
	if len(query) > 0 {
		requestPath += "?" + query.Encode()
	}

	var bodyStr string
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		bodyStr = string(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, inv.baseURL+requestPath, bytes.NewReader([]byte(bodyStr)))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if signed {
		// The timestamp must be fresh per attempt; the server rejects
		// requests outside its skew window.
		timestamp := auth.Timestamp()
		signature := auth.Sign(inv.creds.APISecret, timestamp, method, requestPath, bodyStr)

		req.Header.Set("OK-ACCESS-KEY", inv.creds.APIKey)
		req.Header.Set("OK-ACCESS-SIGN", signature)
		req.Header.Set("OK-ACCESS-TIMESTAMP", timestamp)
		req.Header.Set("OK-ACCESS-PASSPHRASE", inv.creds.Passphrase)
	}
	if inv.creds.Simulated {
		req.Header.Set("x-simulated-trading", "1")
	}

	inv.logger.Debug("rest request",
		logging.String("method", method),
		logging.String("path", requestPath),
		logging.Bool("signed", signed),
	)

	resp, err := inv.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	if env.Code != "" && env.Code != "0" {
		return nil, &ExchangeError{Code: env.Code, Message: env.Msg}
	}
	return env.Data, nil
}
