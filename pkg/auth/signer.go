// Package auth implements OKX request signing: base64-encoded HMAC-SHA256
// over the prehash string timestamp + method + path + body.
//
// All functions are pure and safe for concurrent use; the package keeps no
// state. Timestamps must be generated fresh per request because the exchange
// rejects requests whose timestamp drifts more than a small skew window from
// server time.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"
)

// LoginPath is the fixed path signed for websocket authentication.
// The login prehash is timestamp + "GET" + LoginPath with an empty body.
const LoginPath = "/users/self/verify"

// timestampLayout renders millisecond-precision ISO-8601 in UTC,
// e.g. "2020-12-08T09:08:57.715Z", as required for REST signing.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Sign computes the base64-encoded HMAC-SHA256 signature over
// timestamp + method + path + body. The path must include the query string
// for REST requests; body is the empty string when there is none.
func Sign(secret, timestamp, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(method))
	mac.Write([]byte(path))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Timestamp returns the current UTC time in the ISO-8601 millisecond format
// used for REST signing and the OK-ACCESS-TIMESTAMP header.
func Timestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

// LoginTimestamp returns the current Unix time in seconds as a decimal
// string. Websocket login uses this format instead of ISO-8601.
func LoginTimestamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// LoginSignature signs the fixed websocket login prehash for the given
// timestamp.
func LoginSignature(secret, timestamp string) string {
	return Sign(secret, timestamp, "GET", LoginPath, "")
}
