// Package okx-connector is a Go client for the OKX v5 exchange API,
// covering signed REST access and resilient websocket streaming.
//
// Core Features:
//
//   - HMAC-SHA256 request signing with the exchange's timestamp formats
//   - Market data operations (tickers, candles, order books, instruments)
//   - Account and trade operations (balances, positions, order placement)
//   - WebSocket subscriptions for public market data and private account data
//   - Automatic connection management: heartbeat, reconnection with bounded
//     exponential backoff, and replay of subscriptions after reconnects
//
// The high level entry point is pkg/okx:
//
//	opts, err := okx.OptionsFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	connector := okx.NewConnector(opts)
//	defer connector.Close()
//
//	ticker, err := connector.GetTicker(ctx, "BTC-USDT")
//
// # Standard Errors
//
// Errors are typed so callers can branch on the failure class:
//
//   - auth.ErrMissingCredentials: a signed operation was attempted without
//     complete credentials
//
//   - rest.HTTPError: the exchange answered outside the 2xx range; carries
//     the status code and a body excerpt
//
//   - rest.ExchangeError: the exchange answered 2xx but the envelope carries
//     a non-zero business error code
//
//   - websocket.AuthError: the streaming login was rejected; Permanent()
//     reports whether retrying the same credentials is pointless
//
//   - websocket.ErrSessionClosed: an operation was attempted on a session
//     that reached its terminal state
//
//   - websocket.ErrNotConnected: a frame could not be sent because no
//     transport is up
//
// # Streaming
//
// Subscriptions are declarative. The client records what the caller wants
// and reconciles the wire with that intent on every (re)connection, so a
// subscription made before Connect, or held across a dropped transport,
// simply resumes on the same Go channel:
//
//	ticks, err := connector.SubscribeTickers("BTC-USDT")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := connector.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	for msg := range ticks {
//	    var tickers []okx.Ticker
//	    if err := json.Unmarshal(msg.Data, &tickers); err != nil {
//	        continue
//	    }
//	    fmt.Println(tickers[0].Last)
//	}
//
// The lower level packages are usable on their own: pkg/auth signs, pkg/rest
// invokes, pkg/websocket maintains sessions, pkg/config reads OKX_* settings
// from the environment.
package okxconnector
