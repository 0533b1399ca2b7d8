// Package okx is a client for the OKX v5 API: signed REST access to
// market, account and trade endpoints, and resilient websocket streaming
// for public market data and private account data.
//
// The entry point is the Connector:
//
//	opts, err := okx.OptionsFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	c := okx.NewConnector(opts)
//	defer c.Close()
//
//	ticker, err := c.GetTicker(ctx, "BTC-USDT")
//
// Streaming subscriptions survive reconnects; the channel returned by a
// Subscribe method stays valid for the life of the connector and resumes
// delivery after transient disconnects:
//
//	ticks, err := c.SubscribeTickers("BTC-USDT")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := c.Connect(ctx); err != nil {
//		log.Fatal(err)
//	}
//	for msg := range ticks {
//		// ...
//	}
//
// Lower level building blocks live in pkg/auth (request signing), pkg/rest
// (the transport and envelope handling) and pkg/websocket (the streaming
// session state machine); they are usable on their own.
package okx
