package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// GetTicker retrieves the 24h market snapshot for one instrument.
//
// Example:
//
//	ticker, err := c.GetTicker(ctx, "BTC-USDT")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("last=%s vol24h=%s\n", ticker.Last, ticker.Volume24h)
func (c *Connector) GetTicker(ctx context.Context, instID string) (*Ticker, error) {
	query := url.Values{"instId": {instID}}
	data, err := c.rest.PublicRequest(ctx, http.MethodGet, "/api/v5/market/ticker", query)
	if err != nil {
		return nil, err
	}

	var tickers []Ticker
	if err := json.Unmarshal(data, &tickers); err != nil {
		return nil, fmt.Errorf("decode ticker: %w", err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no ticker data for %s", instID)
	}
	return &tickers[0], nil
}

// GetTickers retrieves market snapshots for every instrument of a type
// ("SPOT", "SWAP", "FUTURES", "OPTION").
func (c *Connector) GetTickers(ctx context.Context, instType string) ([]Ticker, error) {
	query := url.Values{"instType": {instType}}
	data, err := c.rest.PublicRequest(ctx, http.MethodGet, "/api/v5/market/tickers", query)
	if err != nil {
		return nil, err
	}

	var tickers []Ticker
	if err := json.Unmarshal(data, &tickers); err != nil {
		return nil, fmt.Errorf("decode tickers: %w", err)
	}
	return tickers, nil
}

// GetCandles retrieves up to limit recent OHLCV bars for an instrument at
// the given bar period, newest first. A limit of 0 uses the server default.
func (c *Connector) GetCandles(ctx context.Context, instID, period string, limit int) ([]Candle, error) {
	query := url.Values{
		"instId": {instID},
		"bar":    {period},
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	data, err := c.rest.PublicRequest(ctx, http.MethodGet, "/api/v5/market/candles", query)
	if err != nil {
		return nil, err
	}

	var candles []Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("decode candles: %w", err)
	}
	return candles, nil
}

// GetOrderBook retrieves a depth snapshot for an instrument. depth bounds
// the number of levels per side; 0 uses the server default of 1.
func (c *Connector) GetOrderBook(ctx context.Context, instID string, depth int) (*OrderBook, error) {
	query := url.Values{"instId": {instID}}
	if depth > 0 {
		query.Set("sz", strconv.Itoa(depth))
	}
	data, err := c.rest.PublicRequest(ctx, http.MethodGet, "/api/v5/market/books", query)
	if err != nil {
		return nil, err
	}

	var books []OrderBook
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode order book: %w", err)
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("no order book data for %s", instID)
	}
	return &books[0], nil
}
