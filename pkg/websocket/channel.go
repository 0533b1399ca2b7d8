package websocket

import (
	"encoding/json"
	"sort"
	"strings"
)

// Channel identifies one logical subscription: a named exchange data stream
// plus its instrument and any extra arguments. The triple (Name, InstID,
// Params) is the subscription identity; two Channels with the same identity
// refer to the same stream.
type Channel struct {
	Name   string
	InstID string
	Params map[string]string
}

// Constructors for the common OKX channels.

// Tickers subscribes to latest-price updates for an instrument.
func Tickers(instID string) Channel {
	return Channel{Name: "tickers", InstID: instID}
}

// Candles subscribes to candlestick updates, e.g. Candles("1m", "BTC-USDT").
func Candles(period, instID string) Channel {
	return Channel{Name: "candle" + period, InstID: instID}
}

// OrderBook subscribes to full order book updates.
func OrderBook(instID string) Channel {
	return Channel{Name: "books", InstID: instID}
}

// OrderBook5 subscribes to the 5-level order book snapshot stream.
func OrderBook5(instID string) Channel {
	return Channel{Name: "books5", InstID: instID}
}

// Trades subscribes to public trade prints.
func Trades(instID string) Channel {
	return Channel{Name: "trades", InstID: instID}
}

// FundingRate subscribes to funding rate updates for a swap instrument.
func FundingRate(instID string) Channel {
	return Channel{Name: "funding-rate", InstID: instID}
}

// MarkPrice subscribes to mark price updates.
func MarkPrice(instID string) Channel {
	return Channel{Name: "mark-price", InstID: instID}
}

// IndexTickers subscribes to index ticker updates.
func IndexTickers(instID string) Channel {
	return Channel{Name: "index-tickers", InstID: instID}
}

// Orders subscribes to the private order update stream for an instrument
// type ("SPOT", "SWAP", "FUTURES", "OPTION", "ANY").
func Orders(instType string) Channel {
	return Channel{Name: "orders", Params: map[string]string{"instType": instType}}
}

// Account subscribes to the private account balance stream.
func Account() Channel {
	return Channel{Name: "account"}
}

// Positions subscribes to the private position stream for an instrument type.
func Positions(instType string) Channel {
	return Channel{Name: "positions", Params: map[string]string{"instType": instType}}
}

// BalanceAndPosition subscribes to the combined balance and position stream.
func BalanceAndPosition() Channel {
	return Channel{Name: "balance_and_position"}
}

// WithParam returns a copy of the channel with an extra argument set.
func (c Channel) WithParam(key, value string) Channel {
	params := make(map[string]string, len(c.Params)+1)
	for k, v := range c.Params {
		params[k] = v
	}
	params[key] = value
	c.Params = params
	return c
}

// Key returns the stable identity string for the subscription. Params are
// rendered in sorted order so the key is deterministic.
func (c Channel) Key() string {
	var b strings.Builder
	b.WriteString(c.Name)
	if c.InstID != "" {
		b.WriteByte(':')
		b.WriteString(c.InstID)
	}
	if len(c.Params) > 0 {
		keys := make([]string, 0, len(c.Params))
		for k := range c.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(':')
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(c.Params[k])
		}
	}
	return b.String()
}

// baseKey is the identity reduced to name and instrument. Inbound frames on
// private channels carry extra arg fields (e.g. uid) that are not part of the
// subscription request, so routing falls back to this key.
func (c Channel) baseKey() string {
	if c.InstID == "" {
		return c.Name
	}
	return c.Name + ":" + c.InstID
}

// MarshalJSON renders the wire form of a subscription arg:
// {"channel":..., "instId":..., <params>}.
func (c Channel) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(c.Params)+2)
	m["channel"] = c.Name
	if c.InstID != "" {
		m["instId"] = c.InstID
	}
	for k, v := range c.Params {
		m[k] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON parses an inbound arg object, collecting unknown string
// fields into Params.
func (c *Channel) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	c.Name = m["channel"]
	c.InstID = m["instId"]
	delete(m, "channel")
	delete(m, "instId")
	if len(m) > 0 {
		c.Params = m
	} else {
		c.Params = nil
	}
	return nil
}
