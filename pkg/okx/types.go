package okx

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp is a millisecond Unix epoch carried as a JSON string, the way
// the exchange encodes every timestamp field. An empty string decodes to
// the zero time.
type Timestamp time.Time

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp(time.Time{})
		return nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	*t = Timestamp(time.UnixMilli(ms).UTC())
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(strconv.FormatInt(tt.UnixMilli(), 10))
}

// Time returns the timestamp as a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Ticker is a 24h market snapshot for one instrument.
type Ticker struct {
	InstType  string          `json:"instType"`
	InstID    string          `json:"instId"`
	Last      decimal.Decimal `json:"last"`
	LastSize  string          `json:"lastSz"`
	AskPrice  string          `json:"askPx"`
	AskSize   string          `json:"askSz"`
	BidPrice  string          `json:"bidPx"`
	BidSize   string          `json:"bidSz"`
	Open24h   decimal.Decimal `json:"open24h"`
	High24h   decimal.Decimal `json:"high24h"`
	Low24h    decimal.Decimal `json:"low24h"`
	Volume24h decimal.Decimal `json:"vol24h"`
	Ts        Timestamp       `json:"ts"`
}

// Candle is one OHLCV bar. The exchange transmits candles as positional
// string arrays, so decoding is custom.
type Candle struct {
	Ts        time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	Confirmed bool
}

func (c *Candle) UnmarshalJSON(b []byte) error {
	var cols []string
	if err := json.Unmarshal(b, &cols); err != nil {
		return err
	}
	if len(cols) < 6 {
		return fmt.Errorf("candle row has %d columns, want at least 6", len(cols))
	}

	ms, err := strconv.ParseInt(cols[0], 10, 64)
	if err != nil {
		return fmt.Errorf("parse candle timestamp %q: %w", cols[0], err)
	}
	c.Ts = time.UnixMilli(ms).UTC()

	fields := []struct {
		dst *decimal.Decimal
		col int
	}{
		{&c.Open, 1}, {&c.High, 2}, {&c.Low, 3}, {&c.Close, 4}, {&c.Volume, 5},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(cols[f.col])
		if err != nil {
			return fmt.Errorf("parse candle column %d %q: %w", f.col, cols[f.col], err)
		}
		*f.dst = d
	}

	// Column 8 flags a closed bar; older rows omit it.
	if len(cols) > 8 {
		c.Confirmed = cols[8] == "1"
	} else {
		c.Confirmed = true
	}
	return nil
}

// BookLevel is one price level of an order book, transmitted as a
// positional string array.
type BookLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

func (l *BookLevel) UnmarshalJSON(b []byte) error {
	var cols []string
	if err := json.Unmarshal(b, &cols); err != nil {
		return err
	}
	if len(cols) < 2 {
		return fmt.Errorf("book level has %d columns, want at least 2", len(cols))
	}
	price, err := decimal.NewFromString(cols[0])
	if err != nil {
		return fmt.Errorf("parse book price %q: %w", cols[0], err)
	}
	size, err := decimal.NewFromString(cols[1])
	if err != nil {
		return fmt.Errorf("parse book size %q: %w", cols[1], err)
	}
	l.Price, l.Size = price, size
	return nil
}

// OrderBook is a depth snapshot for one instrument.
type OrderBook struct {
	Asks []BookLevel `json:"asks"`
	Bids []BookLevel `json:"bids"`
	Ts   Timestamp   `json:"ts"`
}

// Instrument describes a tradeable product and its trading rules.
type Instrument struct {
	InstID    string `json:"instId"`
	InstType  string `json:"instType"`
	BaseCcy   string `json:"baseCcy"`
	QuoteCcy  string `json:"quoteCcy"`
	SettleCcy string `json:"settleCcy"`
	CtVal     string `json:"ctVal"`
	TickSize  string `json:"tickSz"`
	LotSize   string `json:"lotSz"`
	MinSize   string `json:"minSz"`
	State     string `json:"state"`
}

// FundingRate is the current and predicted funding for a perpetual swap.
type FundingRate struct {
	InstID          string    `json:"instId"`
	InstType        string    `json:"instType"`
	FundingRate     string    `json:"fundingRate"`
	NextFundingRate string    `json:"nextFundingRate"`
	FundingTime     Timestamp `json:"fundingTime"`
}

// SystemStatus reports scheduled or ongoing platform maintenance.
type SystemStatus struct {
	Title       string    `json:"title"`
	State       string    `json:"state"`
	Begin       Timestamp `json:"begin"`
	End         Timestamp `json:"end"`
	ServiceType string    `json:"serviceType"`
	Href        string    `json:"href"`
}

// BalanceDetail is the per-currency slice of an account balance.
type BalanceDetail struct {
	Ccy       string `json:"ccy"`
	Equity    string `json:"eq"`
	CashBal   string `json:"cashBal"`
	AvailBal  string `json:"availBal"`
	FrozenBal string `json:"frozenBal"`
	UplValue  string `json:"upl"`
}

// Balance is the account-level balance with per-currency detail.
type Balance struct {
	TotalEquity string          `json:"totalEq"`
	IsoEquity   string          `json:"isoEq"`
	AdjEquity   string          `json:"adjEq"`
	UpdateTime  Timestamp       `json:"uTime"`
	Details     []BalanceDetail `json:"details"`
}

// Position is one open position.
type Position struct {
	InstID       string    `json:"instId"`
	InstType     string    `json:"instType"`
	PosID        string    `json:"posId"`
	PosSide      string    `json:"posSide"`
	Pos          string    `json:"pos"`
	AvgPrice     string    `json:"avgPx"`
	Upl          string    `json:"upl"`
	UplRatio     string    `json:"uplRatio"`
	Lever        string    `json:"lever"`
	LiqPrice     string    `json:"liqPx"`
	MarginMode   string    `json:"mgnMode"`
	CreatedTime  Timestamp `json:"cTime"`
	UpdatedTime  Timestamp `json:"uTime"`
}

// AccountConfig is the account's trading configuration.
type AccountConfig struct {
	UID        string `json:"uid"`
	AcctLevel  string `json:"acctLv"`
	PosMode    string `json:"posMode"`
	AutoLoan   bool   `json:"autoLoan"`
	Level      string `json:"level"`
	LevelTmp   string `json:"levelTmp"`
	KycLevel   string `json:"kycLv"`
}

// Order side, type and state values accepted and returned by the trade API.
const (
	SideBuy  = "buy"
	SideSell = "sell"

	OrderTypeMarket   = "market"
	OrderTypeLimit    = "limit"
	OrderTypePostOnly = "post_only"
	OrderTypeFok      = "fok"
	OrderTypeIoc      = "ioc"

	TdModeCash     = "cash"
	TdModeCross    = "cross"
	TdModeIsolated = "isolated"

	OrderStateLive            = "live"
	OrderStatePartiallyFilled = "partially_filled"
	OrderStateFilled          = "filled"
	OrderStateCanceled        = "canceled"
)

// PlaceOrderRequest describes a new order. InstID, TdMode, Side, OrdType
// and Size are required; ClOrdID is generated when empty.
type PlaceOrderRequest struct {
	InstID  string `json:"instId"`
	TdMode  string `json:"tdMode"`
	Side    string `json:"side"`
	OrdType string `json:"ordType"`
	Size    string `json:"sz"`
	Price   string `json:"px,omitempty"`
	PosSide string `json:"posSide,omitempty"`
	ClOrdID string `json:"clOrdId,omitempty"`
	Tag     string `json:"tag,omitempty"`
}

// OrderAck is the exchange's acceptance of a trade request. SCode and SMsg
// carry the per-order result inside an otherwise successful envelope.
type OrderAck struct {
	OrdID   string `json:"ordId"`
	ClOrdID string `json:"clOrdId"`
	Tag     string `json:"tag"`
	SCode   string `json:"sCode"`
	SMsg    string `json:"sMsg"`
}

// Order is the full state of an order as reported by the trade API.
type Order struct {
	InstID      string    `json:"instId"`
	InstType    string    `json:"instType"`
	OrdID       string    `json:"ordId"`
	ClOrdID     string    `json:"clOrdId"`
	Price       string    `json:"px"`
	Size        string    `json:"sz"`
	Side        string    `json:"side"`
	OrdType     string    `json:"ordType"`
	TdMode      string    `json:"tdMode"`
	State       string    `json:"state"`
	AvgPrice    string    `json:"avgPx"`
	AccFillSize string    `json:"accFillSz"`
	Fee         string    `json:"fee"`
	FeeCcy      string    `json:"feeCcy"`
	CreatedTime Timestamp `json:"cTime"`
	UpdatedTime Timestamp `json:"uTime"`
}

// ServerTime is the exchange's clock reading.
type ServerTime struct {
	Ts Timestamp `json:"ts"`
}
