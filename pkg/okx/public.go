package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// GetServerTime reads the exchange clock. Useful for checking local clock
// drift before signing requests.
func (c *Connector) GetServerTime(ctx context.Context) (time.Time, error) {
	data, err := c.rest.PublicRequest(ctx, http.MethodGet, "/api/v5/public/time", nil)
	if err != nil {
		return time.Time{}, err
	}

	var times []ServerTime
	if err := json.Unmarshal(data, &times); err != nil {
		return time.Time{}, fmt.Errorf("decode server time: %w", err)
	}
	if len(times) == 0 {
		return time.Time{}, fmt.Errorf("no server time data")
	}
	return times[0].Ts.Time(), nil
}

// GetInstruments lists tradeable instruments of a type with their trading
// rules (tick size, lot size, minimum size).
func (c *Connector) GetInstruments(ctx context.Context, instType string) ([]Instrument, error) {
	query := url.Values{"instType": {instType}}
	data, err := c.rest.PublicRequest(ctx, http.MethodGet, "/api/v5/public/instruments", query)
	if err != nil {
		return nil, err
	}

	var instruments []Instrument
	if err := json.Unmarshal(data, &instruments); err != nil {
		return nil, fmt.Errorf("decode instruments: %w", err)
	}
	return instruments, nil
}

// GetFundingRate retrieves the current funding rate for a perpetual swap.
func (c *Connector) GetFundingRate(ctx context.Context, instID string) (*FundingRate, error) {
	query := url.Values{"instId": {instID}}
	data, err := c.rest.PublicRequest(ctx, http.MethodGet, "/api/v5/public/funding-rate", query)
	if err != nil {
		return nil, err
	}

	var rates []FundingRate
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("decode funding rate: %w", err)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no funding rate data for %s", instID)
	}
	return &rates[0], nil
}

// GetSystemStatus lists scheduled and ongoing platform maintenance windows.
func (c *Connector) GetSystemStatus(ctx context.Context) ([]SystemStatus, error) {
	data, err := c.rest.PublicRequest(ctx, http.MethodGet, "/api/v5/system/status", nil)
	if err != nil {
		return nil, err
	}

	var statuses []SystemStatus
	if err := json.Unmarshal(data, &statuses); err != nil {
		return nil, fmt.Errorf("decode system status: %w", err)
	}
	return statuses, nil
}
