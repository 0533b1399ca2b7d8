package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GetBalance retrieves account balances. With currencies given, only those
// are returned; otherwise every non-zero balance is included.
//
// Example:
//
//	balance, err := c.GetBalance(ctx, "BTC", "USDT")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, d := range balance.Details {
//		fmt.Printf("%s available=%s\n", d.Ccy, d.AvailBal)
//	}
func (c *Connector) GetBalance(ctx context.Context, currencies ...string) (*Balance, error) {
	var query url.Values
	if len(currencies) > 0 {
		query = url.Values{"ccy": {strings.Join(currencies, ",")}}
	}
	data, err := c.rest.SignedRequest(ctx, http.MethodGet, "/api/v5/account/balance", query, nil)
	if err != nil {
		return nil, err
	}

	var balances []Balance
	if err := json.Unmarshal(data, &balances); err != nil {
		return nil, fmt.Errorf("decode balance: %w", err)
	}
	if len(balances) == 0 {
		return nil, fmt.Errorf("no balance data")
	}
	return &balances[0], nil
}

// GetPositions retrieves open positions, optionally filtered by instrument
// type ("SWAP", "FUTURES", "MARGIN", "OPTION"); empty means all.
func (c *Connector) GetPositions(ctx context.Context, instType string) ([]Position, error) {
	var query url.Values
	if instType != "" {
		query = url.Values{"instType": {instType}}
	}
	data, err := c.rest.SignedRequest(ctx, http.MethodGet, "/api/v5/account/positions", query, nil)
	if err != nil {
		return nil, err
	}

	var positions []Position
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	return positions, nil
}

// GetAccountConfig retrieves the account's trading configuration.
func (c *Connector) GetAccountConfig(ctx context.Context) (*AccountConfig, error) {
	data, err := c.rest.SignedRequest(ctx, http.MethodGet, "/api/v5/account/config", nil, nil)
	if err != nil {
		return nil, err
	}

	var configs []AccountConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("decode account config: %w", err)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no account config data")
	}
	return &configs[0], nil
}
