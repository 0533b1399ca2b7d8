package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/veiloq/okx-connector/pkg/rest"
)

// newClOrdID generates a client order ID the exchange accepts: up to 32
// alphanumeric characters.
func newClOrdID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// PlaceOrder submits a new order. When req.ClOrdID is empty a unique one is
// generated, so the returned acknowledgement always carries an ID the caller
// can use to track the order.
//
// Example:
//
//	ack, err := c.PlaceOrder(ctx, okx.PlaceOrderRequest{
//		InstID:  "BTC-USDT",
//		TdMode:  okx.TdModeCash,
//		Side:    okx.SideBuy,
//		OrdType: okx.OrderTypeLimit,
//		Size:    "0.001",
//		Price:   "30000",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println("order id:", ack.OrdID)
func (c *Connector) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderAck, error) {
	if req.ClOrdID == "" {
		req.ClOrdID = newClOrdID()
	}

	data, err := c.rest.SignedRequest(ctx, http.MethodPost, "/api/v5/trade/order", nil, req)
	if err != nil {
		return nil, err
	}
	return decodeOrderAck(data)
}

// CancelOrder cancels a pending order by exchange or client order ID; one
// of the two must be set.
func (c *Connector) CancelOrder(ctx context.Context, instID, ordID, clOrdID string) (*OrderAck, error) {
	if ordID == "" && clOrdID == "" {
		return nil, fmt.Errorf("cancel order: ordId or clOrdId required")
	}

	body := struct {
		InstID  string `json:"instId"`
		OrdID   string `json:"ordId,omitempty"`
		ClOrdID string `json:"clOrdId,omitempty"`
	}{InstID: instID, OrdID: ordID, ClOrdID: clOrdID}

	data, err := c.rest.SignedRequest(ctx, http.MethodPost, "/api/v5/trade/cancel-order", nil, body)
	if err != nil {
		return nil, err
	}
	return decodeOrderAck(data)
}

// GetOrderDetails retrieves the full state of one order by exchange or
// client order ID.
func (c *Connector) GetOrderDetails(ctx context.Context, instID, ordID, clOrdID string) (*Order, error) {
	if ordID == "" && clOrdID == "" {
		return nil, fmt.Errorf("get order details: ordId or clOrdId required")
	}

	query := url.Values{"instId": {instID}}
	if ordID != "" {
		query.Set("ordId", ordID)
	} else {
		query.Set("clOrdId", clOrdID)
	}

	data, err := c.rest.SignedRequest(ctx, http.MethodGet, "/api/v5/trade/order", query, nil)
	if err != nil {
		return nil, err
	}

	var orders []Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("no order data")
	}
	return &orders[0], nil
}

// GetPendingOrders lists live and partially filled orders, optionally
// filtered by instrument type; empty means all.
func (c *Connector) GetPendingOrders(ctx context.Context, instType string) ([]Order, error) {
	var query url.Values
	if instType != "" {
		query = url.Values{"instType": {instType}}
	}

	data, err := c.rest.SignedRequest(ctx, http.MethodGet, "/api/v5/trade/orders-pending", query, nil)
	if err != nil {
		return nil, err
	}

	var orders []Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode pending orders: %w", err)
	}
	return orders, nil
}

// decodeOrderAck unwraps a trade response. The envelope can report success
// while the per-order sCode carries a rejection, so both layers are checked.
func decodeOrderAck(data json.RawMessage) (*OrderAck, error) {
	var acks []OrderAck
	if err := json.Unmarshal(data, &acks); err != nil {
		return nil, fmt.Errorf("decode order ack: %w", err)
	}
	if len(acks) == 0 {
		return nil, fmt.Errorf("no order ack data")
	}

	ack := &acks[0]
	if ack.SCode != "" && ack.SCode != "0" {
		return nil, &rest.ExchangeError{Code: ack.SCode, Message: ack.SMsg}
	}
	return ack, nil
}
