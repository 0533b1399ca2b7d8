package websocket

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veiloq/okx-connector/pkg/logging"
)

func dataFrame(c Channel, payload string) inboundFrame {
	arg := c
	return inboundFrame{Arg: &arg, Data: json.RawMessage(payload)}
}

func TestRouterDeliversToMatchingQueue(t *testing.T) {
	r := newRouter(logging.Nop())

	btc := r.open(Tickers("BTC-USDT"))
	eth := r.open(Tickers("ETH-USDT"))

	r.route(dataFrame(Tickers("BTC-USDT"), `[{"last":"50000"}]`), time.Now())

	select {
	case msg := <-btc:
		assert.Equal(t, "tickers", msg.Channel.Name)
		assert.Equal(t, "BTC-USDT", msg.Channel.InstID)
		assert.JSONEq(t, `[{"last":"50000"}]`, string(msg.Data))
	case <-time.After(time.Second):
		t.Fatal("expected delivery on BTC-USDT queue")
	}

	select {
	case msg := <-eth:
		t.Fatalf("unexpected delivery on ETH-USDT queue: %+v", msg)
	default:
	}
}

func TestRouterDropsUnroutableFrames(t *testing.T) {
	r := newRouter(logging.Nop())
	q := r.open(Tickers("BTC-USDT"))

	// No panic, no delivery.
	r.route(dataFrame(Trades("BTC-USDT"), `[]`), time.Now())

	select {
	case msg := <-q:
		t.Fatalf("unexpected delivery: %+v", msg)
	default:
	}
}

func TestRouterPreservesPerChannelOrder(t *testing.T) {
	r := newRouter(logging.Nop())
	q := r.open(Trades("BTC-USDT"))

	for i := 0; i < 10; i++ {
		r.route(dataFrame(Trades("BTC-USDT"), fmt.Sprintf(`[{"seq":"%d"}]`, i)), time.Now())
	}

	for i := 0; i < 10; i++ {
		select {
		case msg := <-q:
			assert.JSONEq(t, fmt.Sprintf(`[{"seq":"%d"}]`, i), string(msg.Data))
		case <-time.After(time.Second):
			t.Fatalf("missing message %d", i)
		}
	}
}

func TestRouterDropsWhenQueueFull(t *testing.T) {
	r := newRouter(logging.Nop())
	q := r.open(Tickers("BTC-USDT"))

	for i := 0; i < queueSize+10; i++ {
		r.route(dataFrame(Tickers("BTC-USDT"), `[{}]`), time.Now())
	}

	// The queue holds exactly its capacity; the overflow was discarded
	// without blocking the caller.
	assert.Len(t, q, queueSize)
}

func TestRouterMatchesPrivatePushWithExtraArgFields(t *testing.T) {
	r := newRouter(logging.Nop())
	q := r.open(Orders("SWAP"))

	// Private pushes echo the arg with fields the client never sent,
	// such as the account uid. Routing falls back to channel+instId.
	arg := Orders("SWAP")
	arg.Params = map[string]string{"instType": "SWAP", "uid": "77982378738415879"}
	r.route(inboundFrame{Arg: &arg, Data: json.RawMessage(`[{"ordId":"1"}]`)}, time.Now())

	select {
	case msg := <-q:
		assert.Equal(t, "orders", msg.Channel.Name)
	case <-time.After(time.Second):
		t.Fatal("expected private push to route through the alias")
	}
}

func TestRouterOpenTwiceReturnsSameQueue(t *testing.T) {
	r := newRouter(logging.Nop())

	q1 := r.open(Tickers("BTC-USDT"))
	q2 := r.open(Tickers("BTC-USDT"))

	r.route(dataFrame(Tickers("BTC-USDT"), `[{}]`), time.Now())

	require.Len(t, q1, 1)
	assert.Equal(t, q1, q2)
}

func TestRouterCloseAllReleasesQueues(t *testing.T) {
	r := newRouter(logging.Nop())
	q := r.open(Tickers("BTC-USDT"))

	r.closeAll()
	r.closeAll() // idempotent

	_, open := <-q
	assert.False(t, open)

	// Routing after shutdown is a no-op.
	r.route(dataFrame(Tickers("BTC-USDT"), `[{}]`), time.Now())
}
