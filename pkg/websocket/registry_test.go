package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddIsIdempotent(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Add(Tickers("BTC-USDT")))
	assert.False(t, r.Add(Tickers("BTC-USDT")))
	assert.Equal(t, 1, r.Len())
}

func TestRegistryDistinguishesInstruments(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Add(Tickers("BTC-USDT")))
	assert.True(t, r.Add(Tickers("ETH-USDT")))
	assert.True(t, r.Add(Candles("1m", "BTC-USDT")))
	assert.Equal(t, 3, r.Len())
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Add(Tickers("BTC-USDT"))

	assert.True(t, r.Remove(Tickers("BTC-USDT")))
	assert.False(t, r.Remove(Tickers("BTC-USDT")))
	assert.Equal(t, 0, r.Len())
}

func TestRegistrySnapshotPreservesInsertionOrder(t *testing.T) {
	r := NewRegistry()
	r.Add(Tickers("BTC-USDT"))
	r.Add(OrderBook5("ETH-USDT"))
	r.Add(Trades("SOL-USDT"))

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "tickers", snapshot[0].Name)
	assert.Equal(t, "books5", snapshot[1].Name)
	assert.Equal(t, "trades", snapshot[2].Name)
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Add(Tickers("BTC-USDT"))

	snapshot := r.Snapshot()
	snapshot[0] = Trades("ETH-USDT")

	again := r.Snapshot()
	require.Len(t, again, 1)
	assert.Equal(t, "tickers", again[0].Name)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := Tickers(fmt.Sprintf("PAIR-%d", n))
			r.Add(c)
			r.Snapshot()
			r.Remove(c)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}
