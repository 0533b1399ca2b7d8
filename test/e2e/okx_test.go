package e2e

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veiloq/okx-connector/pkg/auth"
	"github.com/veiloq/okx-connector/pkg/logging"
	"github.com/veiloq/okx-connector/pkg/okx"
)

// TestOKXConnector_E2E exercises the connector against the real OKX API.
// Public endpoints run unconditionally; private endpoints require
// credentials and use demo trading so nothing real is at risk.
//
// To run this test:
// OKX_API_KEY=... OKX_API_SECRET=... OKX_PASSPHRASE=... go test -v ./test/e2e
func TestOKXConnector_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	logger := logging.NewLogger()
	logger.SetLevel(logging.DEBUG)

	opts := okx.NewOptions()
	opts.Logger = logger
	opts.Credentials = auth.NewCredentials(
		os.Getenv("OKX_API_KEY"),
		os.Getenv("OKX_API_SECRET"),
		os.Getenv("OKX_PASSPHRASE"),
		true, // demo trading
	)

	connector := okx.NewConnector(opts)
	defer connector.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	t.Run("GetServerTime", func(t *testing.T) {
		serverTime, err := connector.GetServerTime(ctx)
		require.NoError(t, err)
		require.WithinDuration(t, time.Now(), serverTime, time.Minute)
	})

	t.Run("GetTicker", func(t *testing.T) {
		ticker, err := connector.GetTicker(ctx, "BTC-USDT")
		require.NoError(t, err)
		require.Equal(t, "BTC-USDT", ticker.InstID)
		require.True(t, ticker.Last.IsPositive())
	})

	t.Run("GetCandles", func(t *testing.T) {
		candles, err := connector.GetCandles(ctx, "BTC-USDT", "1m", 10)
		require.NoError(t, err)
		require.NotEmpty(t, candles)
		require.True(t, candles[0].High.GreaterThanOrEqual(candles[0].Low))
	})

	t.Run("GetOrderBook", func(t *testing.T) {
		book, err := connector.GetOrderBook(ctx, "BTC-USDT", 5)
		require.NoError(t, err)
		require.NotEmpty(t, book.Bids)
		require.NotEmpty(t, book.Asks)
		require.True(t, book.Asks[0].Price.GreaterThan(book.Bids[0].Price))
	})

	t.Run("StreamTickers", func(t *testing.T) {
		ticks, err := connector.SubscribeTickers("BTC-USDT")
		require.NoError(t, err)
		require.NoError(t, connector.Connect(ctx))

		select {
		case msg := <-ticks:
			var tickers []okx.Ticker
			require.NoError(t, json.Unmarshal(msg.Data, &tickers))
			require.NotEmpty(t, tickers)
			require.Equal(t, "BTC-USDT", tickers[0].InstID)
		case <-time.After(30 * time.Second):
			t.Fatal("no ticker update within 30s")
		}
	})

	if opts.Credentials.Empty() {
		t.Log("OKX credentials not set, skipping private endpoints")
		return
	}

	t.Run("GetBalance", func(t *testing.T) {
		balance, err := connector.GetBalance(ctx)
		require.NoError(t, err)
		require.NotNil(t, balance)
	})

	t.Run("GetAccountConfig", func(t *testing.T) {
		cfg, err := connector.GetAccountConfig(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, cfg.UID)
	})

	t.Run("PrivateStream", func(t *testing.T) {
		_, err := connector.SubscribeAccount()
		require.NoError(t, err)
		require.NoError(t, connector.ConnectPrivate(ctx))
	})
}
