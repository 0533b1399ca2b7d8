package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veiloq/okx-connector/pkg/logging"
	"github.com/veiloq/okx-connector/pkg/okx"
)

func main() {
	// Create logger
	logger := logging.NewLogger()
	logger.SetLevel(logging.DEBUG)

	// Build options from OKX_* environment variables (a .env file is
	// picked up automatically); credentials are optional for the public
	// endpoints used below.
	opts, err := okx.OptionsFromEnv()
	if err != nil {
		logger.Error("failed to load options", logging.Error(err))
		os.Exit(1)
	}
	opts.Logger = logger

	connector := okx.NewConnector(opts)
	defer connector.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Check clock drift against the exchange before doing anything signed
	logger.Info("fetching server time")
	serverTime, err := connector.GetServerTime(ctx)
	if err != nil {
		logger.Error("failed to get server time", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("server time",
		logging.String("time", serverTime.Format(time.RFC3339)),
		logging.Duration("drift", time.Since(serverTime)),
	)

	// Get current ticker
	logger.Info("fetching current ticker")
	ticker, err := connector.GetTicker(ctx, "BTC-USDT")
	if err != nil {
		logger.Error("failed to get ticker", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("current ticker",
		logging.String("instId", ticker.InstID),
		logging.String("last", ticker.Last.String()),
		logging.String("vol24h", ticker.Volume24h.String()),
	)

	// Get historical candles
	logger.Info("fetching historical candles")
	candles, err := connector.GetCandles(ctx, "BTC-USDT", "1m", 10)
	if err != nil {
		logger.Error("failed to get candles", logging.Error(err))
		os.Exit(1)
	}
	for _, candle := range candles {
		logger.Info("historical candle",
			logging.String("time", candle.Ts.Format(time.RFC3339)),
			logging.String("open", candle.Open.String()),
			logging.String("close", candle.Close.String()),
		)
	}

	// Subscribe before connecting; the registry replays the subscription
	// once the stream is up, and again after every reconnect.
	logger.Info("subscribing to ticker updates")
	ticks, err := connector.SubscribeTickers("BTC-USDT")
	if err != nil {
		logger.Error("failed to subscribe to tickers", logging.Error(err))
		os.Exit(1)
	}

	logger.Info("subscribing to trade prints")
	trades, err := connector.SubscribeTrades("BTC-USDT")
	if err != nil {
		logger.Error("failed to subscribe to trades", logging.Error(err))
		os.Exit(1)
	}

	logger.Info("connecting to public stream")
	if err := connector.Connect(ctx); err != nil {
		logger.Error("failed to connect", logging.Error(err))
		os.Exit(1)
	}

	go func() {
		for msg := range ticks {
			var tickers []okx.Ticker
			if err := json.Unmarshal(msg.Data, &tickers); err != nil || len(tickers) == 0 {
				continue
			}
			logger.Info("ticker update",
				logging.String("instId", tickers[0].InstID),
				logging.String("last", tickers[0].Last.String()),
			)
		}
	}()

	go func() {
		for msg := range trades {
			logger.Debug("trade print", logging.String("data", string(msg.Data)))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("running... press Ctrl+C to exit")
	<-sigChan

	logger.Info("shutting down")
	cancel()
}
