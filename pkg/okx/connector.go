package okx

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/veiloq/okx-connector/pkg/auth"
	"github.com/veiloq/okx-connector/pkg/config"
	"github.com/veiloq/okx-connector/pkg/logging"
	"github.com/veiloq/okx-connector/pkg/rest"
	"github.com/veiloq/okx-connector/pkg/websocket"
)

// Options configures a Connector. Zero values fall back to production
// endpoints and sane timeouts.
type Options struct {
	// APIURL is the REST base URL.
	APIURL string

	// PublicWebsocketURL and PrivateWebsocketURL are the streaming
	// endpoints for market data and account data respectively.
	PublicWebsocketURL  string
	PrivateWebsocketURL string

	// Credentials sign REST requests and the private stream login. Leave
	// empty for public-data-only use.
	Credentials auth.Credentials

	// HTTPTimeout bounds each REST request. Defaults to 30s.
	HTTPTimeout time.Duration

	// Logger receives structured connector logs. Defaults to JSON lines
	// on stderr.
	Logger logging.Logger
}

// NewOptions returns Options pointed at the production endpoints.
//
// Example:
//
//	opts := okx.NewOptions()
//	opts.Credentials = auth.NewCredentials(key, secret, passphrase, false)
//	connector := okx.NewConnector(opts)
func NewOptions() *Options {
	cfg := config.Default()
	return &Options{
		APIURL:              cfg.APIURL,
		PublicWebsocketURL:  cfg.PublicWebsocketURL,
		PrivateWebsocketURL: cfg.PrivateWebsocketURL,
		HTTPTimeout:         cfg.HTTPTimeout,
	}
}

// OptionsFromEnv builds Options from OKX_* environment variables, loading
// a .env file when one is present. Credentials are optional, but setting
// only some of the three secret variables is an error.
func OptionsFromEnv() (*Options, error) {
	cfg := config.FromEnv()
	if !cfg.Credentials.Empty() {
		if err := cfg.Credentials.Validate(); err != nil {
			return nil, err
		}
	}
	return &Options{
		APIURL:              cfg.APIURL,
		PublicWebsocketURL:  cfg.PublicWebsocketURL,
		PrivateWebsocketURL: cfg.PrivateWebsocketURL,
		Credentials:         cfg.Credentials,
		HTTPTimeout:         cfg.HTTPTimeout,
	}, nil
}

// ErrNoCredentials is returned by private operations on a connector built
// without credentials.
var ErrNoCredentials = errors.New("okx: operation requires credentials")

// Connector is the high level OKX client: REST market, account and trade
// endpoints plus public and private streaming subscriptions behind one
// façade.
//
// REST methods are safe for concurrent use immediately after construction.
// Streaming subscriptions may also be registered immediately; frames start
// flowing once Connect (or ConnectPrivate) brings the corresponding stream
// up.
type Connector struct {
	opts   *Options
	rest   *rest.Invoker
	logger logging.Logger

	mu      sync.Mutex
	public  *websocket.Session
	private *websocket.Session
}

// NewConnector creates a connector from the given options.
//
// Example:
//
//	opts, err := okx.OptionsFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	c := okx.NewConnector(opts)
//	defer c.Close()
func NewConnector(opts *Options) *Connector {
	if opts == nil {
		opts = NewOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger()
	}

	invoker := rest.NewInvoker(rest.Config{
		BaseURL:     opts.APIURL,
		Credentials: opts.Credentials,
		Timeout:     opts.HTTPTimeout,
		Logger:      logger,
	})

	return &Connector{
		opts:   opts,
		rest:   invoker,
		logger: logger,
	}
}

func (c *Connector) publicSession() *websocket.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.public == nil {
		c.public = websocket.NewPublicSession(websocket.Config{
			URL:    c.opts.PublicWebsocketURL,
			Logger: c.logger,
		})
	}
	return c.public
}

func (c *Connector) privateSession() (*websocket.Session, error) {
	if c.opts.Credentials.Empty() {
		return nil, ErrNoCredentials
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.private == nil {
		c.private = websocket.NewPrivateSession(websocket.Config{
			URL:    c.opts.PrivateWebsocketURL,
			Logger: c.logger,
		}, c.opts.Credentials)
	}
	return c.private, nil
}

// Connect brings up the public market data stream. REST methods work
// without it.
func (c *Connector) Connect(ctx context.Context) error {
	return c.publicSession().Connect(ctx)
}

// ConnectPrivate brings up the authenticated account data stream.
func (c *Connector) ConnectPrivate(ctx context.Context) error {
	s, err := c.privateSession()
	if err != nil {
		return err
	}
	return s.Connect(ctx)
}

// Close shuts down both streams. It is idempotent; REST methods remain
// usable afterwards.
func (c *Connector) Close() error {
	c.mu.Lock()
	public, private := c.public, c.private
	c.mu.Unlock()

	if public != nil {
		_ = public.Close()
	}
	if private != nil {
		_ = private.Close()
	}
	return nil
}

// SubscribeTickers streams ticker updates for one instrument.
//
// Example:
//
//	ticks, err := c.SubscribeTickers("BTC-USDT")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for msg := range ticks {
//		var tickers []okx.Ticker
//		if err := json.Unmarshal(msg.Data, &tickers); err != nil {
//			continue
//		}
//		fmt.Println(tickers[0].Last)
//	}
func (c *Connector) SubscribeTickers(instID string) (<-chan websocket.Message, error) {
	return c.publicSession().Subscribe(websocket.Tickers(instID))
}

// SubscribeCandles streams candlestick updates for one instrument at the
// given bar period ("1m", "5m", "1H", "1D", ...).
func (c *Connector) SubscribeCandles(period, instID string) (<-chan websocket.Message, error) {
	return c.publicSession().Subscribe(websocket.Candles(period, instID))
}

// SubscribeOrderBook streams 5-level depth snapshots for one instrument.
func (c *Connector) SubscribeOrderBook(instID string) (<-chan websocket.Message, error) {
	return c.publicSession().Subscribe(websocket.OrderBook5(instID))
}

// SubscribeTrades streams public trade prints for one instrument.
func (c *Connector) SubscribeTrades(instID string) (<-chan websocket.Message, error) {
	return c.publicSession().Subscribe(websocket.Trades(instID))
}

// SubscribeFundingRate streams funding rate updates for a perpetual swap.
func (c *Connector) SubscribeFundingRate(instID string) (<-chan websocket.Message, error) {
	return c.publicSession().Subscribe(websocket.FundingRate(instID))
}

// SubscribeOrders streams the account's order lifecycle events for an
// instrument type ("SPOT", "SWAP", "FUTURES", "MARGIN", "ANY").
func (c *Connector) SubscribeOrders(instType string) (<-chan websocket.Message, error) {
	s, err := c.privateSession()
	if err != nil {
		return nil, err
	}
	return s.Subscribe(websocket.Orders(instType))
}

// SubscribeAccount streams balance updates for the account.
func (c *Connector) SubscribeAccount() (<-chan websocket.Message, error) {
	s, err := c.privateSession()
	if err != nil {
		return nil, err
	}
	return s.Subscribe(websocket.Account())
}

// SubscribePositions streams position updates for an instrument type.
func (c *Connector) SubscribePositions(instType string) (<-chan websocket.Message, error) {
	s, err := c.privateSession()
	if err != nil {
		return nil, err
	}
	return s.Subscribe(websocket.Positions(instType))
}
