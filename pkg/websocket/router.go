package websocket

import (
	"sync"
	"time"

	"github.com/veiloq/okx-connector/pkg/logging"
)

// queueSize bounds each per-subscription delivery queue. A full queue drops
// the newest frame rather than blocking the session's reader.
const queueSize = 256

// router demultiplexes inbound data frames to per-subscription delivery
// queues. Frames for the same subscription keep arrival order; there is no
// ordering guarantee across subscriptions. Queues survive reconnects and are
// only closed on unsubscribe or session close.
type router struct {
	mu sync.RWMutex
	// queues is keyed by the full subscription identity; aliases maps the
	// reduced (channel, instId) identity to it for inbound frames whose arg
	// carries extra server-side fields.
	queues  map[string]chan Message
	aliases map[string]string
	closed  bool
	logger  logging.Logger
}

func newRouter(logger logging.Logger) *router {
	return &router{
		queues:  make(map[string]chan Message),
		aliases: make(map[string]string),
		logger:  logger,
	}
}

// open returns the delivery queue for a subscription, creating it if absent.
func (r *router) open(c Channel) <-chan Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.Key()
	if q, ok := r.queues[key]; ok {
		return q
	}
	q := make(chan Message, queueSize)
	if r.closed {
		// The session is gone; hand back a closed queue instead of one
		// nothing will ever close.
		close(q)
		return q
	}
	r.queues[key] = q
	if base := c.baseKey(); base != key {
		r.aliases[base] = key
	}
	return q
}

// close removes and closes the queue for a subscription, unblocking any
// receiver.
func (r *router) close(c Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.Key()
	q, ok := r.queues[key]
	if !ok {
		return
	}
	delete(r.queues, key)
	if base := c.baseKey(); base != key {
		delete(r.aliases, base)
	}
	close(q)
}

// closeAll closes every queue. Called once when the session closes so that
// subscribers never hang on a dead session.
func (r *router) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for key, q := range r.queues {
		delete(r.queues, key)
		close(q)
	}
	r.aliases = make(map[string]string)
}

// route delivers a data frame to the matching queue. Unroutable frames are
// dropped with a diagnostic; they never fail the session.
func (r *router) route(frame inboundFrame, receivedAt time.Time) {
	if frame.Arg == nil || len(frame.Data) == 0 {
		r.logger.Debug("dropping frame without arg or data")
		return
	}

	// The read lock is held across the send so a concurrent close cannot
	// close the queue mid-delivery.
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := frame.Arg.Key()
	q, ok := r.queues[key]
	if !ok {
		if target, aliased := r.aliases[frame.Arg.baseKey()]; aliased {
			q, ok = r.queues[target]
		}
	}
	if !ok {
		r.logger.Debug("dropping frame for unknown subscription",
			logging.String("channel", frame.Arg.Name),
			logging.String("inst_id", frame.Arg.InstID),
		)
		return
	}

	msg := Message{Channel: *frame.Arg, Data: frame.Data, ReceivedAt: receivedAt}
	select {
	case q <- msg:
	default:
		r.logger.Warn("delivery queue full, dropping frame",
			logging.String("channel", frame.Arg.Name),
			logging.String("inst_id", frame.Arg.InstID),
		)
	}
}
