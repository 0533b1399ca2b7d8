package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockServer speaks enough of the OKX websocket protocol for session tests:
// it answers the text heartbeat, acknowledges login/subscribe/unsubscribe
// frames and pushes data frames to connected clients.
type mockServer struct {
	server *httptest.Server
	url    string

	mu          sync.Mutex
	connections map[*websocket.Conn]*sync.Mutex // per-conn write lock

	connectionCount  int
	loginAttempts    int
	subscribeBatches [][]Channel

	loginCode string
	loginMsg  string
	silent    bool // swallow pings instead of answering
	rejectAll bool
}

func newMockServer() *mockServer {
	m := &mockServer{
		connections: make(map[*websocket.Conn]*sync.Mutex),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handleConnection))
	m.url = "ws" + strings.TrimPrefix(m.server.URL, "http")
	return m
}

// URL returns the websocket URL of the mock server.
func (m *mockServer) URL() string {
	return m.url
}

// Close shuts the server down and drops all client connections.
func (m *mockServer) Close() {
	m.DropConnections()
	m.server.Close()
}

// SetLoginError makes subsequent login attempts fail with the given code.
// An empty code restores successful logins.
func (m *mockServer) SetLoginError(code, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginCode = code
	m.loginMsg = msg
}

// SetSilent makes the server stop answering heartbeats, simulating a
// half-open connection.
func (m *mockServer) SetSilent(silent bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.silent = silent
}

// SetRejectConnections makes the server refuse websocket upgrades.
func (m *mockServer) SetRejectConnections(reject bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectAll = reject
}

// DropConnections forcibly closes every active client connection.
func (m *mockServer) DropConnections() {
	m.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(m.connections))
	for c := range m.connections {
		conns = append(conns, c)
	}
	m.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}

// ConnectionCount reports how many connections the server has accepted in
// total, including ones that were since dropped.
func (m *mockServer) ConnectionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectionCount
}

// ActiveConnections reports how many connections are currently open.
func (m *mockServer) ActiveConnections() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}

// LoginAttempts reports how many login frames the server has received.
func (m *mockServer) LoginAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginAttempts
}

// SubscribeBatches returns the channel lists of every subscribe frame
// received, in order.
func (m *mockServer) SubscribeBatches() [][]Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]Channel, len(m.subscribeBatches))
	copy(out, m.subscribeBatches)
	return out
}

// Push broadcasts a data frame for the given channel to every client.
func (m *mockServer) Push(c Channel, data interface{}) error {
	payload, err := json.Marshal(struct {
		Arg  Channel     `json:"arg"`
		Data interface{} `json:"data"`
	}{Arg: c, Data: data})
	if err != nil {
		return err
	}

	m.mu.Lock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(m.connections))
	for c, wl := range m.connections {
		conns[c] = wl
	}
	m.mu.Unlock()

	for conn, wl := range conns {
		m.write(conn, wl, payload)
	}
	return nil
}

// PushRaw broadcasts an arbitrary payload, valid protocol or not.
func (m *mockServer) PushRaw(payload []byte) {
	m.mu.Lock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(m.connections))
	for c, wl := range m.connections {
		conns[c] = wl
	}
	m.mu.Unlock()

	for conn, wl := range conns {
		m.write(conn, wl, payload)
	}
}

func (m *mockServer) write(conn *websocket.Conn, wl *sync.Mutex, payload []byte) {
	wl.Lock()
	defer wl.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

func (m *mockServer) handleConnection(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	reject := m.rejectAll
	m.mu.Unlock()
	if reject {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	wl := &sync.Mutex{}
	m.mu.Lock()
	m.connections[conn] = wl
	m.connectionCount++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.connections, conn)
		m.mu.Unlock()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		m.handleFrame(conn, wl, raw)
	}
}

func (m *mockServer) handleFrame(conn *websocket.Conn, wl *sync.Mutex, raw []byte) {
	if string(raw) == "ping" {
		m.mu.Lock()
		silent := m.silent
		m.mu.Unlock()
		if !silent {
			m.write(conn, wl, []byte("pong"))
		}
		return
	}

	var req struct {
		Op   string    `json:"op"`
		Args []Channel `json:"args"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return
	}

	switch req.Op {
	case opLogin:
		m.mu.Lock()
		m.loginAttempts++
		code, msg := m.loginCode, m.loginMsg
		m.mu.Unlock()

		if code != "" {
			m.writeEvent(conn, wl, map[string]string{
				"event": eventError, "code": code, "msg": msg,
			})
			return
		}
		m.writeEvent(conn, wl, map[string]string{
			"event": eventLogin, "code": "0", "msg": "",
		})

	case opSubscribe:
		m.mu.Lock()
		m.subscribeBatches = append(m.subscribeBatches, req.Args)
		m.mu.Unlock()
		for _, c := range req.Args {
			m.writeEvent(conn, wl, map[string]interface{}{
				"event": eventSubscribe, "arg": c,
			})
		}

	case opUnsubscribe:
		for _, c := range req.Args {
			m.writeEvent(conn, wl, map[string]interface{}{
				"event": eventUnsubscribe, "arg": c,
			})
		}
	}
}

func (m *mockServer) writeEvent(conn *websocket.Conn, wl *sync.Mutex, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	m.write(conn, wl, payload)
}

func setupMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := newMockServer()
	t.Cleanup(m.Close)
	return m
}
