package raymaster

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gekko3d/raymaster/pathrt/rt/app"
	"github.com/gorilla/websocket"
)

// monitorWriteWait bounds each write so a stalled client cannot hold up the
// render loop.
const monitorWriteWait = 50 * time.Millisecond

// StatsMessage is pushed to every monitor client.
type StatsMessage struct {
	Type    string             `json:"type"`
	Frame   app.FrameStats     `json:"frame"`
	FPS     float64            `json:"fps"`
	Spheres int                `json:"spheres"`
	Objects int                `json:"objects"`
	Timings map[string]float64 `json:"timings_ms,omitempty"`
}

// ControlMessage is what clients may send back. Requests accumulate until
// the render loop takes them.
type ControlMessage struct {
	Reset  bool   `json:"reset,omitempty"`
	Reseed *int64 `json:"reseed,omitempty"`
}

// Monitor serves a websocket endpoint streaming convergence stats and
// accepting reset/reseed requests.
type Monitor struct {
	log      Logger
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	mu      sync.Mutex
	last    *StatsMessage
	pending ControlMessage
	server  *http.Server
}

func NewMonitor(log Logger) *Monitor {
	if log == nil {
		log = NewNopLogger()
	}
	return &Monitor{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Start listens on addr and serves the monitor on /ws until Close.
func (m *Monitor) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", m)

	m.mu.Lock()
	m.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	srv := m.server
	m.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Errorf("monitor stopped: %v", err)
		}
	}()
	m.log.Infof("monitor listening on ws://%s/ws", ln.Addr())
	return nil
}

func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	m.clientsMu.Lock()
	m.clients[conn] = connMu
	m.clientsMu.Unlock()
	defer func() {
		m.clientsMu.Lock()
		delete(m.clients, conn)
		m.clientsMu.Unlock()
		m.log.Debugf("monitor client %s disconnected", conn.RemoteAddr())
	}()
	m.log.Debugf("monitor client %s connected", conn.RemoteAddr())

	hello := StatsMessage{Type: "hello"}
	m.mu.Lock()
	if m.last != nil {
		hello = *m.last
		hello.Type = "hello"
	}
	m.mu.Unlock()
	connMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(monitorWriteWait))
	err = conn.WriteJSON(hello)
	connMu.Unlock()
	if err != nil {
		return
	}

	for {
		var msg ControlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		m.mu.Lock()
		m.pending.Reset = m.pending.Reset || msg.Reset
		if msg.Reseed != nil {
			seed := *msg.Reseed
			m.pending.Reseed = &seed
		}
		m.mu.Unlock()
	}
}

// Publish sends msg to every connected client. Clients that fail to receive
// it are dropped.
func (m *Monitor) Publish(msg StatsMessage) {
	if msg.Type == "" {
		msg.Type = "stats"
	}
	m.mu.Lock()
	m.last = &msg
	m.mu.Unlock()

	var failed []*websocket.Conn
	m.clientsMu.RLock()
	for conn, connMu := range m.clients {
		connMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(monitorWriteWait))
		err := conn.WriteJSON(msg)
		connMu.Unlock()
		if err != nil {
			failed = append(failed, conn)
		}
	}
	m.clientsMu.RUnlock()

	if len(failed) > 0 {
		m.clientsMu.Lock()
		for _, conn := range failed {
			delete(m.clients, conn)
			conn.Close()
		}
		m.clientsMu.Unlock()
	}
}

// TakeControl returns the requests received since the last call.
func (m *Monitor) TakeControl() ControlMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.pending
	m.pending = ControlMessage{}
	return c
}

func (m *Monitor) Clients() int {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()
	return len(m.clients)
}

func (m *Monitor) Close() error {
	m.mu.Lock()
	srv := m.server
	m.server = nil
	m.mu.Unlock()

	m.clientsMu.Lock()
	for conn := range m.clients {
		conn.Close()
	}
	m.clientsMu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
