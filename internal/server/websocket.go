package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bobmcallan/salesdash/internal/common"
	"github.com/bobmcallan/salesdash/internal/interfaces"
	"github.com/bobmcallan/salesdash/internal/models"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsReadLimit  = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SelectionMessage is sent by a client to change its segment selection.
// A missing or null segments field selects every segment.
type SelectionMessage struct {
	Segments []string `json:"segments"`
}

// DashboardMessage is pushed to a client after every selection change.
type DashboardMessage struct {
	Type      string            `json:"type"` // "dashboard" or "error"
	Dashboard *models.Dashboard `json:"dashboard,omitempty"`
	Error     string            `json:"error,omitempty"`
	Code      string            `json:"code,omitempty"`
}

// DashboardHub tracks websocket clients. Each client owns its selection and
// receives a freshly computed dashboard whenever it sends a new one.
type DashboardHub struct {
	svc        interfaces.DashboardService
	clients    map[*DashboardWSClient]bool
	register   chan *DashboardWSClient
	unregister chan *DashboardWSClient
	done       chan struct{}
	mu         sync.RWMutex
	logger     *common.Logger
}

// DashboardWSClient represents a connected WebSocket client.
type DashboardWSClient struct {
	hub  *DashboardHub
	conn *websocket.Conn
	send chan []byte
}

// NewDashboardHub creates a new WebSocket hub.
func NewDashboardHub(svc interfaces.DashboardService, logger *common.Logger) *DashboardHub {
	return &DashboardHub{
		svc:        svc,
		clients:    make(map[*DashboardWSClient]bool),
		register:   make(chan *DashboardWSClient),
		unregister: make(chan *DashboardWSClient),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main event loop. Should be called as a goroutine.
func (h *DashboardHub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug().Int("clients", n).Msg("WebSocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug().Int("clients", n).Msg("WebSocket client disconnected")
		}
	}
}

// Stop signals the hub's event loop to exit. Connected clients are sent a
// close frame by their write pumps.
func (h *DashboardHub) Stop() {
	select {
	case <-h.done:
		// Already stopped
	default:
		close(h.done)
	}
}

// ClientCount returns the number of connected clients.
func (h *DashboardHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades an HTTP connection to WebSocket, pushes the dashboard for
// the selection in the query string, then serves selection changes.
func (h *DashboardHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &DashboardWSClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 16),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	client.push(r.Context(), ParseSelection(r))

	go client.writePump()
	go client.readPump()
}

// push computes the dashboard for segments and queues it for the client.
func (c *DashboardWSClient) push(ctx context.Context, segments []string) {
	d, err := c.hub.svc.Dashboard(ctx, segments)
	if err != nil {
		_, code := errorStatus(err)
		c.queue(DashboardMessage{Type: "error", Error: err.Error(), Code: code})
		return
	}
	c.queue(DashboardMessage{Type: "dashboard", Dashboard: d})
}

// writePump sends messages from the send channel to the WebSocket connection.
func (c *DashboardWSClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.hub.done:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

// readPump reads selection messages and answers each with a recomputed
// dashboard. It is the only sender on c.send.
func (c *DashboardWSClient) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(wsReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var sel SelectionMessage
		if err := json.Unmarshal(data, &sel); err != nil {
			c.queue(DashboardMessage{Type: "error", Error: "Invalid JSON: " + err.Error(), Code: "bad_message"})
			continue
		}
		c.push(ctx, sel.Segments)
	}
}

func (c *DashboardWSClient) queue(msg DashboardMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Warn().Err(err).Msg("Failed to marshal dashboard message")
		data, _ = json.Marshal(DashboardMessage{Type: "error", Error: "failed to encode dashboard: " + err.Error(), Code: "encode_error"})
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn().Msg("WebSocket send buffer full, dropping dashboard update")
	}
}
