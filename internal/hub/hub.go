// Package hub pushes rendered charts, stat frames and data source changes
// to every open dashboard page over a websocket.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"datahub/internal/charts"
	"datahub/internal/logger"
	"datahub/internal/models"
	"datahub/internal/stats"
)

const (
	// MaxClients caps concurrent dashboard pages
	MaxClients = 1000

	sendBuffer   = 256
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

var normalCloseCodes = []int{
	websocket.CloseNormalClosure,
	websocket.CloseGoingAway,
	websocket.CloseNoStatusReceived,
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	},
}

// EventType names what an event carries
type EventType string

const (
	EventChart   EventType = "chart"
	EventStat    EventType = "stat"
	EventSources EventType = "sources"
)

// Event is one message sent to the page
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// SourcesData is the payload of a sources event
type SourcesData struct {
	Generation uint64                                `json:"generation"`
	Sources    map[models.Resource]models.DataSource `json:"sources"`
	Degraded   bool                                  `json:"degraded"`
}

// Client is one connected page
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to connected pages. Publishing never blocks: a
// page whose buffer is full is disconnected.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	done       chan struct{}
	log        *logger.Logger
	gauge      prometheus.Gauge
	welcome    func() []Event
}

// New creates a hub. gauge, if set, tracks the connected page count.
func New(gauge prometheus.Gauge) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logger.Component("hub"),
		gauge:      gauge,
	}
}

// SetWelcome sets the events every newly connected page receives first,
// so it can draw the current charts without waiting for the next render.
func (h *Hub) SetWelcome(fn func() []Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.welcome = fn
}

// Run is the hub main loop
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("Websocket hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.setGauge(0)
			h.log.Info("Websocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			welcome := h.welcome
			h.mu.Unlock()
			h.setGauge(n)

			if welcome != nil {
				for _, ev := range welcome() {
					select {
					case client.send <- encode(ev):
					default:
					}
				}
			}
			h.log.Info("Dashboard page connected", map[string]interface{}{"client": client.ID, "total": n})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.setGauge(n)
			h.log.Info("Dashboard page disconnected", map[string]interface{}{"client": client.ID, "total": n})

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			if len(slow) > 0 {
				h.mu.Lock()
				for _, client := range slow {
					if _, ok := h.clients[client]; ok {
						close(client.send)
						delete(h.clients, client)
						h.log.Warn("Dropping slow dashboard page", map[string]interface{}{"client": client.ID})
					}
				}
				n := len(h.clients)
				h.mu.Unlock()
				h.setGauge(n)
			}
		}
	}
}

func (h *Hub) setGauge(n int) {
	if h.gauge != nil {
		h.gauge.Set(float64(n))
	}
}

func encode(ev Event) []byte {
	data, _ := json.Marshal(ev)
	return data
}

// Broadcast queues an event for every page without blocking
func (h *Hub) Broadcast(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- encode(ev):
	default:
		h.log.Warn("Broadcast queue full, dropping event", map[string]interface{}{"type": string(ev.Type)})
	}
}

// ChartRendered publishes a new chart handle
func (h *Hub) ChartRendered(handle charts.Handle) {
	h.Broadcast(Event{Type: EventChart, Data: handle})
}

// StatFrame publishes one stat card frame
func (h *Hub) StatFrame(f stats.Frame) {
	h.Broadcast(Event{Type: EventStat, Data: f})
}

// SourcesChanged publishes the per-resource data sources
func (h *Hub) SourcesChanged(generation uint64, sources map[models.Resource]models.DataSource) {
	h.Broadcast(Event{Type: EventSources, Data: NewSourcesData(generation, sources)})
}

// NewSourcesData builds a sources payload
func NewSourcesData(generation uint64, sources map[models.Resource]models.DataSource) SourcesData {
	degraded := false
	for _, src := range sources {
		if src == models.SourceMock {
			degraded = true
		}
	}
	return SourcesData{Generation: generation, Sources: sources, Degraded: degraded}
}

// Clients returns the number of connected pages
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and registers the page
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	if h.Clients() >= MaxClients {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Websocket upgrade failed", err)
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only keeps the connection alive; pages send nothing we act on
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, normalCloseCodes...) {
				c.hub.log.Debug("Websocket read ended", map[string]interface{}{"client": c.ID, "error": err.Error()})
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.log.Warn("Websocket write failed", map[string]interface{}{"client": c.ID, "error": err.Error()})
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
