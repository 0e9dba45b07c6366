package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"noshow-dashboard/models"
	"noshow-dashboard/services"
	"noshow-dashboard/utils"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Filter messages are tiny; anything larger is a misbehaving peer
	maxMessageSize = 4096
)

// Message types sent to the browser.
const (
	TypeConnection = "connection"
	TypeDashboard  = "dashboard"
	TypeError      = "error"
)

var wsClients = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dashboard_ws_clients",
	Help: "Connected websocket clients",
})

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Envelope is the wire format of every websocket message.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// FilterMessage is sent by the browser whenever a control changes. Seq must
// increase with every change so late results can be discarded.
type FilterMessage struct {
	Seq    uint64             `json:"seq"`
	Filter models.FilterState `json:"filter"`
}

type wireFilterMessage struct {
	Seq    uint64 `json:"seq"`
	Filter struct {
		Gender       string          `json:"gender"`
		Neighborhood string          `json:"neighborhood"`
		Age          json.RawMessage `json:"age"`
	} `json:"filter"`
}

// decodeFilterMessage fails only when data is not a filter message at all.
// An age that is not a pair of integers becomes a malformed range.
func decodeFilterMessage(data []byte) (FilterMessage, error) {
	var w wireFilterMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return FilterMessage{}, err
	}
	return FilterMessage{
		Seq: w.Seq,
		Filter: models.FilterState{
			Gender:       strings.TrimSpace(w.Filter.Gender),
			Neighborhood: w.Filter.Neighborhood,
			Age:          ageFromJSON(w.Filter.Age),
		},
	}, nil
}

// Hub tracks connected clients so they can be counted and closed together.
type Hub struct {
	dash   *services.Dashboard
	logger *utils.Logger
	rps    float64
	burst  int

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewHub creates a Hub. rps and burst throttle recomputations per client.
func NewHub(dash *services.Dashboard, logger *utils.Logger, rps float64, burst int) *Hub {
	return &Hub{
		dash:    dash,
		logger:  logger,
		rps:     rps,
		burst:   burst,
		clients: make(map[*Client]struct{}),
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	wsClients.Inc()
	h.logger.Info("[ws] Client %s registered (total %d)", c.id, n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		wsClients.Dec()
		h.logger.Info("[ws] Client %s unregistered after %v (total %d)",
			c.id, time.Since(c.connectedAt).Round(time.Second), n)
	}
}

// ServeWS upgrades the request and runs the client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("[ws] Upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		hub:         h,
		conn:        conn,
		id:          uuid.New().String(),
		binder:      services.NewBinder(h.dash),
		limiter:     rate.NewLimiter(rate.Limit(h.rps), h.burst),
		pending:     make(chan FilterMessage, 1),
		send:        make(chan Envelope, 8),
		ctx:         ctx,
		cancel:      cancel,
		connectedAt: time.Now(),
	}
	h.register(c)

	c.send <- Envelope{Type: TypeConnection, Data: map[string]string{"client_id": c.id}}
	c.send <- Envelope{Type: TypeDashboard, Data: c.binder.Current()}

	go c.writePump()
	go c.computeLoop()
	c.readPump()
}

// Client is one browser connection with its own filter state.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	id      string
	binder  *services.Binder
	limiter *rate.Limiter

	// pending holds at most the newest unprocessed filter message
	pending chan FilterMessage
	send    chan Envelope

	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	connectedAt time.Time
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close()
		c.hub.unregister(c)
	})
}

// offer replaces any queued filter message with m.
func (c *Client) offer(m FilterMessage) {
	for {
		select {
		case c.pending <- m:
			return
		default:
		}
		select {
		case <-c.pending:
		default:
		}
	}
}

func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("[ws] Client %s read error: %v", c.id, err)
			}
			return
		}

		m, err := decodeFilterMessage(data)
		if err != nil {
			c.trySend(Envelope{Type: TypeError, Data: "invalid filter message"})
			continue
		}
		c.offer(m)
	}
}

// computeLoop recomputes for the newest pending filter, throttled by the
// client's limiter. Results superseded by a newer request are not sent.
func (c *Client) computeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case m := <-c.pending:
			if err := c.limiter.Wait(c.ctx); err != nil {
				return
			}
			// a newer message may have arrived while throttled
			select {
			case newer := <-c.pending:
				m = newer
			default:
			}

			out, published := c.binder.UpdateSeq(m.Seq, m.Filter)
			if !published {
				continue
			}
			c.trySend(Envelope{Type: TypeDashboard, Data: out})
		}
	}
}

func (c *Client) trySend(e Envelope) {
	select {
	case c.send <- e:
	case <-c.ctx.Done():
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case e := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(e); err != nil {
				c.hub.logger.Warn("[ws] Client %s write error: %v", c.id, err)
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
