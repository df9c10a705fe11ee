package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/elektrokombinacija/warehousesim/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// tickMessage is what every connected client receives after a tick: the
// full state snapshot, not just the delta, so a client that just connected
// never needs a separate getState round-trip.
type tickMessage struct {
	Event string         `json:"event"`
	State model.Snapshot `json:"state"`
}

// client is one websocket connection, identified by a uuid so server logs
// can correlate disconnects with connects without leaking session state
// into the model itself.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans a single Model's tick broadcasts out to every connected
// websocket client. It mirrors the teacher pack's register/unregister/
// broadcast channel loop (grounded on the retrieval pack's websocket hub),
// generalized from a single-session game to an arbitrary number of
// observers of one shared simulation.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
}

// NewHub creates an idle hub; call Run in its own goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 16),
	}
}

// Run is the hub's event loop; it never returns.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			log.Printf("transport: client %s connected (%d total)", c.id, len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				log.Printf("transport: client %s disconnected (%d total)", c.id, len(h.clients))
			}
		case data := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// BroadcastSnapshot pushes the given snapshot to every connected client.
func (h *Hub) BroadcastSnapshot(snap model.Snapshot) {
	data, err := json.Marshal(tickMessage{Event: "tick", State: snap})
	if err != nil {
		log.Printf("transport: marshal snapshot: %v", err)
		return
	}
	h.broadcast <- data
}

// ServeWS upgrades r to a websocket and registers the connection with the
// hub. clientID is the caller-generated uuid used for correlation in logs.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, clientID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("transport: websocket upgrade failed: %v", err)
		return
	}
	c := &client{id: clientID, conn: conn, send: make(chan []byte, 16)}
	h.register <- c
	go c.writePump()
	go c.readPump(h)
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("transport: websocket read error: %v", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
