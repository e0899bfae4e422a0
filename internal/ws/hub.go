package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"go-pos-ws/internal/events"
	"go-pos-ws/internal/session"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sendBuffer = 32

// Client is one open socket of a signed-in user.
type Client struct {
	conn   *websocket.Conn
	shopID uuid.UUID
	userID uuid.UUID
	send   chan []byte
}

func NewClient(conn *websocket.Conn, sess session.Context) *Client {
	return &Client{conn: conn, shopID: sess.ShopID, userID: sess.UserID, send: make(chan []byte, sendBuffer)}
}

// writePump drains send into the socket until the hub closes it.
func (c *Client) writePump() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.conn.Close()
			return
		}
	}
	c.conn.Close()
}

type room struct {
	clients     map[*Client]bool
	unsubscribe events.Unsubscribe
}

// Hub forwards the change feed of each shop to that shop's sockets. It holds
// one bus subscription per shop with at least one client.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	bus   events.Subscriber
	mutex sync.Mutex
	rooms map[uuid.UUID]*room
	done  chan struct{}
}

func NewHub(bus events.Subscriber) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		bus:        bus,
		rooms:      make(map[uuid.UUID]*room),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.Register:
			h.add(c)
		case c := <-h.Unregister:
			h.remove(c)
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		}
	}
}

// Online is the number of sockets open for a shop.
func (h *Hub) Online(shopID uuid.UUID) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if r, ok := h.rooms[shopID]; ok {
		return len(r.clients)
	}
	return 0
}

func (h *Hub) add(c *Client) {
	h.mutex.Lock()
	if r, ok := h.rooms[c.shopID]; ok {
		r.clients[c] = true
		h.mutex.Unlock()
		return
	}
	// The room exists before the subscription so nothing delivered while
	// subscribing is lost. Only the Run goroutine adds or drops rooms.
	r := &room{clients: map[*Client]bool{c: true}}
	h.rooms[c.shopID] = r
	h.mutex.Unlock()

	// Not under the lock: a bus may deliver before Subscribe returns.
	unsubscribe, err := h.bus.Subscribe(events.Topic(c.shopID), h.deliver(c.shopID))
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if err != nil {
		log.Printf("ws: subscribe shop %s: %v", c.shopID, err)
		delete(h.rooms, c.shopID)
		close(c.send)
		return
	}
	r.unsubscribe = unsubscribe
	log.Printf("ws: shop %s subscribed", c.shopID)
}

func (h *Hub) remove(c *Client) {
	h.mutex.Lock()
	r, ok := h.rooms[c.shopID]
	if !ok || !r.clients[c] {
		h.mutex.Unlock()
		return
	}
	delete(r.clients, c)
	close(c.send)
	var unsubscribe events.Unsubscribe
	if len(r.clients) == 0 {
		delete(h.rooms, c.shopID)
		unsubscribe = r.unsubscribe
	}
	h.mutex.Unlock()

	// Outside the lock: a bus reader may be waiting in deliver.
	if unsubscribe != nil {
		unsubscribe()
		log.Printf("ws: shop %s unsubscribed", c.shopID)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	rooms := h.rooms
	h.rooms = make(map[uuid.UUID]*room)
	for _, r := range rooms {
		for c := range r.clients {
			close(c.send)
		}
	}
	h.mutex.Unlock()
	for _, r := range rooms {
		if r.unsubscribe != nil {
			r.unsubscribe()
		}
	}
}

// deliver queues ev on every socket of the shop. Events addressed to one
// user skip the others. A full queue drops the message for that socket.
func (h *Hub) deliver(shopID uuid.UUID) events.Handler {
	return func(ev events.Event) {
		msg, err := json.Marshal(ev)
		if err != nil {
			log.Printf("ws: encode %s: %v", ev.Type, err)
			return
		}
		h.mutex.Lock()
		defer h.mutex.Unlock()
		r, ok := h.rooms[shopID]
		if !ok {
			return
		}
		for c := range r.clients {
			if ev.UserID != nil && *ev.UserID != c.userID {
				continue
			}
			select {
			case c.send <- msg:
			default:
				log.Printf("ws: client of user %s is slow, dropped %s", c.userID, ev.Type)
			}
		}
	}
}

// Authenticator resolves the token a socket connects with.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (session.Context, error)
}

const localsSession = "ws_session"

// Upgrade authenticates /ws?token=... before the protocol switch.
func Upgrade(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}
		sess, err := auth.Authenticate(c.UserContext(), c.Query("token"))
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		c.Locals(localsSession, sess)
		return c.Next()
	}
}

// Handler serves an upgraded socket until the peer goes away.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		sess, ok := conn.Locals(localsSession).(session.Context)
		if !ok {
			conn.Close()
			return
		}
		client := NewClient(conn, sess)
		select {
		case h.Register <- client:
		case <-h.done:
			conn.Close()
			return
		}
		go client.writePump()
		defer func() {
			select {
			case h.Unregister <- client:
			case <-h.done:
			}
		}()

		for {
			// Clients only listen; reads detect the close.
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}
