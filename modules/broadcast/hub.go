package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const (
	sendBufferSize = 256
	writeWait      = 10 * time.Second
)

// Conn is the transport surface the hub needs from a connection.
// *websocket.Conn satisfies it; tests substitute fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Handler receives connection lifecycle and protocol events. Implemented by
// the chat router.
type Handler interface {
	HandleOpen(connID string)
	HandlePacket(connID string, raw []byte)
	HandleClose(connID string)
}

// MemberLister reports current room membership. Implemented by the chat
// directory.
type MemberLister interface {
	Members(room string) []string
}

type eventKind int

const (
	eventAttach eventKind = iota
	eventDetach
	eventFrame
	eventPong
)

// event is one unit of work for the hub loop. Lifecycle changes, inbound
// frames, and pong acknowledgments all flow through the same queue so they
// are processed strictly in arrival order.
type event struct {
	kind   eventKind
	connID string
	conn   Conn
	data   []byte
}

type client struct {
	id    string
	conn  Conn
	send  chan []byte
	alive bool
}

// Hub owns every live transport. It is the broadcast dispatcher and the
// liveness monitor in one.
//
// Concurrency model
//   - Run drains a single event queue in one goroutine; the liveness ticker
//     is just another case of the same select. All registry, directory, and
//     clients-map mutation happens on that goroutine, so no event ever
//     observes a half-applied transition.
//   - Each client has a buffered send channel drained by its own writer
//     goroutine. Enqueueing never blocks: a full buffer drops that frame for
//     that client only.
type Hub struct {
	handler  Handler
	members  MemberLister
	interval time.Duration

	clients map[string]*client
	events  chan event
	done    chan struct{}

	count atomic.Int64
}

// NewHub creates a hub probing connections every interval.
func NewHub(members MemberLister, interval time.Duration) *Hub {
	return &Hub{
		members:  members,
		interval: interval,
		clients:  make(map[string]*client),
		events:   make(chan event, 256),
		done:     make(chan struct{}),
	}
}

// SetHandler wires the protocol router in (called from main.go). Must be set
// before the first connection is accepted.
func (h *Hub) SetHandler(handler Handler) {
	h.handler = handler
}

// Run drains the event queue. It must be launched as a goroutine and returns
// when ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[broadcast] Shutting down hub...")
			h.closeAll()
			close(h.done)
			return
		case ev := <-h.events:
			h.handleEvent(ev)
		case <-ticker.C:
			h.sweep()
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Attach hands a newly accepted connection to the hub.
func (h *Hub) Attach(connID string, conn Conn) {
	h.post(event{kind: eventAttach, connID: connID, conn: conn})
}

// Detach runs the close-cleanup path for a connection. Idempotent.
func (h *Hub) Detach(connID string) {
	h.post(event{kind: eventDetach, connID: connID})
}

// Inbound queues one received frame for routing.
func (h *Hub) Inbound(connID string, data []byte) {
	h.post(event{kind: eventFrame, connID: connID, data: data})
}

// Pong re-arms the liveness flag for a connection.
func (h *Hub) Pong(connID string) {
	h.post(event{kind: eventPong, connID: connID})
}

// ClientCount returns the number of attached connections.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// post enqueues an event unless the hub has already stopped.
func (h *Hub) post(ev event) {
	select {
	case h.events <- ev:
	case <-h.done:
	}
}

func (h *Hub) handleEvent(ev event) {
	switch ev.kind {
	case eventAttach:
		c := &client{
			id:    ev.connID,
			conn:  ev.conn,
			send:  make(chan []byte, sendBufferSize),
			alive: true,
		}
		h.clients[c.id] = c
		h.count.Add(1)
		go c.writeLoop()
		h.handler.HandleOpen(c.id)
	case eventDetach:
		h.dropClient(ev.connID)
	case eventFrame:
		if _, ok := h.clients[ev.connID]; ok {
			h.handler.HandlePacket(ev.connID, ev.data)
		}
	case eventPong:
		if c, ok := h.clients[ev.connID]; ok {
			c.alive = true
		}
	}
}

// dropClient runs end-of-life cleanup exactly once per connection. The
// router's close handling (leave notice, membership and registry removal)
// runs before the client entry disappears.
func (h *Hub) dropClient(connID string) {
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	h.handler.HandleClose(connID)
	delete(h.clients, connID)
	h.count.Add(-1)
	close(c.send)
	_ = c.conn.Close()
}

// sweep is one liveness tick: connections that missed the previous probe are
// terminated, everyone else is marked stale and probed again. A connection
// therefore survives one missed probe and is reaped after two.
func (h *Hub) sweep() {
	for connID, c := range h.clients {
		if !c.alive {
			log.Printf("[broadcast] reaping unresponsive connection %s", connID)
			h.dropClient(connID)
			continue
		}
		c.alive = false
		if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
			log.Printf("[broadcast] ping failed for %s: %v", connID, err)
		}
	}
}

// Send delivers one payload to a single connection, if it is still attached.
func (h *Hub) Send(connID string, payload any) {
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[broadcast] failed to marshal payload: %v", err)
		return
	}
	h.enqueue(c, data)
}

// Broadcast serializes payload once and fans it out to every current member
// of room except exclude. Members without a live transport are skipped.
// Called from the event loop, so per-room delivery order follows call order.
func (h *Hub) Broadcast(room string, payload any, exclude string) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[broadcast] failed to marshal payload: %v", err)
		return
	}
	for _, connID := range h.members.Members(room) {
		if connID == exclude {
			continue
		}
		if c, ok := h.clients[connID]; ok {
			h.enqueue(c, data)
		}
	}
}

func (h *Hub) enqueue(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		// Slow consumer: drop this frame rather than stall the loop. The
		// liveness sweep deals with connections that are actually dead.
		log.Printf("[broadcast] send buffer full, dropping frame for %s", c.id)
	}
}

// closeAll drains every connection through the normal close path so the
// registry and directory empty out before the chat module stops. Leave
// notices enqueued along the way flush best-effort; the writers are going
// away with everything else.
func (h *Hub) closeAll() {
	for connID := range h.clients {
		h.dropClient(connID)
	}
}

// writeLoop drains the send channel onto the socket. It exits when the hub
// closes the channel or the first write fails; after a failure the reader
// side notices the dead socket and drives the detach path.
func (c *client) writeLoop() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
