package chat

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"

	"github.com/example/roomchat/events"
)

// Dispatcher delivers serialized payloads to live transports. Implemented by
// the broadcast hub. Delivery is fire-and-forget: a failed delivery to one
// member never surfaces here.
type Dispatcher interface {
	Send(connID string, payload any)
	Broadcast(room string, payload any, exclude string)
}

// Router is the protocol state machine. It validates each inbound packet
// against registry and directory state, applies the transition, and replies
// or fans out through the dispatcher.
//
// Every entry point is invoked from the broadcast hub's event loop, one event
// at a time, so a mutation always runs to completion before the next event
// is considered.
type Router struct {
	registry   *Registry
	directory  *Directory
	dispatcher Dispatcher
	eventBus   mono.EventBus
}

// NewRouter creates a router over the given registry and directory. The
// dispatcher is injected separately because hub and router reference each
// other.
func NewRouter(registry *Registry, directory *Directory) *Router {
	return &Router{
		registry:  registry,
		directory: directory,
	}
}

// SetDispatcher wires the broadcast hub in. Must be called before the first
// connection is accepted.
func (rt *Router) SetDispatcher(d Dispatcher) {
	rt.dispatcher = d
}

// SetEventBus enables best-effort domain event publishing. A nil bus is
// tolerated; events are then skipped.
func (rt *Router) SetEventBus(bus mono.EventBus) {
	rt.eventBus = bus
}

// HandleOpen registers a newly accepted connection.
func (rt *Router) HandleOpen(connID string) {
	rt.registry.Register(connID)
	log.Printf("[chat] connection %s opened", connID)
}

// HandlePacket parses and dispatches one inbound frame. Malformed frames and
// unknown packet types are dropped without a reply.
func (rt *Router) HandlePacket(connID string, raw []byte) {
	var pkt inboundPacket
	if err := json.Unmarshal(raw, &pkt); err != nil {
		return
	}

	switch pkt.Type {
	case TypeHello:
		rt.handleHello(connID, pkt)
	case TypeCreate:
		rt.handleMove(connID, pkt, true)
	case TypeJoin:
		rt.handleMove(connID, pkt, false)
	case TypeChat:
		rt.handleChat(connID, pkt)
	case TypeList:
		rt.sendRooms(connID)
	default:
		// Unknown types are ignored.
	}
}

// HandleClose runs end-of-life cleanup for a connection, whether the client
// disconnected or the liveness monitor terminated it. Safe to call more than
// once. The leave notice goes out before membership drops, so peers that
// react to member counts see a consistent picture.
func (rt *Router) HandleClose(connID string) {
	sess, ok := rt.registry.Get(connID)
	if !ok {
		return
	}
	if sess.Room != "" {
		rt.dispatcher.Broadcast(sess.Room, SystemReply{
			Type: TypeSystem,
			Text: fmt.Sprintf("%s left %q", sess.Username, sess.Room),
		}, connID)
		rt.directory.RemoveMember(sess.Room, connID)
		rt.publishMemberLeft(sess.Room, connID, sess.Username)
	}
	rt.registry.Remove(connID)
	log.Printf("[chat] connection %s closed", connID)
}

func (rt *Router) handleHello(connID string, pkt inboundPacket) {
	username := sanitizeField(pkt.Username, DefaultUsername, MaxNameLen)
	rt.registry.SetIdentity(connID, username)
	rt.sendRooms(connID)
	rt.dispatcher.Send(connID, SystemReply{
		Type: TypeSystem,
		Text: "Hello " + username,
	})
}

// handleMove implements both create and join: the two share the same
// ensure-then-move sequence and differ only in password handling and replies.
func (rt *Router) handleMove(connID string, pkt inboundPacket, create bool) {
	room := sanitizeField(pkt.Room, DefaultRoom, MaxNameLen)
	password := sanitizeField(pkt.Password, "", MaxNameLen)

	if !create {
		if required := rt.directory.RequiredPassword(room); required != "" && password != required {
			rt.dispatcher.Send(connID, ErrorReply{Type: TypeError, Text: "Wrong password"})
			return
		}
	}

	sess, ok := rt.registry.Get(connID)
	if !ok {
		return
	}

	created := rt.directory.Ensure(room)
	if create && created && password != "" {
		rt.directory.SetPassword(room, password)
	}

	// A connection belongs to at most one room: leave the old one first.
	// Switching rooms is silent; only close broadcasts a leave notice.
	if sess.Room != "" {
		rt.directory.RemoveMember(sess.Room, connID)
		rt.publishMemberLeft(sess.Room, connID, sess.Username)
	}
	rt.directory.AddMember(room, connID)
	rt.registry.SetRoom(connID, room)

	notice := fmt.Sprintf("%s joined %q", sess.Username, room)
	if create {
		notice = fmt.Sprintf("%s created room %q", sess.Username, room)
	}
	rt.dispatcher.Broadcast(room, SystemReply{Type: TypeSystem, Text: notice}, connID)
	rt.dispatcher.Send(connID, JoinedReply{Type: TypeJoined, Room: room})
	if !create {
		rt.sendRooms(connID)
	}

	if created && rt.eventBus != nil {
		ev := events.RoomCreatedEvent{
			Room:      room,
			CreatedBy: sess.Username,
			Protected: password != "" && create,
			Timestamp: time.Now(),
		}
		if err := events.RoomCreatedV1.Publish(rt.eventBus, ev, nil); err != nil {
			log.Printf("[chat] failed to publish RoomCreated event: %v", err)
		}
	}
	if rt.eventBus != nil {
		ev := events.MemberJoinedEvent{
			Room:      room,
			ConnID:    connID,
			Username:  sess.Username,
			Timestamp: time.Now(),
		}
		if err := events.MemberJoinedV1.Publish(rt.eventBus, ev, nil); err != nil {
			log.Printf("[chat] failed to publish MemberJoined event: %v", err)
		}
	}
}

func (rt *Router) handleChat(connID string, pkt inboundPacket) {
	sess, ok := rt.registry.Get(connID)
	if !ok || sess.Room == "" {
		rt.dispatcher.Send(connID, ErrorReply{
			Type: TypeError,
			Text: "Join or create a room first",
		})
		return
	}

	text := sanitizeField(pkt.Text, "", MaxTextLen)
	rt.dispatcher.Broadcast(sess.Room, ChatReply{
		Type:     TypeChat,
		Username: sess.Username,
		Text:     text,
		Ts:       time.Now().UnixMilli(),
		Room:     sess.Room,
	}, "")

	if rt.eventBus != nil {
		ev := events.MessageBroadcastEvent{
			Room:      sess.Room,
			ConnID:    connID,
			Username:  sess.Username,
			Chars:     len(text),
			Timestamp: time.Now(),
		}
		if err := events.MessageBroadcastV1.Publish(rt.eventBus, ev, nil); err != nil {
			log.Printf("[chat] failed to publish MessageBroadcast event: %v", err)
		}
	}
}

func (rt *Router) sendRooms(connID string) {
	rt.dispatcher.Send(connID, RoomsReply{Type: TypeRooms, Rooms: rt.directory.List()})
}

func (rt *Router) publishMemberLeft(room, connID, username string) {
	if rt.eventBus == nil {
		return
	}
	ev := events.MemberLeftEvent{
		Room:      room,
		ConnID:    connID,
		Username:  username,
		Timestamp: time.Now(),
	}
	if err := events.MemberLeftV1.Publish(rt.eventBus, ev, nil); err != nil {
		log.Printf("[chat] failed to publish MemberLeft event: %v", err)
	}
}
