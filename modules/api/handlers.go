package api

import (
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// handleWebSocket owns the read side of one connection. Everything it reads
// is queued onto the hub's event loop; the connection id is the only handle
// the core ever sees.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()

	// Pong control frames re-arm the liveness flag.
	c.SetPongHandler(func(string) error {
		m.hub.Pong(connID)
		return nil
	})

	m.hub.Attach(connID, c)
	defer m.hub.Detach(connID)

	log.Printf("[api] WebSocket client connected: %s", connID)

	for {
		msgType, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] read error from %s: %v", connID, err)
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		m.hub.Inbound(connID, data)
	}

	log.Printf("[api] WebSocket client disconnected: %s", connID)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms := m.chatModule.Directory().Snapshot()

	response := RoomListResponse{
		Rooms: make([]RoomResponse, 0, len(rooms)),
	}
	for _, room := range rooms {
		response.Rooms = append(response.Rooms, RoomResponse{
			Name:    room.Name,
			Members: room.Members,
			Private: room.Private,
		})
	}
	return c.JSON(response)
}
