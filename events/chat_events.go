package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// RoomCreatedEvent is emitted when a room springs into existence.
type RoomCreatedEvent struct {
	Room      string    `json:"room"`
	CreatedBy string    `json:"created_by"`
	Protected bool      `json:"protected"`
	Timestamp time.Time `json:"timestamp"`
}

// MemberJoinedEvent is emitted when a connection enters a room.
type MemberJoinedEvent struct {
	Room      string    `json:"room"`
	ConnID    string    `json:"conn_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// MemberLeftEvent is emitted when a connection leaves a room, whether by
// switching rooms, disconnecting, or being reaped by the liveness sweep.
type MemberLeftEvent struct {
	Room      string    `json:"room"`
	ConnID    string    `json:"conn_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageBroadcastEvent is emitted after a chat message fans out to a room.
type MessageBroadcastEvent struct {
	Room      string    `json:"room"`
	ConnID    string    `json:"conn_id"`
	Username  string    `json:"username"`
	Chars     int       `json:"chars"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"chat", "RoomCreated", "v1",
	)

	MemberJoinedV1 = helper.EventDefinition[MemberJoinedEvent](
		"chat", "MemberJoined", "v1",
	)

	MemberLeftV1 = helper.EventDefinition[MemberLeftEvent](
		"chat", "MemberLeft", "v1",
	)

	MessageBroadcastV1 = helper.EventDefinition[MessageBroadcastEvent](
		"chat", "MessageBroadcast", "v1",
	)
)
