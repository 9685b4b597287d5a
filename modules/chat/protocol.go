package chat

import (
	"encoding/json"
	"strings"
)

// Wire limits and fallbacks.
const (
	MaxNameLen = 64
	MaxTextLen = 2000

	DefaultUsername = "Anon"
	DefaultRoom     = "general"
)

// Inbound packet types.
const (
	TypeHello  = "hello"
	TypeCreate = "create"
	TypeJoin   = "join"
	TypeChat   = "chat"
	TypeList   = "list"
)

// Outbound packet types.
const (
	TypeSystem = "system"
	TypeRooms  = "rooms"
	TypeJoined = "joined"
	TypeError  = "error"
)

// inboundPacket is one raw client frame. The value fields stay raw so a
// non-string value sanitizes to "" instead of failing the whole frame; a
// frame whose type field is not a string fails to decode and is dropped.
type inboundPacket struct {
	Type     string          `json:"type"`
	Username json.RawMessage `json:"username"`
	Room     json.RawMessage `json:"room"`
	Password json.RawMessage `json:"password"`
	Text     json.RawMessage `json:"text"`
}

// SystemReply carries a server-generated notice.
type SystemReply struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// RoomsReply lists all room names, sorted ascending.
type RoomsReply struct {
	Type  string   `json:"type"`
	Rooms []string `json:"rooms"`
}

// JoinedReply confirms room entry.
type JoinedReply struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// ChatReply is a fanned-out chat message. Ts is milliseconds since epoch.
type ChatReply struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Text     string `json:"text"`
	Ts       int64  `json:"ts"`
	Room     string `json:"room"`
}

// ErrorReply reports a policy or precondition violation to the originator.
type ErrorReply struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Sanitize trims surrounding whitespace and truncates to max runes.
// Oversized input is silently cut, never rejected.
func Sanitize(s string, max int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > max {
		return string(r[:max])
	}
	return s
}

// sanitizeField decodes a raw JSON field that should hold a string. A missing
// or empty value takes the fallback; a non-string value becomes "". The
// fallback is applied before trimming, so a whitespace-only value still
// sanitizes to "".
func sanitizeField(raw json.RawMessage, fallback string, max int) string {
	var s string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
	}
	if s == "" {
		s = fallback
	}
	return Sanitize(s, max)
}
