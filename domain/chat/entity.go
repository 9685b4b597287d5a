package chat

// Session tracks the identity and current room of one live connection.
type Session struct {
	ConnID   string `json:"conn_id"`
	Username string `json:"username"`
	Room     string `json:"room,omitempty"`
}

// Room is a named broadcast group.
type Room struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
	Private bool   `json:"private"`
}
