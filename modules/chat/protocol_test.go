package chat

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"plain", "alice", 64, "alice"},
		{"trims whitespace", "  alice \n", 64, "alice"},
		{"whitespace only", "   ", 64, ""},
		{"truncates", strings.Repeat("a", 70), 64, strings.Repeat("a", 64)},
		{"truncates by runes", strings.Repeat("é", 70), 64, strings.Repeat("é", 64)},
		{"exact max", strings.Repeat("a", 64), 64, strings.Repeat("a", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in, tt.max); got != tt.want {
				t.Errorf("Sanitize(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestSanitizeField(t *testing.T) {
	tests := []struct {
		name     string
		raw      string // JSON value, "" = field absent
		fallback string
		want     string
	}{
		{"string value", `"lobby"`, "general", "lobby"},
		{"absent uses fallback", ``, "general", "general"},
		{"empty string uses fallback", `""`, "general", "general"},
		{"whitespace only sanitizes to empty", `"   "`, "general", ""},
		{"number rejected to empty", `42`, "general", ""},
		{"object rejected to empty", `{"a":1}`, "general", ""},
		{"null uses fallback", `null`, "general", "general"},
		{"no fallback", ``, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw json.RawMessage
			if tt.raw != "" {
				raw = json.RawMessage(tt.raw)
			}
			if got := sanitizeField(raw, tt.fallback, MaxNameLen); got != tt.want {
				t.Errorf("sanitizeField(%s, %q) = %q, want %q", tt.raw, tt.fallback, got, tt.want)
			}
		})
	}
}
