package chat

import "testing"

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	registry.Register("conn-1")

	sess, ok := registry.Get("conn-1")
	if !ok {
		t.Fatal("Expected session to exist")
	}
	if sess.Username != DefaultUsername {
		t.Errorf("Expected placeholder username %q, got %q", DefaultUsername, sess.Username)
	}
	if sess.Room != "" {
		t.Errorf("Expected no room, got %q", sess.Room)
	}

	if _, ok := registry.Get("unknown"); ok {
		t.Error("Expected unknown id to not exist")
	}
}

func TestRegistry_SetIdentityAndRoom(t *testing.T) {
	registry := NewRegistry()
	registry.Register("conn-1")

	registry.SetIdentity("conn-1", "alice")
	registry.SetRoom("conn-1", "lobby")

	sess, _ := registry.Get("conn-1")
	if sess.Username != "alice" {
		t.Errorf("Expected username 'alice', got %q", sess.Username)
	}
	if sess.Room != "lobby" {
		t.Errorf("Expected room 'lobby', got %q", sess.Room)
	}

	registry.SetRoom("conn-1", "")
	sess, _ = registry.Get("conn-1")
	if sess.Room != "" {
		t.Errorf("Expected room cleared, got %q", sess.Room)
	}

	// Updates on unknown ids are no-ops.
	registry.SetIdentity("unknown", "bob")
	registry.SetRoom("unknown", "lobby")
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	registry.Register("conn-1")

	registry.Remove("conn-1")
	if _, ok := registry.Get("conn-1"); ok {
		t.Error("Expected session to be removed")
	}
	if registry.Count() != 0 {
		t.Errorf("Expected count 0, got %d", registry.Count())
	}

	registry.Remove("conn-1") // second remove is a no-op
	if registry.Count() != 0 {
		t.Errorf("Expected count 0 after double remove, got %d", registry.Count())
	}
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	registry := NewRegistry()
	registry.Register("conn-1")

	sess, _ := registry.Get("conn-1")
	sess.Username = "mallory"

	stored, _ := registry.Get("conn-1")
	if stored.Username != DefaultUsername {
		t.Errorf("Mutating the returned session changed the stored one: %q", stored.Username)
	}
}
