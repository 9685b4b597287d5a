package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/roomchat/modules/broadcast"
	"github.com/example/roomchat/modules/chat"
)

func newTestApp(t *testing.T) (*fiber.App, *chat.Module) {
	t.Helper()
	chatModule := chat.NewModule()
	m := NewModule(chatModule)
	m.SetHub(broadcast.NewHub(chatModule.Directory(), time.Minute))
	return m.buildApp(), chatModule
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %q", health.Status)
	}
}

func TestListRoomsEndpoint(t *testing.T) {
	app, chatModule := newTestApp(t)
	chatModule.Directory().Ensure("lobby")
	chatModule.Directory().AddMember("lobby", "a")
	chatModule.Directory().AddMember("lobby", "b")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var list RoomListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Rooms) != 1 || list.Rooms[0].Name != "lobby" || list.Rooms[0].Members != 2 {
		t.Errorf("Unexpected room list: %+v", list.Rooms)
	}
}

func TestWebSocketRouteRequiresUpgrade(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("Expected 426 for plain GET, got %d", resp.StatusCode)
	}
}

func TestUnknownPathReturnsNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}
