package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"

	"github.com/example/roomchat/modules/api"
	"github.com/example/roomchat/modules/broadcast"
	"github.com/example/roomchat/modules/chat"
	"github.com/example/roomchat/modules/presence"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== roomchat - multi-room WebSocket chat ===")

	// Load .env if present; in production real env vars are already set.
	_ = godotenv.Load()

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	chatModule := chat.NewModule()
	broadcastModule := broadcast.NewModule(chatModule.Directory())
	presenceModule := presence.NewModule()
	apiModule := api.NewModule(chatModule)

	// The router and the hub reference each other, and the API module drives
	// the hub; none of this goes through the ServiceContainer, so wire it
	// manually.
	chatModule.SetDispatcher(broadcastModule.Hub())
	broadcastModule.Hub().SetHandler(chatModule.Router())
	apiModule.SetHub(broadcastModule.Hub())

	// Register modules with the framework.
	// - chat: core state machine (registry, directory, router)
	// - broadcast: hub event loop + liveness monitor
	// - presence: event consumer for activity counters
	// - api: Fiber HTTP/WebSocket server
	app.Register(chatModule)
	app.Register(broadcastModule)
	app.Register(presenceModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5001"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Browser client:      http://localhost:%s/", port)
	log.Printf("WebSocket endpoint:  ws://localhost:%s/ws", port)
	log.Printf("Health check:        http://localhost:%s/health", port)
	log.Printf("Room list (REST):    http://localhost:%s/api/v1/rooms", port)
	log.Println("")
	log.Println("Protocol packet types: hello, create, join, chat, list")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
