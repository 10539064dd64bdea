package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/swaploop/swaploop/internal/config"
	"github.com/swaploop/swaploop/internal/database"
	postgresrepo "github.com/swaploop/swaploop/internal/repository/postgres"
	"github.com/swaploop/swaploop/internal/service"
	"github.com/swaploop/swaploop/internal/transport/http/handlers"
	"github.com/swaploop/swaploop/internal/transport/http/middleware"
	"github.com/swaploop/swaploop/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Repositories
	messageRepo := postgresrepo.NewMessageRepo(pool)
	swapRepo := postgresrepo.NewSwapRepo(pool)

	// Services
	messageService := service.NewMessageService(messageRepo, swapRepo)
	swapService := service.NewSwapService(swapRepo, messageRepo)

	// WebSocket hub + notifier
	hub := ws.NewHub()
	go hub.Run()
	notifier := ws.NewHubNotifier(hub)
	messageService.SetNotifier(notifier)
	swapService.SetNotifier(notifier)

	// Handlers
	messageHandler := handlers.NewMessageHandler(messageService)
	swapHandler := handlers.NewSwapHandler(swapService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	// Protected - Messages
	mux.Handle("GET /api/v1/messages/swap/{id}", auth(http.HandlerFunc(messageHandler.List)))
	mux.Handle("POST /api/v1/messages/swap/{id}", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("PUT /api/v1/messages/{id}/read", auth(http.HandlerFunc(messageHandler.MarkRead)))
	mux.Handle("GET /api/v1/messages/unread", auth(http.HandlerFunc(messageHandler.Unread)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Delete)))

	// Protected - Swaps
	mux.Handle("POST /api/v1/swaps", auth(http.HandlerFunc(swapHandler.Create)))
	mux.Handle("GET /api/v1/swaps", auth(http.HandlerFunc(swapHandler.List)))
	mux.Handle("GET /api/v1/swaps/{id}", auth(http.HandlerFunc(swapHandler.Get)))
	mux.Handle("PUT /api/v1/swaps/{id}/status", auth(http.HandlerFunc(swapHandler.UpdateStatus)))
	mux.Handle("DELETE /api/v1/swaps/{id}", auth(http.HandlerFunc(swapHandler.Delete)))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
