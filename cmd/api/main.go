package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/omaralkhatib/roomly/docs"
	"github.com/omaralkhatib/roomly/internal/chat"
	"github.com/omaralkhatib/roomly/internal/config"
	"github.com/omaralkhatib/roomly/internal/database"
	"github.com/omaralkhatib/roomly/internal/live"
	"github.com/omaralkhatib/roomly/internal/notification"
	mw "github.com/omaralkhatib/roomly/pkg/middleware"
)

// @title           Roomly Notification & Chat API
// @version         1.0
// @description     Notification ledger with live delivery and real-time chat for the Roomly rental platform.
// @BasePath        /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Ledger and message stores: Postgres when configured, in-memory for
	// development.
	var notificationStore notification.Store
	var messageStore chat.MessageStore

	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to database successfully")

		notificationStore, err = notification.NewPostgresStore(db)
		if err != nil {
			log.Fatalf("Failed to initialize notification store: %v", err)
		}
		messageStore, err = chat.NewPostgresStore(db)
		if err != nil {
			log.Fatalf("Failed to initialize chat store: %v", err)
		}
	} else {
		log.Println("DATABASE_URL not set, using in-memory stores")
		notificationStore = notification.NewMemoryStore()
		messageStore = chat.NewMemoryStore()
	}

	// Live delivery
	broker := live.NewBroker()
	groups := chat.NewGroups()

	// Notification feature
	notificationService := notification.NewService(notificationStore, broker)
	notificationHandler := notification.NewHandler(notificationService)

	// Chat feature
	chatService := chat.NewService(messageStore, groups)
	chatHandler := chat.NewHandler(chatService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.TestUserMiddleware)
		r.Use(mw.Auth(cfg.JWTSecret))

		r.Mount("/notifications", notificationHandler.Routes())
		r.Mount("/chat", chatHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
