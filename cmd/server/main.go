package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/parley-chat/parley/internal/blob"
	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/database"
	applog "github.com/parley-chat/parley/internal/log"
	"github.com/parley-chat/parley/internal/metrics"
	postgresrepo "github.com/parley-chat/parley/internal/repository/postgres"
	"github.com/parley-chat/parley/internal/service"
	"github.com/parley-chat/parley/internal/transport/http/handlers"
	"github.com/parley-chat/parley/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	applog.Init(cfg.Env)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	log.Info().Msg("connected to database")

	blobs, err := blob.NewFileStore(
		cfg.BlobDir, cfg.BaseURL, []byte(cfg.JWTSecret),
		time.Duration(cfg.UploadSlotTTLMin)*time.Minute,
		time.Duration(cfg.DownloadURLTTLMin)*time.Minute,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("init blob store")
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	profileRepo := postgresrepo.NewProfileRepo(pool)
	convRepo := postgresrepo.NewConversationRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)

	// Services
	userService := service.NewUserService(userRepo, profileRepo)
	convService := service.NewConversationService(convRepo, messageRepo, userRepo, profileRepo)
	messageService := service.NewMessageService(convRepo, messageRepo, userRepo, profileRepo, blobs)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	convHandler := handlers.NewConversationHandler(convService)
	messageHandler := handlers.NewMessageHandler(messageService)
	uploadHandler := handlers.NewUploadHandler(messageService, blobs)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Conversations
	mux.HandleFunc("GET /api/v1/conversations", convHandler.List)
	mux.HandleFunc("POST /api/v1/conversations/direct", convHandler.CreateDirect)
	mux.HandleFunc("POST /api/v1/conversations/group", convHandler.CreateGroup)

	// Messages
	mux.HandleFunc("GET /api/v1/conversations/{id}/messages", messageHandler.List)
	mux.HandleFunc("POST /api/v1/conversations/{id}/messages", messageHandler.AppendText)
	mux.HandleFunc("POST /api/v1/conversations/{id}/attachments", messageHandler.AppendAttachment)

	// Attachments
	mux.HandleFunc("POST /api/v1/uploads", uploadHandler.RequestSlot)
	mux.HandleFunc("PUT /api/v1/uploads", uploadHandler.Upload)
	mux.HandleFunc("GET /api/v1/attachments/{ref}", uploadHandler.Download)

	// Users
	mux.HandleFunc("GET /api/v1/users/me", userHandler.Me)
	mux.HandleFunc("POST /api/v1/users/me/profile", userHandler.CreateProfile)
	mux.HandleFunc("GET /api/v1/users", userHandler.ListOthers)
	mux.HandleFunc("PATCH /api/v1/users/me/status", userHandler.UpdateStatus)
	mux.HandleFunc("PATCH /api/v1/users/me/display-name", userHandler.UpdateDisplayName)

	var handler http.Handler = mux
	handler = middleware.Identify(cfg.JWTSecret)(handler)
	handler = middleware.CORS(cfg.Env)(handler)
	handler = middleware.RateLimit(rate.Every(time.Second/20), 40)(handler)
	handler = metrics.Middleware(handler)

	addr := ":" + cfg.ServerPort
	log.Info().Str("addr", addr).Msg("starting server")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
