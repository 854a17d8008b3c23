package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-backend/internal/config"
	"storefront-backend/internal/database"
	"storefront-backend/internal/handlers"
	"storefront-backend/internal/logger"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/router"
	"storefront-backend/internal/services"
	"storefront-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting storefront backend", "env", cfg.Env, "llm_provider", cfg.LLMProvider)

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres connection failed", "error", err)
	}
	defer pool.Close()
	log.Info("postgres connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatal("redis connection failed", "error", err)
	}
	defer redisClients.Close()
	log.Info("redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(context.Background(), pool, cfg.MigrationsDir, log); err != nil {
		log.Fatal("database migration failed", "error", err)
	}

	// ──── Step 5: Initialize Language Model Client ────
	llm, err := services.NewLLM(cfg)
	if err != nil {
		log.Fatal("llm client initialization failed", "error", err)
	}
	defer llm.Close()
	log.Info("llm client initialized", "model", cfg.LLMModel)

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	productRepo := repository.NewProductRepo(pool)
	chatRepo := repository.NewChatRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	events := services.NewCatalogEvents(redisClients.Cmd, log)
	catalogService := services.NewCatalogService(productRepo, services.NewRedisCache(redisClients.Cmd), cfg.CategoryCacheTTL, log)
	assistantService := services.NewAssistantService(chatRepo, productRepo, catalogService, llm, log)
	descriptionService := services.NewDescriptionService(productRepo, llm, events, log)
	seedService := services.NewSeedService(productRepo, cfg.SeedSourceURL, catalogService, events, log)
	exporter := services.NewCatalogExporter(productRepo)
	authService := services.NewAuthService(userRepo, services.NewRedisTokenStore(redisClients.Cmd), jwtAuth, cfg.IsAdminEmail)

	// ──── Initialize Handlers ────
	h := router.Handlers{
		Auth:      handlers.NewAuthHandler(authService, cfg.CookieSecure, log),
		Product:   handlers.NewProductHandler(catalogService, log),
		Assistant: handlers.NewAssistantHandler(assistantService, log),
		Admin:     handlers.NewAdminHandler(descriptionService, seedService, exporter, log),
	}

	// ──── Step 6: Start WebSocket Hub ────
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := websocket.NewHub(redisClients.PubSub, services.CatalogUpdatesChannel, jwtAuth, log)
	go wsHub.Run(hubCtx)
	log.Info("websocket hub started", "channel", services.CatalogUpdatesChannel)

	// ──── Step 7: Start HTTP Server ────
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     router.New(jwtAuth, h, wsHub, log, cfg.FrontendURL),
		ReadTimeout: 15 * time.Second,
		// Leaves room for a full model round trip
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down")
		stopHub()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info("storefront backend ready", "addr", "http://localhost:"+cfg.Port, "api", "/api/v1", "ws", "/api/v1/ws")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("server error", "error", err)
	}
}
