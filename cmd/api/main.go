package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nerakcos/storefront-api/internal/router"
	"github.com/nerakcos/storefront-api/pkg/auth"
	"github.com/nerakcos/storefront-api/pkg/cart"
	"github.com/nerakcos/storefront-api/pkg/email"
	"github.com/nerakcos/storefront-api/pkg/global"
	"github.com/nerakcos/storefront-api/pkg/mongo"
	"github.com/nerakcos/storefront-api/pkg/redis"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	ctx, cancel := global.GetDefaultTimer()
	store, err := mongo.Connect(ctx, global.GetMongoURI(), global.GetDatabaseName())
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	ctx, cancel = global.GetDefaultTimer()
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	cancel()

	redisClient := redis.NewClient()
	guestCarts := redis.NewGuestCartStore(redisClient)

	uploadDir := global.GetUploadDir()
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	deps := router.Deps{
		Store:     store,
		Carts:     cart.NewService(guestCarts, store, store),
		Tokens:    auth.NewTokenService(global.GetJWTSecret()),
		Notifier:  email.NewNotifier(),
		UploadDir: uploadDir,
	}
	engine := router.NewEngine(deps)

	port := global.GetEnvOrDefault("PORT", "8000")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: engine,
	}

	go func() {
		log.Printf("Server is running on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("Failed to close Redis client: %v", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Printf("Failed to close MongoDB client: %v", err)
	}
	log.Println("Server stopped")
}
