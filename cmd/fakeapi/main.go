// Command fakeapi serves the in-memory recipe API for local development.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/recipelib/recipes-go/internal/fakeapi"
	"github.com/recipelib/recipes-go/internal/logging"
)

func main() {
	envErr := godotenv.Load()

	log, err := logging.New(getEnv("FAKEAPI_LOG_LEVEL", "info"))
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	if envErr != nil {
		log.Warn("no .env file found, using environment variables")
	}

	port := getEnv("PORT", "8080")
	expiry, err := time.ParseDuration(getEnv("FAKEAPI_TOKEN_EXPIRY", "1h"))
	if err != nil {
		log.Fatal("invalid FAKEAPI_TOKEN_EXPIRY", zap.Error(err))
	}
	rps, err := strconv.ParseFloat(getEnv("FAKEAPI_AUTH_RPS", "5"), 64)
	if err != nil {
		log.Fatal("invalid FAKEAPI_AUTH_RPS", zap.Error(err))
	}

	api := fakeapi.New(
		fakeapi.WithSecret(getEnv("FAKEAPI_SECRET", "change-me-in-production")),
		fakeapi.WithTokenExpiry(expiry),
		fakeapi.WithAuthRateLimit(rps, 10),
		fakeapi.WithLogger(log),
	)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Mount("/", api.Handler())

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Info("fake api starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced shutdown", zap.Error(err))
		os.Exit(1)
	}

	log.Info("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
