package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/logging"
	"github.com/A-s-w-i-n/webRtc-videoCall/internal/relay"
	"github.com/A-s-w-i-n/webRtc-videoCall/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}
	logging.Init(slog.LevelInfo)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	registry := relay.NewRegistry()
	rel := relay.New(registry)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.ServeWs(rel))
	mux.HandleFunc("/health", server.Health)
	mux.HandleFunc("/stats", server.Stats(rel))

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		slog.Info("signaling server starting", "port", port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
