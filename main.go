package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ethantanner/spotify-coding-challenge/config"
	"github.com/ethantanner/spotify-coding-challenge/handlers"
	"github.com/ethantanner/spotify-coding-challenge/spotify"
	"github.com/ethantanner/spotify-coding-challenge/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	tokens := spotify.NewTokenSource(context.Background(), cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	catalog := spotify.NewClient(context.Background(), tokens)

	handler := handlers.NewTrackHandler(store.NewTracks(db), catalog)
	router := handlers.SetupRouter(handler)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		logrus.Infof("Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Forced shutdown: %v", err)
	}
}
