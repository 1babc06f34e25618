package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/bootstrap"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/server"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	app, cleanup, err := bootstrap.Init(configPath)
	if err != nil {
		log.Fatalf("failed to initialize service: %v", err)
	}

	fiberApp := server.New(app.Config, app.Handler, app.Sessions, app.Sugar)

	go func() {
		listenAddr := fmt.Sprintf(":%d", app.Config.App.Port)
		app.Sugar.Infof("Server listening on %s", listenAddr)
		if err := fiberApp.Listen(listenAddr); err != nil {
			app.Sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	app.Sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := fiberApp.ShutdownWithContext(ctxShut); err != nil {
		app.Sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	cleanup(ctxShut)

	app.Sugar.Info("Graceful shutdown complete. Goodbye!")
}
