package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crosschain-hub/internal/app"
	"crosschain-hub/internal/config"
	"crosschain-hub/internal/db"
	"crosschain-hub/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default config.local.yaml or config.yaml)")
	flag.Parse()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	db.InitDB()

	container, err := app.NewServiceContainer(cfg, db.DB)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	if err := container.InitNATS(); err != nil {
		// the HTTP API keeps working without the bus; notifications stay in the outbox
		log.Printf("⚠️ NATS initialization failed: %v", err)
	}
	container.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Hub API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ HTTP shutdown: %v", err)
	}
	container.Cleanup()

	if sqlDB, err := db.DB.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("✅ Shutdown complete")
}
