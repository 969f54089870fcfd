package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yassi1511/pfemedical-go/internal/config"
	"github.com/Yassi1511/pfemedical-go/internal/stubserver"
	"github.com/Yassi1511/pfemedical-go/pkg/logger"
	"github.com/Yassi1511/pfemedical-go/pkg/metrics"
)

// pfemedical-stub runs the in-memory backend so the client can be
// developed and demonstrated without the real practice API.
func main() {
	addr := flag.String("addr", ":3000", "listen address")
	seed := flag.Bool("seed", true, "seed a demo cabinet on startup")
	secret := flag.String("jwt-secret", "stub-secret", "HS256 signing secret")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	srv := stubserver.New(stubserver.Config{JWTSecret: *secret}, log)
	if *seed {
		if err := srv.Seed(); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
		log.Info("demo cabinet seeded", zap.String("password", "motdepasse"))
	}

	collector := metrics.NewCollector("pfemedical_stub")
	srv.Engine.GET("/metrics", gin.WrapH(collector.Handler()))

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("stub backend listening", zap.String("addr", *addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
	log.Info("stub backend stopped")
}
