package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hivewatch/console/internal/config"
	"github.com/hivewatch/console/internal/mock"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}
	if *port > 0 {
		cfg.Mock.Port = *port
	}

	store := mock.NewStore()
	hub := mock.NewHub()
	hub.StreamMaxAge = cfg.Mock.StreamMaxAge
	defer hub.Close()

	gen := mock.NewGenerator(store, hub)
	if cfg.Mock.TickInterval > 0 {
		gen.TickInterval = cfg.Mock.TickInterval
	}
	if cfg.Mock.StatsInterval > 0 {
		gen.StatsInterval = cfg.Mock.StatsInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen.Start(ctx)

	server := mock.NewServer(store, hub, cfg.Mock.AuthToken)
	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("Shutting down")
		cancel()
		hub.Close()
		os.Exit(0)
	}()

	if err := mock.ListenAndServe(cfg.Mock.Host, cfg.Mock.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
