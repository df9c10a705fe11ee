package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/warehousesim/internal/model"
	"github.com/elektrokombinacija/warehousesim/internal/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP + WebSocket transport server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := transport.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	m, err := model.New(model.Config{Width: cfg.GridWidth, Height: cfg.GridHeight, Seed: cfg.Seed})
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	hub := transport.NewHub()
	go hub.Run()

	srv := transport.NewServer(m, hub, cfg.BroadcastEvery)
	log.Printf("warehousesim: listening on %s (grid %dx%d, seed %d)", cfg.Addr, cfg.GridWidth, cfg.GridHeight, cfg.Seed)
	return http.ListenAndServe(cfg.Addr, srv)
}
