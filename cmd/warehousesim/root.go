package main

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "warehousesim",
	Short: "Multi-robot warehouse coordination engine",
	Long: `warehousesim drives a grid of robots, charging stations, and
packages through the per-tick coordination loop and exposes it over HTTP
and WebSocket, or runs it headlessly against a scripted scenario.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (overrides defaults, overridden by WAREHOUSESIM_* env vars)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scenarioCmd)
}
