package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/warehousesim/internal/transport"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and bootstrap warehousesim configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file to the given path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if err := transport.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
