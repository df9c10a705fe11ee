// Command warehousesim runs the warehouse coordination engine, either as a
// long-lived HTTP+WebSocket server or as a headless scripted scenario,
// following the retrieved pack's cobra root-command-plus-subcommands style.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
