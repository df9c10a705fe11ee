package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/warehousesim/internal/model"
)

var exportScenarioName string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run a scenario to completion and print its path-coordinate export",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportScenarioName, "scenario", "S1", "built-in scenario to run before exporting")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	fn, ok := scenarios[exportScenarioName]
	if !ok {
		return fmt.Errorf("unknown scenario %q (known: S1..S6)", exportScenarioName)
	}
	m, ticks, err := fn()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	runToCompletion(m, ticks)
	fmt.Fprint(os.Stdout, m.ExportPathCoordinates())
	return nil
}

func runToCompletion(m *model.Model, ticks int) {
	for i := 0; i < ticks; i++ {
		m.Step()
	}
}
