package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"towerdefense-sim/internal/dashboard"
	"towerdefense-sim/internal/logging"
)

var outDir string

var cmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render the Grafana dashboards for the tower defense tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := dashboard.Render(outDir); err != nil {
			return err
		}
		logging.New("text", os.Getenv("LOG_LEVEL")).Info("dashboards rendered", "dir", outDir)
		return nil
	},
}

func main() {
	cmd.Flags().StringVar(&outDir, "out", "build", "Directory receiving the rendered dashboards")
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
