package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/browser"
	"github.com/seantronsen/virtual-memory-sim/simulation"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay the recorded address stream and validate every access.",
	Long: `Run replays the recorded address stream through the translation ` +
		`stack, compares every access against the oracle, and records the ` +
		`run to an SQLite database.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg := loadConfig(cmd)

		builder := simulation.MakeBuilder().WithConfig(cfg)

		if noMonitor, _ := cmd.Flags().GetBool("no-monitor"); noMonitor {
			builder = builder.WithoutMonitoring()
		}

		if port, _ := cmd.Flags().GetInt("monitor-port"); port != 0 {
			builder = builder.WithMonitorPort(port)
		}

		if output, _ := cmd.Flags().GetString("output"); output != "" {
			builder = builder.WithOutputFileName(output)
		}

		s, err := builder.Build()
		if err != nil {
			log.Fatal(err)
		}

		if open, _ := cmd.Flags().GetBool("open"); open {
			openDashboard(s)
		}

		err = s.Run()
		s.Terminate()
		if err != nil {
			log.Fatal(err)
		}
	},
}

func openDashboard(s *simulation.Simulation) {
	monitor := s.GetMonitor()
	if monitor == nil {
		fmt.Fprintln(os.Stderr, "Cannot open the dashboard without monitoring.")
		return
	}

	url := fmt.Sprintf("http://localhost:%d", monitor.Port())
	if err := browser.OpenURL(url); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open browser: %s\n", err)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	addConfigFlags(runCmd)
	runCmd.Flags().Bool("no-monitor", false, "Disable the monitoring server")
	runCmd.Flags().Int("monitor-port", 0, "Port for the monitoring server")
	runCmd.Flags().Bool("open", false,
		"Open the monitoring dashboard in a browser")
	runCmd.Flags().String("output", "", "Base name of the run database")
}
