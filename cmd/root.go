package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	coremon "github.com/kilianp07/gridmon/core/monitoring"
	"github.com/kilianp07/gridmon/infra/monitoring"
)

var cfgPath string

// setupMonitoring installs the process wide error monitor.
var setupMonitoring = monitoring.Setup

var rootCmd = &cobra.Command{
	Use:           "gridmon",
	Short:         "Smart grid monitoring service",
	Long:          "gridmon watches a power distribution network, detects anomalies and lets dispatchers act on them.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serve,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); built-in defaults when empty")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the monitoring service until interrupted",
		RunE:  serve,
	})
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := interruptible()
	defer stop()

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	flush, err := setupMonitoring(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	defer flush()
	defer coremon.Current().Recover()

	svc, release, err := openService("serve", cfg)
	if err != nil {
		coremon.CaptureException(err, map[string]string{"component": "startup"})
		return err
	}
	defer release()
	return svc.Run(ctx)
}
