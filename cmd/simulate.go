package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridmon/app"
	"github.com/kilianp07/gridmon/config"
	"github.com/kilianp07/gridmon/core/model"
)

var (
	simCycles int
	simReport string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run simulation cycles offline and print the network state",
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().IntVarP(&simCycles, "cycles", "n", 10, "number of simulation cycles")
	simulateCmd.Flags().StringVar(&simReport, "report", "", "report type to print afterwards (daily, weekly, monthly, incident)")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	if simCycles < 0 {
		return fmt.Errorf("cycles must not be negative")
	}
	typ := model.ReportType(simReport)
	if simReport != "" && !typ.Valid() {
		return fmt.Errorf("unknown report type %q", simReport)
	}
	ctx, stop := interruptible()
	defer stop()

	cfg, err := loadConfig(func(c *config.Config) { c.MQTT.Enabled = false })
	if err != nil {
		return err
	}
	svc, release, err := openService("simulate", cfg)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	if err := svc.Simulate(ctx, simCycles); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printStatus(out, svc)
	if typ != "" {
		rep, err := svc.Reports.Generate(typ, start.Add(-24*time.Hour), time.Now(), "cli")
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "\n%s\n%s", rep.Title, rep.Content)
	}
	return nil
}

func printStatus(out io.Writer, svc *app.Service) {
	st := svc.Monitor.NetworkStatus()
	_, _ = fmt.Fprintf(out, "objects=%d operational=%d maintenance=%d failures=%d health=%.1f%%\n",
		st.Total, st.Operational, st.Maintenance, st.Failures, st.HealthPercentage)
	active := svc.Monitor.ActiveAnomalies()
	_, _ = fmt.Fprintf(out, "active anomalies: %d\n", len(active))
	for _, a := range active {
		_, _ = fmt.Fprintf(out, "  [%s] %s on %s: %s\n", a.Severity, a.Type, a.ObjectID, a.Description)
	}
	_, _ = fmt.Fprintf(out, "alerts: %d unread\n", len(svc.Alerts.Unread()))
}
