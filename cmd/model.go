package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridmon/core/modeling"
)

var (
	modelType     string
	modelPower    string
	modelLocation string
	modelLoad     string
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Estimate the impact of connecting a new object",
	RunE:  runModel,
}

func init() {
	modelCmd.Flags().StringVar(&modelType, "type", "consumer", "object type")
	modelCmd.Flags().StringVar(&modelPower, "power", "0", "rated power in kW")
	modelCmd.Flags().StringVar(&modelLocation, "location", "", "location")
	modelCmd.Flags().StringVar(&modelLoad, "load", "0", "expected load in kW")
	rootCmd.AddCommand(modelCmd)
}

func runModel(cmd *cobra.Command, args []string) error {
	res, err := modeling.Simulate(modelType, modelPower, modelLocation, modelLoad)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
	return err
}
