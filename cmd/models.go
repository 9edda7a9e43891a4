package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsim-dev/vsim/sim"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the designs that can be simulated",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range sim.ModelNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
