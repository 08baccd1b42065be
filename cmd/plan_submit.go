package cmd

import (
	"github.com/spf13/cobra"
)

var planSubmitName string

var planSubmitCmd = &cobra.Command{
	Use:   "submit [file]",
	Short: "Store a plan read from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		c, err := dial(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		ctx, cancel := requestContext(cmd)
		defer cancel()
		info, err := c.Submit(ctx, planSubmitName, msg)
		if err != nil {
			return err
		}
		printPlanInfo(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	planCmd.AddCommand(planSubmitCmd)
	planSubmitCmd.Flags().StringVarP(&planSubmitName, "name", "n", "", "Plan name (defaults to the root plan's name)")
}
