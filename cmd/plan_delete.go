package cmd

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

var planDeleteCmd = &cobra.Command{
	Use:   "delete <key>...",
	Short: "Delete stored plans",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		ctx, cancel := requestContext(cmd)
		defer cancel()
		var errs error
		for _, key := range args {
			if err := c.Delete(ctx, key); err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", key)
		}
		return errs
	},
}

func init() {
	planCmd.AddCommand(planDeleteCmd)
}
