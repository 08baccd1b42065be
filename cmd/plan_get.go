package cmd

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var planGetMessage bool

var planGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a stored plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		ctx, cancel := requestContext(cmd)
		defer cancel()
		resp, err := c.Get(ctx, args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if planGetMessage {
			buf := &bytes.Buffer{}
			if err := json.Indent(buf, resp.Message, "", "  "); err != nil {
				return fmt.Errorf("failed to format message: %w", err)
			}
			fmt.Fprintln(w, buf.String())
			return nil
		}
		printPlanInfo(w, resp.Plan)
		return nil
	},
}

func init() {
	planCmd.AddCommand(planGetCmd)
	planGetCmd.Flags().BoolVarP(&planGetMessage, "message", "m", false, "Print the stored plan message instead")
}
