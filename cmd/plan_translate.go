package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wkalt/mohair/plan"
)

var planTranslateRemote bool

var planTranslateCmd = &cobra.Command{
	Use:   "translate [file]",
	Short: "Translate a plan without storing it",
	Long: `Translate a plan read from a file or stdin and print the resulting plan
tree. Translation happens locally unless --remote is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if !planTranslateRemote {
			qp, err := plan.Translate(msg)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "key: %s\nfingerprint: %s\nsources: %s\ndepth: %d\n\n",
				qp.Key(), qp.FingerprintKey(), strings.Join(plan.Sources(qp.Root), ", "), plan.Depth(qp.Root))
			printTree(w, qp.String())
			return nil
		}
		c, err := dial(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		ctx, cancel := requestContext(cmd)
		defer cancel()
		resp, err := c.Translate(ctx, msg)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "key: %s\nfingerprint: %s\nsources: %s\ndepth: %d\n\n",
			resp.Key, resp.Fingerprint, strings.Join(resp.Sources, ", "), resp.Depth)
		printTree(w, resp.Root)
		return nil
	},
}

func init() {
	planCmd.AddCommand(planTranslateCmd)
	planTranslateCmd.Flags().BoolVarP(&planTranslateRemote, "remote", "r", false, "Translate on the server")
}
