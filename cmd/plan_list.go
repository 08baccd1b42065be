package cmd

import (
	"fmt"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/spf13/cobra"
)

var (
	planListPattern string
	planListSince   string
)

func parseSince(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := iso8601.ParseString(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: %w", s, err)
	}
	return t, nil
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		since, err := parseSince(planListSince)
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
		plans, err := c.List(ctx, planListPattern, since)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(plans))
		for _, info := range plans {
			rows = append(rows, planRow(info))
		}
		printTable(cmd.OutOrStdout(), termWidth(), planHeaders, rows)
		return nil
	},
}

func init() {
	planCmd.AddCommand(planListCmd)
	planListCmd.Flags().StringVarP(&planListPattern, "pattern", "p", "", "Glob matched against plan names")
	planListCmd.Flags().StringVarP(&planListSince, "since", "s", "", "Only plans created at or after this ISO 8601 time")
}
