package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wkalt/mohair/api"
	"github.com/wkalt/mohair/util"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Submit, inspect and translate query plans",
}

var planHeaders = []string{"Key", "Name", "Sources", "Size", "Created At"}

func planRow(info api.PlanInfo) []string {
	return []string{
		info.Key,
		info.Name,
		strings.Join(info.Sources, ", "),
		util.HumanBytes(uint64(info.Size)),
		info.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func printPlanInfo(w io.Writer, info api.PlanInfo) {
	printRecords(w, termWidth(), planHeaders, [][]string{planRow(info)})
	fmt.Fprintln(w)
	printTree(w, info.Root)
}

func init() {
	rootCmd.AddCommand(planCmd)
}
