package main

import (
	"fmt"

	"github.com/hray3182/DoseLine/internal/format"
	"github.com/hray3182/DoseLine/internal/history"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [YYYY-MM]",
	Short: "Show adherence for a month",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	now, _, err := a.svc.LocalNow(cmd.Context(), userID)
	if err != nil {
		return err
	}
	month := now.Format("2006-01")
	if len(args) == 1 {
		month = args[0]
	}
	from, to, err := history.MonthRange(month)
	if err != nil {
		return err
	}

	rep, err := a.reporter.Build(cmd.Context(), userID, from, to, now)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.Markdown(format.ReportText(rep)).Text)
	return nil
}
