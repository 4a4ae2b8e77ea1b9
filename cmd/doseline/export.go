package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/export"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/spf13/cobra"
)

const maxExportDays = 366

var (
	exportFrom string
	exportTo   string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write expanded doses as an iCalendar file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First date (YYYY-MM-DD, default today)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last date (YYYY-MM-DD, default --from plus 6 days)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "Output file, - for stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	now, settings, err := a.svc.LocalNow(ctx, userID)
	if err != nil {
		return err
	}
	loc := settings.Location()

	from := clock.StartOfDay(now)
	if exportFrom != "" {
		if from, err = clock.ParseDate(exportFrom, loc); err != nil {
			return err
		}
	}
	to := from.AddDate(0, 0, 6)
	if exportTo != "" {
		if to, err = clock.ParseDate(exportTo, loc); err != nil {
			return err
		}
	}
	days := clock.DaysBetween(from, to)
	if days < 0 || days >= maxExportDays {
		return fmt.Errorf("export range must be 1 to %d days", maxExportDays)
	}

	var insts []models.Instance
	for i := 0; i <= days; i++ {
		day, err := a.svc.Instances(ctx, userID, clock.FormatDate(from.AddDate(0, 0, i)))
		if err != nil {
			return err
		}
		insts = append(insts, day...)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "-" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}
	return export.WriteICS(w, insts, now)
}
