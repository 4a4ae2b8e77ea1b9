package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/engine"
	"github.com/hray3182/DoseLine/internal/format"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/spf13/cobra"
)

var (
	defsFile  string
	todayJSON bool
)

var todayCmd = &cobra.Command{
	Use:   "today [YYYY-MM-DD]",
	Short: "List the doses for a day",
	Long: `List the expanded doses for today, or for the given date. With --file the
definitions are read from a JSON array instead of the database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runToday,
}

func init() {
	todayCmd.Flags().StringVarP(&defsFile, "file", "f", "", "JSON file holding an array of reminder definitions")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Print instances as JSON")
	rootCmd.AddCommand(todayCmd)
}

func runToday(cmd *cobra.Command, args []string) error {
	date := ""
	if len(args) == 1 {
		if _, err := clock.ParseDate(args[0], nil); err != nil {
			return err
		}
		date = args[0]
	}

	var insts []models.Instance
	if defsFile != "" {
		defs, err := readDefinitions(defsFile)
		if err != nil {
			return err
		}
		now := time.Now()
		if date == "" {
			date = clock.FormatDate(now)
		}
		insts = engine.Expand(date, defs, defaultSettings(), now)
	} else {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if date == "" {
			now, _, err := a.svc.LocalNow(cmd.Context(), userID)
			if err != nil {
				return err
			}
			date = clock.FormatDate(now)
		}
		if insts, err = a.svc.Instances(cmd.Context(), userID, date); err != nil {
			return err
		}
	}

	return printInstances(cmd.OutOrStdout(), date, insts, todayJSON)
}

func readDefinitions(path string) ([]models.ReminderDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}
	var defs []models.ReminderDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse definitions in %s: %w", path, err)
	}
	return defs, nil
}

func printInstances(w io.Writer, date string, insts []models.Instance, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if insts == nil {
			insts = []models.Instance{}
		}
		return enc.Encode(insts)
	}

	fmt.Fprintf(w, "Doses for %s:\n", date)
	if len(insts) == 0 {
		fmt.Fprintln(w, "No doses scheduled.")
		return nil
	}
	for _, inst := range insts {
		// The Telegram line minus its Markdown markers.
		line := format.Markdown(format.InstanceLine(inst)).Text
		fmt.Fprintf(w, "  %s  [%s]\n", line, inst.InstanceKey)
	}
	return nil
}
