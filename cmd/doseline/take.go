package main

import (
	"fmt"
	"time"

	"github.com/hray3182/DoseLine/internal/models"
	"github.com/spf13/cobra"
)

var (
	takeAt        string
	snoozeMinutes int
)

var takeCmd = &cobra.Command{
	Use:   "take <reminder-id> <instance-key>",
	Short: "Mark one dose as taken",
	Example: `  doseline take 1 2024-01-01_breakfast
  doseline take 1 2024-01-01_breakfast --at 2024-01-01T08:20:00+08:00`,
	Args: cobra.ExactArgs(2),
	RunE: runTake,
}

var skipCmd = &cobra.Command{
	Use:   "skip <reminder-id> <instance-key>",
	Short: "Mark one dose as missed",
	Args:  cobra.ExactArgs(2),
	RunE:  runSkip,
}

var snoozeCmd = &cobra.Command{
	Use:   "snooze <reminder-id> [instance-key]",
	Short: "Push a dose back",
	Long: `Push one dose back by --minutes. Without an instance key the whole series
moves to the new time.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSnooze,
}

func init() {
	takeCmd.Flags().StringVar(&takeAt, "at", "", "When the dose was taken (RFC3339, default now)")
	snoozeCmd.Flags().IntVarP(&snoozeMinutes, "minutes", "m", 0, "Minutes to snooze (default $SNOOZE_MINUTES)")
	rootCmd.AddCommand(takeCmd, skipCmd, snoozeCmd)
}

func runTake(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	at := a.svc.Now()
	if takeAt != "" {
		if at, err = time.Parse(time.RFC3339, takeAt); err != nil {
			return fmt.Errorf("invalid --at %q: %w", takeAt, err)
		}
	}
	if err := a.svc.LogReminderStatusWithTime(cmd.Context(), userID, models.ID(args[0]), args[1], models.StatusTaken, at); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Taken: %s %s\n", args[0], args[1])
	return nil
}

func runSkip(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.LogReminderStatus(cmd.Context(), userID, models.ID(args[0]), args[1], models.StatusMissed); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Skipped: %s %s\n", args[0], args[1])
	return nil
}

func runSnooze(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	minutes := snoozeMinutes
	if minutes == 0 {
		minutes = cfg.SnoozeMinutes
	}
	key := ""
	if len(args) == 2 {
		key = args[1]
	}
	if err := a.svc.SnoozeReminder(cmd.Context(), userID, models.ID(args[0]), key, minutes); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snoozed %s by %d minutes\n", args[0], minutes)
	return nil
}
